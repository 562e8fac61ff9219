package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/conduit/backend/internal/metrics"
	"github.com/anonto42/conduit/backend/internal/models"
	"github.com/anonto42/conduit/backend/internal/repositories"
	"github.com/anonto42/conduit/backend/internal/repositories/repotest"
	"github.com/anonto42/conduit/backend/internal/viewer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type commentFixture struct {
	db      *gorm.DB
	service *CommentService
	metrics *metrics.Metrics
	alice   *models.User
	bob     *models.User
	carol   *models.User
	article *models.Article
}

// newCommentFixture seeds article "a-title" written by alice, plus bob and
// carol who follow nobody.
func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()
	db := repotest.OpenSQLite(t)
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), nil)
	logger, _ := zap.NewDevelopment()

	f := &commentFixture{
		db:      db,
		service: NewCommentService(repositories.NewGormUnitOfWork(db), m, logger),
		metrics: m,
		alice:   repotest.CreateUser(t, db, "alice"),
		bob:     repotest.CreateUser(t, db, "bob"),
		carol:   repotest.CreateUser(t, db, "carol"),
	}
	f.article = repotest.CreateArticle(t, db, f.alice, "A Title")
	return f
}

func TestCommentService_PostComment(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	got, err := f.service.PostComment(ctx, "a-title", models.NewComment(f.alice, "first!"))
	require.NoError(t, err)

	assert.NotZero(t, got.ID)
	assert.Equal(t, f.alice.ID, got.AuthorID)
	require.NotNil(t, got.Author)
	assert.Equal(t, "alice", got.Author.Username)
	assert.Equal(t, int64(1), repotest.CountComments(t, f.db, f.article))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CommentsPostedTotal))

	t.Run("slug is normalized before lookup", func(t *testing.T) {
		_, err := f.service.PostComment(ctx, "A Title", models.NewComment(f.bob, "second"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), repotest.CountComments(t, f.db, f.article))
	})
}

func TestCommentService_PostComment_Failures(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		slug    string
		comment *models.Comment
	}{
		{name: "unknown slug", slug: "missing", comment: models.NewComment(f.alice, "hi")},
		{name: "unknown author", slug: "a-title", comment: &models.Comment{AuthorID: 999, Body: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.service.PostComment(ctx, tt.slug, tt.comment)

			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrEntityNotFound)
			assert.Equal(t, int64(0), repotest.CountComments(t, f.db, f.article))
		})
	}
}

func TestCommentService_ViewComment(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()
	c := &models.Comment{ID: 1, AuthorID: f.alice.ID, Author: f.alice, Body: "hi"}

	view, err := f.service.ViewComment(ctx, viewer.User(f.bob.ID), c)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Author.Username)
	assert.False(t, view.Author.Following)

	_, err = f.service.ViewComment(ctx, viewer.Anonymous(), c)
	assert.ErrorIs(t, err, ErrNoCurrentUser)

	_, err = f.service.ViewComment(ctx, viewer.User(12345), c)
	assert.ErrorIs(t, err, ErrNoCurrentUser, "a token for a vanished user is not a viewer")
}

func TestCommentService_ViewAllCommentsBySlug_FollowingScenario(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()
	repotest.CreateComment(t, f.db, f.article, f.alice, "C1")

	views, err := f.service.ViewAllCommentsBySlug(ctx, viewer.User(f.bob.ID), "a-title")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "C1", views[0].Body)
	assert.False(t, views[0].Author.Following)

	repotest.Follow(t, f.db, f.bob, f.alice)

	views, err = f.service.ViewAllCommentsBySlug(ctx, viewer.User(f.bob.ID), "a-title")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Author.Following)

	views, err = f.service.ViewAllCommentsBySlug(ctx, viewer.User(f.carol.ID), "a-title")
	require.NoError(t, err)
	assert.False(t, views[0].Author.Following, "following is relative to the viewer")
}

func TestCommentService_ViewAllCommentsBySlug_Order(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	for _, body := range []string{"one", "two", "three"} {
		_, err := f.service.PostComment(ctx, "a-title", models.NewComment(f.bob, body))
		require.NoError(t, err)
	}

	views, err := f.service.ViewAllCommentsBySlug(ctx, viewer.User(f.alice.ID), "a-title")
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "one", views[0].Body)
	assert.Equal(t, "two", views[1].Body)
	assert.Equal(t, "three", views[2].Body)
}

func TestCommentService_ViewAllCommentsBySlug_Failures(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()

	_, err := f.service.ViewAllCommentsBySlug(ctx, viewer.User(f.bob.ID), "missing")
	assert.ErrorIs(t, err, ErrEntityNotFound)

	views, err := f.service.ViewAllCommentsBySlug(ctx, viewer.Anonymous(), "a-title")
	require.NoError(t, err, "an article without comments lists nothing, even anonymously")
	assert.Empty(t, views)

	repotest.CreateComment(t, f.db, f.article, f.alice, "C1")
	views, err = f.service.ViewAllCommentsBySlug(ctx, viewer.Anonymous(), "a-title")
	assert.ErrorIs(t, err, ErrNoCurrentUser)
	assert.Nil(t, views)
}

func TestCommentService_DeleteComment_Scenario(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()
	c1 := repotest.CreateComment(t, f.db, f.article, f.alice, "C1")

	result, err := f.service.DeleteComment(ctx, viewer.User(f.carol.ID), "a-title", c1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CommentForbidden, result)
	assert.False(t, result.Deleted())
	assert.Equal(t, int64(1), repotest.CountComments(t, f.db, f.article))

	result, err = f.service.DeleteComment(ctx, viewer.User(f.alice.ID), "a-title", c1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CommentDeleted, result)
	assert.Equal(t, int64(0), repotest.CountComments(t, f.db, f.article))

	result, err = f.service.DeleteComment(ctx, viewer.User(f.alice.ID), "a-title", c1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CommentNotFound, result, "second delete finds nothing")

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CommentDeletionsTotal.WithLabelValues("deleted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CommentDeletionsTotal.WithLabelValues("forbidden")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CommentDeletionsTotal.WithLabelValues("not_found")))
}

func TestCommentService_DeleteComment_CrossArticle(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()
	other := repotest.CreateArticle(t, f.db, f.alice, "Other")
	c := repotest.CreateComment(t, f.db, other, f.alice, "elsewhere")

	result, err := f.service.DeleteComment(ctx, viewer.User(f.alice.ID), "a-title", c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CommentNotFound, result)
	assert.Equal(t, int64(1), repotest.CountComments(t, f.db, other))
}

func TestCommentService_DeleteComment_Failures(t *testing.T) {
	f := newCommentFixture(t)
	ctx := context.Background()
	c1 := repotest.CreateComment(t, f.db, f.article, f.alice, "C1")

	_, err := f.service.DeleteComment(ctx, viewer.User(f.alice.ID), "missing", c1.ID)
	assert.ErrorIs(t, err, ErrEntityNotFound)

	// The viewer is checked before the article, so an anonymous caller never
	// learns whether a slug exists.
	_, err = f.service.DeleteComment(ctx, viewer.Anonymous(), "missing", c1.ID)
	assert.ErrorIs(t, err, ErrNoCurrentUser)

	assert.Equal(t, int64(1), repotest.CountComments(t, f.db, f.article))
}

// failingUnitOfWork hands out stores whose article lookup always fails.
type failingUnitOfWork struct {
	err error
}

func (u failingUnitOfWork) Do(ctx context.Context, _ repositories.TxMode, fn func(context.Context, repositories.Stores) error) error {
	return fn(ctx, repositories.Stores{Articles: failingArticles{err: u.err}})
}

type failingArticles struct {
	err error
}

func (a failingArticles) FindBySlug(context.Context, string) (*models.Article, error) {
	return nil, a.err
}

func (a failingArticles) Save(context.Context, *models.Article) error {
	return a.err
}

func TestCommentService_StoreFailuresSurface(t *testing.T) {
	storeErr := errors.New("connection reset")
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), nil)
	service := NewCommentService(failingUnitOfWork{err: storeErr}, m, nil)

	_, err := service.PostComment(context.Background(), "a-title", &models.Comment{AuthorID: 1})
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrEntityNotFound)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CommentOperationErrors.WithLabelValues("post", "internal")))
}
