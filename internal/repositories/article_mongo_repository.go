package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/conduit/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

const commentSequence = "comment_id"

// articleDocument is an article stored in MongoDB with its comments embedded.
type articleDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Slug        string             `bson:"slug"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Body        string             `bson:"body"`
	AuthorID    uint               `bson:"author_id"`
	Comments    []commentDocument  `bson:"comments"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type commentDocument struct {
	ID        uint      `bson:"id"`
	AuthorID  uint      `bson:"author_id"`
	Body      string    `bson:"body"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// authorLookup hydrates comment and article authors, which live in PostgreSQL.
type authorLookup interface {
	FindByIDs(ctx context.Context, ids []uint) ([]*models.User, error)
}

// MongoArticleRepository implements ArticleStore for MongoDB
type MongoArticleRepository struct {
	articles *mongo.Collection
	counters *mongo.Collection
	users    authorLookup
}

// NewMongoArticleRepository creates a new MongoArticleRepository
func NewMongoArticleRepository(db *mongo.Database, users authorLookup) *MongoArticleRepository {
	return &MongoArticleRepository{
		articles: db.Collection("articles"),
		counters: db.Collection("counters"),
		users:    users,
	}
}

// FindBySlug retrieves an article document by slug from MongoDB
func (r *MongoArticleRepository) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var doc articleDocument
	err := r.articles.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %q", ErrArticleNotFound, slug)
		}
		return nil, fmt.Errorf("find article %q: %w", slug, err)
	}

	article := &models.Article{
		Slug:        doc.Slug,
		Title:       doc.Title,
		Description: doc.Description,
		Body:        doc.Body,
		AuthorID:    doc.AuthorID,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
		Comments:    make([]*models.Comment, 0, len(doc.Comments)),
	}
	for _, c := range doc.Comments {
		article.Comments = append(article.Comments, &models.Comment{
			ID:        c.ID,
			AuthorID:  c.AuthorID,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}

	if err := r.hydrateAuthors(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (r *MongoArticleRepository) hydrateAuthors(ctx context.Context, article *models.Article) error {
	ids := []uint{article.AuthorID}
	for _, c := range article.Comments {
		ids = append(ids, c.AuthorID)
	}
	users, err := r.users.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load authors of %q: %w", article.Slug, err)
	}

	byID := make(map[uint]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	article.Author = byID[article.AuthorID]
	for _, c := range article.Comments {
		c.Author = byID[c.AuthorID]
	}
	return nil
}

// Save rewrites the embedded comment list when the aggregate changed
func (r *MongoArticleRepository) Save(ctx context.Context, article *models.Article) error {
	pending := article.PendingComments()
	if len(pending) == 0 && len(article.RemovedCommentIDs()) == 0 {
		return nil
	}

	if len(pending) > 0 {
		last, err := r.reserveCommentIDs(ctx, len(pending))
		if err != nil {
			return err
		}
		first := last - uint(len(pending)) + 1
		for i, c := range pending {
			c.ID = first + uint(i)
		}
	}

	docs := make([]commentDocument, 0, len(article.Comments))
	for _, c := range article.Comments {
		docs = append(docs, commentDocument{
			ID:        c.ID,
			AuthorID:  c.AuthorID,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}

	update := bson.M{"$set": bson.M{"comments": docs, "updated_at": time.Now().UTC()}}
	res, err := r.articles.UpdateOne(ctx, bson.M{"slug": article.Slug}, update)
	if err != nil {
		return fmt.Errorf("save comments on %q: %w", article.Slug, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %q", ErrArticleNotFound, article.Slug)
	}

	article.MarkPersisted()
	return nil
}

// reserveCommentIDs advances the shared comment sequence by n and returns
// the last reserved value.
func (r *MongoArticleRepository) reserveCommentIDs(ctx context.Context, n int) (uint, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": commentSequence},
		bson.M{"$inc": bson.M{"seq": n}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("reserve comment ids: %w", err)
	}
	return uint(counter.Seq), nil
}

// MongoUnitOfWork keeps articles in MongoDB and users in PostgreSQL. Both
// sides get their own transaction; the Mongo transaction commits first.
type MongoUnitOfWork struct {
	client *mongo.Client
	db     *mongo.Database
	users  *gorm.DB
}

// NewMongoUnitOfWork creates a new MongoUnitOfWork
func NewMongoUnitOfWork(client *mongo.Client, db *mongo.Database, users *gorm.DB) *MongoUnitOfWork {
	return &MongoUnitOfWork{client: client, db: db, users: users}
}

func (u *MongoUnitOfWork) Do(ctx context.Context, mode TxMode, fn func(ctx context.Context, s Stores) error) error {
	sess, err := u.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return NewGormUnitOfWork(u.users).Do(ctx, mode, func(ctx context.Context, pg Stores) error {
		return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
			stores := Stores{
				Articles: NewMongoArticleRepository(u.db, pg.Users),
				Users:    pg.Users,
				Follows:  pg.Follows,
			}
			if mode == ReadOnly {
				return fn(sc, stores)
			}

			// fn runs exactly once; transient transaction errors are returned.
			if err := sess.StartTransaction(); err != nil {
				return fmt.Errorf("start mongo transaction: %w", err)
			}
			if err := fn(sc, stores); err != nil {
				_ = sess.AbortTransaction(sc)
				return err
			}
			return sess.CommitTransaction(sc)
		})
	})
}
