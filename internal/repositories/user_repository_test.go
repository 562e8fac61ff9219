package repositories_test

import (
	"context"
	"testing"

	"github.com/anonto42/conduit/backend/internal/models"
	"github.com/anonto42/conduit/backend/internal/repositories"
	"github.com/anonto42/conduit/backend/internal/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresUserRepository_FindByID_LoadsFollowedSet(t *testing.T) {
	db := repotest.OpenSQLite(t)
	ctx := context.Background()

	alice := repotest.CreateUser(t, db, "alice")
	bob := repotest.CreateUser(t, db, "bob")
	carol := repotest.CreateUser(t, db, "carol")
	repotest.Follow(t, db, bob, alice)
	repotest.Follow(t, db, bob, carol)

	repo := repositories.NewPostgresUserRepository(db)

	got, err := repo.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{alice.ID, carol.ID}, got.FollowingIDs)
	assert.True(t, got.IsFollowing(alice))

	got, err = repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, got.FollowingIDs)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestPostgresUserRepository_Lookups(t *testing.T) {
	db := repotest.OpenSQLite(t)
	ctx := context.Background()
	repo := repositories.NewPostgresUserRepository(db)

	uid := "firebase-uid-1"
	alice := &models.User{Username: "alice", Email: "alice@example.com", FirebaseUID: &uid}
	require.NoError(t, repo.CreateUser(ctx, alice))
	bob := repotest.CreateUser(t, db, "bob")

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	byUID, err := repo.FindByFirebaseUID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byUID.ID)

	users, err := repo.FindByIDs(ctx, []uint{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	_, err = repo.FindByFirebaseUID(ctx, "unknown")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestPostgresFollowRepository(t *testing.T) {
	db := repotest.OpenSQLite(t)
	ctx := context.Background()
	repo := repositories.NewPostgresFollowRepository(db)

	alice := repotest.CreateUser(t, db, "alice")
	bob := repotest.CreateUser(t, db, "bob")

	require.NoError(t, repo.CreateFollow(ctx, bob.ID, alice.ID))
	require.NoError(t, repo.CreateFollow(ctx, bob.ID, alice.ID), "following twice is a no-op")

	following, err := repo.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, following)

	following, err = repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following, "follow edges are directed")

	ids, err := repo.GetFollowingIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, ids)

	require.NoError(t, repo.DeleteFollow(ctx, bob.ID, alice.ID))
	require.NoError(t, repo.DeleteFollow(ctx, bob.ID, alice.ID), "unfollowing twice is a no-op")

	ids, err = repo.GetFollowingIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
