package database

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/isdelr/devlink/internal/config"
	"github.com/isdelr/devlink/internal/models"
)

func TestBuildDeveloperFilter(t *testing.T) {
	f := buildDeveloperFilter("owner-1", models.DeveloperFilter{
		Domain:    "c++",
		TechStack: []string{"Node.js"},
		Search:    "ada",
	})

	require.Len(t, f, 1)
	and, ok := f[0].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, and, 4)

	assert.Equal(t, bson.M{"owner": "owner-1"}, and[0])
	assert.Equal(t, bson.M{"domain": primitive.Regex{Pattern: `c\+\+`, Options: "i"}}, and[1])
	assert.Equal(t, bson.M{"techstack": primitive.Regex{Pattern: `^Node\.js$`, Options: "i"}}, and[2])

	or := and[3].(bson.M)["$or"].(bson.A)
	assert.Len(t, or, 2)

	withDomain := buildDeveloperFilter("owner-1", models.DeveloperFilter{Search: "ada", SearchDomain: true})
	or = withDomain[0].Value.(bson.A)[1].(bson.M)["$or"].(bson.A)
	assert.Len(t, or, 3)

	assert.Equal(t, bson.D{{Key: "owner", Value: "owner-1"}}, buildDeveloperFilter("owner-1", models.DeveloperFilter{}))
}

func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set; skipping mongo integration test")
	}

	ctx := context.Background()
	dbName := "devlink_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	store, err := Open(ctx, &config.Config{
		DatabaseDriver: config.DriverMongo,
		DatabaseURL:    uri,
		MongoDatabase:  dbName,
	})
	require.NoError(t, err)
	ms := store.(*MongoStore)
	t.Cleanup(func() {
		ms.m.Database.Drop(ctx)
		store.Close(ctx)
	})

	exerciseStore(t, store)
}

func TestPostgresStore_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	ctx := context.Background()
	store, err := Open(ctx, &config.Config{DatabaseDriver: config.DriverPostgres, DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(ctx) })

	exerciseStore(t, store)
}

func TestSQLiteStore_Conformance(t *testing.T) {
	exerciseStore(t, newSQLiteStore(t))
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	a := seedUser(t, s, uuid.NewString()+"@example.com")
	b := seedUser(t, s, uuid.NewString()+"@example.com")

	dup := a
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), models.ErrDuplicateEmail)

	ada := seedDeveloper(t, s, a.ID, 1, "Ada", "Frontend", "React", "Node")
	seedDeveloper(t, s, a.ID, 2, "Grace", "FRONT-END", "react")
	seedDeveloper(t, s, a.ID, 3, "Linus", "Backend", "C")
	seedDeveloper(t, s, b.ID, 4, "Bob", "Frontend", "React", "Node")

	got, err := s.ListDevelopers(ctx, a.ID, models.DeveloperFilter{Domain: "front"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Grace"}, names(got))

	got, err = s.ListDevelopers(ctx, a.ID, models.DeveloperFilter{TechStack: []string{"REACT", "node"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada"}, names(got))

	got, err = s.ListDevelopers(ctx, a.ID, models.DeveloperFilter{Search: "BACK", SearchDomain: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Linus"}, names(got))

	hijack := ada
	hijack.OwnerID = b.ID
	assert.ErrorIs(t, s.UpdateDeveloper(ctx, &hijack), models.ErrNotFound)
	assert.ErrorIs(t, s.DeleteDeveloper(ctx, ada.ID, b.ID), models.ErrNotFound)

	require.NoError(t, s.DeleteDeveloper(ctx, ada.ID, a.ID))
	_, err = s.GetDeveloper(ctx, ada.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
