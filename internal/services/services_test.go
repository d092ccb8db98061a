package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/devlink/internal/auth"
	"github.com/isdelr/devlink/internal/config"
	"github.com/isdelr/devlink/internal/database"
	"github.com/isdelr/devlink/internal/models"
)

type fixture struct {
	users  *UserService
	devs   *DeveloperService
	tokens *auth.TokenService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	store, err := database.Open(ctx, &config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    filepath.Join(t.TempDir(), "devlink.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(ctx) })

	tokens, err := auth.NewTokenService("test-secret")
	require.NoError(t, err)

	users := NewUserService(store, tokens)
	users.bcryptCost = bcrypt.MinCost

	devs := NewDeveloperService(store)
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	devs.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	return fixture{users: users, devs: devs, tokens: tokens}
}

func (f fixture) register(t *testing.T, email string) models.AuthResult {
	t.Helper()
	res, err := f.users.Register(context.Background(), models.RegisterInput{
		Username: "user", Email: email, Password: "secret123",
	})
	require.NoError(t, err)
	return res
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg := f.register(t, "  Ada@Example.com ")
	assert.Equal(t, "ada@example.com", reg.Email)
	assert.NotEmpty(t, reg.Token)

	userID, err := f.tokens.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, userID)

	login, err := f.users.Login(ctx, models.LoginInput{Email: "ADA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, reg.ID, login.ID)

	_, err = f.users.Login(ctx, models.LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = f.users.Login(ctx, models.LoginInput{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	me, err := f.users.GetUserByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Empty(t, me.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")

	for i := 0; i < 3; i++ {
		_, err := f.users.Register(context.Background(), models.RegisterInput{
			Username: "again", Email: "ADA@example.com", Password: "secret123",
		})
		assert.ErrorIs(t, err, models.ErrValidation)
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Register(context.Background(), models.RegisterInput{Email: "not-an-email", Password: "x"})
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "username is required")
	assert.Contains(t, err.Error(), "email must be a valid email address")
}

func TestRegister_PasswordByteLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, models.RegisterInput{
		Username: "ana", Email: "ana@example.com", Password: strings.Repeat("é", 40),
	})
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "72 bytes")

	_, err = f.users.Register(ctx, models.RegisterInput{
		Username: "ana", Email: "ana@example.com", Password: strings.Repeat("é", 36),
	})
	require.NoError(t, err)
	_, err = f.users.Login(ctx, models.LoginInput{Email: "ana@example.com", Password: strings.Repeat("é", 36)})
	assert.NoError(t, err)
}

func TestDeveloperLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com").ID

	dev, err := f.devs.CreateDeveloper(ctx, owner, models.DeveloperInput{
		Name:      " Ada ",
		Email:     "ADA@dev.io",
		GitHub:    "https://github.com/ada",
		Domain:    "Backend",
		TechStack: models.ParseTechStack("Go, SQL ,"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", dev.Name)
	assert.Equal(t, "ada@dev.io", dev.Email)
	assert.Equal(t, models.TechStack{"Go", "SQL"}, dev.TechStack)
	assert.Equal(t, owner, dev.OwnerID)

	updated, err := f.devs.UpdateDeveloper(ctx, dev.ID, owner, models.DeveloperInput{
		Name: "Ada Lovelace", Email: "ada@dev.io", TechStack: models.TechStack{"Go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Empty(t, updated.Domain)
	assert.True(t, updated.UpdatedAt.After(dev.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(dev.CreatedAt))

	got, err := f.devs.GetDeveloper(ctx, dev.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)

	require.NoError(t, f.devs.DeleteDeveloper(ctx, dev.ID, owner))
	_, err = f.devs.GetDeveloper(ctx, dev.ID, owner)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, f.devs.DeleteDeveloper(ctx, dev.ID, owner), models.ErrNotFound)
}

func TestDeveloperValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com").ID

	tests := map[string]models.DeveloperInput{
		"missing name":  {Email: "a@b.io"},
		"missing email": {Name: "Ada"},
		"bad email":     {Name: "Ada", Email: "nope"},
		"bad github":    {Name: "Ada", Email: "a@b.io", GitHub: "not a url"},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.devs.CreateDeveloper(ctx, owner, in)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}

	_, err := f.devs.CreateDeveloper(ctx, owner, models.DeveloperInput{Name: "Ada", Email: "a@b.io"})
	require.NoError(t, err)
	_, err = f.devs.CreateDeveloper(ctx, owner, models.DeveloperInput{Name: "Copy", Email: "A@B.io"})
	assert.ErrorIs(t, err, models.ErrValidation)

	all, err := f.devs.ListDevelopers(ctx, owner, models.DeveloperFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@example.com").ID
	b := f.register(t, "b@example.com").ID

	dev, err := f.devs.CreateDeveloper(ctx, a, models.DeveloperInput{Name: "Ada", Email: "ada@dev.io"})
	require.NoError(t, err)

	list, err := f.devs.ListDevelopers(ctx, b, models.DeveloperFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.devs.GetDeveloper(ctx, dev.ID, b)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.devs.UpdateDeveloper(ctx, dev.ID, b, models.DeveloperInput{Name: "Mallory", Email: "m@dev.io"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	assert.ErrorIs(t, f.devs.DeleteDeveloper(ctx, dev.ID, b), models.ErrForbidden)

	stats, err := f.devs.Stats(ctx, b)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalCount)

	got, err := f.devs.GetDeveloper(ctx, dev.ID, a)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	_, err = f.devs.UpdateDeveloper(ctx, "missing", a, models.DeveloperInput{Name: "X", Email: "x@dev.io"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStatsThroughStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com").ID

	_, err := f.devs.CreateDeveloper(ctx, owner, models.DeveloperInput{
		Name: "A", Email: "a@dev.io", Domain: "Backend", TechStack: models.TechStack{"Go", "SQL"},
	})
	require.NoError(t, err)
	_, err = f.devs.CreateDeveloper(ctx, owner, models.DeveloperInput{
		Name: "B", Email: "b@dev.io", Domain: "Backend", TechStack: models.TechStack{"Go"},
	})
	require.NoError(t, err)

	stats, err := f.devs.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCount)
	assert.Equal(t, []models.DomainCount{{Name: "Backend", Value: 2}}, stats.ByDomain)
	assert.Equal(t, []models.TechCount{{Name: "Go", Count: 2}, {Name: "SQL", Count: 1}}, stats.TopTechStack)
}
