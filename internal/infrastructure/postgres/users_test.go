package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/social-feed-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// openTestDB runs the same models and gorm settings against an in-memory
// sqlite database private to the test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(false))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func seedUser(t *testing.T, repo *UserRepo, id, username, email string) {
	t.Helper()
	require.NoError(t, repo.Put(context.Background(), &domain.User{
		UserID:          id,
		Username:        username,
		Email:           strPtr(email),
		PreferredMethod: domain.MethodEmail,
		CreatedAt:       t0,
		UpdatedAt:       t0,
	}))
}

func TestUserRepo_PutAndLookups(t *testing.T) {
	repo := NewUserRepo(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, &domain.User{
		UserID:          "U1",
		Username:        "alice",
		Email:           strPtr("alice@example.com"),
		PhoneNumber:     strPtr("15551234567"),
		PreferredMethod: domain.MethodPhone,
		CreatedAt:       t0,
		UpdatedAt:       t0,
	}))

	byID, err := repo.Get(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, domain.MethodPhone, byID.PreferredMethod)
	assert.True(t, t0.Equal(byID.CreatedAt))
	assert.Nil(t, byID.Passcode)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "U1", byEmail.UserID)

	byPhone, err := repo.GetByPhone(ctx, "15551234567")
	require.NoError(t, err)
	assert.Equal(t, "U1", byPhone.UserID)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "U1", byName.UserID)

	_, err = repo.Get(ctx, "U2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_PutDuplicateIsConflict(t *testing.T) {
	repo := NewUserRepo(openTestDB(t))
	seedUser(t, repo, "U1", "alice", "alice@example.com")

	err := repo.Put(context.Background(), &domain.User{
		UserID:          "U2",
		Username:        "alice2",
		Email:           strPtr("alice@example.com"),
		PreferredMethod: domain.MethodEmail,
		CreatedAt:       t0,
		UpdatedAt:       t0,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = repo.Put(context.Background(), &domain.User{
		UserID:          "U1",
		Username:        "someone",
		PreferredMethod: domain.MethodEmail,
		CreatedAt:       t0,
		UpdatedAt:       t0,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserRepo_SetPasscodeStoresPair(t *testing.T) {
	repo := NewUserRepo(openTestDB(t))
	seedUser(t, repo, "U1", "alice", "alice@example.com")
	exp := t0.Add(10 * time.Minute)

	require.NoError(t, repo.SetPasscode(context.Background(), "U1", domain.Passcode{Secret: "004217", ExpiresAt: exp}))

	u, err := repo.Get(context.Background(), "U1")
	require.NoError(t, err)
	require.NotNil(t, u.Passcode)
	assert.Equal(t, "004217", u.Passcode.Secret)
	assert.True(t, exp.Equal(u.Passcode.ExpiresAt))
}

func TestUserRepo_SetPasscodeUnknownUser(t *testing.T) {
	repo := NewUserRepo(openTestDB(t))

	err := repo.SetPasscode(context.Background(), "U2", domain.Passcode{Secret: "123456", ExpiresAt: t0})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_ConsumeAcceptsOnce(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	seedUser(t, repo, "U1", "alice", "alice@example.com")
	require.NoError(t, repo.SetPasscode(ctx, "U1", domain.Passcode{Secret: "123456", ExpiresAt: t0.Add(10 * time.Minute)}))

	ok, err := repo.ConsumePasscode(ctx, "U1", "123456", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConsumePasscode(ctx, "U1", "123456", t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	var row userRow
	require.NoError(t, db.First(&row, "id = ?", "U1").Error)
	assert.Nil(t, row.OTPSecret)
	assert.Nil(t, row.OTPExpiry)
}

func TestUserRepo_ConsumeAtExpiryInstant(t *testing.T) {
	repo := NewUserRepo(openTestDB(t))
	ctx := context.Background()
	seedUser(t, repo, "U1", "alice", "alice@example.com")
	exp := t0.Add(10 * time.Minute)
	require.NoError(t, repo.SetPasscode(ctx, "U1", domain.Passcode{Secret: "123456", ExpiresAt: exp}))

	ok, err := repo.ConsumePasscode(ctx, "U1", "123456", exp)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserRepo_ConsumeExpiredKeepsPasscode(t *testing.T) {
	repo := NewUserRepo(openTestDB(t))
	ctx := context.Background()
	seedUser(t, repo, "U1", "alice", "alice@example.com")
	exp := t0.Add(10 * time.Minute)
	require.NoError(t, repo.SetPasscode(ctx, "U1", domain.Passcode{Secret: "123456", ExpiresAt: exp}))

	ok, err := repo.ConsumePasscode(ctx, "U1", "123456", exp.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	u, err := repo.Get(ctx, "U1")
	require.NoError(t, err)
	assert.NotNil(t, u.Passcode)
}

func TestUserRepo_ConsumeMismatchKeepsPasscode(t *testing.T) {
	repo := NewUserRepo(openTestDB(t))
	ctx := context.Background()
	seedUser(t, repo, "U1", "alice", "alice@example.com")
	require.NoError(t, repo.SetPasscode(ctx, "U1", domain.Passcode{Secret: "123456", ExpiresAt: t0.Add(10 * time.Minute)}))

	ok, err := repo.ConsumePasscode(ctx, "U1", "654321", t0)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ConsumePasscode(ctx, "U1", "123456", t0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserRepo_ConsumeSupersededCode(t *testing.T) {
	repo := NewUserRepo(openTestDB(t))
	ctx := context.Background()
	seedUser(t, repo, "U1", "alice", "alice@example.com")
	require.NoError(t, repo.SetPasscode(ctx, "U1", domain.Passcode{Secret: "111111", ExpiresAt: t0.Add(10 * time.Minute)}))
	require.NoError(t, repo.SetPasscode(ctx, "U1", domain.Passcode{Secret: "222222", ExpiresAt: t0.Add(11 * time.Minute)}))

	ok, err := repo.ConsumePasscode(ctx, "U1", "111111", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ConsumePasscode(ctx, "U1", "222222", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserRepo_ConsumeUnknownUser(t *testing.T) {
	repo := NewUserRepo(openTestDB(t))

	ok, err := repo.ConsumePasscode(context.Background(), "U2", "123456", t0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepo_ConsumeDoesNotTouchOtherUsers(t *testing.T) {
	repo := NewUserRepo(openTestDB(t))
	ctx := context.Background()
	seedUser(t, repo, "U1", "alice", "alice@example.com")
	seedUser(t, repo, "U2", "bob", "bob@example.com")
	require.NoError(t, repo.SetPasscode(ctx, "U1", domain.Passcode{Secret: "123456", ExpiresAt: t0.Add(10 * time.Minute)}))

	ok, err := repo.ConsumePasscode(ctx, "U2", "123456", t0)
	require.NoError(t, err)
	assert.False(t, ok)

	u, err := repo.Get(ctx, "U1")
	require.NoError(t, err)
	assert.NotNil(t, u.Passcode)
}

func TestUserRepo_HalfPairRejectedByCheck(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepo(db)
	seedUser(t, repo, "U1", "alice", "alice@example.com")

	err := db.Exec("UPDATE users SET otp_secret = ? WHERE id = ?", "123456", "U1").Error
	assert.Error(t, err)

	u, err := repo.Get(context.Background(), "U1")
	require.NoError(t, err)
	assert.Nil(t, u.Passcode)
}

func TestUserRepo_PreferredMethodAndVerified(t *testing.T) {
	repo := NewUserRepo(openTestDB(t))
	ctx := context.Background()
	seedUser(t, repo, "U1", "alice", "alice@example.com")

	require.NoError(t, repo.SetPreferredMethod(ctx, "U1", domain.MethodPhone))
	require.NoError(t, repo.MarkVerified(ctx, "U1", domain.MethodEmail))

	u, err := repo.Get(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, domain.MethodPhone, u.PreferredMethod)
	assert.True(t, u.VerifiedEmail)
	assert.False(t, u.VerifiedPhone)

	assert.ErrorIs(t, repo.MarkVerified(ctx, "U1", "fax"), domain.ErrBadRequest)
	assert.ErrorIs(t, repo.SetPreferredMethod(ctx, "U2", domain.MethodEmail), domain.ErrNotFound)
}
