package bootstrap

import (
	"context"
	"testing"

	"lifewood/internal/config"
	"lifewood/internal/models"
	"lifewood/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Admin{}))
	return db
}

func TestEnsureDefaultAdmin(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewAdminRepository(db)
	cfg := &config.Config{DefaultAdminEmail: " admin@lifewood.com ", DefaultAdminPassword: "admin123"}
	ctx := context.Background()

	created, err := EnsureDefaultAdmin(ctx, cfg, repo)
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := repo.GetByEmail(ctx, "admin@lifewood.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, DefaultAdminFirstName, admin.FirstName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")),
		"stock password is accepted without the policy check")

	created, err = EnsureDefaultAdmin(ctx, cfg, repo)
	require.NoError(t, err)
	assert.False(t, created, "second run leaves the existing account alone")

	var count int64
	require.NoError(t, db.Model(&models.Admin{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureDefaultAdmin_Disabled(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewAdminRepository(db)

	for _, cfg := range []*config.Config{
		nil,
		{DefaultAdminEmail: "", DefaultAdminPassword: "x"},
		{DefaultAdminEmail: "admin@lifewood.com", DefaultAdminPassword: ""},
	} {
		created, err := EnsureDefaultAdmin(context.Background(), cfg, repo)
		require.NoError(t, err)
		assert.False(t, created)
	}
}
