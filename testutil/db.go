// Package testutil provides an in-memory database with the production schema
// for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/snap-point/follow-api/config"
	"github.com/snap-point/follow-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var dbCounter atomic.Int64

// NewDB opens a private in-memory SQLite database. All access goes through a
// single connection, so concurrent transactions are serialized the way row
// locks serialize them on Postgres.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))

	db, err := config.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// CreateAccount inserts a user and its profile.
func CreateAccount(t testing.TB, db *gorm.DB, username string, private bool) *models.Profile {
	t.Helper()

	user := models.User{Username: username, Email: username + "@example.com", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	profile := models.Profile{UserID: user.ID, Private: private}
	require.NoError(t, db.Omit(clause.Associations).Create(&profile).Error)

	profile.User = user
	return &profile
}
