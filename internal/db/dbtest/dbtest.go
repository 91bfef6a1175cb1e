// Package dbtest opens migrated in-memory databases and seeds fixtures for tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
)

// New opens a fresh in-memory SQLite database with the schema applied
func New(t testing.TB) *db.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	d := db.Wrap(gdb)
	require.NoError(t, d.Migrate(context.Background()))
	return d
}

// User creates a user with the given username
func User(t testing.TB, d *db.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, DateJoined: time.Now().UTC()}
	require.NoError(t, d.Create(u).Error)
	return u
}

// Group creates a group with the given slug
func Group(t testing.TB, d *db.DB, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, d.Create(g).Error)
	return g
}

// Post creates a post by author, optionally in group, published at pubDate
func Post(t testing.TB, d *db.DB, author *models.User, group *models.Group, text string, pubDate time.Time) *models.Post {
	t.Helper()
	p := &models.Post{Text: text, AuthorID: author.ID, PubDate: pubDate}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, d.Create(p).Error)
	return p
}

// Follow makes user follow author
func Follow(t testing.TB, d *db.DB, user, author *models.User) {
	t.Helper()
	require.NoError(t, d.Create(&models.Follow{UserID: user.ID, AuthorID: author.ID}).Error)
}

// Count returns the number of rows of model
func Count(t testing.TB, d *db.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, d.Model(model).Count(&n).Error)
	return n
}
