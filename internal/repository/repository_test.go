package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/linkboard/internal/model"
	"github.com/d60-Lab/linkboard/pkg/database"
)

var base = time.Date(2024, 3, 28, 12, 0, 0, 0, time.UTC)

func setupTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: 库每个连接独立，固定单连接
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedUser(t testing.TB, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Joined:       base,
		LastSeen:     base,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedPost(t testing.TB, db *gorm.DB, author *model.User, title string, at time.Time) *model.Post {
	t.Helper()
	p := &model.Post{Title: title, URL: "https://example.com/" + title, Source: "example.com", Timestamp: at, UserID: author.ID}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), p))
	return p
}

func seedComment(t testing.TB, db *gorm.DB, author *model.User, post *model.Post, at time.Time) *model.Comment {
	t.Helper()
	c := &model.Comment{Body: fmt.Sprintf("%s says hi", author.Username), Timestamp: at, UserID: author.ID, PostID: post.ID}
	require.NoError(t, NewCommentRepository(db).Create(context.Background(), c))
	return c
}
