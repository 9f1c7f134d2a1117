package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/linkboard/internal/auth"
	"github.com/d60-Lab/linkboard/internal/cache"
	"github.com/d60-Lab/linkboard/internal/model"
	"github.com/d60-Lab/linkboard/internal/repository"
	"github.com/d60-Lab/linkboard/pkg/database"
)

// fakeClock 每次调用前进一秒，保证时间严格递增
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 28, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type env struct {
	db        *gorm.DB
	clock     *fakeClock
	users     *userService
	posts     *postService
	comments  *commentService
	relations RelationshipService
}

func setupEnv(t *testing.T, listCache *cache.PostListCache) *env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })

	clock := newFakeClock()
	postRepo := repository.NewPostRepository(db)

	users := NewUserService(repository.NewUserRepository(db), auth.NewPasswordServiceWithCost(bcrypt.MinCost)).(*userService)
	users.now = clock.Now
	posts := NewPostService(postRepo, listCache).(*postService)
	posts.now = clock.Now
	comments := NewCommentService(repository.NewCommentRepository(db), postRepo, listCache).(*commentService)
	comments.now = clock.Now

	return &env{
		db:        db,
		clock:     clock,
		users:     users,
		posts:     posts,
		comments:  comments,
		relations: NewRelationshipService(repository.NewBlockRepository(db)),
	}
}

func validInput(name string) RegisterInput {
	bday := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	return RegisterInput{
		FirstName: "First",
		LastName:  "Last",
		Username:  name,
		Email:     name + "@example.com",
		Birthday:  &bday,
		Password:  "pw-" + name,
	}
}

func (e *env) register(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), validInput(name))
	require.NoError(t, err, fmt.Sprintf("register %s", name))
	return u
}
