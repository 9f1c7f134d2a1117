package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/linkboard/config"
	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/auth"
	"github.com/d60-Lab/linkboard/internal/model"
	"github.com/d60-Lab/linkboard/internal/repository"
	"github.com/d60-Lab/linkboard/internal/service"
	"github.com/d60-Lab/linkboard/pkg/database"
	"github.com/d60-Lab/linkboard/pkg/logger"
)

const seedPassword = "password"

var demoLinks = []struct{ title, url string }{
	{"The Go Programming Language", "https://go.dev"},
	{"Effective Go", "https://go.dev/doc/effective_go"},
	{"GORM Guides", "https://gorm.io/docs/"},
	{"Gin Web Framework", "https://gin-gonic.com/docs/"},
	{"Designing Data-Intensive Applications", "https://dataintensive.net"},
	{"Hacker News", "news.ycombinator.com"},
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// 演示数据：N 个用户、每人一条帖子、CONC 个 worker 并发写评论，最后 user0 屏蔽 user1
func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		panic(err)
	}

	userSvc := service.NewUserService(repository.NewUserRepository(db), auth.NewPasswordService())
	postRepo := repository.NewPostRepository(db)
	postSvc := service.NewPostService(postRepo, nil)
	commentSvc := service.NewCommentService(repository.NewCommentRepository(db), postRepo, nil)
	relSvc := service.NewRelationshipService(repository.NewBlockRepository(db))

	ctx := context.Background()
	N := envInt("N", 10)
	CONC := envInt("CONC", 4)
	if N < 2 {
		N = 2
	}

	t0 := time.Now()
	users := make([]*model.User, N)
	for i := range users {
		users[i] = must(ensureUser(ctx, userSvc, i))
	}
	userDur := time.Since(t0)

	posts := make([]*model.Post, N)
	for i, u := range users {
		link := demoLinks[i%len(demoLinks)]
		posts[i] = must(postSvc.CreatePost(ctx, u.ID, link.title, link.url))
	}

	// 每个用户在每个帖子下评论一次
	feed := make(chan [2]int, N*N)
	for p := 0; p < N; p++ {
		for u := 0; u < N; u++ {
			feed <- [2]int{u, p}
		}
	}
	close(feed)

	workers := CONC
	if workers > N*N {
		workers = N * N
	}
	var (
		mu   sync.Mutex
		recs = make([]time.Duration, 0, N*N)
		wg   sync.WaitGroup
	)
	t1 := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range feed {
				u, p := users[job[0]], posts[job[1]]
				st := time.Now()
				body := fmt.Sprintf("<p>%s was here</p>", u.Username)
				if _, err := commentSvc.AddComment(ctx, u.ID, p.ID, body); err != nil {
					logger.Warn("seed comment failed", zap.Uint("post_id", p.ID), zap.Error(err))
					continue
				}
				mu.Lock()
				recs = append(recs, time.Since(st))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	commentDur := time.Since(t1)

	if _, err := relSvc.Block(ctx, users[0].ID, users[1].ID); err != nil {
		panic(err)
	}

	q0 := time.Now()
	visible := must(commentSvc.VisibleComments(ctx, posts[0].ID, users[0].ID))
	visibleDur := time.Since(q0)

	pct := func(vs []time.Duration, p float64) time.Duration {
		if len(vs) == 0 {
			return 0
		}
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(math.Ceil(p*float64(len(xs)))) - 1
		if k < 0 {
			k = 0
		}
		if k >= len(xs) {
			k = len(xs) - 1
		}
		return xs[k]
	}

	fmt.Printf("N=%d, CONC=%d (login with any userN / %q)\n", N, CONC, seedPassword)
	fmt.Printf("Users: %d in %v\n", N, userDur)
	fmt.Printf("Comments: %d in %v, p50: %v, p95: %v, p99: %v\n",
		len(recs), commentDur, pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99))
	fmt.Printf("%s blocks %s; %s sees %d comments on post %d (%v)\n",
		users[0].Username, users[1].Username, users[0].Username, len(visible), posts[0].ID, visibleDur)
}

// ensureUser 重复执行时复用已存在的用户
func ensureUser(ctx context.Context, users service.UserService, i int) (*model.User, error) {
	username := fmt.Sprintf("user%d", i)
	birthday := time.Date(1990, time.January, 1+i%28, 0, 0, 0, 0, time.UTC)
	u, err := users.Register(ctx, service.RegisterInput{
		FirstName: "Demo",
		LastName:  strconv.Itoa(i),
		Username:  username,
		Email:     username + "@example.com",
		Birthday:  &birthday,
		Password:  seedPassword,
	})
	if errors.Is(err, apperror.ErrConflict) {
		return users.GetByUsername(ctx, username)
	}
	return u, err
}
