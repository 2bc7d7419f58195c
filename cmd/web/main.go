package main

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	redis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"mini-twitter/pkg/common/cache"
	"mini-twitter/pkg/common/config"
	"mini-twitter/pkg/common/database"
	"mini-twitter/pkg/common/logging"
	"mini-twitter/pkg/core/auth/password"
	"mini-twitter/pkg/core/auth/token"
	postdao "mini-twitter/pkg/core/post/repository/dao"
	postimpl "mini-twitter/pkg/core/post/repository/dao/impl"
	postmemory "mini-twitter/pkg/core/post/repository/dao/memory"
	postservice "mini-twitter/pkg/core/post/service"
	userdao "mini-twitter/pkg/core/user/repository/dao"
	userimpl "mini-twitter/pkg/core/user/repository/dao/impl"
	usermemory "mini-twitter/pkg/core/user/repository/dao/memory"
	userservice "mini-twitter/pkg/core/user/service"
	"mini-twitter/pkg/web/handler"
	"mini-twitter/pkg/web/middleware"
	"mini-twitter/pkg/web/router"
)

func main() {
	// 初始化配置
	cfg := config.Load()
	logging.Init(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		hlog.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	var (
		users    userdao.UserRepository
		posts    postdao.PostRepository
		checkers []handler.Checker
		closers  []func() error
	)

	// 初始化存储
	switch cfg.Database.Driver {
	case config.DriverMemory:
		hlog.Warnf("using in-memory repositories, data is lost on restart")
		users = usermemory.NewUserRepository()
		posts = postmemory.NewPostRepository()
	default:
		db, err := cfg.InitDB()
		if err != nil {
			hlog.Fatalf("failed to initialize database: %v", err)
		}
		if err := database.MigrateGorm(ctx, db); err != nil {
			hlog.Fatalf("failed to migrate database: %v", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			hlog.Fatalf("failed to get database instance: %v", err)
		}
		closers = append(closers, sqlDB.Close)
		checkers = append(checkers, handler.Checker{Name: "database", IsCore: true, Check: sqlDB.PingContext})

		// 注入到DAO层
		users = userimpl.NewGormUserRepository(db)
		posts = postimpl.NewGormPostRepository(db)
	}

	// Redis 可选：吊销列表与限流在多实例间共享
	rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		hlog.Fatalf("failed to initialize redis: %v", err)
	}
	tokenOpts := []token.Option{}
	if rdb != nil {
		closers = append(closers, rdb.Close)
		checkers = append(checkers, handler.Checker{
			Name:   "redis",
			IsCore: true,
			Check:  func(c context.Context) error { return rdb.Ping(c).Err() },
		})
		tokenOpts = append(tokenOpts, token.WithDenylist(token.NewRedisDenylist(rdb)))
	}

	tokens, err := token.NewService(token.Options{
		Secret:        cfg.Middleware.JWT.Secret,
		Lifetime:      cfg.Middleware.JWT.ExpireDuration,
		Issuer:        cfg.Middleware.JWT.Issuer,
		SigningMethod: cfg.Middleware.JWT.SigningMethod,
	}, users, tokenOpts...)
	if err != nil {
		hlog.Fatalf("failed to initialize token service: %v", err)
	}

	deps := router.Dependencies{
		Users:   userservice.NewUserService(users, password.NewBcryptHasher(bcrypt.DefaultCost), tokens),
		Posts:   postservice.NewPostService(posts, postservice.WithPaging(cfg.Paging.DefaultSize, cfg.Paging.MaxSize)),
		Tokens:  tokens,
		Limiter: newLimiter(cfg.Middleware.RateLimit, rdb),
		Health:  checkers,
	}

	// 创建Hertz实例
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.OnShutdown = append(h.OnShutdown, func(context.Context) {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				hlog.Warnf("failed to release resource: %v", err)
			}
		}
	})

	// 注册路由
	router.RegisterAPIs(h, cfg, deps)

	hlog.Infof("mini-twitter listening on %s (env=%s, db=%s)", cfg.Server.Address, cfg.Env, cfg.Database.Driver)
	// 启动服务
	h.Spin()
}

// newLimiter rate<=0 时关闭限流；配置了 Redis 时使用共享令牌桶
func newLimiter(cfg config.RateLimitConfig, rdb *redis.Client) middleware.Limiter {
	if cfg.Rate <= 0 {
		return nil
	}
	if rdb != nil {
		return middleware.NewRedisLimiter(rdb, cfg.Rate, cfg.Interval)
	}
	return middleware.NewTokenBucket(cfg.Rate, cfg.Interval)
}
