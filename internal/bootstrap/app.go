package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio-backend/internal/cachesync"
	"portfolio-backend/internal/content"
	"portfolio-backend/internal/dashboard"
	"portfolio-backend/internal/files"
	"portfolio-backend/internal/notify"
	"portfolio-backend/internal/remote"
	localstore "portfolio-backend/internal/remote/blob/local"
	s3store "portfolio-backend/internal/remote/blob/s3"
	"portfolio-backend/internal/remote/memory"
	"portfolio-backend/internal/remote/sqlstore"
	"portfolio-backend/internal/services/health"
	"portfolio-backend/internal/session"
	"portfolio-backend/internal/shared/config"
	"portfolio-backend/internal/shared/server"
	"portfolio-backend/internal/shared/storage/db"
	"portfolio-backend/internal/shared/telemetry"
	"portfolio-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine

	DB       *sql.DB
	DBDriver string
	UserPool *pgxpool.Pool
	Redis    *redis.Client
	NATS     *nats.Conn

	Blobs    remote.BlobStore
	Content  *content.Registry
	Files    *files.Registry
	Users    *users.Service
	Sessions *session.Manager
	Health   *health.Service

	Bus       *cachesync.Bus
	Scheduler *cachesync.Scheduler
}

// Build prepares every dependency and the router. Caches are not loaded
// until Start.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg, Health: health.NewService()}

	if err := app.buildRecords(ctx); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.buildBlobs(ctx); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.buildMessaging(); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.buildServices(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) buildRecords(ctx context.Context) error {
	cfg := a.Config
	switch cfg.RecordStoreType {
	case "postgres":
		sqlDB, err := db.Connect(ctx, db.DriverPostgres, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return err
		}
		a.DB, a.DBDriver = sqlDB, db.DriverPostgres
		pool, err := users.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.UserPool = pool
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" && cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		sqlDB, err := db.Connect(ctx, db.DriverSQLite, cfg.SQLitePath, db.SQLiteOptions())
		if err != nil {
			return err
		}
		a.DB, a.DBDriver = sqlDB, db.DriverSQLite
	default:
		if !config.IsDevLike(cfg.Env) {
			telemetry.L().Warn("bootstrap.memory_records", zap.String("env", cfg.Env))
		}
		return nil
	}

	if err := db.RunMigrations(ctx, a.DB, a.DBDriver); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	a.Health.Register("database", a.DB.PingContext)
	return nil
}

func (a *App) buildBlobs(ctx context.Context) error {
	cfg := a.Config
	switch cfg.BlobStoreType {
	case "s3":
		store, err := s3store.New(ctx, s3store.Options{
			Region:        cfg.AWSRegion,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			KMSKeyID:      cfg.SSEKMSKeyID,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return err
		}
		a.Blobs = store
	default:
		a.Blobs = localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL, cfg.StorageBucket)
	}
	return nil
}

func (a *App) buildMessaging() error {
	if strings.TrimSpace(a.Config.NATSURL) == "" {
		return nil
	}
	conn, err := nats.Connect(a.Config.NATSURL, nats.Name("portfolio-backend"))
	if err != nil {
		if config.IsDevLike(a.Config.Env) {
			telemetry.L().Warn("bootstrap.nats_unavailable", zap.Error(err))
			return nil
		}
		return fmt.Errorf("connect nats: %w", err)
	}
	a.NATS = conn
	a.Bus = cachesync.NewBus(conn)
	a.Health.Register("nats", func(context.Context) error {
		if !conn.IsConnected() {
			return errors.New(conn.Status().String())
		}
		return nil
	})
	return nil
}

func (a *App) buildServices(ctx context.Context) error {
	cfg := a.Config

	notifier := notify.Multi{notify.LogSink{}, notify.RequestSink{}}
	if a.NATS != nil {
		notifier = append(notifier, notify.NewPublisher(a.NATS, ""))
	}

	var hooks content.HookFactory
	var fileOpts []files.Option
	if a.Bus != nil {
		hooks = func(collection string) content.ChangeHook { return a.Bus.Hook(collection) }
		fileOpts = append(fileOpts, files.WithChangeHook(a.Bus.Hook("files")))
	}

	var dialect sqlstore.Dialect
	if a.DB != nil {
		d, err := sqlstore.DialectFor(cfg.RecordStoreType)
		if err != nil {
			return err
		}
		dialect = d
	}
	a.Content = content.NewRegistry(content.Tables{
		Projects:   newTable(a.DB, dialect, content.ProjectSchema),
		Experience: newTable(a.DB, dialect, content.ExperienceSchema),
		Skills:     newTable(a.DB, dialect, content.SkillSchema),
	}, notifier, hooks)
	a.Files = files.NewRegistry(newTable(a.DB, dialect, files.Schema), a.Blobs, notifier, fileOpts...)

	var userRepo users.Repo
	switch {
	case a.UserPool != nil:
		userRepo = &users.PGRepo{Pool: a.UserPool}
	case a.DB != nil:
		userRepo = &users.SQLiteRepo{DB: a.DB}
	default:
		userRepo = users.NewMemoryRepo()
	}
	a.Users = users.NewService(userRepo)
	if err := a.seedAdmin(ctx); err != nil {
		return err
	}

	store, err := a.sessionStore(ctx)
	if err != nil {
		return err
	}
	secret := cfg.JWTSecret
	if secret == "" {
		if !config.IsDevLike(cfg.Env) {
			return errors.New("JWT_SECRET is required")
		}
		secret = uuid.NewString() + uuid.NewString()
		telemetry.L().Warn("bootstrap.ephemeral_jwt_secret")
	}
	tokens, err := session.NewTokens(secret, cfg.SessionTTL)
	if err != nil {
		return err
	}
	a.Sessions = session.NewManager(a.Users, tokens, store, notifier, cfg.SessionCheckTimeout)
	authHandler := session.NewHandler(a.Sessions, !config.IsDevLike(cfg.Env))

	var google *session.GoogleSignIn
	if cfg.GoogleClientID != "" {
		google = session.NewGoogleSignIn(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL, authHandler, a.Users)
	}

	a.Scheduler, err = cachesync.NewScheduler(cfg.CacheRefreshSchedule, a.Collections(), a.Refetch)
	if err != nil {
		return err
	}

	deps := server.RouterDeps{
		Config:    cfg,
		Sessions:  a.Sessions,
		Auth:      authHandler,
		Google:    google,
		Content:   content.NewHandler(a.Content),
		Files:     files.NewHandler(a.Files, cfg.MaxUploadBytes, cfg.PublicBaseURL),
		Dashboard: dashboard.NewService(a.Content, a.Files),
		Health:    a.Health,
	}
	if local, ok := a.Blobs.(*localstore.Store); ok {
		deps.LocalBlobs = local
	}
	a.Router = server.NewRouter(deps)
	return nil
}

func (a *App) sessionStore(ctx context.Context) (session.Store, error) {
	if strings.TrimSpace(a.Config.RedisURL) == "" {
		if !config.IsDevLike(a.Config.Env) {
			telemetry.L().Warn("bootstrap.memory_sessions", zap.String("env", a.Config.Env))
		}
		return session.NewMemoryStore(), nil
	}
	client, err := session.NewRedisClient(ctx, a.Config.RedisURL)
	if err != nil {
		return nil, err
	}
	a.Redis = client
	a.Health.Register("redis", func(ctx context.Context) error { return client.Ping(ctx).Err() })
	return session.NewRedisStore(client), nil
}

// seedAdmin creates the configured admin account on an empty users table.
func (a *App) seedAdmin(ctx context.Context) error {
	if a.Config.AdminEmail == "" || a.Config.AdminPassword == "" {
		return nil
	}
	n, err := a.Users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	u, err := a.Users.CreateAdmin(ctx, a.Config.AdminEmail, a.Config.AdminName, a.Config.AdminPassword)
	if errors.Is(err, users.ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	telemetry.L().Info("bootstrap.admin_seeded", zap.String("user_id", u.ID))
	return nil
}

func newTable[T any](sqlDB *sql.DB, dialect sqlstore.Dialect, schema remote.Schema[T]) remote.Table[T] {
	if sqlDB == nil {
		return memory.NewTable(schema)
	}
	return sqlstore.NewTable(sqlDB, dialect, schema)
}

// Collections names every cached collection.
func (a *App) Collections() []string {
	return []string{
		content.ProjectKind.Name,
		content.ExperienceKind.Name,
		content.SkillKind.Name,
		a.Files.Name(),
	}
}

// Refetch re-derives one collection's cache from the remote store.
func (a *App) Refetch(ctx context.Context, collection string) error {
	if collection == a.Files.Name() {
		return a.Files.FetchAll(ctx)
	}
	return a.Content.Fetch(ctx, collection)
}

// Load performs the initial fetch of every cache. Failures leave the cache
// empty and are reported through notifications and the returned error.
func (a *App) Load(ctx context.Context) error {
	return errors.Join(a.Content.FetchAll(ctx), a.Files.FetchAll(ctx))
}

// Start loads the caches, subscribes to peer change events and starts the
// resync schedule. Background work stops when ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	if err := a.Load(ctx); err != nil {
		telemetry.L().Warn("bootstrap.initial_load_failed", zap.Error(err))
	}
	if a.Bus != nil {
		if _, err := a.Bus.Listen(ctx, a.Refetch); err != nil {
			return err
		}
	}
	a.Scheduler.Start()
	return nil
}

// Close releases every connection. It is safe to call on a partially built App.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop(context.Background())
	}
	if a.NATS != nil {
		_ = a.NATS.Drain()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.UserPool != nil {
		a.UserPool.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
