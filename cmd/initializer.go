package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"varirunBack/internal/config"
	"varirunBack/internal/handlers"
	"varirunBack/internal/onepay"
	"varirunBack/internal/repositories"
	"varirunBack/internal/services"
	"varirunBack/utils"
)

const lockTries = 3

type application struct {
	log    zerolog.Logger
	db     *sql.DB
	tokens *utils.Manager
	hub    *NotificationHub

	authHandler      *handlers.AuthHandler
	packageHandler   *handlers.PackageHandler
	paymentHandler   *handlers.PaymentHandler
	runResultHandler *handlers.RunResultHandler
	rankingHandler   *handlers.RankingHandler
	summaryHandler   *handlers.SummaryHandler
	profileHandler   *handlers.ProfileHandler

	rankingService *services.RankingService
	uploadDir      string
}

func initializeApp(cfg config.Config, db *sql.DB, rdb *redis.Client, log zerolog.Logger) (*application, error) {
	tokens, err := utils.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return nil, err
	}
	images, err := newImageStore(cfg)
	if err != nil {
		return nil, err
	}
	hub := NewNotificationHub(log)

	// Repositories
	tx := &repositories.TxManager{DB: db}
	packageRepo := &repositories.PackageRepository{DB: db}
	paymentRepo := &repositories.ManualPaymentRepository{DB: db}
	userPackageRepo := &repositories.UserPackageRepository{DB: db}
	userRepo := &repositories.UserRepository{DB: db}
	runResultRepo := &repositories.RunResultRepository{DB: db}
	rankingRepo := &repositories.RankingRepository{DB: db}
	summaryRepo := &repositories.SummaryRepository{DB: db}

	// Redis backed helpers stay nil interfaces when Redis is not configured.
	var (
		locker services.Locker
		cache  services.LeaderboardCache
	)
	if rdb != nil {
		locker = repositories.NewRedisLocker(rdb, cfg.Lock.Expiry, lockTries, log)
		cache = &repositories.LeaderboardCache{Client: rdb}
	}

	gateway := onepay.NewClient(&http.Client{Timeout: cfg.OnePay.Timeout}, cfg.OnePay.BaseURL, cfg.OnePay.MCID)

	// Services
	ids := &services.IDGenerator{Store: userPackageRepo}
	assigner := &services.PackageAssigner{UserPackages: userPackageRepo, Users: userRepo, IDs: ids}
	paymentService := &services.ManualPaymentService{
		Tx:       tx,
		Payments: paymentRepo,
		Packages: packageRepo,
		Assigner: assigner,
		Images:   images,
		Locker:   locker,
		Notifier: hub,
		Log:      log.With().Str("component", "manual_payment").Logger(),
	}
	runResultService := &services.RunResultService{
		Tx:       tx,
		Results:  runResultRepo,
		Rankings: rankingRepo,
		Images:   images,
		Cache:    cache,
		Locker:   locker,
		Notifier: hub,
		Log:      log.With().Str("component", "run_result").Logger(),
	}
	qrService := &services.QRPaymentService{
		Tx:           tx,
		Packages:     packageRepo,
		UserPackages: userPackageRepo,
		Assigner:     assigner,
		IDs:          ids,
		Gateway:      gateway,
		Notifier:     hub,
		Log:          log.With().Str("component", "qr_payment").Logger(),
	}
	rankingService := &services.RankingService{
		Rankings: rankingRepo,
		Cache:    cache,
		MaxTop:   cfg.Leaderboard.Size,
		Log:      log.With().Str("component", "ranking").Logger(),
	}

	// Handlers
	app := &application{
		log:    log,
		db:     db,
		tokens: tokens,
		hub:    hub,

		authHandler:      &handlers.AuthHandler{Service: &services.AuthService{Users: userRepo, Tokens: tokens}},
		packageHandler:   &handlers.PackageHandler{Service: &services.PackageService{Packages: packageRepo, UserPackages: userPackageRepo}, QR: qrService},
		paymentHandler:   &handlers.PaymentHandler{Service: paymentService, MaxUpload: cfg.Upload.MaxBytes},
		runResultHandler: &handlers.RunResultHandler{Service: runResultService, MaxUpload: cfg.Upload.MaxBytes},
		rankingHandler:   &handlers.RankingHandler{Service: rankingService},
		summaryHandler:   &handlers.SummaryHandler{Service: &services.SummaryService{Summary: summaryRepo}},
		profileHandler:   &handlers.ProfileHandler{Service: &services.ProfileService{
			Users:        userRepo,
			Rankings:     rankingRepo,
			UserPackages: userPackageRepo,
			Payments:     paymentRepo,
		}},

		rankingService: rankingService,
	}
	if cfg.Storage.Driver == "local" {
		app.uploadDir = cfg.Storage.Dir
	}
	return app, nil
}

func newImageStore(cfg config.Config) (services.ImageStore, error) {
	if cfg.Storage.Driver == "s3" {
		s3cfg := cfg.Storage.S3
		return utils.NewS3Storage(utils.S3Config{
			Endpoint:  s3cfg.Endpoint,
			Region:    s3cfg.Region,
			Bucket:    s3cfg.Bucket,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			PublicURL: s3cfg.PublicURL,
		})
	}
	return &utils.LocalStorage{Dir: cfg.Storage.Dir, BaseURL: cfg.Storage.BaseURL}, nil
}

// openDB connects to MySQL. Affected-row counts report matched rows so that
// conditional updates writing unchanged values are not mistaken for misses.
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	mysqlCfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	mysqlCfg.ClientFoundRows = true
	mysqlCfg.ParseTime = true

	connector, err := mysql.NewConnector(mysqlCfg)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	db.SetMaxIdleConns(35)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// openRedis returns nil when no address is configured.
func openRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
