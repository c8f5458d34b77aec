package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	pgrepo "github.com/clinicore/prescriptions-api/internal/adapters/db/postgres"
	redisrepo "github.com/clinicore/prescriptions-api/internal/adapters/db/redis"
	"github.com/clinicore/prescriptions-api/internal/app/admin"
	"github.com/clinicore/prescriptions-api/internal/app/auth/jwt"
	"github.com/clinicore/prescriptions-api/internal/app/auth/revocation"
	authsvc "github.com/clinicore/prescriptions-api/internal/app/auth/service"
	"github.com/clinicore/prescriptions-api/internal/app/directory"
	"github.com/clinicore/prescriptions-api/internal/app/prescriptions"
	"github.com/clinicore/prescriptions-api/internal/config"
	lg "github.com/clinicore/prescriptions-api/internal/infra/log"
	"github.com/clinicore/prescriptions-api/internal/infra/migrate"
	"github.com/clinicore/prescriptions-api/internal/infra/obs"
	httpapi "github.com/clinicore/prescriptions-api/internal/transport/http"
	"github.com/clinicore/prescriptions-api/internal/transport/http/middleware"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.UsingFallbackSecrets() {
		zapLog.Warn("JWT signing secrets are development fallbacks; set JWT_SECRET and JWT_REFRESH_SECRET")
	}

	db, err := gorm.Open(gormpostgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	// the in-process registry is the default; redis makes revocation
	// visible across replicas
	var registry revocation.Registry = revocation.NewMemoryRegistry()
	if cfg.RedisAddr != "" {
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()
		registry = redisrepo.New(redisCli, cfg.RefreshTokenTTL)
		zapLog.Info("revocation registry backed by redis", zap.String("addr", cfg.RedisAddr))
	}

	validate := validator.New()

	userRepo := pgrepo.NewUserRepo(db)
	doctorRepo := pgrepo.NewDoctorRepo(db)
	patientRepo := pgrepo.NewPatientRepo(db)
	prescriptionRepo := pgrepo.NewPrescriptionRepo(db)

	issuer := jwt.NewTokenIssuer(
		cfg.JWTAccessSecret, cfg.JWTRefreshSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)

	obs.Init()

	router := httpapi.NewRouter(httpapi.Options{
		Log:            zapLog,
		AllowedOrigins: cfg.AllowedOrigins,
		Auth:           authsvc.New(userRepo, registry, issuer, validate, zapLog),
		Prescriptions:  prescriptions.New(prescriptionRepo, patientRepo, validate),
		Admin:          admin.New(userRepo, doctorRepo, patientRepo, prescriptionRepo),
		Directory:      directory.New(doctorRepo, patientRepo),
		MetricsHandler: obs.Handler(),
		Extra: []gin.HandlerFunc{
			middleware.RateLimitPerIP(50, 100, 10_000, time.Hour),
			obs.Instrument(),
		},
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	rootCtx, cancel := context.WithCancel(context.Background())
	g, _ := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		zapLog.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutdown signal received")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
