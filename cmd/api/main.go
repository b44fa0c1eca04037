package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/kekec/storefront/internal/config"
	"github.com/kekec/storefront/internal/logging"
	"github.com/kekec/storefront/internal/media"
	miniorepo "github.com/kekec/storefront/internal/repository/minio"
	"github.com/kekec/storefront/internal/repository/postgres"
	"github.com/kekec/storefront/internal/service"
	transporthttp "github.com/kekec/storefront/internal/transport/http"
	"github.com/kekec/storefront/internal/transport/mail"
	"github.com/kekec/storefront/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer db.Close()

	minioClient, err := miniorepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect to minio: %v", err)
	}
	storage := miniorepo.NewStorage(minioClient, cfg.MinIOPublicURL, cfg.MinIOUseSSL)

	sessionTTL := parseDurationOr(cfg.SessionTTL, 24*time.Hour)
	resetTTL := parseDurationOr(cfg.PasswordResetTTL, 30*time.Minute)

	sessions := util.NewSessionManager(cfg.JWTSecret, sessionTTL)
	mailer := mail.NewResetMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	userRepo := postgres.NewUserRepo(db)
	tokenRepo := postgres.NewResetTokenRepo(db)
	productRepo := postgres.NewProductRepo(db)

	accounts := service.NewAccountService(userRepo, sessions)
	resets := service.NewPasswordResetService(userRepo, tokenRepo, mailer, cfg.ClientURL, resetTTL)
	products := service.NewProductService(productRepo, storage, service.ProductServiceConfig{
		Bucket:        cfg.MinIOBucketProducts,
		MaxImageBytes: cfg.ProductImageMaxBytes,
		Validator:     media.NewValidator(0),
	})

	e := transporthttp.NewRouter(cfg.AllowOrigins)
	transporthttp.RegisterUsers(e, accounts, resets)
	transporthttp.RegisterProducts(e, accounts, products)
	transporthttp.RegisterSwagger(e)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
