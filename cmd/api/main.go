package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"solana-arb-adapter/internal/audit"
	"solana-arb-adapter/internal/config"
	"solana-arb-adapter/internal/jupiter"
	"solana-arb-adapter/internal/server"
	"solana-arb-adapter/internal/swap"
)

// loadEnv loads .env from the project root before anything reads os.Getenv
func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	}
}

// buildClient maps the loaded configuration onto one of the five tier
// constructors. Configuration conflicts were already caught by Validate.
func buildClient(cfg *config.Config) (*jupiter.Client, error) {
	var fee *jupiter.IntegratorFee
	if cfg.IntegratorFeeAccount != "" {
		fee = &jupiter.IntegratorFee{
			FeeBps:     uint16(cfg.IntegratorFeeBps),
			FeeAccount: cfg.IntegratorFeeAccount,
		}
	}

	switch cfg.JupiterTier {
	case "pro":
		return jupiter.NewProClient(cfg.JupiterAPIKey)
	case "lite":
		return jupiter.NewLiteClient()
	case "ultra":
		return jupiter.NewUltraClient(cfg.JupiterAPIKey)
	case "self-hosted":
		return jupiter.NewSelfHostedClient(cfg.JupiterBaseURL, jupiter.YellowstoneConfig{
			GRPCEndpoint: cfg.YellowstoneEndpoint,
			XToken:       cfg.YellowstoneToken,
		}, fee)
	default:
		base := cfg.JupiterBaseURL
		if base == "" {
			base = jupiter.PublicBaseURL
		}
		return jupiter.NewClientWithConfig(base, cfg.JupiterAPIKey, jupiter.APITypePublic, fee, nil)
	}
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	client, err := buildClient(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to build aggregator client")
	}
	client.WithLogger(logger)

	orchestrator := swap.NewOrchestrator(client).WithLogger(logger)

	// Audit sinks are optional; swap execution works without them.
	var redisAudit *audit.RedisAudit
	if cfg.RedisAddr != "" {
		rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rclient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Fatal("failed to connect to Redis")
		}
		redisAudit = audit.NewRedisAuditFromClient(rclient, logger)
	}

	var chAudit *audit.ClickHouseAudit
	if cfg.ClickHouseAddr != "" {
		ch, err := audit.NewClickHouseAudit(ctx, audit.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to ClickHouse")
		}
		chAudit = ch
		defer chAudit.Close()
	}

	orchestrator.WithAudit(redisAudit, chAudit)

	handlers := &server.Handlers{
		Jupiter:      client,
		Orchestrator: orchestrator,
		Audit:        redisAudit,
		DevMode:      cfg.DevMode,
		Logger:       logger,
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: handlers,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create server")
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr": cfg.APIAddr,
			"tier": client.APIType(),
		}).Info("starting API server")
		if err := srv.Start(); err != nil {
			logger.WithError(err).Info("server stopped")
		}
	}()

	<-sigCh
	logger.Info("shutting down")

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("shutdown failed")
	}
	_ = srv.WaitClosed(ctx)

	if redisAudit != nil {
		_ = redisAudit.Close()
	}
}
