package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"veridoc/internal/config"
	"veridoc/internal/crypt"
	"veridoc/internal/extract"
	"veridoc/internal/gateway"
	_ "veridoc/internal/gateway/fireworks"
	_ "veridoc/internal/gateway/openai"
	"veridoc/internal/handler"
	"veridoc/internal/port"
	"veridoc/internal/repository/postgres"
	"veridoc/internal/router"
	"veridoc/internal/service"
	s3storage "veridoc/internal/storage/s3"
	"veridoc/internal/verify"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	caseRepo := postgres.NewCaseRepo(db)

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	gw, err := buildGateway(&cfg.Gateway)
	if err != nil {
		return fmt.Errorf("failed to initialize model gateway: %w", err)
	}

	var box *crypt.Box
	if cfg.CaseStore.EncryptionKey != "" {
		box, err = crypt.NewBox(cfg.CaseStore.EncryptionKey)
		if err != nil {
			return fmt.Errorf("failed to initialize payload encryption: %w", err)
		}
	}

	// Verification pipeline
	extractor := extract.NewExtractor(gw, extract.ParseStrategy(cfg.Extract.Strategy))
	validator := verify.NewValidator()
	var matcher verify.NameMatcher = verify.ExactTokenSetMatcher{}
	if cfg.Consistency.NameMatcher == "model" {
		matcher = verify.NewModelAssistedMatcher(gw)
	}
	consistency := verify.NewConsistencyChecker(matcher)
	typeInfer := verify.NewTypeInferencer(gw)
	assessor := verify.NewAssessor(gw)

	verifySvc := service.NewVerificationService(extractor, validator, consistency, typeInfer, assessor)
	caseSvc := service.NewCaseService(caseRepo, s3Client, verifySvc, box, &cfg.S3)

	verifyH := handler.NewVerifyHandler(verifySvc, cfg.S3.MaxFileSizeMB)
	caseH := handler.NewCaseHandler(caseSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, verifyH, caseH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background verification worker
	worker := service.NewVerifyQueueWorker(caseRepo, caseSvc, service.VerifyQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		stop()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone
	return nil
}

// buildGateway constructs the primary model gateway, wrapping it in a
// fallback chain when a secondary provider is configured.
func buildGateway(cfg *config.GatewayConfig) (port.ModelGateway, error) {
	primary, err := gateway.NewGateway(&cfg.Primary)
	if err != nil {
		return nil, err
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}

	secondary, err := gateway.NewGateway(secondaryCfg)
	if err != nil {
		return nil, err
	}

	return gateway.NewFallbackGateway(
		[]port.ModelGateway{primary, secondary},
		[]string{cfg.Primary.Provider, secondaryCfg.Provider},
	), nil
}
