// Package main wires high-level dependencies, exposes the HTTP router, and
// keeps the server lifecycle small. Business logic lives in internal
// services packages.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"folio/internal/audit"
	"folio/internal/mfa"
	mfametrics "folio/internal/mfa/metrics"
	"folio/internal/nominee/draft"
	nomineemetrics "folio/internal/nominee/metrics"
	"folio/internal/nominee/service"
	"folio/internal/nominee/tracer"
	"folio/internal/platform/config"
	"folio/internal/platform/logger"
	"folio/internal/platform/middleware"
	httptransport "folio/internal/transport/http"
	"folio/internal/upstream"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing folio",
		"addr", cfg.Addr,
		"upstream", cfg.UpstreamBaseURL,
	)

	auditStore := audit.NewInMemoryStore()
	auditPublisher := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(256),
		audit.WithPublisherLogger(log),
	)
	defer auditPublisher.Close()

	backend := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, cfg.UpstreamTimeout,
		upstream.WithClientLogger(log),
	)

	sessions := mfa.NewManager(upstream.NewMFAClient(backend),
		mfa.WithLogger(log),
		mfa.WithMetrics(mfametrics.New()),
		mfa.WithAuditPublisher(auditPublisher),
		mfa.WithTokenTTL(cfg.MFATokenTTL),
		mfa.WithResendCooldown(cfg.ResendCooldown),
	)

	nmetrics := nomineemetrics.New()
	drafts := draft.New(
		draft.WithMaxActive(cfg.MaxNominees),
		draft.WithLogger(log),
		draft.WithMetrics(nmetrics),
	)

	nominees := service.NewService(upstream.NewNomineeClient(backend), sessions, drafts,
		service.WithLogger(log),
		service.WithMetrics(nmetrics),
		service.WithTracer(tracer.NewOTel()),
		service.WithAuditPublisher(auditPublisher),
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Nominees:       httptransport.NewNomineeHandler(nominees, drafts, log),
		MFA:            httptransport.NewMFAHandler(sessions, log),
		Authenticator:  middleware.NewAuthenticator(cfg.JWTSigningKey),
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
