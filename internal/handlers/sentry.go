package handlers

import (
	"time"

	"skillswap-backend/internal/config"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

var sentryEnabled bool

// SetupSentry initializes Sentry error reporting when a DSN is configured.
func SetupSentry(e *echo.Echo, cfg *config.Config) {
	if cfg.Sentry.DSN == "" {
		e.Logger.Warn("SENTRY_DSN not configured, error reporting will be disabled")
		return
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		TracesSampleRate: 0.2,
	}); err != nil {
		e.Logger.Errorf("Failed to initialize Sentry: %v", err)
		return
	}

	sentryEnabled = true
	e.Use(sentryecho.New(sentryecho.Options{
		Repanic: true,
		Timeout: 3 * time.Second,
	}))
}

// CaptureError reports an error to Sentry. No-op when Sentry is disabled.
func CaptureError(err error) {
	if !sentryEnabled || err == nil {
		return
	}
	sentry.CaptureException(err)
}
