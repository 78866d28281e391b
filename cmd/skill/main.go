package main

import (
	"bitbucket.org/sotavant/caster-skill/internal/logger"
	"bitbucket.org/sotavant/caster-skill/internal/notifier"
	"bitbucket.org/sotavant/caster-skill/internal/skill"
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	cfg, err := parseFlags(os.Args, os.Getenv)
	if err != nil {
		panic(err)
	}
	if err := run(cfg); err != nil {
		panic(err)
	}
}

func gzipMiddleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ow := w

		acceptEncoding := r.Header.Get("Accept-Encoding")
		supportGzip := strings.Contains(acceptEncoding, "gzip")

		if supportGzip {
			cw := newCompressWriter(w)
			ow = cw
			defer func(cw *compressWriter) {
				if err := cw.Close(); err != nil {
					logger.Log.Debug("compressWriterError", zap.Error(err))
				}
			}(cw)
		}

		contentEncoding := r.Header.Get("Content-Encoding")

		sendsGzip := strings.Contains(contentEncoding, "gzip")
		if sendsGzip {
			cr, err := newCompressReader(r.Body)
			if err != nil {
				logger.Log.Debug("newCompressReaderError", zap.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			r.Body = cr
			defer func(cr *compressReader) {
				if err := cr.Close(); err != nil {
					logger.Log.Debug("closeCompressReaderError", zap.Error(err))
				}
			}(cr)
		}

		h.ServeHTTP(ow, r)
	}
}

func newRouter(a *app, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(logger.RequestLogger)

	r.Post("/", gzipMiddleware(a.webhook))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}

func newNotifier(cfg notifier.TriggerConfig, m *skill.Metrics) (notifier.Notifier, func()) {
	if cfg.Key == "" {
		logger.Log.Warn("webhook key is not set, notifications are disabled")
		return notifier.Nop{}, func() {}
	}

	t := notifier.NewTrigger(cfg, notifier.WithOutcomeHook(m.ObserveNotification))
	return t, t.Wait
}

func run(cfg config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Log.Sync() //nolint:errcheck

	reg := prometheus.NewRegistry()
	metrics := skill.NewMetrics(reg)

	n, waitNotifications := newNotifier(cfg.Webhook, metrics)
	d := skill.New(cfg.Skill, n, skill.WithMetrics(metrics))

	srv := &http.Server{
		Addr:              cfg.RunAddr,
		Handler:           newRouter(newApp(d), reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Log.Info("Running server",
			zap.String("address", cfg.RunAddr),
			zap.Strings("intents", d.Intents()),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	waitNotifications()
	return err
}
