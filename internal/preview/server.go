// Package preview serves the built site locally and rebuilds it when the
// content directory changes.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sitenav/internal/build"
	"git.home.luguber.info/inful/sitenav/internal/config"
	"git.home.luguber.info/inful/sitenav/internal/logfields"
	"git.home.luguber.info/inful/sitenav/internal/metrics"
)

// Server is the local preview server.
type Server struct {
	cfg      *config.Config
	builder  *build.Builder
	recorder metrics.Recorder
	promRec  *metrics.PrometheusRecorder
	httpSrv  *http.Server
}

// NewServer creates a preview server for the given configuration.
func NewServer(cfg *config.Config) *Server {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var promRec *metrics.PrometheusRecorder
	if cfg.Preview.Metrics {
		promRec = metrics.NewPrometheusRecorder(nil)
		recorder = promRec
	}
	return &Server{
		cfg:      cfg,
		builder:  build.NewBuilder(cfg, recorder, nil),
		recorder: recorder,
		promRec:  promRec,
	}
}

// Run performs an initial build, starts the HTTP server and the file watcher,
// and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.builder.Build(ctx, build.Options{}); err != nil {
		// Keep serving: the author fixes the content and the watcher rebuilds.
		slog.Error("Initial build failed", logfields.Error(err))
	}

	if err := s.startHTTP(); err != nil {
		return err
	}

	watcher, err := newWatcher(s.cfg.Content.Directory, func() {
		s.rebuild(ctx, "file change")
	})
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	scheduler, err := s.startScheduler(ctx)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				slog.Warn("Scheduler shutdown error", logfields.Error(err))
			}
		}()
	}

	slog.Info("Preview server listening",
		slog.Int("port", s.cfg.Preview.Port),
		slog.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.Preview.Port)))

	if err := watcher.Run(ctx); err != nil {
		return err
	}
	return s.stopHTTP()
}

func (s *Server) rebuild(ctx context.Context, reason string) {
	slog.Info("Rebuilding site", slog.String("reason", reason))
	if _, err := s.builder.Build(ctx, build.Options{}); err != nil {
		slog.Warn("Rebuild failed", logfields.Error(err))
	}
}

func (s *Server) startHTTP() error {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.Output.Directory)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.promRec != nil {
		mux.Handle("/metrics", s.promRec.HTTPHandler())
	}

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Preview.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", logfields.Error(err))
		}
	}()
	return nil
}

func (s *Server) stopHTTP() error {
	if s.httpSrv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}
