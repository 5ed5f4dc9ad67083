package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/barzel-group/market-cli/internal/facts"
	"github.com/barzel-group/market-cli/internal/listing"
	"github.com/barzel-group/market-cli/internal/market"
	"github.com/barzel-group/market-cli/internal/scoring"
	"github.com/barzel-group/market-cli/internal/stats"
	"github.com/barzel-group/market-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve snapshots, coverage, and scores over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(s),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(s store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))
	if cfg.Server.RateLimit > 0 {
		r.Use(rateLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/datasets", func(w http.ResponseWriter, req *http.Request) {
			list, err := s.ListDatasets(req.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, list)
		})

		r.Get("/snapshot", withView(s, func(w http.ResponseWriter, _ listing.FactTable, view listing.FactTable) {
			writeJSON(w, http.StatusOK, market.BuildSnapshot(view))
		}))
		r.Get("/snapshots/{column}", func(w http.ResponseWriter, req *http.Request) {
			column := chi.URLParam(req, "column")
			withView(s, func(w http.ResponseWriter, _ listing.FactTable, view listing.FactTable) {
				groups := market.SnapshotsBy(view, column)
				if groups == nil {
					writeError(w, http.StatusBadRequest, eris.Errorf("unknown grouping column %q", column))
					return
				}
				writeJSON(w, http.StatusOK, groups)
			})(w, req)
		})
		r.Get("/coverage", withView(s, func(w http.ResponseWriter, _ listing.FactTable, view listing.FactTable) {
			writeJSON(w, http.StatusOK, stats.CoverageTable(view, facts.CanonicalColumns))
		}))
		r.Get("/score", withView(s, func(w http.ResponseWriter, all, view listing.FactTable) {
			writeJSON(w, http.StatusOK, scoring.Score(all, view))
		}))
		r.Get("/score/details", withView(s, func(w http.ResponseWriter, all, view listing.FactTable) {
			writeJSON(w, http.StatusOK, scoring.ScoreDetails(all, view))
		}))
		r.Get("/scores/districts", withView(s, func(w http.ResponseWriter, all, view listing.FactTable) {
			writeJSON(w, http.StatusOK, scoring.ScoresByDistrict(all, view, nil))
		}))
	})

	return r
}

// withView loads the dataset named by the request and slices it by the
// district query params; the handler gets both the full table and the view.
func withView(s store.Store, h func(w http.ResponseWriter, all, view listing.FactTable)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		name := req.URL.Query().Get("dataset")
		if name == "" {
			writeError(w, http.StatusBadRequest, eris.New("dataset query parameter is required"))
			return
		}
		d, err := s.GetDataset(req.Context(), name)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		view := d.Facts.WhereDistricts(req.URL.Query()["district"]...)
		h(w, d.Facts, view)
	}
}

// rateLimiter applies one shared token bucket to the API. The surface is
// read-only and cheap to recompute, so a global cap is enough.
func rateLimiter(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, eris.New("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
	if status >= 500 {
		zap.L().Error("request failed", zap.Error(err), zap.Int("status", status))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
