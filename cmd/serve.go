package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/policylab/fiscalsim/internal/montecarlo"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulation engine over HTTP",
	Long: `Exposes the engine as a small JSON API for interactive consumers:
POST /api/v1/simulate runs the active basket with per-request knobs and
returns the summary statistics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("scenario", "", "scenario YAML file (default: built-in basket)")
	rootCmd.AddCommand(serveCmd)
}

// simulateRequest carries the per-request run knobs. Absent fields fall
// back to the configured defaults; a null seed with "random_seed" set draws
// from entropy.
type simulateRequest struct {
	Simulations int      `json:"simulations,omitempty"`
	Threshold   *float64 `json:"threshold,omitempty"`
	Seed        *uint64  `json:"seed,omitempty"`
	RandomSeed  bool     `json:"random_seed,omitempty"`
	Workers     int      `json:"workers,omitempty"`
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "serve"))

	scenarioPath, _ := cmd.Flags().GetString("scenario")
	sc, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}
	set, err := sc.ParamSet()
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), int(cfg.Server.RateLimitRPS)+1)))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "scenario": sc.Name})
	})

	r.Get("/api/v1/scenario", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, sc)
	})

	r.Post("/api/v1/simulate", func(w http.ResponseWriter, req *http.Request) {
		var body simulateRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		opts := serveOptions(body)
		sample, err := montecarlo.Run(req.Context(), set, opts)
		if err != nil {
			writeEngineError(w, log, err)
			return
		}
		summary, err := montecarlo.Summarize(sample, opts.Threshold)
		if err != nil {
			writeEngineError(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving simulation API",
		zap.Int("port", cfg.Server.Port),
		zap.String("scenario", sc.Name),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "serve: listen")
	}
	return nil
}

// serveOptions merges request knobs over configured defaults.
func serveOptions(body simulateRequest) montecarlo.Options {
	opts := montecarlo.Options{
		Simulations: cfg.Sim.Simulations,
		Threshold:   cfg.Sim.Threshold,
		Seed:        montecarlo.FixedSeed(cfg.Sim.Seed),
		Workers:     cfg.Sim.Workers,
	}
	if body.Simulations != 0 {
		opts.Simulations = body.Simulations
	}
	if body.Threshold != nil {
		opts.Threshold = *body.Threshold
	}
	if body.Seed != nil {
		opts.Seed = body.Seed
	}
	if body.RandomSeed {
		opts.Seed = nil
	}
	if body.Workers != 0 {
		opts.Workers = body.Workers
	}
	return opts
}

// rateLimit applies a global limiter to every request.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeEngineError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, montecarlo.ErrInvalidArgument) || errors.Is(err, montecarlo.ErrEmptySample) {
		status = http.StatusBadRequest
	} else {
		log.Error("simulate failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
