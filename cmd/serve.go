package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matchbox-ai/outreach-cli/internal/discovery"
	"github.com/matchbox-ai/outreach-cli/internal/intake"
	"github.com/matchbox-ai/outreach-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the campaign intake server",
	Long:  "Accepts campaign briefs over HTTP and runs discovery asynchronously. Results land in the run store.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		r.Post("/campaign", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Brief string `json:"brief"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if body.Brief == "" {
				http.Error(w, `{"error":"brief is required"}`, http.StatusBadRequest)
				return
			}

			campaign, err := intake.ExtractCampaign(req.Context(), e.AI, body.Brief)
			if err != nil {
				zap.L().Warn("brief extraction failed", zap.Error(err))
				http.Error(w, `{"error":"could not extract campaign from brief"}`, http.StatusUnprocessableEntity)
				return
			}

			run, err := e.Store.CreateRun(req.Context(), *campaign)
			if err != nil {
				zap.L().Error("run create failed", zap.Error(err))
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}

			// Discovery runs in the background; the run store carries the result.
			go func() {
				_ = e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning)

				pipeline := discovery.NewPipeline(e.Search, e.AI, cfg.Discovery, discovery.Reporter{})
				creators, err := pipeline.Discover(ctx, *campaign)
				if err != nil {
					zap.L().Error("discovery failed",
						zap.String("run_id", run.ID),
						zap.Error(err),
					)
					_ = e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
					return
				}

				if err := e.Store.SaveCreators(ctx, run.ID, creators); err != nil {
					zap.L().Error("creator save failed", zap.String("run_id", run.ID), zap.Error(err))
					_ = e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
					return
				}
				_ = e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusComplete)
				zap.L().Info("discovery run complete",
					zap.String("run_id", run.ID),
					zap.Int("creators", len(creators)),
				)
			}()

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "accepted",
				"run_id": run.ID,
			})
		})

		r.Get("/run/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, err := e.Store.GetRun(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				http.Error(w, `{"error":"run not found"}`, http.StatusNotFound)
				return
			}
			creators, err := e.Store.ListCreators(req.Context(), run.ID)
			if err != nil {
				zap.L().Error("creator list failed", zap.String("run_id", run.ID), zap.Error(err))
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"run":      run,
				"creators": creators,
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
