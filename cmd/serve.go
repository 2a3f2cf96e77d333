package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	cloudfirestore "cloud.google.com/go/firestore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/outstaffer/candidate-summary-api/internal/alpharun"
	"github.com/outstaffer/candidate-summary-api/internal/api"
	"github.com/outstaffer/candidate-summary-api/internal/bulk"
	"github.com/outstaffer/candidate-summary-api/internal/clock/system"
	"github.com/outstaffer/candidate-summary-api/internal/config"
	"github.com/outstaffer/candidate-summary-api/internal/fireflies"
	"github.com/outstaffer/candidate-summary-api/internal/gemini"
	"github.com/outstaffer/candidate-summary-api/internal/gmail"
	"github.com/outstaffer/candidate-summary-api/internal/id/uuid"
	"github.com/outstaffer/candidate-summary-api/internal/logging"
	"github.com/outstaffer/candidate-summary-api/internal/pipeline"
	"github.com/outstaffer/candidate-summary-api/internal/prompts"
	"github.com/outstaffer/candidate-summary-api/internal/quil"
	"github.com/outstaffer/candidate-summary-api/internal/recruitcrm"
	fsstore "github.com/outstaffer/candidate-summary-api/internal/store/firestore"
	"github.com/outstaffer/candidate-summary-api/internal/store/memory"
	"github.com/outstaffer/candidate-summary-api/internal/summary"
	"github.com/outstaffer/candidate-summary-api/internal/tasks"
	"github.com/outstaffer/candidate-summary-api/internal/worker"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

// dataStore is the storage surface the service needs. Both the Firestore and
// the in-memory implementations satisfy it.
type dataStore interface {
	summary.PromptStore
	summary.FeedbackStore
	summary.RunStore
	summary.ConfigStore
	summary.BulkJobStore
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	queue, closeQueue, err := newQueue(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeQueue()

	gen, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
	if err != nil {
		return err
	}

	ats := recruitcrm.New(recruitcrm.Options{
		BaseURL: cfg.RecruitCRM.BaseURL,
		APIKey:  cfg.RecruitCRM.APIKey,
		Timeout: time.Duration(cfg.RecruitCRM.TimeoutSeconds) * time.Second,
		Logger:  logger,
	})
	interviews := alpharun.New(alpharun.Options{
		BaseURL: cfg.AlphaRun.BaseURL,
		APIKey:  cfg.AlphaRun.APIKey,
		Timeout: time.Duration(cfg.AlphaRun.TimeoutSeconds) * time.Second,
		Logger:  logger,
	})
	transcripts := fireflies.New(fireflies.Options{
		Endpoint: cfg.Fireflies.Endpoint,
		APIKey:   cfg.Fireflies.APIKey,
		Timeout:  time.Duration(cfg.Fireflies.TimeoutSeconds) * time.Second,
		Logger:   logger,
	})

	selector := quil.NewSelector(gen, logger)
	registry := prompts.NewRegistry(store, logger)
	pipe := pipeline.New(ats, interviews, transcripts, selector, gen, registry, logger)

	clk := system.New()
	bulkSvc := bulk.New(bulk.Options{
		Pipeline:   pipe,
		ATS:        ats,
		Jobs:       store,
		Config:     store,
		IDs:        uuid.New(),
		Clock:      clk,
		Logger:     logger,
		QueueDepth: cfg.Bulk.QueueDepth,
	})
	go bulkSvc.Run(ctx)

	wk := worker.New(worker.Options{
		Pipeline:   pipe,
		ATS:        ats,
		Interviews: interviews,
		Selector:   selector,
		Config:     store,
		Runs:       store,
		Clock:      clk,
		Logger:     logger,
	})

	srv := api.NewServer(api.Options{
		Config:      cfg,
		Logger:      logger,
		Pipeline:    pipe,
		Bulk:        bulkSvc,
		Worker:      wk,
		Registry:    registry,
		ATS:         ats,
		Interviews:  interviews,
		Transcripts: transcripts,
		Selector:    selector,
		Gmail: gmail.New(gmail.Options{
			ClientID:     cfg.Gmail.ClientID,
			ClientSecret: cfg.Gmail.ClientSecret,
			Logger:       logger,
		}),
		Queue:       queue,
		Prompts:     store,
		Feedback:    store,
		Runs:        store,
		ConfigStore: store,
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	bulkSvc.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newStore selects Firestore when a project is configured and falls back to
// the in-memory store for local development.
func newStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (dataStore, func(), error) {
	if cfg.Firestore.ProjectID == "" {
		logger.Warn("no Firestore project configured, using in-memory stores")
		return memory.New(), func() {}, nil
	}
	client, err := cloudfirestore.NewClient(ctx, cfg.Firestore.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("create firestore client: %w", err)
	}
	logger.Info("firestore store ready", zap.String("project", cfg.Firestore.ProjectID))
	return fsstore.New(client), func() { _ = client.Close() }, nil
}

// newQueue selects Cloud Tasks when a project is configured and falls back to
// the in-process queue for local development.
func newQueue(ctx context.Context, cfg config.Config, logger *zap.Logger) (summary.TaskQueue, func(), error) {
	if cfg.Tasks.ProjectID == "" {
		logger.Warn("no Cloud Tasks project configured, using in-process queue")
		return tasks.NewMemoryQueue(), func() {}, nil
	}
	q, err := tasks.NewCloudTasksQueue(ctx, tasks.CloudTasksOptions{
		ProjectID:           cfg.Tasks.ProjectID,
		Location:            cfg.Tasks.Location,
		Queue:               cfg.Tasks.Queue,
		WorkerURL:           cfg.Tasks.WorkerURL,
		ServiceAccountEmail: cfg.Tasks.ServiceAccountEmail,
		Logger:              logger,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("cloud tasks queue ready", zap.String("queue", cfg.Tasks.Queue))
	return q, func() { _ = q.Close() }, nil
}
