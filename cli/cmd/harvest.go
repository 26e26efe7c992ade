package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/austral-data/cosecha/adapter"
	adapterredis "github.com/austral-data/cosecha/adapter/redis"
	adapterwebhook "github.com/austral-data/cosecha/adapter/webhook"
	"github.com/austral-data/cosecha/browser"
	"github.com/austral-data/cosecha/cli/config"
	"github.com/austral-data/cosecha/harvest"
	"github.com/austral-data/cosecha/iox"
	"github.com/austral-data/cosecha/log"
	"github.com/austral-data/cosecha/metrics"
	"github.com/austral-data/cosecha/session"
	"github.com/austral-data/cosecha/store"
	"github.com/austral-data/cosecha/types"
)

// HarvestResponse is the harvest command's stdout payload.
type HarvestResponse struct {
	Report  *types.HarvestReport `json:"report,omitempty"`
	Metrics metrics.Snapshot     `json:"metrics"`
	Empty   bool                 `json:"empty,omitempty"`
	Storage string               `json:"storage"`
}

// HarvestCommand returns the harvest command: one full discovery and
// download pass over the portal for a billing period.
func HarvestCommand() *cli.Command {
	return &cli.Command{
		Name:  "harvest",
		Usage: "Discover and download all documents for a period",
		Flags: []cli.Flag{
			configFlag,
			jobIDFlag,
			&cli.StringFlag{
				Name:     "period",
				Usage:    "Billing period, format YYYY-MM",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Provider identifier (optional)",
			},
			&cli.IntFlag{
				Name:  "attempt",
				Usage: "Job attempt number (starts at 1)",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Local root for per-job output (overrides config)",
			},
			&cli.StringFlag{
				Name:  "browser-url",
				Usage: "WebSocket URL of the browser to attach to (overrides config)",
			},
		},
		Action: harvestAction,
	}
}

func harvestAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	if url := c.String("browser-url"); url != "" {
		cfg.Portal.BrowserURL = url
	}

	jobID := c.String("job-id")
	if jobID == "" {
		jobID = uuid.NewString()
	}
	job := &types.JobMeta{
		JobID:    jobID,
		Period:   c.String("period"),
		Provider: c.String("provider"),
		Attempt:  c.Int("attempt"),
	}
	if err := job.Validate(); err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}

	logger := log.NewLogger(job)
	start := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fsStore, err := store.NewFS(cfg.DataDir, jobID)
	if err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}

	surface, err := browser.Connect(cfg.Portal.BrowserURL)
	if err != nil {
		return cli.Exit(fmt.Sprintf("connect browser: %v", err), exitFatal)
	}
	defer iox.DiscardClose(surface)

	if err := openSession(ctx, jobID, surface, cfg, logger); err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}

	journal, err := harvest.OpenJournal(filepath.Join(fsStore.Root(), store.DirResults, harvest.JournalName))
	if err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}
	defer iox.DiscardClose(journal)

	collector := metrics.NewCollector(jobID, job.Period)
	discovery := harvest.NewDiscovery(harvest.Config{
		Surface:   surface,
		Selectors: harvest.DefaultSelectors(),
		Logger:    logger,
		Metrics:   collector,
	})
	reconciler := harvest.NewReconciler(harvest.ReconcilerConfig{
		Surface:           surface,
		Logger:            logger,
		Metrics:           collector,
		Journal:           journal,
		Job:               job,
		Dir:               filepath.Join(fsStore.Root(), store.DirDocuments),
		MaxAttempts:       cfg.Download.MaxAttempts,
		ReconcileAttempts: cfg.Download.ReconcileAttempts,
		DownloadTimeout:   cfg.Download.WaitTimeout.Duration,
	})

	report, runErr := harvest.NewPipeline(discovery, reconciler, logger).Run(ctx)
	empty := errors.Is(runErr, harvest.ErrEmptyResult)
	if runErr != nil && !empty {
		return cli.Exit(fmt.Sprintf("harvest failed: %v", runErr), exitFatal)
	}

	storagePath := "file://" + fsStore.Root()
	if report != nil {
		if err := reconciler.SaveReport(filepath.Join(fsStore.Root(), store.DirResults, harvest.ReportName)); err != nil {
			return cli.Exit(err.Error(), exitFatal)
		}
		if path, err := handoff(ctx, jobID, fsStore, cfg, logger); err != nil {
			return cli.Exit(err.Error(), exitFatal)
		} else if path != "" {
			storagePath = path
		}
	}

	notify(ctx, cfg, job, report, storagePath, time.Since(start), logger)

	resp := HarvestResponse{
		Report:  report,
		Metrics: collector.Snapshot(),
		Empty:   empty,
		Storage: storagePath,
	}
	if err := printJSON(resp); err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}

	if report != nil && !report.Passed {
		return cli.Exit("", exitGateFailed)
	}
	return nil
}

// openSession registers the browser session, navigates to the portal
// entry point, and waits for the operator to finish logging in. A portal
// without a login URL is assumed to already show the results view.
func openSession(ctx context.Context, jobID string, surface browser.Surface, cfg *config.Config, logger *log.Logger) error {
	sessions := session.NewStore()
	if _, err := sessions.Create(jobID, surface); err != nil {
		return err
	}
	if _, err := sessions.Get(jobID, jobID); err != nil {
		return err
	}

	if cfg.Portal.LoginURL == "" {
		return nil
	}
	if err := surface.Navigate(ctx, cfg.Portal.LoginURL); err != nil {
		return fmt.Errorf("navigate to portal: %w", err)
	}
	if cfg.Portal.DashboardPattern == "" {
		return nil
	}

	logger.Info("waiting for operator login", map[string]any{
		"timeout": cfg.Portal.LoginTimeout.Duration.String(),
	})
	return session.WaitReady(ctx, surface, cfg.Portal.DashboardPattern,
		cfg.Portal.PollInterval.Duration, cfg.Portal.LoginTimeout.Duration)
}

// handoff pushes the finished job directory to the configured remote
// backend. Returns the remote storage path, or "" for the fs backend.
func handoff(ctx context.Context, jobID string, fsStore *store.FS, cfg *config.Config, logger *log.Logger) (string, error) {
	if cfg.Storage.Backend != "s3" {
		return "", nil
	}

	bucket, prefix := store.ParseS3Path(cfg.Storage.Path)
	remote, err := store.NewS3(ctx, jobID, store.S3Config{
		Bucket:       bucket,
		Prefix:       prefix,
		Region:       cfg.Storage.Region,
		Endpoint:     cfg.Storage.Endpoint,
		UsePathStyle: cfg.Storage.S3PathStyle,
	})
	if err != nil {
		return "", fmt.Errorf("s3 handoff: %w", err)
	}

	n, err := store.Handoff(ctx, fsStore, remote)
	if err != nil {
		return "", fmt.Errorf("s3 handoff: %w", err)
	}
	logger.Info("storage handoff complete", map[string]any{"objects": n, "bucket": bucket})
	return fmt.Sprintf("s3://%s", bucket), nil
}

// notify publishes the job-completed event when an adapter is
// configured. Notification failures are logged, never fatal: the
// artifacts are already persisted.
func notify(ctx context.Context, cfg *config.Config, job *types.JobMeta, report *types.HarvestReport, storagePath string, duration time.Duration, logger *log.Logger) {
	if cfg.Adapter.Type == "" {
		return
	}

	a, err := newNotifier(cfg.Adapter)
	if err != nil {
		logger.Error("adapter init failed", map[string]any{"error": err.Error()})
		return
	}
	defer iox.DiscardClose(a)

	event := adapter.NewJobCompletedEvent(job, report, storagePath, duration)
	if err := a.Publish(ctx, event); err != nil {
		logger.Error("completion notification failed", map[string]any{"error": err.Error()})
	}
}

// newNotifier builds the configured downstream adapter.
func newNotifier(cfg config.AdapterConfig) (adapter.Adapter, error) {
	switch cfg.Type {
	case "redis":
		retries := adapterredis.DefaultRetries
		if cfg.Retries != nil {
			retries = *cfg.Retries
		}
		return adapterredis.New(adapterredis.Config{
			URL:     cfg.URL,
			Channel: cfg.Channel,
			Timeout: cfg.Timeout.Duration,
			Retries: retries,
		})
	case "webhook":
		retries := adapterwebhook.DefaultRetries
		if cfg.Retries != nil {
			retries = *cfg.Retries
		}
		return adapterwebhook.New(adapterwebhook.Config{
			URL:     cfg.URL,
			Timeout: cfg.Timeout.Duration,
			Retries: retries,
		})
	default:
		return nil, fmt.Errorf("unknown adapter type %q", cfg.Type)
	}
}

// loadConfig reads the --config file when given, otherwise returns the
// documented defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return cfg, nil
}
