package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/austral-data/cosecha/cli/config"
	"github.com/austral-data/cosecha/extract"
	"github.com/austral-data/cosecha/harvest"
	"github.com/austral-data/cosecha/log"
	"github.com/austral-data/cosecha/metrics"
	"github.com/austral-data/cosecha/store"
	"github.com/austral-data/cosecha/types"
)

// ExtractResponse is the extract command's stdout payload.
type ExtractResponse struct {
	Result  *extract.Result  `json:"result"`
	Metrics metrics.Snapshot `json:"metrics"`
}

// ExtractCommand returns the extract command: build and validate
// structured records from a directory of harvested documents.
func ExtractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Build validated records from harvested documents",
		Flags: []cli.Flag{
			configFlag,
			jobIDFlag,
			&cli.StringFlag{
				Name:     "source-dir",
				Usage:    "Directory of harvested .pdf files or .txt document texts",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Record output directory (default: <data_dir>/<job_id>/json)",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Local root for per-job output (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Extract even when the job's harvest report did not pass",
			},
		},
		Action: extractAction,
	}
}

func extractAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.DataDir = dir
	}

	jobID := c.String("job-id")
	if jobID == "" {
		jobID = uuid.NewString()
	}
	outputDir := c.String("output-dir")
	if outputDir == "" {
		outputDir = filepath.Join(cfg.DataDir, jobID, store.DirRecords)
	}

	if !c.Bool("force") {
		if err := harvestGate(cfg, jobID); err != nil {
			return cli.Exit(err.Error(), exitGateFailed)
		}
	}

	logger := log.NewLogger(&types.JobMeta{JobID: jobID, Attempt: 1})
	extractor, err := extract.NewExtractor(logger)
	if err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}
	collector := metrics.NewCollector(jobID, "")
	extractor.Metrics = collector

	result, err := extractor.Run(c.String("source-dir"), outputDir)
	if err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}
	resp := ExtractResponse{Result: result, Metrics: collector.Snapshot()}
	if err := printJSON(resp); err != nil {
		return cli.Exit(err.Error(), exitFatal)
	}
	return nil
}

// harvestGate refuses extraction when the job's persisted harvest
// report exists and did not pass. A job without a report (text dumps,
// reprocessing foreign directories) is not gated.
func harvestGate(cfg *config.Config, jobID string) error {
	path := filepath.Join(cfg.DataDir, jobID, store.DirResults, harvest.ReportName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read harvest report: %w", err)
	}

	var report types.HarvestReport
	if err := json.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("decode harvest report %s: %w", path, err)
	}
	if !report.Passed {
		return fmt.Errorf("harvest for job %s did not pass (success rate %.2f%%, %d corrupted files); use --force to extract anyway",
			jobID, report.SuccessRate, len(report.CorruptedFiles))
	}
	return nil
}
