package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/austral-data/cosecha/log"
	"github.com/austral-data/cosecha/metrics"
	"github.com/austral-data/cosecha/types"
	"github.com/austral-data/cosecha/validate"
)

// Extractor runs the build-and-validate pass over a directory of
// extracted document texts.
type Extractor struct {
	logger    *log.Logger
	validator *validate.Validator

	// Metrics receives accept/reject counts when set.
	Metrics *metrics.Collector
}

// NewExtractor creates an extractor with a compiled record validator.
func NewExtractor(logger *log.Logger) (*Extractor, error) {
	v, err := validate.New()
	if err != nil {
		return nil, fmt.Errorf("compile validator: %w", err)
	}
	return &Extractor{logger: logger, validator: v}, nil
}

// Rejection records one document that failed validation, with the
// verdict explaining why.
type Rejection struct {
	Source  string                  `json:"source"`
	Verdict types.ValidationVerdict `json:"verdict"`
}

// Result summarizes one extraction pass.
type Result struct {
	Accepted  int         `json:"accepted"`
	Rejected  []Rejection `json:"rejected"`
	OutputDir string      `json:"output_dir"`
}

// Run builds and validates every document under sourceDir and writes
// accepted records as JSON into outputDir. Harvested .pdf files go
// through text extraction first; .txt files are taken as-is. A document
// is accepted only when both the structural schema and the independent
// re-parse report zero errors. Rejections are collected, never fatal:
// one bad document must not sink the pass.
func (e *Extractor) Run(sourceDir, outputDir string) (*Result, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	result := &Result{OutputDir: outputDir}
	for _, entry := range entries {
		if entry.IsDir() || !hasDocumentSuffix(entry.Name()) {
			continue
		}
		source := filepath.Join(sourceDir, entry.Name())

		text, err := sourceText(source)
		if err != nil {
			e.Metrics.IncRecordRejected()
			result.Rejected = append(result.Rejected, Rejection{
				Source: entry.Name(),
				Verdict: types.NewVerdict([]types.FieldError{{
					Section: "document",
					Field:   "source",
					Error:   err.Error(),
				}}),
			})
			continue
		}

		record := Build(text)
		verdict, vErr := e.validator.Validate(record, text)
		if vErr != nil {
			e.logger.Warn("document rejected", map[string]any{
				"source": entry.Name(),
				"reason": vErr.Error(),
				"errors": verdict.TotalErrors,
			})
			e.Metrics.IncRecordRejected()
			result.Rejected = append(result.Rejected, Rejection{Source: entry.Name(), Verdict: verdict})
			continue
		}

		if err := e.writeRecord(outputDir, entry.Name(), record); err != nil {
			return nil, err
		}
		e.Metrics.IncRecordAccepted()
		result.Accepted++
	}

	e.logger.Info("extraction pass complete", map[string]any{
		"accepted": result.Accepted,
		"rejected": len(result.Rejected),
	})
	return result, nil
}

// hasDocumentSuffix reports whether a directory entry is a document the
// pass should consume: a harvested .pdf or an already-extracted .txt.
func hasDocumentSuffix(name string) bool {
	return strings.HasSuffix(name, ".pdf") || strings.HasSuffix(name, ".txt")
}

// sourceText returns the document text for one source file, extracting
// it from the PDF when needed.
func sourceText(path string) (string, error) {
	if strings.HasSuffix(path, ".pdf") {
		return PDFText(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (e *Extractor) writeRecord(outputDir, sourceName string, record types.Liquidation) error {
	base := strings.TrimSuffix(strings.TrimSuffix(sourceName, ".txt"), ".pdf") + ".json"
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", sourceName, err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, base), data, 0o644); err != nil {
		return fmt.Errorf("write record %s: %w", base, err)
	}
	return nil
}
