package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cv-portfolio/internal/config"
	"cv-portfolio/internal/cv"
	"cv-portfolio/internal/logger"
	"cv-portfolio/internal/portfolio"
	"cv-portfolio/internal/resume"
	"cv-portfolio/internal/schemas"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type extractOptions struct {
	workers   int
	validate  bool
	recommend bool
	ocrURL    string
}

// extractResult is one line of extract output.
type extractResult struct {
	File     string                 `json:"file"`
	CV       *resume.StructuredCV   `json:"cv,omitempty"`
	Template *portfolio.ScoreResult `json:"template,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Extract structured CVs from documents",
		Long:  "Read each document (PDF, DOCX, DOC, RTF, ODT, TXT or image), extract its text and print the structured CV as JSON, one object per line in argument order.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("ocr-url") {
				if cfg, err := config.LoadConfig(); err == nil {
					opts.ocrURL = cfg.OCRServiceURL
				}
			}
			return runExtract(cmd, args, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "files processed in parallel")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "check each result against the StructuredCV JSON schema")
	cmd.Flags().BoolVar(&opts.recommend, "recommend", false, "add a portfolio template recommendation")
	cmd.Flags().StringVar(&opts.ocrURL, "ocr-url", "", "OCR service URL for image files (default $OCR_SERVICE_URL)")
	return cmd
}

func runExtract(cmd *cobra.Command, files []string, opts *extractOptions) error {
	if opts.workers < 1 {
		return fmt.Errorf("--workers must be at least 1")
	}

	scratch, err := os.MkdirTemp("", "cvtool-")
	if err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	var ocr cv.OCR
	if opts.ocrURL != "" {
		ocr = cv.NewRemoteOCR(opts.ocrURL, 2*time.Minute)
	}
	parser := cv.NewCVParser(scratch, ocr)
	extractor := cv.NewExtractor()

	results := make([]extractResult, len(files))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(opts.workers)

	for i, path := range files {
		g.Go(func() error {
			res, err := extractFile(ctx, parser, extractor, path, opts)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// extractFile reports document problems in the result. Only a schema
// violation is returned as an error, since it means the pipeline itself
// is broken.
func extractFile(ctx context.Context, parser *cv.CVParser, extractor *cv.Extractor, path string, opts *extractOptions) (extractResult, error) {
	res := extractResult{File: path}

	f, err := os.Open(path)
	if err != nil {
		res.Error = err.Error()
		return res, nil
	}
	defer f.Close()

	parsed, err := parser.ParseFile(ctx, filepath.Base(path), f)
	if err != nil {
		logger.Warn().Err(err).Str("filename", path).Msg("extract failed")
		res.Error = err.Error()
		return res, nil
	}

	structured := extractor.Extract(parsed.FullText)
	res.CV = &structured

	if opts.validate {
		data, err := json.Marshal(structured)
		if err != nil {
			return res, err
		}
		if err := schemas.ValidateStructuredCV(data); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
	}
	if opts.recommend {
		data := portfolio.FromStructuredCV(structured)
		result := portfolio.SelectTemplate(&data)
		res.Template = &result
	}

	logger.Info().Str("filename", path).Str("method", parsed.ExtractionMethod).Msg("extracted")
	return res, nil
}
