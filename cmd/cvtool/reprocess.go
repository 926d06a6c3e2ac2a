package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"cv-portfolio/internal/config"
	"cv-portfolio/internal/logger"
	"cv-portfolio/internal/resume"
	"cv-portfolio/internal/storage"

	"github.com/spf13/cobra"
)

func newReprocessCmd() *cobra.Command {
	var (
		dryRun bool
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "reprocess",
		Short: "Re-run extraction over stored CV text",
		Long:  "Re-run the extraction pipeline over the parsed text of stored CV files and update structured records that changed. Requires DATABASE_URL.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			db, err := storage.NewDB(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to db: %w", err)
			}
			defer db.Close()

			ctx := cmd.Context()
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}

			files, err := db.ListCVFiles(ctx, limit)
			if err != nil {
				return err
			}
			logger.Info().Int("files", len(files)).Int("limit", limit).Bool("dry_run", dryRun).Msg("reprocessing")

			enc := json.NewEncoder(cmd.OutOrStdout())
			updated := 0
			for _, f := range files {
				fresh := resume.ProcessCV(f.ParsedText)

				existing, err := db.GetStructuredCV(ctx, f.ID)
				if err != nil && !errors.Is(err, storage.ErrNotFound) {
					logger.Error().Err(err).Int64("cv_id", f.ID).Msg("failed to load structured CV")
					continue
				}
				if existing != nil && reflect.DeepEqual(existing.CV, fresh) {
					continue
				}

				updated++
				_ = enc.Encode(map[string]any{"cv_id": f.ID, "filename": f.Filename, "cv": fresh})
				if dryRun {
					continue
				}
				if err := db.SaveStructuredCV(ctx, f.ID, fresh); err != nil {
					logger.Error().Err(err).Int64("cv_id", f.ID).Msg("failed to save structured CV")
				}
			}

			logger.Info().Int("changed", updated).Bool("dry_run", dryRun).Msg("reprocess complete")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "do not persist updates; just print changes")
	cmd.Flags().IntVar(&limit, "limit", 200, "max number of files to process in one run")
	return cmd
}
