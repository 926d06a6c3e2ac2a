package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"cv-portfolio/internal/portfolio"

	"github.com/spf13/cobra"
)

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template FILE",
		Short: "Recommend a portfolio template for CV data",
		Long:  "Read CV data as JSON (summary, skills, experience, education) from FILE, or stdin when FILE is -, and print the template recommendation.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to read input file: %w", err)
				}
				defer f.Close()
				in = f
			}

			var data *portfolio.CVData
			if err := json.NewDecoder(in).Decode(&data); err != nil {
				return fmt.Errorf("failed to parse CV data: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(portfolio.SelectTemplate(data))
		},
	}
}
