package cmd

import (
	"errors"
	"log/slog"

	"github.com/MeKo-Tech/framescan/internal/pdf"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/spf13/cobra"
)

// pdfCmd represents the pdf command.
var pdfCmd = &cobra.Command{
	Use:   "pdf [files...]",
	Short: "Scan the images embedded in PDF documents for barcodes",
	Long: `Extract the images embedded in one or more PDF files and scan each of
them as a camera frame. Results are named <file>#page=<n>&image=<i>.

Examples:
  framescan pdf labels.pdf
  framescan pdf labels.pdf --pages 1-3,7 --formats datamatrix,code128
  framescan pdf protected.pdf --password secret --format yaml`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
		if err := applyScanFlags(cmd, cfg); err != nil {
			return err
		}
		pages, _ := cmd.Flags().GetString("pages")

		var creds *pdf.PasswordCredentials
		user, _ := cmd.Flags().GetString("password")
		owner, _ := cmd.Flags().GetString("owner-password")
		if user != "" || owner != "" {
			if owner == "" {
				owner = user
			}
			creds = &pdf.PasswordCredentials{UserPassword: user, OwnerPassword: owner}
		}

		var sources []pipeline.Source
		for _, file := range args {
			fileSources, err := pdf.Sources(file, pages, creds)
			if err != nil {
				if !cfg.Batch.ContinueOnError {
					return err
				}
				slog.Warn("Failed to extract PDF images", "file", file, "error", err)
				sources = append(sources, pipeline.Source{Name: file, Err: err})
				continue
			}
			if len(fileSources) == 0 {
				slog.Info("No embedded images found", "file", file)
			}
			sources = append(sources, fileSources...)
		}

		job, err := newScanJob(cfg)
		if err != nil {
			return err
		}
		return job.run(cmd, sources)
	},
}

func init() {
	rootCmd.AddCommand(pdfCmd)
	addScanFlags(pdfCmd)
	pdfCmd.Flags().String("pages", "", "page range to scan (e.g. 1-3,5); default: all pages")
	pdfCmd.Flags().String("password", "", "user password for encrypted PDFs")
	pdfCmd.Flags().String("owner-password", "", "owner password for encrypted PDFs (defaults to --password)")
}
