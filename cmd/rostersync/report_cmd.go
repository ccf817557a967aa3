package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rostersync/internal/report"
)

func newReportCmd() *cobra.Command {
	var (
		jsonIn  string
		htmlOut string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render an existing JSON run report as a static HTML page",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()

			r, err := report.ReadJSON(jsonIn)
			if err != nil {
				return err
			}
			if err := report.WriteHTML(r, htmlOut); err != nil {
				return err
			}
			log.Info("report rendered", zap.String("json", jsonIn), zap.String("html", htmlOut))
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonIn, "json", "data-sync-report.json", "JSON report to render")
	cmd.Flags().StringVar(&htmlOut, "html", "data-sync-report.html", "HTML output path")
	return cmd
}
