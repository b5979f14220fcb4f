package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/hackwreck/internal/batch"
	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/pkg/logger"
)

var (
	batchStatus   string
	batchInterval time.Duration
	batchWait     time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Archive many repositories from a manifest file",
	Long: `Archive repositories listed in a manifest. Plain files hold one
"url[,status]" per line; blank lines and lines starting with # are skipped.
Files ending in .yaml or .yml hold default_status and a list of items.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := batch.Load(args[0], batchStatus)
		if err != nil {
			return err
		}
		stderr := cmd.ErrOrStderr()
		runner := batch.NewRunner(newClient(),
			batch.WithInterval(batchInterval),
			batch.WithTimeout(batchWait),
			batch.WithLogger(logger.Get().Named("batch")),
			batch.WithProgress(func(job model.BatchJob) {
				fmt.Fprintf(stderr, "job %s: %d/%d processed\n", job.ID, job.Completed, job.Total)
			}),
		)
		report, err := runner.Run(cmd.Context(), m)
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), outputFlag, report, func() (string, error) {
			return report.Summary(), nil
		})
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchStatus, "status", "", "Status for entries without one (overrides the manifest default)")
	batchCmd.Flags().DurationVar(&batchInterval, "interval", 2*time.Second, "Polling interval for job status")
	batchCmd.Flags().DurationVar(&batchWait, "wait", 30*time.Minute, "Give up waiting for a job after this long")
}
