package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(correctCmd)
}

var correctCmd = &cobra.Command{
	Use:   "correct <mbid>...",
	Short: "Corrects pitch and builds note models and histograms",
	Long: `Corrects octave errors in the initial pitch of each recording and stores
the corrected pitch, note models, histogram and corrected aligned notes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		failed := a.pipeline.Batch(cmd.Context(), args, func(ctx context.Context, mbid string) error {
			_, err := a.pipeline.Corrected(ctx, mbid)
			return err
		})
		return batchError(failed, len(args))
	},
}

func batchError(failed []string, total int) error {
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d recordings failed: %v", len(failed), total, failed)
}
