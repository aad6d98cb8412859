package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
)

var audioDir string

func init() {
	packCmd.Flags().StringVar(&audioDir, "audio-dir", "", "read <mbid>.mp3 from this directory instead of the docserver")
	rootCmd.AddCommand(packCmd)
}

// audioFile is where the mp3 of a recording is read from when --audio-dir is set.
func audioFile(dir, mbid string) string {
	return filepath.Join(dir, mbid+".mp3")
}

var packCmd = &cobra.Command{
	Use:   "pack <mbid>...",
	Short: "Extracts and packs display pitch",
	Long: `Extracts the predominant melody of each recording's mp3, corrects its
octave errors and stores it packed as one byte per frame, with the
frequency range needed to decode it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		failed := a.pipeline.Batch(cmd.Context(), args, func(ctx context.Context, mbid string) error {
			var err error
			if audioDir != "" {
				_, err = a.pipeline.DunyaFrom(ctx, mbid, audioFile(audioDir, mbid))
			} else {
				_, err = a.pipeline.Dunya(ctx, mbid)
			}
			return err
		})
		return batchError(failed, len(args))
	},
}
