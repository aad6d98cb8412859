package main

import (
	"fmt"

	"github.com/mager/makampitch/composition"
	"github.com/spf13/cobra"
)

var (
	symbTrDir string
	targetDir string
)

func init() {
	saveFolderCmd.Flags().StringVar(&symbTrDir, "symbtr-dir", ".", "directory holding SymbTr scores")
	saveFolderCmd.Flags().StringVar(&targetDir, "root", "results", "directory to create the folder in")
	rootCmd.AddCommand(saveFolderCmd)
}

var saveFolderCmd = &cobra.Command{
	Use:   "savefolder <symbtr-name> <mbid>",
	Short: "Copies a score and its recording into one folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		folder := composition.NewFolder(symbTrDir, targetDir, a.store, a.log)
		dir, err := folder.StoreScoreAndAudio(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dir)
		return nil
	},
}
