package main

import (
	"fmt"

	"github.com/mager/makampitch/musicbrainz"
	"github.com/spf13/cobra"
)

var (
	listWorks      bool
	listRecordings bool
)

func init() {
	collectionCmd.Flags().BoolVar(&listWorks, "works", false, "list works instead of releases")
	collectionCmd.Flags().BoolVar(&listRecordings, "recordings", false, "list the recordings of every release")
	rootCmd.AddCommand(collectionCmd)
}

var collectionCmd = &cobra.Command{
	Use:   "collection <collection-id>",
	Short: "Lists the releases or works of a MusicBrainz collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		ctx := cmd.Context()
		mb := musicbrainz.ProvideMusicbrainz(a.cfg, a.log)

		name, err := mb.CollectionName(ctx, args[0])
		if err != nil {
			return err
		}
		a.log.Infow("listing collection", "collection", args[0], "name", name)

		list := mb.ReleasesInCollection
		if listWorks {
			list = mb.WorksInCollection
		}
		ids, err := list(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, id := range ids {
			if !listRecordings || listWorks {
				fmt.Fprintln(out, id)
				continue
			}
			recordings, err := mb.RecordingsFromRelease(ctx, id)
			if err != nil {
				return err
			}
			for _, rec := range recordings {
				fmt.Fprintln(out, rec)
			}
		}
		return nil
	},
}
