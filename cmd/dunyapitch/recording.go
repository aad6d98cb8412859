package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mager/makampitch/musicbrainz"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(recordingCmd)
}

var recordingCmd = &cobra.Command{
	Use:   "recording <mbid>",
	Short: "Shows the genres, tags, works and composers of a recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := uuid.Parse(args[0]); err != nil {
			return fmt.Errorf("invalid recording id %q: %w", args[0], err)
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		ctx := cmd.Context()
		mb := musicbrainz.ProvideMusicbrainz(a.cfg, a.log)
		out := cmd.OutOrStdout()

		genres, err := mb.GenresFromRecording(args[0])
		if err != nil {
			return err
		}
		for _, g := range genres {
			fmt.Fprintf(out, "genre\t%s\n", g)
		}

		tags, err := mb.TagsFromRecording(ctx, args[0])
		if err != nil {
			return err
		}
		for _, t := range tags {
			fmt.Fprintf(out, "tag\t%s\t%d\n", t.Name, t.Count)
		}

		works, err := mb.WorksFromRecording(args[0])
		if err != nil {
			return err
		}
		for _, w := range works {
			fmt.Fprintf(out, "work\t%s\t%s\n", w.Type, w.WorkID)
			attrs, err := mb.WorkAttributes(ctx, w.WorkID)
			if err != nil {
				return err
			}
			for _, attr := range attrs {
				fmt.Fprintf(out, "\t%s\t%s\n", attr.Type, attr.Value)
			}
			artists, err := mb.WorkArtists(w.WorkID)
			if err != nil {
				return err
			}
			for _, a := range artists {
				fmt.Fprintf(out, "\t%s\t%s\n", a.Type, a.Artist)
			}
		}
		return nil
	},
}
