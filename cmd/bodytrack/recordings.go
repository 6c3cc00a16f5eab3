package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/bodytrack/internal/recording"
)

func newRecordingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recordings",
		Short: "Manage stored frame recordings",
	}
	cmd.AddCommand(newRecordingsListCommand(a))
	cmd.AddCommand(newRecordingsDeleteCommand(a))
	return cmd
}

func newRecordingsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recordings, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := recording.Open(a.dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			recs, err := s.ListRecordings(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No recordings.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSOURCE\tFRAMES\tCREATED")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Name, r.Source, r.FrameCount, r.CreatedAt.UTC().Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newRecordingsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <recording-id>",
		Short: "Delete a recording and its frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := recording.Open(a.dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			id := args[0]
			if err := s.DeleteRecording(cmd.Context(), id); err != nil {
				if errors.Is(err, recording.ErrNotFound) {
					return fmt.Errorf("recording %s not found", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted recording %s\n", id)
			return nil
		},
	}
}
