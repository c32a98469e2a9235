package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tribeboard/tribeboard/server/internal/snapshot"
	"github.com/tribeboard/tribeboard/server/internal/source"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage leaderboard snapshots on disk",
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the snapshots that would be loaded at startup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		if _, err := st.LoadExisting(); err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED (UTC)\tENTRIES")
		for _, m := range st.List() {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", m.ID, m.DisplayTime, m.Entries)
		}
		return tw.Flush()
	},
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Fetch the leaderboard once and store it as a snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		snap, err := st.Capture(cmd.Context(), snapshot.TriggerManual)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%d entries)\n", snap.ID, len(snap.Entries))
		return nil
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete snapshots by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, ids []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := st.Delete(id); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
		}
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotListCmd, snapshotCreateCmd, snapshotDeleteCmd)
}

func openStore() (*snapshot.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return snapshot.New(source.New(cfg.Source, nil), cfg.Snapshot), nil
}

