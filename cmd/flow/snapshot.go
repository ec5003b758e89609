package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/flow/pkg/tree"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <script>",
		Short: "Play an event script and print the final tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, args[0])
			if err != nil {
				return err
			}
			eng := s.newEngine()
			if err := s.play(cmd.Context(), eng); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), tree.Snapshot(eng.Tree()))
			return nil
		},
	}
}
