// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package cli

import (
	"github.com/pion/ampsave/internal/ampsave"
	"github.com/pion/ampsave/internal/decode"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	path := ampsave.DefaultArchivePath()
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a result archive against the archive schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return decode.Check(path, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&path, "archive", path, "path to results.json")

	return cmd
}
