// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"io"

	"github.com/pion/ampsave/harness"
	"github.com/pion/ampsave/internal/ampsave"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	overridesPath := ampsave.DefaultOverridesPath()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tests ampsave can decode",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := harness.DefaultRegistry()
			overrides, err := ampsave.LoadOverrides(overridesPath)
			if err != nil {
				return err
			}
			if err := overrides.Apply(reg); err != nil {
				return err
			}
			printTests(cmd.OutOrStdout(), reg)

			return nil
		},
	}

	cmd.Flags().StringVar(&overridesPath, "overrides", overridesPath, "path to tests.yaml")

	return cmd
}

func printTests(w io.Writer, reg *harness.Registry) {
	fmt.Fprintln(w, "Available tests:")
	for _, test := range reg.Tests() {
		since := test.Since
		if since == "" {
			since = "-"
		}
		fmt.Fprintf(w, "  %-12s id=%d version=%d since=%s\n", test.Name, test.ID, test.Version, since)
	}
}
