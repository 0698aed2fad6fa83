// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package cli wires the ampsave commands to cobra.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func Execute(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	ctx := context.Background()

	if err := root.ExecuteContext(ctx); err != nil {
		return err
	}

	return nil
}

func PrintError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ampsave",
		Short: "ampsave decodes saved amplet2 measurement results",
		Long: `ampsave reads result archives written by amplet2 clients, checks each
record against the registered test formats, and prints or reports the decoded results.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")

	cmd.AddCommand(newDecodeCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
