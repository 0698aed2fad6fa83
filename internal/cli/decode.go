// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package cli

import (
	"github.com/pion/ampsave/internal/decode"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	opts := decode.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode and print every record of a result archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose, err := cmd.Flags().GetBool("verbose"); err == nil {
				opts.Verbose = verbose
			}
			opts.LoggerFactory = decode.NewLoggerFactory(opts.Verbose, cmd.ErrOrStderr())

			return decode.Run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.ArchivePath, "archive", opts.ArchivePath, "path to results.json")
	cmd.Flags().StringVar(&opts.OverridesPath, "overrides", opts.OverridesPath, "path to tests.yaml")
	cmd.Flags().StringSliceVar(
		&opts.Tests,
		"tests",
		nil,
		"decode only these tests (comma-separated)",
	)
	cmd.Flags().StringVar(
		&opts.MinClient,
		"min-client",
		opts.MinClient,
		"semver constraint the archive client must satisfy",
	)
	cmd.Flags().BoolVar(&opts.Strict, "strict", opts.Strict, "stop at the first record that fails")
	cmd.Flags().StringVar(&opts.JUnitPath, "out", opts.JUnitPath, "path to write JUnit XML results")
	cmd.Flags().StringVar(&opts.SavePath, "save", opts.SavePath, "write the records that decoded to this archive")
	cmd.Flags().StringVar(&opts.PprofCPU, "pprof-cpu", opts.PprofCPU, "write a CPU profile to this path")
	cmd.Flags().StringVar(&opts.PprofHeap, "pprof-heap", opts.PprofHeap, "write a heap profile to this path")
	cmd.Flags().StringVar(&opts.PprofAllocs, "pprof-allocs", opts.PprofAllocs, "write an allocs profile to this path")

	return cmd
}
