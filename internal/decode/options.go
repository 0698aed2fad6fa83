// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package decode implements the ampsave decode command.
package decode

import (
	"io"
	"os"

	"github.com/pion/ampsave/internal/ampsave"
	"github.com/pion/logging"
)

type Options struct {
	ArchivePath   string
	OverridesPath string
	Tests         []string
	// MinClient is a semver constraint the archive's client must meet,
	// for example ">= 0.9.0".
	MinClient string
	Strict    bool
	JUnitPath string
	// SavePath receives an archive holding only the records that decoded.
	SavePath    string
	PprofCPU    string
	PprofHeap   string
	PprofAllocs string
	Verbose     bool

	LoggerFactory logging.LoggerFactory
}

func DefaultOptions() Options {
	return Options{
		ArchivePath:   ampsave.DefaultArchivePath(),
		OverridesPath: ampsave.DefaultOverridesPath(),
	}
}

// NewLoggerFactory returns the pion logger factory used by the ampsave
// commands. It logs warnings to w, or everything from debug up when verbose.
func NewLoggerFactory(verbose bool, w io.Writer) logging.LoggerFactory {
	factory := logging.NewDefaultLoggerFactory()
	factory.Writer = w
	factory.DefaultLogLevel = logging.LogLevelWarn
	if verbose {
		factory.DefaultLogLevel = logging.LogLevelDebug
	}

	return factory
}

func (o Options) loggerFactory() logging.LoggerFactory {
	if o.LoggerFactory != nil {
		return o.LoggerFactory
	}

	return NewLoggerFactory(o.Verbose, os.Stderr)
}
