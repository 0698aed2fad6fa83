// Package ampsave holds the on-disk formats shared by the ampsave commands.
package ampsave

import "path/filepath"

const (
	DefaultStateDir      = ".ampsave"
	DefaultArchiveFile   = "results.json"
	DefaultOverridesFile = "tests.yaml"
	ArchiveSchema        = 1
)

func DefaultArchivePath() string {
	return filepath.Join(DefaultStateDir, DefaultArchiveFile)
}

func DefaultOverridesPath() string {
	return filepath.Join(DefaultStateDir, DefaultOverridesFile)
}
