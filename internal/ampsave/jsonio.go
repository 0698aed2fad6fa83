// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ampsave

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pion/ampsave/harness"
)

var (
	errPathOutsideWorkspace = errors.New("state path escapes working directory")
	errEmptyStatePath       = errors.New("state path empty")
)

// ReadArchiveFile returns the raw bytes of the archive at path.
func ReadArchiveFile(path string) ([]byte, error) {
	safePath, err := cleanStatePath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(safePath)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	return data, nil
}

// ParseArchive validates data against the archive schema and decodes it.
func ParseArchive(data []byte) (*Archive, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var a Archive
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&a); err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}

	return &a, nil
}

func ReadArchive(path string) (*Archive, error) {
	data, err := ReadArchiveFile(path)
	if err != nil {
		return nil, err
	}

	return ParseArchive(data)
}

// WriteArchive encodes a, checks the result against the archive schema and
// replaces path with it. A nil record list is written as an empty one.
func WriteArchive(path string, a *Archive) error {
	safePath, err := cleanStatePath(path)
	if err != nil {
		return err
	}

	out := *a
	if out.Records == nil {
		out.Records = []harness.Record{}
	}
	data, err := encodeArchive(&out)
	if err != nil {
		return err
	}
	if err := Validate(data); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	return replaceFile(safePath, data)
}

func encodeArchive(a *Archive) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		return nil, fmt.Errorf("encode archive: %w", err)
	}

	return buf.Bytes(), nil
}

// replaceFile writes data to a temporary file next to path and renames it
// into place, so readers never see a partial archive.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return errors.Join(fmt.Errorf("write temp: %w", err), tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("close temp: %w", err), os.Remove(tmp.Name()))
	}
	if err := os.Chmod(tmp.Name(), 0o640); err != nil {
		return errors.Join(fmt.Errorf("chmod temp: %w", err), os.Remove(tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Join(fmt.Errorf("rename temp: %w", err), os.Remove(tmp.Name()))
	}

	return nil
}

func cleanStatePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errEmptyStatePath
	}
	cleaned := filepath.Clean(path)

	if filepath.IsAbs(cleaned) {
		return cleaned, nil
	}

	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", errPathOutsideWorkspace
	}

	return cleaned, nil
}
