// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ampsave

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/pion/ampsave/harness"
	"gopkg.in/yaml.v3"
)

// Overrides is the tests.yaml file: per-test changes to the built-in
// registry, keyed by test name.
type Overrides struct {
	Tests map[string]harness.Override `yaml:"tests"`
}

// LoadOverrides reads path. A missing file yields empty overrides.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return Overrides{}, nil
	}
	safePath, err := cleanStatePath(path)
	if err != nil {
		return Overrides{}, err
	}

	data, err := os.ReadFile(safePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Overrides{}, nil
		}

		return Overrides{}, fmt.Errorf("read overrides: %w", err)
	}

	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("parse overrides: %w", err)
	}

	return o, nil
}

// Apply overrides tests in reg, in name order. A name reg does not know is
// an *harness.UnknownTestError.
func (o Overrides) Apply(reg *harness.Registry) error {
	names := make([]string, 0, len(o.Tests))
	for name := range o.Tests {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := reg.Override(name, o.Tests[name]); err != nil {
			return fmt.Errorf("overrides: %w", err)
		}
	}

	return nil
}
