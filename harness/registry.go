// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package harness

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// Result is a decoded test result.
type Result interface {
	Summary() string
}

// Test describes one result format the harness can decode.
type Test struct {
	Name    string
	ID      int
	Version int
	// Since is the first client release that writes this format. Empty
	// means every client.
	Since  string
	Decode func(data json.RawMessage) (Result, error)
}

// Supports reports whether results written by client can be decoded as t.
// A nil client version is treated as current. A Since that does not parse
// is an error; Register and Override reject those, so only hand-built
// tests can hit it.
func (t Test) Supports(client *semver.Version) (bool, error) {
	if client == nil || t.Since == "" {
		return true, nil
	}
	since, err := parseSemver(t.Since)
	if err != nil {
		return false, fmt.Errorf("%w %q for %s: %w", errInvalidSince, t.Since, t.Name, err)
	}

	return !client.LessThan(since), nil
}

// Override replaces parts of a registered test definition.
type Override struct {
	Version int    `yaml:"version"`
	Since   string `yaml:"since"`
}

type Registry struct {
	mu    sync.RWMutex
	tests map[string]Test
}

// NewRegistry returns a registry holding tests. Invalid or duplicate
// entries panic, since built-in tables are the only callers.
func NewRegistry(tests ...Test) *Registry {
	r := &Registry{tests: make(map[string]Test, len(tests))}
	for _, test := range tests {
		if err := r.Register(test); err != nil {
			panic(err)
		}
	}

	return r
}

// DefaultRegistry returns a registry holding every built-in test.
func DefaultRegistry() *Registry {
	return NewRegistry(builtinTests()...)
}

func (r *Registry) Register(test Test) error {
	if test.Name == "" {
		return errEmptyTestName
	}
	if test.Decode == nil {
		return fmt.Errorf("%w: %s", errMissingDecoder, test.Name)
	}
	if test.Since != "" {
		if _, err := parseSemver(test.Since); err != nil {
			return fmt.Errorf("%w %q for %s: %w", errInvalidSince, test.Since, test.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tests[test.Name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateTest, test.Name)
	}
	r.tests[test.Name] = test

	return nil
}

// Lookup returns the test registered under name. The name must match
// exactly; anything else is an *UnknownTestError.
func (r *Registry) Lookup(name string) (Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	test, ok := r.tests[name]
	if !ok {
		return Test{}, NewUnknownTestError(name)
	}

	return test, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tests))
	for name := range r.tests {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Tests returns every registered test ordered by name.
func (r *Registry) Tests() []Test {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	tests := make([]Test, 0, len(names))
	for _, name := range names {
		tests = append(tests, r.tests[name])
	}

	return tests
}

// Override applies o to the test registered under name. Zero fields in o
// leave the current value alone.
func (r *Registry) Override(name string, o Override) error {
	if o.Since != "" {
		if _, err := parseSemver(o.Since); err != nil {
			return fmt.Errorf("%w %q for %s: %w", errInvalidSince, o.Since, name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	test, ok := r.tests[name]
	if !ok {
		return NewUnknownTestError(name)
	}
	if o.Version != 0 {
		test.Version = o.Version
	}
	if o.Since != "" {
		test.Since = o.Since
	}
	r.tests[name] = test

	return nil
}

// CheckVersion returns a *VersionMismatchError when got and expected differ.
func CheckVersion(got, expected int) error {
	if got != expected {
		return NewVersionMismatchError(got, expected)
	}

	return nil
}

// ParseClientVersion parses a client release string such as "0.11.2" or
// "v0.11.2".
func ParseClientVersion(raw string) (*semver.Version, error) {
	return parseSemver(raw)
}

func parseSemver(raw string) (*semver.Version, error) {
	return semver.NewVersion(normalizeSemver(strings.TrimSpace(raw)))
}

func normalizeSemver(input string) string {
	if strings.HasPrefix(input, "v") {
		return input
	}

	return "v" + input
}
