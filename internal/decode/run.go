// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/pion/ampsave/harness"
	"github.com/pion/ampsave/internal/ampsave"
	"github.com/pion/logging"
)

// Run decodes every selected record of the archive and prints one line per
// record to w. In strict mode the first failure is returned as soon as it
// is seen; otherwise failures are reported and counted in the final error.
func Run(ctx context.Context, opts Options, w io.Writer) (err error) {
	if opts.ArchivePath == "" {
		return errMissingArchivePath
	}

	factory := opts.loggerFactory()
	log := factory.NewLogger("ampsave")

	prof, err := startProfiles(opts, log)
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := prof.Stop(); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
	}()

	start := time.Now()
	cpuStart := readCPUSeconds()

	archive, err := ampsave.ReadArchive(opts.ArchivePath)
	if err != nil {
		return fmt.Errorf("decode: read archive: %w", err)
	}
	if len(archive.Records) == 0 {
		return errEmptyArchive
	}

	reg := harness.DefaultRegistry()
	overrides, err := ampsave.LoadOverrides(opts.OverridesPath)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := overrides.Apply(reg); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	client, err := checkClient(archive.Client.Version, opts.MinClient)
	if err != nil {
		return err
	}

	records, skipped, err := selectRecords(reg, archive.Records, opts.Tests, client, log)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errNoSelectedRecords
	}

	dec, err := harness.NewDecoder(reg, factory)
	if err != nil {
		return err
	}
	outcomes, decodeErr := dec.DecodeAll(ctx, records, opts.Strict)
	printOutcomes(w, outcomes)

	metrics := collectMetrics(outcomes, skipped)
	metrics.Records = len(archive.Records)
	metrics.Duration = time.Since(start)
	metrics.CPUSeconds = readCPUSeconds() - cpuStart
	fmt.Fprintln(w, formatMetrics(metrics))

	if opts.JUnitPath != "" {
		if err := writeJUnitReport(opts.JUnitPath, archive.Client, outcomes); err != nil {
			return errors.Join(decodeErr, err)
		}
	}

	if opts.SavePath != "" {
		if err := saveDecoded(opts.SavePath, archive, outcomes, log); err != nil {
			return errors.Join(decodeErr, err)
		}
	}

	if decodeErr != nil {
		return fmt.Errorf("decode: %w", decodeErr)
	}
	if failures := countFailures(outcomes); failures > 0 {
		return fmt.Errorf("%w: %d of %d", errDecodeFailed, failures, len(outcomes))
	}

	return nil
}

// Check reads and schema-validates the archive at path without decoding.
func Check(path string, w io.Writer) error {
	if path == "" {
		return errMissingArchivePath
	}

	archive, err := ampsave.ReadArchive(path)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	fmt.Fprintf(w, "%s: %d record(s) from %s\n", path, len(archive.Records), clientLabel(archive.Client))

	return nil
}

// saveDecoded writes the records that decoded cleanly to a new archive
// stamped with the time of the run.
func saveDecoded(path string, archive *ampsave.Archive, outcomes []harness.Outcome, log logging.LeveledLogger) error {
	kept := &ampsave.Archive{
		Schema:      ampsave.ArchiveSchema,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Client:      archive.Client,
		Records:     make([]harness.Record, 0, len(outcomes)),
	}
	for _, outcome := range outcomes {
		if outcome.Passed() {
			kept.Records = append(kept.Records, outcome.Record)
		}
	}
	if err := ampsave.WriteArchive(path, kept); err != nil {
		return fmt.Errorf("%w: %w", errSaveArchive, err)
	}
	log.Infof("saved %d of %d record(s) to %s", len(kept.Records), len(outcomes), path)

	return nil
}

func checkClient(version, constraint string) (*semver.Version, error) {
	var client *semver.Version
	if strings.TrimSpace(version) != "" {
		parsed, err := harness.ParseClientVersion(version)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", errInvalidClient, version, err)
		}
		client = parsed
	}

	if strings.TrimSpace(constraint) == "" {
		return client, nil
	}
	rng, err := semver.NewConstraint(strings.TrimSpace(constraint))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", errInvalidConstraint, constraint, err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: archive has no client version", errClientConstraint)
	}
	if !rng.Check(client) {
		return nil, fmt.Errorf("%w: %s does not match %q", errClientConstraint, client, constraint)
	}

	return client, nil
}

// selectRecords applies the test name filter and drops records the client
// is too old to have written. Records naming unregistered tests are kept
// so that decoding reports them.
func selectRecords(
	reg *harness.Registry,
	records []harness.Record,
	filter []string,
	client *semver.Version,
	log logging.LeveledLogger,
) ([]harness.Record, int, error) {
	names := ampsave.SplitAndTrim(filter)
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, err := reg.Lookup(name); err != nil {
			return nil, 0, fmt.Errorf("decode: test filter: %w", err)
		}
		wanted[name] = struct{}{}
	}

	var (
		selected []harness.Record
		skipped  int
	)
	for i, rec := range records {
		if len(wanted) > 0 {
			if _, ok := wanted[rec.Test]; !ok {
				continue
			}
		}
		test, err := reg.Lookup(rec.Test)
		if err != nil {
			selected = append(selected, rec)

			continue
		}
		ok, err := test.Supports(client)
		if err != nil {
			return nil, 0, fmt.Errorf("decode: record %d: %w", i, err)
		}
		if !ok {
			log.Infof("record %d: skipping %s, client %s predates %s", i, rec.Test, client, test.Since)
			skipped++

			continue
		}
		selected = append(selected, rec)
	}

	return selected, skipped, nil
}

func collectMetrics(outcomes []harness.Outcome, skipped int) runMetrics {
	errs := make([]error, 0, len(outcomes))
	m := runMetrics{Skipped: skipped}
	for _, outcome := range outcomes {
		if outcome.Passed() {
			m.Decoded++
		}
		errs = append(errs, outcome.Err)
	}

	counts := harness.CountFaults(errs...)
	m.Mismatched = counts[harness.KindVersionMismatch]
	m.Unknown = counts[harness.KindUnknownTest]
	m.Malformed = counts[0]

	return m
}

func printOutcomes(w io.Writer, outcomes []harness.Outcome) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "decode: no records decoded")

		return
	}

	for _, outcome := range outcomes {
		source := outcome.Record.Source
		if source == "" {
			source = "-"
		}
		detail := ""
		if outcome.Err != nil {
			detail = "error: " + outcome.Err.Error()
		} else if outcome.Result != nil {
			detail = outcome.Result.Summary()
		}
		fmt.Fprintf(w, "[%s] %s @ %d :: %s\n", outcome.Record.Test, source, outcome.Record.Timestamp, detail)
	}
}

func countFailures(outcomes []harness.Outcome) int {
	failures := 0
	for _, outcome := range outcomes {
		if !outcome.Passed() {
			failures++
		}
	}

	return failures
}

func clientLabel(c ampsave.Client) string {
	if c.Version == "" {
		return c.Name
	}

	return c.Name + " " + c.Version
}
