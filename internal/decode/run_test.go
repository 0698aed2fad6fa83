// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package decode

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pion/ampsave/harness"
	"github.com/pion/ampsave/internal/ampsave"
	"github.com/pion/logging"
	"github.com/stretchr/testify/require"
)

func writeArchive(t *testing.T, dir, version string, records ...harness.Record) string {
	t.Helper()

	path := filepath.Join(dir, "results.json")
	if records == nil {
		records = []harness.Record{}
	}
	archive := &ampsave.Archive{
		Schema:  ampsave.ArchiveSchema,
		Client:  ampsave.Client{Name: "amp-wlg", Version: version},
		Records: records,
	}
	require.NoError(t, ampsave.WriteArchive(path, archive))

	return path
}

func testOptions(t *testing.T, dir, archivePath string, logs *bytes.Buffer) Options {
	t.Helper()

	factory := logging.NewDefaultLoggerFactory()
	factory.Writer = logs
	factory.DefaultLogLevel = logging.LogLevelInfo

	opts := DefaultOptions()
	opts.ArchivePath = archivePath
	opts.OverridesPath = filepath.Join(dir, "tests.yaml")
	opts.LoggerFactory = factory

	return opts
}

func skeletonRecord(source string, valid int) harness.Record {
	return harness.Record{
		Test:      "skeleton",
		Version:   harness.SkeletonVersion,
		Timestamp: 1,
		Source:    source,
		Data:      json.RawMessage(`{"valid":` + jsonInt(valid) + `}`),
	}
}

func jsonInt(v int) string {
	data, _ := json.Marshal(v)

	return string(data)
}

func mixedRecords() []harness.Record {
	return []harness.Record{
		skeletonRecord("amp-a", 2),
		{Test: "youtube", Version: 2016081000, Timestamp: 2, Source: "amp-a", Data: json.RawMessage(`{}`)},
		{Test: "icmp", Version: 2013010100, Timestamp: 3, Source: "amp-b", Data: json.RawMessage(`{"packet_size":84,"random":false,"targets":[]}`)},
	}
}

func TestRunReportsFaultsAndWritesJUnit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out, logs bytes.Buffer
	opts := testOptions(t, dir, writeArchive(t, dir, "0.11.2", mixedRecords()...), &logs)
	opts.JUnitPath = filepath.Join(dir, "reports", "junit.xml")

	err := Run(context.Background(), opts, &out)
	require.ErrorIs(t, err, errDecodeFailed)
	require.EqualError(t, err, "decode: records failed to decode: 2 of 3")

	printed := out.String()
	require.Contains(t, printed, "[skeleton] amp-a @ 1 :: Result: got 2 address(es) of known family (IPv4/IPv6)")
	require.Contains(t, printed, "[youtube] amp-a @ 2 :: error: Unknown test: youtube")
	require.Contains(t, printed, "[icmp] amp-b @ 3 :: error: 2013010100 != 2014020300")
	require.Contains(t, printed, "records=3 decoded=1 skipped=0 version_mismatch=1 unknown_test=1 malformed=0")

	require.Contains(t, logs.String(), "record 1: unknown-test: Unknown test: youtube")

	data, err := os.ReadFile(opts.JUnitPath)
	require.NoError(t, err)
	report := string(data)
	require.Contains(t, report, `tests="3" failures="2"`)
	require.Contains(t, report, `type="unknown-test"`)
	require.Contains(t, report, `message="2013010100 != 2014020300"`)
}

func TestRunStrictReturnsFault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out, logs bytes.Buffer
	opts := testOptions(t, dir, writeArchive(t, dir, "0.11.2", mixedRecords()...), &logs)
	opts.Strict = true

	err := Run(context.Background(), opts, &out)
	require.ErrorIs(t, err, harness.ErrFault)

	var unknown *harness.UnknownTestError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "youtube", unknown.Test)
	require.NotContains(t, out.String(), "[icmp]")
}

func TestRunAllDecoded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out, logs bytes.Buffer
	path := writeArchive(t, dir, "", skeletonRecord("amp-a", 1), skeletonRecord("", 0))
	opts := testOptions(t, dir, path, &logs)

	require.NoError(t, Run(context.Background(), opts, &out))
	require.Contains(t, out.String(), "[skeleton] - @ 1 :: Result: got 0 address(es)")
	require.Contains(t, out.String(), "decoded=2")
}

func TestRunOverridesExpectedVersion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out, logs bytes.Buffer
	record := harness.Record{
		Test:      "icmp",
		Version:   2013010100,
		Timestamp: 3,
		Data:      json.RawMessage(`{"packet_size":84,"random":false,"targets":[]}`),
	}
	opts := testOptions(t, dir, writeArchive(t, dir, "0.11.2", record), &logs)
	require.NoError(t, os.WriteFile(opts.OverridesPath, []byte("tests:\n  icmp:\n    version: 2013010100\n"), 0o600))

	require.NoError(t, Run(context.Background(), opts, &out))
	require.Contains(t, out.String(), "icmp: 84 byte packets, 0 target(s), no responses")
}

func TestRunSkipsTestsNewerThanClient(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out, logs bytes.Buffer
	records := []harness.Record{
		skeletonRecord("amp-a", 1),
		{Test: "udpstream", Version: harness.UDPStreamVersion, Timestamp: 5, Data: json.RawMessage(`{}`)},
	}
	opts := testOptions(t, dir, writeArchive(t, dir, "0.5.1", records...), &logs)

	require.NoError(t, Run(context.Background(), opts, &out))
	require.Contains(t, out.String(), "skipped=1")
	require.NotContains(t, out.String(), "[udpstream]")
	require.Contains(t, logs.String(), "skipping udpstream")
}

func TestRunTestFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out, logs bytes.Buffer
	opts := testOptions(t, dir, writeArchive(t, dir, "0.11.2", mixedRecords()...), &logs)

	opts.Tests = []string{"skeleton"}
	require.NoError(t, Run(context.Background(), opts, &out))
	require.NotContains(t, out.String(), "[youtube]")

	opts.Tests = []string{"skeleton,youtube"}
	err := Run(context.Background(), opts, &out)
	var unknown *harness.UnknownTestError
	require.ErrorAs(t, err, &unknown)
	require.EqualError(t, err, "decode: test filter: Unknown test: youtube")

	opts.Tests = []string{"dns"}
	require.ErrorIs(t, Run(context.Background(), opts, &out), errNoSelectedRecords)
}

func TestRunClientConstraint(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out, logs bytes.Buffer
	opts := testOptions(t, dir, writeArchive(t, dir, "0.8.0", skeletonRecord("amp-a", 1)), &logs)

	opts.MinClient = ">= 0.9.0"
	require.ErrorIs(t, Run(context.Background(), opts, &out), errClientConstraint)

	opts.MinClient = "not a range"
	require.ErrorIs(t, Run(context.Background(), opts, &out), errInvalidConstraint)

	opts.MinClient = "^0.8"
	require.NoError(t, Run(context.Background(), opts, &out))
}

func TestRunInputErrors(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.ErrorIs(t, Run(context.Background(), Options{}, &out), errMissingArchivePath)

	dir := t.TempDir()
	var logs bytes.Buffer
	opts := testOptions(t, dir, writeArchive(t, dir, "0.11.2"), &logs)
	require.ErrorIs(t, Run(context.Background(), opts, &out), errEmptyArchive)

	opts = testOptions(t, dir, writeArchive(t, dir, "eleven", skeletonRecord("amp-a", 1)), &logs)
	require.ErrorIs(t, Run(context.Background(), opts, &out), errInvalidClient)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeArchive(t, dir, "0.11.2", mixedRecords()...)

	var out bytes.Buffer
	require.NoError(t, Check(path, &out))
	require.Contains(t, out.String(), "3 record(s) from amp-wlg 0.11.2")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"schema":1,"records":[]}`), 0o600))
	var schemaErr *ampsave.SchemaError
	require.ErrorAs(t, Check(bad, &out), &schemaErr)

	require.ErrorIs(t, Check("", &out), errMissingArchivePath)
}

func TestRunWritesProfiles(t *testing.T) {
	// Only one CPU profile can be active per process, so this test does
	// not run in parallel with itself and is the only one that sets
	// PprofCPU.
	dir := t.TempDir()
	var out, logs bytes.Buffer
	opts := testOptions(t, dir, writeArchive(t, dir, "0.11.2", skeletonRecord("amp-a", 1)), &logs)
	opts.PprofCPU = filepath.Join(dir, "profiles", "cpu.out")
	opts.PprofHeap = filepath.Join(dir, "profiles", "heap.out")
	opts.PprofAllocs = filepath.Join(dir, "profiles", "allocs.out")

	require.NoError(t, Run(context.Background(), opts, &out))

	for name, path := range map[string]string{
		"cpu":    opts.PprofCPU,
		"heap":   opts.PprofHeap,
		"allocs": opts.PprofAllocs,
	} {
		info, err := os.Stat(path)
		require.NoError(t, err, name)
		require.Positive(t, info.Size(), name)
		require.Contains(t, logs.String(), "wrote "+name+" profile to "+path)
	}

	heapAt := strings.Index(logs.String(), "wrote heap profile")
	allocsAt := strings.Index(logs.String(), "wrote allocs profile")
	require.Less(t, heapAt, allocsAt)
}

func TestRunSavesDecodedRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out, logs bytes.Buffer
	opts := testOptions(t, dir, writeArchive(t, dir, "0.11.2", mixedRecords()...), &logs)
	opts.SavePath = filepath.Join(dir, "clean", "results.json")

	require.ErrorIs(t, Run(context.Background(), opts, &out), errDecodeFailed)
	require.Contains(t, logs.String(), "saved 1 of 3 record(s) to "+opts.SavePath)

	saved, err := ampsave.ReadArchive(opts.SavePath)
	require.NoError(t, err)
	require.Equal(t, ampsave.Client{Name: "amp-wlg", Version: "0.11.2"}, saved.Client)
	require.NotEmpty(t, saved.GeneratedAt)
	require.Len(t, saved.Records, 1)
	require.Equal(t, "skeleton", saved.Records[0].Test)

	out.Reset()
	opts = testOptions(t, dir, opts.SavePath, &logs)
	require.NoError(t, Run(context.Background(), opts, &out))
	require.Contains(t, out.String(), "records=1 decoded=1")
}
