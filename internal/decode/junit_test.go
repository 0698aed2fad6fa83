// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package decode

import (
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/pion/ampsave/harness"
	"github.com/pion/ampsave/internal/ampsave"
	"github.com/stretchr/testify/require"
)

func TestWriteJUnitReport(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "junit.xml")
	outcomes := []harness.Outcome{
		{Index: 0, Record: harness.Record{Test: "skeleton", Source: "amp-a"}, Result: harness.SkeletonResult{Valid: 1}},
		{Index: 1, Record: harness.Record{Test: "icmp"}, Err: harness.NewVersionMismatchError(1, 2)},
		{Index: 2, Record: harness.Record{Test: "dns"}, Err: errors.New("boom")},
	}

	require.NoError(t, writeJUnitReport(path, ampsave.Client{Name: "amp-wlg"}, outcomes))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var suite junitSuite
	require.NoError(t, xml.Unmarshal(data, &suite))
	_, err = uuid.Parse(suite.ID)
	require.NoError(t, err)
	require.Equal(t, "amp-wlg", suite.Hostname)
	require.Equal(t, 3, suite.Tests)
	require.Equal(t, 2, suite.Failures)
	require.Len(t, suite.TestCases, 3)

	require.Equal(t, "amp-a#0", suite.TestCases[0].Name)
	require.Nil(t, suite.TestCases[0].Failure)
	require.Equal(t, "record#1", suite.TestCases[1].Name)
	require.Equal(t, "version-mismatch", suite.TestCases[1].Failure.Type)
	require.Equal(t, "1 != 2", suite.TestCases[1].Failure.Message)
	require.Equal(t, "decode error", suite.TestCases[2].Failure.Message)
}

func TestWriteJUnitReportNoPath(t *testing.T) {
	t.Parallel()

	require.NoError(t, writeJUnitReport("", ampsave.Client{}, nil))
}
