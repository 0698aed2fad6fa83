// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package decode

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pion/ampsave/harness"
	"github.com/pion/ampsave/internal/ampsave"
)

type junitSuite struct {
	XMLName   xml.Name    `xml:"testsuite"`
	ID        string      `xml:"id,attr"`
	Name      string      `xml:"name,attr"`
	Hostname  string      `xml:"hostname,attr,omitempty"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	TestCases []junitCase `xml:"testcase"`
}

type junitCase struct {
	Classname string        `xml:"classname,attr"`
	Name      string        `xml:"name,attr"`
	SystemOut string        `xml:"system-out,omitempty"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Details string `xml:",chardata"`
}

func writeJUnitReport(path string, client ampsave.Client, outcomes []harness.Outcome) error {
	if path == "" {
		return nil
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	suite := junitSuite{
		ID:       uuid.NewString(),
		Name:     "ampsave-decode",
		Hostname: client.Name,
		Tests:    len(outcomes),
		Failures: countFailures(outcomes),
	}

	for _, outcome := range outcomes {
		jc := junitCase{
			Classname: "ampsave." + outcome.Record.Test,
			Name:      fmt.Sprintf("record#%d", outcome.Index),
		}
		if outcome.Record.Source != "" {
			jc.Name = fmt.Sprintf("%s#%d", outcome.Record.Source, outcome.Index)
		}
		if outcome.Result != nil {
			jc.SystemOut = outcome.Result.Summary()
		}
		if !outcome.Passed() {
			jc.Failure = failureFor(outcome.Err)
		}
		suite.TestCases = append(suite.TestCases, jc)
	}

	data, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		return err
	}
	data = append([]byte(xml.Header), data...)

	return os.WriteFile(path, data, 0o640)
}

func failureFor(err error) *junitFailure {
	if err == nil {
		return &junitFailure{Message: "no result"}
	}
	if fault, ok := harness.AsFault(err); ok {
		return &junitFailure{Message: fault.Error(), Type: fault.Kind().String(), Details: err.Error()}
	}

	return &junitFailure{Message: "decode error", Type: "error", Details: err.Error()}
}
