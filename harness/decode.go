// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package harness

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pion/logging"
)

const loggerScope = "ampsave"

// Record is one saved test result as written by a client.
type Record struct {
	Test      string          `json:"test"`
	Version   int             `json:"version"`
	Timestamp int64           `json:"timestamp"`
	Source    string          `json:"source,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// Outcome is the result of decoding a single record.
type Outcome struct {
	Index  int
	Record Record
	Result Result
	Err    error
}

func (o Outcome) Passed() bool {
	return o.Err == nil && o.Result != nil
}

type Decoder struct {
	registry *Registry
	log      logging.LeveledLogger
}

// NewDecoder returns a decoder over registry. A nil factory logs with the
// pion default logger factory.
func NewDecoder(registry *Registry, factory logging.LoggerFactory) (*Decoder, error) {
	if registry == nil {
		return nil, errNilRegistry
	}
	if factory == nil {
		factory = logging.NewDefaultLoggerFactory()
	}

	return &Decoder{registry: registry, log: factory.NewLogger(loggerScope)}, nil
}

// Decode looks up rec.Test, checks its version and decodes its data.
// Harness faults are returned as is.
func (d *Decoder) Decode(ctx context.Context, rec Record) (Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	test, err := d.registry.Lookup(rec.Test)
	if err != nil {
		return nil, err
	}
	if err := CheckVersion(rec.Version, test.Version); err != nil {
		return nil, err
	}

	result, err := test.Decode(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rec.Test, err)
	}
	d.log.Debugf("decoded %s record from %s", rec.Test, rec.Source)

	return result, nil
}

// DecodeAll decodes records in order. Failures are kept on their Outcome
// and logged, unless strict is set, in which case the first failure is
// returned along with the outcomes decoded so far.
func (d *Decoder) DecodeAll(ctx context.Context, records []Record, strict bool) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		result, err := d.Decode(ctx, rec)
		outcome := Outcome{Index: i, Record: rec, Result: result, Err: err}
		outcomes = append(outcomes, outcome)
		if err == nil {
			continue
		}
		if strict {
			return outcomes, fmt.Errorf("record %d: %w", i, err)
		}
		if fault, ok := AsFault(err); ok {
			d.log.Warnf("record %d: %s: %s", i, fault.Kind(), fault)
		} else {
			d.log.Warnf("record %d: %v", i, err)
		}
	}

	return outcomes, nil
}
