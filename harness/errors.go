// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package harness decodes saved amplet2 measurement results and defines the
// faults raised while doing so.
package harness

import (
	"errors"
	"fmt"
)

// ErrFault matches any harness fault with errors.Is.
var ErrFault = errors.New("harness fault")

var (
	errEmptyTestName   = errors.New("harness: test name is required")
	errDuplicateTest   = errors.New("harness: duplicate test name")
	errMissingDecoder  = errors.New("harness: test has no decoder")
	errMalformedResult = errors.New("harness: malformed result data")
	errNilRegistry     = errors.New("harness: registry is required")
	errInvalidSince    = errors.New("harness: invalid since version")
)

// Kind tells the harness faults apart without looking at their text.
type Kind int

const (
	KindVersionMismatch Kind = iota + 1
	KindUnknownTest
)

func (k Kind) String() string {
	switch k {
	case KindVersionMismatch:
		return "version-mismatch"
	case KindUnknownTest:
		return "unknown-test"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Fault is implemented by every error the harness raises on purpose.
type Fault interface {
	error
	Kind() Kind
}

var (
	_ Fault = (*VersionMismatchError)(nil)
	_ Fault = (*UnknownTestError)(nil)
)

// VersionMismatchError reports a result whose test version differs from
// the version the decoder understands. Got and Expected are not compared
// at construction.
type VersionMismatchError struct {
	Got      int
	Expected int
}

func NewVersionMismatchError(got, expected int) *VersionMismatchError {
	return &VersionMismatchError{Got: got, Expected: expected}
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("%d != %d", e.Got, e.Expected)
}

func (e *VersionMismatchError) Kind() Kind { return KindVersionMismatch }

func (e *VersionMismatchError) Is(target error) bool { return target == ErrFault }

// UnknownTestError reports a test name that is not in the registry. Test
// holds the name exactly as it was looked up.
type UnknownTestError struct {
	Test string
}

func NewUnknownTestError(test string) *UnknownTestError {
	return &UnknownTestError{Test: test}
}

func (e *UnknownTestError) Error() string {
	return "Unknown test: " + e.Test
}

func (e *UnknownTestError) Kind() Kind { return KindUnknownTest }

func (e *UnknownTestError) Is(target error) bool { return target == ErrFault }

// AsFault returns the first harness fault in err's chain.
func AsFault(err error) (Fault, bool) {
	var fault Fault
	if errors.As(err, &fault) {
		return fault, true
	}

	return nil, false
}

// CountFaults tallies the harness faults in errs by kind. Errors that are
// not faults are counted under zero.
func CountFaults(errs ...error) map[Kind]int {
	counts := make(map[Kind]int)
	for _, err := range errs {
		if err == nil {
			continue
		}
		if fault, ok := AsFault(err); ok {
			counts[fault.Kind()]++
			continue
		}
		counts[0]++
	}

	return counts
}
