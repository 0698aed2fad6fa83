// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package decode

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

type runMetrics struct {
	Records    int
	Decoded    int
	Skipped    int
	Mismatched int
	Unknown    int
	Malformed  int
	Duration   time.Duration
	CPUSeconds float64
}

func readCPUSeconds() float64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}

	user := float64(ru.Utime.Sec) + float64(ru.Utime.Usec)/1_000_000
	sys := float64(ru.Stime.Sec) + float64(ru.Stime.Usec)/1_000_000

	return user + sys
}

func formatMetrics(m runMetrics) string {
	return fmt.Sprintf("records=%d decoded=%d skipped=%d version_mismatch=%d unknown_test=%d malformed=%d duration=%s cpu=%.4fs",
		m.Records,
		m.Decoded,
		m.Skipped,
		m.Mismatched,
		m.Unknown,
		m.Malformed,
		m.Duration,
		m.CPUSeconds,
	)
}
