// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/pion/logging"
)

// snapshot is a named runtime profile written once decoding has finished.
type snapshot struct {
	name string
	path string
}

// runProfiles collects the pprof output requested for one decode run. The
// CPU profile spans the whole run; heap and allocs are snapshots taken
// after the last record, in that order.
type runProfiles struct {
	log       logging.LeveledLogger
	cpu       *os.File
	cpuPath   string
	snapshots []snapshot
}

func startProfiles(opts Options, log logging.LeveledLogger) (*runProfiles, error) {
	p := &runProfiles{log: log}
	for _, s := range []snapshot{{"heap", opts.PprofHeap}, {"allocs", opts.PprofAllocs}} {
		if s.path != "" {
			p.snapshots = append(p.snapshots, s)
		}
	}
	if opts.PprofCPU == "" {
		return p, nil
	}

	file, err := createProfileFile(opts.PprofCPU)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(file); err != nil {
		return nil, errors.Join(fmt.Errorf("%w: cpu: %w", errProfile, err), file.Close())
	}
	p.cpu = file
	p.cpuPath = opts.PprofCPU
	log.Debugf("cpu profile started, writing to %s", opts.PprofCPU)

	return p, nil
}

// Stop ends the CPU profile and writes the snapshots. Every profile is
// attempted even if an earlier one fails.
func (p *runProfiles) Stop() error {
	var errs []error
	if p.cpu != nil {
		pprof.StopCPUProfile()
		if err := p.cpu.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%w: close cpu: %w", errProfile, err))
		} else {
			p.log.Infof("wrote cpu profile to %s", p.cpuPath)
		}
		p.cpu = nil
	}

	if len(p.snapshots) > 0 {
		runtime.GC()
	}
	for _, s := range p.snapshots {
		if err := s.write(); err != nil {
			errs = append(errs, err)

			continue
		}
		p.log.Infof("wrote %s profile to %s", s.name, s.path)
	}
	p.snapshots = nil

	return errors.Join(errs...)
}

func (s snapshot) write() error {
	prof := pprof.Lookup(s.name)
	if prof == nil {
		return fmt.Errorf("%w: %s unavailable", errProfile, s.name)
	}
	file, err := createProfileFile(s.path)
	if err != nil {
		return err
	}
	if err := prof.WriteTo(file, 0); err != nil {
		return errors.Join(fmt.Errorf("%w: %s: %w", errProfile, s.name, err), file.Close())
	}

	return file.Close()
}

func createProfileFile(path string) (*os.File, error) {
	if err := ensureDir(path); err != nil {
		return nil, fmt.Errorf("%w: %w", errProfile, err)
	}

	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errProfile, err)
	}

	return file, nil
}

// ensureDir creates the parent directory of an output file.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	return os.MkdirAll(dir, 0o750)
}
