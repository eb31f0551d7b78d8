// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package reaper frees a TCP port by terminating whatever process is
// listening on it.
package reaper

import (
	"context"
	"os"

	"go.astrophena.name/servedir/internal/logger"
)

// A Reaper locates processes holding a listening socket on a TCP port and
// forcefully terminates them, so the port can be bound again.
//
// Everything it does is best-effort: a port with no listener is the common
// case and a silent success, and lookup or signaling failures are logged at
// most. The caller's subsequent bind is the authoritative check for port
// availability.
type Reaper struct {
	logf logger.Logf

	// used in tests
	lookup func(ctx context.Context, port int) ([]int, error)
	kill   func(pid int) error
}

// New returns a [Reaper] that reports what it did to logf.
func New(logf logger.Logf) *Reaper {
	if logf == nil {
		logf = func(format string, args ...any) {}
	}
	return &Reaper{
		logf:   logf,
		lookup: listeners,
		kill:   kill,
	}
}

// Reap terminates any process that listens on port. It returns once the
// termination signals are dispatched, without waiting for the processes to
// exit.
func (r *Reaper) Reap(ctx context.Context, port int) {
	pids, err := r.lookup(ctx, port)
	if err != nil {
		r.logf("Failed to look up listeners on port %d: %v", port, err)
		return
	}
	if len(pids) == 0 {
		// Nobody holds the port. This is the common case.
		return
	}
	for _, pid := range pids {
		if err := r.kill(pid); err != nil {
			// The process may have exited between lookup and kill.
			r.logf("Failed to kill PID %d listening on port %d: %v", pid, port, err)
			continue
		}
		r.logf("Reclaimed port %d from PID %d.", port, pid)
	}
}

func kill(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}
