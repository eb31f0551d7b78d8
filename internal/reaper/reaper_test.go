// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package reaper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"testing"

	"go.astrophena.name/servedir/internal/testutil"
)

func TestReapNoListener(t *testing.T) {
	t.Parallel()

	r := New(t.Logf)
	r.lookup = func(context.Context, int) ([]int, error) { return nil, nil }
	r.kill = func(pid int) error {
		t.Fatalf("kill must not be called, got PID %d", pid)
		return nil
	}

	r.Reap(context.Background(), 8000)
}

func TestReapLookupErrorSwallowed(t *testing.T) {
	t.Parallel()

	var logged strings.Builder
	logf := func(format string, args ...any) {
		fmt.Fprintf(&logged, format+"\n", args...)
	}

	r := New(logf)
	r.lookup = func(context.Context, int) ([]int, error) {
		return nil, errors.New("process table unavailable")
	}
	r.kill = func(pid int) error {
		t.Fatalf("kill must not be called, got PID %d", pid)
		return nil
	}

	// Must not panic or propagate the error.
	r.Reap(context.Background(), 8000)

	if !strings.Contains(logged.String(), "process table unavailable") {
		t.Errorf("lookup failure must be logged, got: %q", logged.String())
	}
}

func TestReapKillsEveryListener(t *testing.T) {
	t.Parallel()

	r := New(t.Logf)
	r.lookup = func(context.Context, int) ([]int, error) { return []int{101, 102}, nil }

	var killed []int
	r.kill = func(pid int) error {
		killed = append(killed, pid)
		return nil
	}

	r.Reap(context.Background(), 8000)
	testutil.AssertEqual(t, killed, []int{101, 102})
}

func TestReapKillFailureSwallowed(t *testing.T) {
	t.Parallel()

	r := New(t.Logf)
	r.lookup = func(context.Context, int) ([]int, error) { return []int{101, 102}, nil }

	var killed []int
	r.kill = func(pid int) error {
		killed = append(killed, pid)
		if pid == 101 {
			// Simulate the race where the process exited after lookup.
			return errors.New("no such process")
		}
		return nil
	}

	r.Reap(context.Background(), 8000)

	// The failed kill must not stop the remaining ones.
	testutil.AssertEqual(t, killed, []int{101, 102})
}

func TestListenersFreePort(t *testing.T) {
	t.Parallel()
	requireLsof(t)

	port := freePort(t)

	pids, err := listeners(context.Background(), port)
	if err != nil {
		t.Fatal(err)
	}
	if len(pids) != 0 {
		t.Fatalf("free port %d must have no listeners, got %v", port, pids)
	}
}

// TestReapFreesPort uses the real lookup against our own listening socket and
// replaces the kill with closing it, so that the test does not shoot itself.
func TestReapFreesPort(t *testing.T) {
	t.Parallel()
	requireLsof(t)

	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	r := New(t.Logf)
	r.kill = func(pid int) error {
		if pid != os.Getpid() {
			t.Fatalf("lookup found PID %d, want our own %d", pid, os.Getpid())
		}
		return l.Close()
	}

	r.Reap(context.Background(), port)

	// The port must be bindable again.
	l2, err := net.Listen("tcp", l.Addr().String())
	if err != nil {
		t.Fatalf("port %d is not free after reap: %v", port, err)
	}
	l2.Close()
}

func requireLsof(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("lsof"); err != nil {
		t.Skip("lsof not found in PATH")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
