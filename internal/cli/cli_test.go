// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"strings"
	"testing"

	"go.astrophena.name/servedir/internal/testutil"
)

func testEnv(args []string) (*Env, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Env{
		Args:   args,
		Getenv: func(string) string { return "" },
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func TestRun(t *testing.T) {
	t.Parallel()

	var gotArgs []string
	app := AppFunc(func(_ context.Context, env *Env) error {
		gotArgs = env.Args
		return nil
	})

	env, _, _ := testEnv([]string{"foo", "bar"})
	if err := Run(context.Background(), app, env); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, gotArgs, []string{"foo", "bar"})
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	app := AppFunc(func(context.Context, *Env) error {
		t.Fatal("app must not run when -version is passed")
		return nil
	})

	env, _, stderr := testEnv([]string{"-version"})
	err := Run(context.Background(), app, env)
	if !errors.Is(err, ErrExitVersion) {
		t.Fatalf("want ErrExitVersion, got %v", err)
	}
	if stderr.String() == "" {
		t.Error("version must be printed to stderr")
	}
	if isPrintableError(err) {
		t.Error("ErrExitVersion must not be printable")
	}
}

func TestRunHelp(t *testing.T) {
	t.Parallel()

	app := AppFunc(func(context.Context, *Env) error { return nil })

	env, _, stderr := testEnv([]string{"-h"})
	err := Run(context.Background(), app, env)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("want flag.ErrHelp, got %v", err)
	}
	if !strings.Contains(stderr.String(), "Available flags:") {
		t.Errorf("usage must list available flags, got: %q", stderr.String())
	}
	if isPrintableError(err) {
		t.Error("flag.ErrHelp must not be printable")
	}
}

func TestRunAppError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("it broke")
	app := AppFunc(func(context.Context, *Env) error { return wantErr })

	env, _, _ := testEnv(nil)
	err := Run(context.Background(), app, env)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want %v, got %v", wantErr, err)
	}
	if !isPrintableError(err) {
		t.Error("app errors must be printable")
	}
}

func TestEnvLogf(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv(nil)
	env.Logf("hello, %s!", "world")
	testutil.AssertEqual(t, stderr.String(), "hello, world!\n")
}
