// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"go.astrophena.name/servedir/internal/cli"
	"go.astrophena.name/servedir/internal/logger"
	"go.astrophena.name/servedir/internal/reaper"
	"go.astrophena.name/servedir/internal/web"

	"github.com/fatih/color"
)

func main() { cli.Main(new(engine)) }

const defaultPort = 8000

var errNotDirectory = errors.New("not a directory")

var banner = color.New(color.FgGreen)

type engine struct {
	init sync.Once

	// configuration
	port int
	fs   fs.FS
	logf logger.Logf

	// used in tests
	noServerStart bool
	ready         func()
	reap          func(ctx context.Context, port int)
}

func (e *engine) Flags(fs *flag.FlagSet) {
	fs.IntVar(&e.port, "port", defaultPort, "Listen on `port`.")
}

func (e *engine) Run(ctx context.Context, env *cli.Env) error {
	if len(env.Args) > 1 {
		return fmt.Errorf("%w: expected at most one directory argument", cli.ErrInvalidArgs)
	}
	dir := "."
	if len(env.Args) == 1 {
		dir = env.Args[0]
	}
	if realdir, err := filepath.Abs(dir); err == nil {
		dir = realdir
	}

	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot serve %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("cannot serve %s: %w", dir, errNotDirectory)
	}
	if e.fs == nil {
		e.fs = os.DirFS(dir)
	}

	e.logf = env.Logf
	e.init.Do(e.doInit)

	// Free the port from a previous instance. Best-effort: the bind below is
	// the authoritative check.
	e.reap(ctx, e.port)

	mux := http.NewServeMux()
	mux.Handle("/", e)

	addr := fmt.Sprintf("localhost:%d", e.port)
	banner.Fprintf(env.Stdout, "Serving %s at http://%s.\n", dir, addr)
	fmt.Fprintln(env.Stdout, "Press Ctrl+C to stop.")

	if e.noServerStart {
		return nil
	}

	return web.ListenAndServe(ctx, &web.ListenAndServeConfig{
		Addr:  addr,
		Logf:  e.logf,
		Mux:   mux,
		Ready: e.ready,
	})
}

func (e *engine) doInit() {
	// Serve by default from current directory.
	if e.fs == nil {
		e.fs = os.DirFS(".")
	}
	if e.port == 0 {
		e.port = defaultPort
	}
	// No logger passed? Throw all logs away.
	if e.logf == nil {
		e.logf = func(format string, args ...any) {}
	}
	if e.reap == nil {
		e.reap = reaper.New(e.logf).Reap
	}
}

func (e *engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.init.Do(e.doInit)

	p := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if p == "" {
		p = "."
	}
	if !fs.ValidPath(p) {
		e.respondError(w, web.ErrNotFound)
		return
	}

	fi, err := fs.Stat(e.fs, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.respondError(w, web.ErrNotFound)
			return
		}
		e.respondError(w, fmt.Errorf("reading file info: %w", err))
		return
	}
	if fi.IsDir() {
		p = path.Join(p, "index.html")
		fi, err = fs.Stat(e.fs, p)
		if err != nil {
			e.respondError(w, web.ErrNotFound)
			return
		}
	}

	b, err := fs.ReadFile(e.fs, p)
	if err != nil {
		e.respondError(w, fmt.Errorf("reading file: %w", err))
		return
	}

	http.ServeContent(w, r, fi.Name(), fi.ModTime(), bytes.NewReader(b))
}

func (e *engine) respondError(w http.ResponseWriter, err error) {
	web.RespondError(e.logf, w, err)
}
