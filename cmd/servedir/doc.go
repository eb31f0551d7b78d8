// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Servedir previews a static site from a local directory.

Before starting, it frees its port from a previous instance: any process
still listening on the port is forcefully terminated. This makes servedir
safe to re-invoke repeatedly during editing.

# Usage

	$ servedir [flags...] [dir]

With no arguments, servedir serves the current directory on
http://localhost:8000. Press Ctrl+C to stop it.

Paths under /.servedir/ are reserved for the server's own health endpoint
and error page assets.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/servedir/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
