// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build !unix

package reaper

import "context"

// listeners reports no listeners on platforms without lsof. Reclamation is
// unsupported there; the subsequent bind remains the authoritative check for
// port availability.
func listeners(ctx context.Context, port int) ([]int, error) {
	return nil, nil
}
