// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.astrophena.name/servedir/internal/testutil"
)

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	h := Health(mux)

	// Registering twice must return the same handler.
	testutil.AssertEqual(t, Health(mux) == h, true)

	h.RegisterFunc("always ok", func() (string, bool) { return "fine", true })

	get := func() (int, *HealthResponse) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, healthPath, nil)
		mux.ServeHTTP(w, r)

		var hr HealthResponse
		if err := json.Unmarshal(w.Body.Bytes(), &hr); err != nil {
			t.Fatal(err)
		}
		return w.Code, &hr
	}

	code, hr := get()
	testutil.AssertEqual(t, code, http.StatusOK)
	testutil.AssertEqual(t, hr.OK, true)
	testutil.AssertEqual(t, hr.Checks["always ok"], CheckResponse{Status: "fine", OK: true})

	h.RegisterFunc("always broken", func() (string, bool) { return "on fire", false })

	code, hr = get()
	testutil.AssertEqual(t, code, http.StatusInternalServerError)
	testutil.AssertEqual(t, hr.OK, false)
}

func TestHealthDuplicateRegisterPanics(t *testing.T) {
	h := Health(http.NewServeMux())
	h.RegisterFunc("dup", func() (string, bool) { return "", true })

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate RegisterFunc must panic")
		}
	}()
	h.RegisterFunc("dup", func() (string, bool) { return "", true })
}
