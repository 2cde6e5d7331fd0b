// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"bytes"
	"net/http"
)

// responseWriter is a thin decorator around [http.ResponseWriter] that
// intercepts WriteHeader and Write calls to capture response metadata.
//
// It is used by the logging and metrics middleware to observe the
// status code and response size, and by the audit middleware to capture
// the full response body of mutating requests. WriteHeader is forwarded
// to the underlying writer exactly once; subsequent calls are ignored,
// mirroring the [http.ResponseWriter] contract.
type responseWriter struct {
	http.ResponseWriter

	// status is the HTTP status code recorded on the first WriteHeader
	// call. Zero until WriteHeader (explicit or implicit) runs.
	status int

	wroteHeader bool

	// size is the running total of bytes written to the response body.
	size int

	// body accumulates the response payload when captureBody is set.
	// Left untouched otherwise so non-auditing middleware pays nothing.
	captureBody bool
	body        bytes.Buffer
}

// WriteHeader records the status code and forwards it to the underlying
// writer exactly once.
func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write forwards b to the underlying writer, accumulating the byte count
// and, when capture is enabled, the payload itself. An implicit
// WriteHeader(http.StatusOK) matches the standard library's behaviour.
func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	if w.captureBody {
		w.body.Write(b[:n])
	}
	return n, err
}
