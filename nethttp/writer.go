package nethttp

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
)

// responseWriter wraps http.ResponseWriter to track whether headers have
// been sent (Context.Responded) and to route writes through an optional
// compressing writer. Grounded in the teacher's writer.go rexWriter.
type responseWriter struct {
	raw        http.ResponseWriter
	compWriter io.WriteCloser
	status     int
	written    int
	headerSent bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{raw: w, status: http.StatusOK}
}

// Header returns the header map that will be sent by WriteHeader.
func (w *responseWriter) Header() http.Header { return w.raw.Header() }

// WriteHeader sends the response header once; later calls are no-ops, the
// same guard the teacher's rexWriter uses to tolerate accidental double
// writes from handler code.
func (w *responseWriter) WriteHeader(status int) {
	if w.headerSent {
		return
	}
	w.raw.WriteHeader(status)
	w.status = status
	w.headerSent = true
}

// Write implicitly sends a 200 header if none was sent yet, matching
// net/http.ResponseWriter's documented behavior.
func (w *responseWriter) Write(p []byte) (int, error) {
	if !w.headerSent {
		w.WriteHeader(http.StatusOK)
	}
	var dst io.Writer = w.raw
	if w.compWriter != nil {
		dst = w.compWriter
	}
	n, err := dst.Write(p)
	w.written += n
	return n, err
}

// Close flushes and closes the compressing writer, if one is active. It is
// the caller's responsibility to invoke this once the response is final.
func (w *responseWriter) Close() error {
	if w.compWriter != nil {
		return w.compWriter.Close()
	}
	return nil
}

// Flush implements http.Flusher passthrough.
func (w *responseWriter) Flush() {
	if f, ok := w.raw.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements http.Hijacker passthrough.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.raw.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("nethttp: underlying ResponseWriter does not support Hijack")
	}
	return h.Hijack()
}
