package middleware

import (
	"bytes"
	"net/http"
)

// bufferedWriter holds back an HTML response so it can be converted. A
// response that is not convertible, or that outgrows limit, is switched to
// passthrough and streamed to the client unchanged.
type bufferedWriter struct {
	http.ResponseWriter
	limit int

	status      int
	wroteHeader bool
	decided     bool
	passthrough bool
	buf         bytes.Buffer
}

func newBufferedWriter(w http.ResponseWriter, limit int) *bufferedWriter {
	return &bufferedWriter{ResponseWriter: w, limit: limit, status: http.StatusOK}
}

func (w *bufferedWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code
	if code != http.StatusOK || w.Header().Get("Content-Encoding") != "" {
		w.startPassthrough()
		return
	}
	if ct := w.Header().Get("Content-Type"); ct != "" {
		w.decided = true
		if !isConvertible(ct) {
			w.startPassthrough()
		}
	}
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.passthrough {
		return w.ResponseWriter.Write(p)
	}
	if !w.decided {
		// Without a Content-Type net/http would sniff; do the same.
		w.decided = true
		ct := http.DetectContentType(p)
		w.Header().Set("Content-Type", ct)
		if !isConvertible(ct) {
			w.startPassthrough()
			return w.ResponseWriter.Write(p)
		}
	}
	if w.buf.Len()+len(p) > w.limit {
		w.startPassthrough()
		return w.ResponseWriter.Write(p)
	}
	return w.buf.Write(p)
}

// Flush is a no-op while buffering so streaming handlers cannot push a
// half-converted response out early.
func (w *bufferedWriter) Flush() {
	if !w.passthrough {
		return
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *bufferedWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *bufferedWriter) startPassthrough() {
	if w.passthrough {
		return
	}
	w.passthrough = true
	w.ResponseWriter.WriteHeader(w.status)
	if w.buf.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.buf.Bytes())
		w.buf.Reset()
	}
}

// buffered reports whether the handler produced a complete HTML body that
// is still held back.
func (w *bufferedWriter) buffered() bool {
	return w.wroteHeader && w.decided && !w.passthrough
}
