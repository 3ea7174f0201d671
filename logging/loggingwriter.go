package logging

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
)

// LoggingWriter wraps a http.ResponseWriter and records the status code
// and the number of bytes written, for the access log.
type LoggingWriter struct {
	writer http.ResponseWriter
	code   int
	bytes  int64
}

// NewLoggingWriter wraps w.
func NewLoggingWriter(w http.ResponseWriter) *LoggingWriter {
	return &LoggingWriter{writer: w}
}

func (lw *LoggingWriter) Write(data []byte) (count int, err error) {
	if lw.code == 0 {
		lw.code = http.StatusOK
	}

	count, err = lw.writer.Write(data)
	lw.bytes += int64(count)
	return
}

// WriteHeader records only the first status code, later calls are
// ignored by net/http too.
func (lw *LoggingWriter) WriteHeader(code int) {
	lw.writer.WriteHeader(code)
	if lw.code == 0 {
		lw.code = code
	}
}

func (lw *LoggingWriter) Header() http.Header {
	return lw.writer.Header()
}

func (lw *LoggingWriter) Flush() {
	if f, ok := lw.writer.(http.Flusher); ok {
		f.Flush()
	}
}

func (lw *LoggingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hij, ok := lw.writer.(http.Hijacker)
	if ok {
		return hij.Hijack()
	}

	return nil, nil, fmt.Errorf("could not hijack connection")
}

// Unwrap returns the wrapped writer, for http.ResponseController.
func (lw *LoggingWriter) Unwrap() http.ResponseWriter {
	return lw.writer
}

// StatusCode returns the status code sent, 200 when the handler wrote
// only a body, and 0 when nothing was written.
func (lw *LoggingWriter) StatusCode() int {
	return lw.code
}

// Bytes returns the number of body bytes written.
func (lw *LoggingWriter) Bytes() int64 {
	return lw.bytes
}
