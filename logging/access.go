package logging

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// remote_host - - [date] "method uri protocol" status response_size "referer" "user_agent" duration_ms requested_host "pattern"
const (
	dateFormat      = "02/Jan/2006:15:04:05 -0700"
	accessLogFormat = `%s - - [%s] "%s %s %s" %d %d "%s" "%s" %d %s "%s"` + "\n"
	noValue         = "-"
)

// the order of the keys follows accessLogFormat
var accessLogKeys = []string{
	"host",
	"timestamp",
	"method",
	"uri",
	"proto",
	"status",
	"response-size",
	"referer",
	"user-agent",
	"duration",
	"requested-host",
	"pattern",
}

// AccessEntry describes a request served by a surlex routed handler.
type AccessEntry struct {

	// The client request.
	Request *http.Request

	// The surlex pattern that matched the request, empty when no
	// pattern matched.
	Pattern string

	// Status code of the response.
	StatusCode int

	// Size of the response body in bytes.
	ResponseSize int64

	// Time spent serving the request.
	Duration time.Duration

	// Time when the request was received.
	RequestTime time.Time
}

type accessLogFormatter struct{}

var accessLog *logrus.Logger

// clientHost returns the first of X-Forwarded-For or the remote address,
// without the port.
func clientHost(r *http.Request) string {
	addr := r.Header.Get("X-Forwarded-For")
	if addr == "" {
		addr = r.RemoteAddr
	}

	if h, _, err := net.SplitHostPort(addr); err == nil {
		addr = h
	}

	if addr == "" {
		return noValue
	}

	return addr
}

func (accessLogFormatter) Format(e *logrus.Entry) ([]byte, error) {
	values := make([]interface{}, len(accessLogKeys))
	for i, key := range accessLogKeys {
		values[i] = e.Data[key]
	}

	return []byte(fmt.Sprintf(accessLogFormat, values...)), nil
}

func accessFields(entry *AccessEntry) logrus.Fields {
	pattern := entry.Pattern
	if pattern == "" {
		pattern = noValue
	}

	f := logrus.Fields{
		"timestamp":      entry.RequestTime.Format(dateFormat),
		"host":           noValue,
		"method":         "",
		"uri":            "",
		"proto":          "",
		"referer":        "",
		"user-agent":     "",
		"requested-host": "",
		"status":         entry.StatusCode,
		"response-size":  entry.ResponseSize,
		"duration":       entry.Duration.Milliseconds(),
		"pattern":        pattern,
	}

	if r := entry.Request; r != nil {
		f["host"] = clientHost(r)
		f["method"] = r.Method
		f["uri"] = r.RequestURI
		f["proto"] = r.Proto
		f["referer"] = r.Referer()
		f["user-agent"] = r.UserAgent()
		f["requested-host"] = r.Host
	}

	return f
}

// LogAccess writes an access log entry in Apache combined log format,
// followed by the duration in milliseconds, the requested host and the
// matched pattern. The additional fields appear only in the JSON format.
func LogAccess(entry *AccessEntry, additional map[string]interface{}) {
	if accessLog == nil || entry == nil {
		return
	}

	fields := accessFields(entry)
	for k, v := range additional {
		fields[k] = v
	}

	accessLog.WithFields(fields).Infoln()
}
