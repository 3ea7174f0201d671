/*
Package logging configures the application log and writes the access log
of the surlex request multiplexer.

# Application log

Application messages go through logrus, imported as log:

	import log "github.com/sirupsen/logrus"

	log.Warnf("macro %q redefined", name)

Init sets the output, the level and an optional prefix of the entries, and
can switch them to JSON. Components that take a Logger, like the compile
cache, use DefaultLog unless told otherwise; tests pass a
loggingtest.TestLogger to wait for expected entries.

# Access log

LogAccess writes one line per served request in Apache combined log
format, followed by the duration in milliseconds, the requested host and
the matched surlex pattern ("-" when nothing matched):

	127.0.0.1 - - [10/Oct/2000:13:55:36 -0700] "GET /users/42 HTTP/1.1" 200 5 "" "curl/8.0" 3 api.example.org "/users/<id:#>"

With JSON enabled, the same values, and any additional fields, are
written as a JSON object. Init can redirect or disable the access log.
*/
package logging
