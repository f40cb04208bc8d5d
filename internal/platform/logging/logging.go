package logging

import (
	"io"

	"github.com/go-kratos/kratos/v2/log"
)

// New builds the process logger: key/value lines on w with timestamp, caller
// and service name, dropping records below level.
func New(w io.Writer, service, version, level string) log.Logger {
	logger := log.With(log.NewStdLogger(w),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.name", service,
		"service.version", version,
	)
	return log.NewFilter(logger, log.FilterLevel(log.ParseLevel(level)))
}
