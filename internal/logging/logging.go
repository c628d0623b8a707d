// Package logging builds the go-kit logger shared by the runner and the CLI.
package logging

import (
	"fmt"
	"io"
	"strings"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// New returns a logger writing format ("logfmt" or "json") to w, dropping
// records below levelName (debug, info, warn, error).
func New(levelName, format string, w io.Writer) (kitlog.Logger, error) {
	var logger kitlog.Logger
	switch strings.ToLower(format) {
	case "", "logfmt":
		logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	case "json":
		logger = kitlog.NewJSONLogger(kitlog.NewSyncWriter(w))
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}

	var opt level.Option
	switch strings.ToLower(levelName) {
	case "debug":
		opt = level.AllowDebug()
	case "", "info":
		opt = level.AllowInfo()
	case "warn", "warning":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	case "none":
		opt = level.AllowNone()
	default:
		return nil, fmt.Errorf("unknown log level: %s", levelName)
	}

	logger = level.NewFilter(logger, opt)
	return kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC), nil
}

// Nop discards everything.
func Nop() kitlog.Logger {
	return kitlog.NewNopLogger()
}
