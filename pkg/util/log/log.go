package log

import (
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logger is the global logger for the process. All pipeline components,
// including the structured per-item diagnostic stream, write through it so
// that everything lands on stderr as logfmt.
var Logger kitlog.Logger = kitlog.NewNopLogger()

// InitLogger installs a levelled logfmt logger on stderr. Unrecognized
// levels fall back to info.
func InitLogger(logLevel string) {
	l := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))

	var opt level.Option
	switch logLevel {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	l = level.NewFilter(l, opt)
	l = kitlog.With(l, "ts", kitlog.DefaultTimestampUTC)

	Logger = l
}
