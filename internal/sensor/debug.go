package sensor

import (
	"go.uber.org/zap"
)

var (
	opsLogger  = zap.NewNop().Sugar()
	diagLogger = zap.NewNop().Sugar()
)

// SetLogger routes the package's ops and diag streams through l. Passing nil
// mutes both.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	named := l.Named("sensor")
	opsLogger = named.Sugar()
	diagLogger = named.Named("diag").Sugar()
}

// opsf logs to the ops stream (malformed input, read failures).
func opsf(format string, args ...interface{}) {
	opsLogger.Warnf(format, args...)
}

// diagf logs to the diag stream (stream lifecycle).
func diagf(format string, args ...interface{}) {
	diagLogger.Debugf(format, args...)
}
