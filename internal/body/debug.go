package body

import (
	"go.uber.org/zap"
)

var (
	opsLogger  = zap.NewNop().Sugar()
	diagLogger = zap.NewNop().Sugar()
)

// SetLogger routes the package's ops (warnings, subscriber faults) and diag
// (per-frame lifecycle detail) streams through l. Passing nil mutes both.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	named := l.Named("body")
	opsLogger = named.Sugar()
	diagLogger = named.Named("diag").Sugar()
}

// opsf logs to the ops stream (actionable warnings, faults).
func opsf(format string, args ...interface{}) {
	opsLogger.Warnf(format, args...)
}

// diagf logs to the diag stream (lifecycle transitions, tuning context).
func diagf(format string, args ...interface{}) {
	diagLogger.Debugf(format, args...)
}
