package qbit

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger wires the package's log output to the process logger; called
// once from app.Services at startup, the same single-injection-point
// pattern app uses for every other component's constructor.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

func sLogger() *zap.SugaredLogger {
	return logger.Sugar()
}
