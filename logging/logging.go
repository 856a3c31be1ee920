package logging

import (
	"os"
	"sync/atomic"

	"coordination-api/coordination/types"

	"cosmossdk.io/log"
)

var logger atomic.Pointer[log.Logger]

func init() {
	l := log.NewLogger(os.Stderr).With("module", types.ModuleName)
	logger.Store(&l)
}

// SetLogger replaces the process-wide logger. Intended for main and tests.
func SetLogger(l log.Logger) {
	logger.Store(&l)
}

func Debug(msg string, subSystem types.SubSystem, keyVals ...interface{}) {
	(*logger.Load()).Debug(msg, append(keyVals, "subsystem", subSystem.String())...)
}

func Info(msg string, subSystem types.SubSystem, keyVals ...interface{}) {
	(*logger.Load()).Info(msg, append(keyVals, "subsystem", subSystem.String())...)
}

func Warn(msg string, subSystem types.SubSystem, keyVals ...interface{}) {
	(*logger.Load()).Warn(msg, append(keyVals, "subsystem", subSystem.String())...)
}

func Error(msg string, subSystem types.SubSystem, keyVals ...interface{}) {
	(*logger.Load()).Error(msg, append(keyVals, "subsystem", subSystem.String())...)
}
