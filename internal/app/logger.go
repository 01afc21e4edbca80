package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the diagnostic logger. It writes to stderr so it never
// mixes with command output, and stays at warn level unless verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	zcfg.DisableStacktrace = !verbose
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if flagNoColor {
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	log, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Named("minerva"), nil
}
