// Package logutil builds the process logger from the screen verbosity
// level of the command line.
package logutil

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level maps a screen value to a log level: 0 warn, 1 info, 2 debug.
func Level(screen int) (zapcore.Level, error) {
	switch screen {
	case 0:
		return zapcore.WarnLevel, nil
	case 1:
		return zapcore.InfoLevel, nil
	case 2:
		return zapcore.DebugLevel, nil
	}
	return zapcore.InvalidLevel, fmt.Errorf("screen level %d is not one of 0, 1, 2", screen)
}

// NewLogger returns a console logger writing to w at the level of screen.
func NewLogger(screen int, w io.Writer) (*zap.Logger, error) {
	level, err := Level(screen)
	if err != nil {
		return nil, err
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core), nil
}

// ShortError is zap.Error without the verbose stack.
func ShortError(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", err.Error())
}
