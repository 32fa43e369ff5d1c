package actionlog

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger appends one line per user action to a rotating file
type Logger struct {
	zl *zap.Logger
}

// New creates an action logger writing to path
func New(path string) *Logger {
	return NewWithWriter(zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     30,
	}))
}

// NewWithWriter creates an action logger writing to w
func NewWithWriter(w zapcore.WriteSyncer) *Logger {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: "  ",
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), w, zapcore.InfoLevel)
	return &Logger{zl: zap.New(core)}
}

// Log records an action. content may be empty.
func (l *Logger) Log(userID int64, action, content string, fields ...zap.Field) {
	msg := fmt.Sprintf("user=%d  action=%s", userID, action)
	if content != "" {
		msg += "  content=" + strconv.Quote(content)
	}
	l.zl.Info(msg, fields...)
}

// Sync flushes buffered lines
func (l *Logger) Sync() error {
	return l.zl.Sync()
}
