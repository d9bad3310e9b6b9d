package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const activityTimeLayout = "2006-01-02 15:04:05"

// ActivityLogger appends one line per user action to the activity log:
// [time] [UserID: N] [IP: x] [Action: a] [Details: d]
type ActivityLogger struct {
	log   *zap.Logger
	close func()
}

// NewActivityLogger opens (creating if needed) the log file at path
func NewActivityLogger(path string) (*ActivityLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	sink, closeSink, err := zap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity log: %w", err)
	}
	l := newActivityLogger(sink, zapcore.DefaultClock)
	l.close = closeSink
	return l, nil
}

// NewActivityLoggerWriter logs to an arbitrary writer
func NewActivityLoggerWriter(w io.Writer) *ActivityLogger {
	return newActivityLogger(zapcore.AddSync(w), zapcore.DefaultClock)
}

func newActivityLogger(sink zapcore.WriteSyncer, clock zapcore.Clock) *ActivityLogger {
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + t.Format(activityTimeLayout) + "]")
		},
	})
	core := zapcore.NewCore(encoder, zapcore.Lock(sink), zapcore.InfoLevel)
	return &ActivityLogger{log: zap.New(core, zap.WithClock(clock))}
}

// Log records action by userID from ip; details is optional
func (l *ActivityLogger) Log(userID uint, ip, action, details string) {
	if l == nil {
		return
	}
	if ip == "" {
		ip = "unknown"
	}

	msg := fmt.Sprintf("[UserID: %d] [IP: %s] [Action: %s]", userID, ip, action)
	if details != "" {
		msg += fmt.Sprintf(" [Details: %s]", details)
	}
	l.log.Info(msg)
}

// Close flushes the log and closes the file when there is one
func (l *ActivityLogger) Close() error {
	err := l.log.Sync()
	if l.close != nil {
		l.close()
	}
	return err
}
