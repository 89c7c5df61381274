package optimizer

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides verbose logging for optimizer decisions.
type Logger struct {
	enabled bool
	sugar   *zap.SugaredLogger
}

// NewLogger creates a new logger writing to stderr.
func NewLogger(enabled bool) *Logger {
	l := &Logger{enabled: enabled}
	l.SetOutput(os.Stderr)
	return l
}

// SetOutput sets the output destination for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	if !l.enabled {
		l.sugar = zap.NewNop().Sugar()
		return
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), zapcore.DebugLevel)
	l.sugar = zap.New(core).Named("regopt").Sugar()
}

// Log logs a message if verbose mode is enabled.
func (l *Logger) Log(format string, args ...interface{}) {
	if l.Enabled() {
		l.sugar.Infof(format, args...)
	}
}

// Logw logs a message with structured key/value pairs.
func (l *Logger) Logw(msg string, keysAndValues ...interface{}) {
	if l.Enabled() {
		l.sugar.Infow(msg, keysAndValues...)
	}
}

// Section logs a section header.
func (l *Logger) Section(name string) {
	if l.Enabled() {
		l.sugar.Infof("=== %s ===", name)
	}
}

// Enabled returns whether verbose logging is enabled.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if !l.Enabled() {
		return nil
	}
	return l.sugar.Sync()
}
