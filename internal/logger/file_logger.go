package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the live session logger. Every entry goes to a JSON log file
// and, when enabled, to stdout in console format.
type Logger struct {
	symbol   string
	interval string
	path     string
	file     *os.File
	zap      *zap.Logger
}

// Options tune where the session log goes
type Options struct {
	Dir     string        // default "logs"
	Console bool          // mirror entries to stdout
	Level   zapcore.Level // default info
	Now     func() time.Time
}

// NewLogger creates a logs/<SYMBOL>_<interval>_<date>.log session logger with console output
func NewLogger(symbol, interval string) (*Logger, error) {
	return NewLoggerWithOptions(symbol, interval, Options{Console: true})
}

// NewLoggerWithOptions creates a session logger with explicit options
func NewLoggerWithOptions(symbol, interval string, opts Options) (*Logger, error) {
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s.log", symbol, interval, opts.Now().Format("2006-01-02"))
	logPath := filepath.Join(opts.Dir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.NewAtomicLevelAt(opts.Level)
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level),
	}
	if opts.Console {
		consoleConfig := zap.NewDevelopmentEncoderConfig()
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(os.Stdout), level))
	}

	l := &Logger{
		symbol:   symbol,
		interval: interval,
		path:     logPath,
		file:     file,
		zap:      zap.New(zapcore.NewTee(cores...)).With(zap.String("symbol", symbol), zap.String("interval", interval)),
	}

	l.zap.Info("session started", zap.String("log_file", filename))
	return l, nil
}

// Path returns the log file location
func (l *Logger) Path() string {
	return l.path
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.zap.Info(fmt.Sprintf(format, args...))
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.zap.Warn(fmt.Sprintf(format, args...))
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.zap.Error(fmt.Sprintf(format, args...))
}

// Trade logs an executed trading action with structured fields
func (l *Logger) Trade(msg string, fields ...zap.Field) {
	l.zap.Info(msg, append([]zap.Field{zap.String("kind", "trade")}, fields...)...)
}

// Close writes the session footer, flushes and closes the file
func (l *Logger) Close() error {
	l.zap.Info("session stopped")
	_ = l.zap.Sync()
	return l.file.Close()
}
