package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	// LogLevelQuiet suppresses all output except critical errors
	LogLevelQuiet LogLevel = "quiet"
	// LogLevelNormal shows standard operational messages
	LogLevelNormal LogLevel = "normal"
	// LogLevelVerbose shows detailed operational information
	LogLevelVerbose LogLevel = "verbose"
	// LogLevelDebug shows all debug information
	LogLevelDebug LogLevel = "debug"
)

// Logger provides structured logging capabilities
type Logger struct {
	logger *logrus.Logger
	level  LogLevel
}

// Config holds logger configuration
type Config struct {
	Level      LogLevel
	Output     io.Writer
	Format     string // "text" or "json"
	ShowCaller bool
	LogFile    string
}

// NewLogger creates a new logger with the specified configuration
func NewLogger(config Config) (*Logger, error) {
	logger := logrus.New()

	// Set output
	if config.Output != nil {
		logger.SetOutput(config.Output)
	} else {
		logger.SetOutput(os.Stdout)
	}

	// Set format
	switch config.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   false,
		})
	}

	// Set log level based on our custom levels
	switch config.Level {
	case LogLevelQuiet:
		logger.SetLevel(logrus.ErrorLevel)
	case LogLevelNormal:
		logger.SetLevel(logrus.InfoLevel)
	case LogLevelVerbose:
		logger.SetLevel(logrus.DebugLevel)
	case LogLevelDebug:
		logger.SetLevel(logrus.TraceLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	// Enable caller reporting if requested
	if config.ShowCaller {
		logger.SetReportCaller(true)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				filename := filepath.Base(f.File)
				return fmt.Sprintf("%s()", f.Function), fmt.Sprintf("%s:%d", filename, f.Line)
			},
		})
	}

	// Set up file logging if specified
	if config.LogFile != "" {
		file, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.LogFile, err)
		}

		// Use multi-writer to write to both file and stdout
		if config.Output == nil {
			logger.SetOutput(io.MultiWriter(os.Stdout, file))
		} else {
			logger.SetOutput(io.MultiWriter(config.Output, file))
		}
	}

	return &Logger{
		logger: logger,
		level:  config.Level,
	}, nil
}

// NewDefaultLogger creates a logger with default configuration
func NewDefaultLogger() *Logger {
	config := Config{
		Level:      LogLevelNormal,
		Output:     os.Stdout,
		Format:     "text",
		ShowCaller: false,
	}

	logger, _ := NewLogger(config)
	return logger
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.logger.WithFields(fields)
}

// WithField returns a logger with a single additional field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.logger.WithField(key, value)
}

// Pipeline operation logging methods

// LogEnvironmentDetection logs the outcome of environment detection
func (l *Logger) LogEnvironmentDetection(siteRoot string, containerized bool, composeDir string, duration time.Duration) {
	fields := logrus.Fields{
		"operation":     "environment_detection",
		"site_root":     siteRoot,
		"containerized": containerized,
		"duration":      duration.String(),
	}
	if composeDir != "" {
		fields["compose_dir"] = composeDir
	}

	l.logger.WithFields(fields).Info("Environment detection completed")
}

// LogDialectResolution logs the resolved database dialect. Low-confidence
// results come from the fail-open default, not from a positive probe.
func (l *Logger) LogDialectResolution(dialect string, source string, lowConfidence bool) {
	fields := logrus.Fields{
		"operation": "dialect_resolution",
		"dialect":   dialect,
		"source":    source,
	}

	if lowConfidence {
		fields["confidence"] = "low"
		l.logger.WithFields(fields).Warn("Dialect defaulted, no probe was conclusive")
	} else {
		l.logger.WithFields(fields).Info("Database dialect resolved")
	}
}

// LogDumpExecution logs a database dump attempt. The command line is never
// included because it may carry credentials.
func (l *Logger) LogDumpExecution(database string, containerized bool, size int64, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation":     "database_dump",
		"database":      database,
		"containerized": containerized,
		"duration":      duration.String(),
	}

	if err != nil {
		fields["error"] = err.Error()
		l.logger.WithFields(fields).Error("Database dump failed")
	} else {
		fields["size_bytes"] = size
		l.logger.WithFields(fields).Info("Database dump completed")
	}
}

// LogRestoreExecution logs a database restore attempt
func (l *Logger) LogRestoreExecution(database string, containerized bool, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation":     "database_restore",
		"database":      database,
		"containerized": containerized,
		"duration":      duration.String(),
	}

	if err != nil {
		fields["error"] = err.Error()
		l.logger.WithFields(fields).Error("Database restore failed")
	} else {
		l.logger.WithFields(fields).Info("Database restore completed")
	}
}

// LogArchiveOperation logs packaging and extraction operations
func (l *Logger) LogArchiveOperation(action string, archivePath string, entries int, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation":    "archive_" + action,
		"archive_path": archivePath,
		"entries":      entries,
		"duration":     duration.String(),
	}

	if err != nil {
		fields["error"] = err.Error()
		l.logger.WithFields(fields).Error("Archive operation failed")
	} else {
		l.logger.WithFields(fields).Info("Archive operation completed")
	}
}

// Standard logging methods

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.logger.Info(msg)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.logger.Debug(msg)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.logger.Warn(msg)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.logger.Error(msg)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

// GetLevel returns the configured log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// SetOutput changes the logger output destination
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}
