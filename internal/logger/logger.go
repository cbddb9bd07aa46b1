// Package logger is jxtract's dual file+console leveled logger,
// adapted from the teacher's logger: one log file per run plus
// highlighted console lines for the operator, gated by a minimum
// level.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level lists supported log severities.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// Logger writes to a log file and, optionally, the console.
type Logger struct {
	mu          sync.Mutex
	fileLogger  *log.Logger
	consoleLog  *log.Logger
	level       Level
	console     bool
	logFile     *os.File
	logFilePath string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init creates the global logger. logFilePrefix names the log file
// (prefix.log) under logDir; consoleEnabled additionally mirrors
// WARN/ERROR lines to stdout (Console lines go to stdout either way).
func Init(logDir string, level Level, logFilePrefix string, consoleEnabled bool) error {
	var initErr error
	once.Do(func() {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			initErr = fmt.Errorf("logger: create log dir: %w", err)
			return
		}

		if logFilePrefix == "" {
			logFilePrefix = "jxtract"
		}
		logFilePath := filepath.Join(logDir, logFilePrefix+".log")

		logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			initErr = fmt.Errorf("logger: open log file: %w", err)
			return
		}

		defaultLogger = &Logger{
			fileLogger:  log.New(logFile, "", 0),
			consoleLog:  log.New(os.Stdout, "", 0),
			level:       level,
			console:     consoleEnabled,
			logFile:     logFile,
			logFilePath: logFilePath,
		}
	})
	return initErr
}

// Close shuts down the log file.
func Close() error {
	if defaultLogger != nil && defaultLogger.logFile != nil {
		return defaultLogger.logFile.Close()
	}
	return nil
}

// GetLogFilePath returns the backing log file path.
func GetLogFilePath() string {
	if defaultLogger != nil {
		return defaultLogger.logFilePath
	}
	return ""
}

func formatMessage(level Level, format string, args ...interface{}) string {
	timestamp := time.Now().Format("2006/01/02 15:04:05")
	return fmt.Sprintf("%s [%s] %s", timestamp, levelNames[level], fmt.Sprintf(format, args...))
}

func logToFile(level Level, format string, args ...interface{}) {
	if defaultLogger == nil {
		return
	}
	if level < defaultLogger.level {
		return
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.fileLogger.Println(formatMessage(level, format, args...))
}

func logToConsole(level Level, format string, args ...interface{}) {
	if defaultLogger == nil {
		fmt.Printf(format+"\n", args...)
		return
	}
	if !defaultLogger.console {
		return
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	timestamp := time.Now().Format("2006/01/02 15:04:05")
	defaultLogger.consoleLog.Printf("%s [jxtract] %s", timestamp, fmt.Sprintf(format, args...))
}

func logToBoth(level Level, format string, args ...interface{}) {
	logToFile(level, format, args...)
	logToConsole(level, format, args...)
}

// Debug logs a debug-level message (file only; console never shows DEBUG).
func Debug(format string, args ...interface{}) {
	logToFile(DEBUG, format, args...)
}

// Info logs an info-level message (file only).
func Info(format string, args ...interface{}) {
	logToFile(INFO, format, args...)
}

// Warn logs a warning (file + console, when console output is enabled).
func Warn(format string, args ...interface{}) {
	logToBoth(WARN, format, args...)
}

// Error logs an error (file + console, when console output is enabled).
func Error(format string, args ...interface{}) {
	logToBoth(ERROR, format, args...)
}

// Console always prints to stdout (regardless of the console-enabled
// setting) and mirrors the line into the log file - for the handful of
// status lines (startup banner, final summary) the operator should
// always see.
func Console(format string, args ...interface{}) {
	if defaultLogger == nil {
		fmt.Printf(format+"\n", args...)
	} else {
		defaultLogger.mu.Lock()
		timestamp := time.Now().Format("2006/01/02 15:04:05")
		defaultLogger.consoleLog.Printf("%s [jxtract] %s", timestamp, fmt.Sprintf(format, args...))
		defaultLogger.mu.Unlock()
	}
	logToFile(INFO, format, args...)
}

// Writer returns an io.Writer suitable for redirecting the standard
// library's log package into the same file.
func Writer() io.Writer {
	if defaultLogger != nil {
		return defaultLogger.logFile
	}
	return os.Stdout
}
