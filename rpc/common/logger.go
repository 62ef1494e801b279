package common

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Leveled logger (implements dragonboat's logger.ILogger)
// --------------------------------------------------------------------------

// leveledLogger writes uniformly formatted lines for our own packages and
// for dragonboat's internals, which log through the same factory.
type leveledLogger struct {
	name  string
	level logger.LogLevel
	out   *log.Logger
}

func (l *leveledLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *leveledLogger) Debugf(format string, args ...interface{}) {
	l.emit(logger.DEBUG, "DEBUG", format, args...)
}

func (l *leveledLogger) Infof(format string, args ...interface{}) {
	l.emit(logger.INFO, "INFO", format, args...)
}

func (l *leveledLogger) Warningf(format string, args ...interface{}) {
	l.emit(logger.WARNING, "WARN", format, args...)
}

func (l *leveledLogger) Errorf(format string, args ...interface{}) {
	l.emit(logger.ERROR, "ERROR", format, args...)
}

func (l *leveledLogger) Panicf(format string, args ...interface{}) {
	if l.level >= logger.CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

// emit drops the line if the level is filtered, otherwise formats and writes it
func (l *leveledLogger) emit(level logger.LogLevel, tag string, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	l.out.Printf("%-5s | %-15s | %s", tag, l.name, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger is the logger factory registered with dragonboat
func CreateLogger(pkgName string) logger.ILogger {
	return &leveledLogger{
		name:  pkgName,
		level: logger.INFO,
		out:   log.New(os.Stdout, "", log.Ldate|log.Ltime),
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// loggerNames lists every logger whose level follows the configured one:
// dragonboat's internal loggers plus our own packages.
var loggerNames = []string{
	// dragonboat internals
	"raft", "raftdb", "rsm", "transport", "dragonboat", "grpc", "util", "logdb",
	// our packages
	"store", "transport/rpc", "rpc",
}

// InitLoggers installs the factory and applies the configured log level to
// all known loggers
func InitLoggers(config ServerConfig) {
	logger.SetLoggerFactory(CreateLogger)

	level := parseLogLevel(config.LogLevel)
	for _, name := range loggerNames {
		logger.GetLogger(name).SetLevel(level)
	}
}

// parseLogLevel converts a level name to logger.LogLevel
func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG
	case "info":
		return logger.INFO
	case "warning", "warn":
		return logger.WARNING
	case "error":
		return logger.ERROR
	default:
		panic(fmt.Sprintf("invalid log level: %s. must be one of debug, info, warn, error", level))
	}
}
