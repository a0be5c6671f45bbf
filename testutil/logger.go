package testutil

import (
	"fmt"
	"sync"

	"github.com/theadruss/Clix-App/core"
)

// Logger is a core.Logger that keeps the entries in memory.
type Logger struct {
	mu      sync.Mutex
	Entries []string
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := level + ": " + msg
	for _, arg := range args {
		entry += fmt.Sprintf(" | %v", arg)
	}
	l.Entries = append(l.Entries, entry)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args) }

func (l *Logger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make([]string, 0)
	for _, e := range l.Entries {
		if len(e) > 5 && e[:5] == "ERROR" {
			res = append(res, e)
		}
	}
	return res
}
