// Package logx is the process-internal log: a fixed-size ring of records
// kept in memory so the UI can display them on demand. Nothing is written
// to the terminal unless NLESS_LOG_STDERR asks for it, since stray output
// corrupts the alternate screen.
package logx

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	}
	return "INFO"
}

func parseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, true
	case "info":
		return Info, true
	case "warn", "warning":
		return Warn, true
	case "error":
		return Error, true
	}
	return Info, false
}

type record struct {
	when  time.Time
	level Level
	msg   string
}

const ringSize = 500

// ring is a circular buffer; head is the next write slot and count
// saturates at ringSize, after which the oldest record is overwritten.
type ring struct {
	mu    sync.Mutex
	min   Level
	echo  bool
	head  int
	count int
	slots [ringSize]record
}

var std = &ring{min: Info}

func SetLevel(l Level) {
	std.mu.Lock()
	std.min = l
	std.mu.Unlock()
}

// SetLevelFromEnv applies NLESS_LOG_LEVEL and NLESS_LOG_STDERR. Unset or
// unrecognized values leave the defaults (info, no stderr echo).
func SetLevelFromEnv() {
	if l, ok := parseLevel(os.Getenv("NLESS_LOG_LEVEL")); ok {
		SetLevel(l)
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("NLESS_LOG_STDERR"))) {
	case "", "0", "false", "no":
	default:
		std.mu.Lock()
		std.echo = true
		std.mu.Unlock()
	}
}

func Debugf(format string, a ...any) { std.add(Debug, format, a...) }
func Infof(format string, a ...any)  { std.add(Info, format, a...) }
func Warnf(format string, a ...any)  { std.add(Warn, format, a...) }
func Errorf(format string, a ...any) { std.add(Error, format, a...) }

func (r *ring) add(l Level, format string, a ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l < r.min {
		return
	}
	rec := record{when: time.Now(), level: l, msg: fmt.Sprintf(format, a...)}
	r.slots[r.head] = rec
	r.head = (r.head + 1) % ringSize
	if r.count < ringSize {
		r.count++
	}
	if r.echo {
		fmt.Fprintln(os.Stderr, format1(rec))
	}
}

func format1(rec record) string {
	return fmt.Sprintf("%s %-5s %s", rec.when.Format("2006-01-02T15:04:05.000Z07:00"), rec.level, rec.msg)
}

// Tail returns the most recent n formatted records, oldest first.
func Tail(n int) []string {
	std.mu.Lock()
	defer std.mu.Unlock()
	if n > std.count {
		n = std.count
	}
	out := make([]string, 0, n)
	start := std.head - n
	if start < 0 {
		start += ringSize
	}
	for i := 0; i < n; i++ {
		out = append(out, format1(std.slots[(start+i)%ringSize]))
	}
	return out
}

// Dump renders everything currently retained, oldest first.
func Dump() string {
	return strings.Join(Tail(ringSize), "\n")
}
