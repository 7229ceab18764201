// Package logger is the central log for the emulator host. Entries are a tag
// and a detail string; consecutive identical entries are collapsed into one
// with a repeat count. Only the most recent entries are kept.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// maximum number of entries in the central logger.
const maxCentral = 256

// Entry represents a single line in the log.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	repeated  int
}

func (e Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", e.Tag, e.Detail))
	if e.repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.repeated+1))
	}
	s.WriteString("\n")
	return s.String()
}

type logger struct {
	crit       sync.Mutex
	maxEntries int
	entries    []Entry
	echo       io.Writer
}

// only one log for the entire application.
var central = newLogger(maxCentral)

func newLogger(maxEntries int) *logger {
	return &logger{
		maxEntries: maxEntries,
		entries:    make([]Entry, 0, maxEntries),
	}
}

func (l *logger) log(tag, detail string) {
	l.crit.Lock()
	defer l.crit.Unlock()

	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	var e *Entry
	if n := len(l.entries); n > 0 && l.entries[n-1].Tag == tag && l.entries[n-1].Detail == detail {
		e = &l.entries[n-1]
		e.repeated++
		e.Timestamp = time.Now()
	} else {
		l.entries = append(l.entries, Entry{Timestamp: time.Now(), Tag: tag, Detail: detail})
		e = &l.entries[len(l.entries)-1]
	}

	if l.echo != nil {
		io.WriteString(l.echo, e.String())
	}

	if len(l.entries) > l.maxEntries {
		l.entries = append(l.entries[:0], l.entries[len(l.entries)-l.maxEntries:]...)
	}
}

func (l *logger) clear() {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.entries = l.entries[:0]
}

func (l *logger) tail(output io.Writer, number int) {
	l.crit.Lock()
	defer l.crit.Unlock()

	if number > len(l.entries) {
		number = len(l.entries)
	}
	if number < 0 {
		number = 0
	}
	for _, e := range l.entries[len(l.entries)-number:] {
		io.WriteString(output, e.String())
	}
}

func (l *logger) setEcho(output io.Writer) {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.echo = output
}

// Log adds an entry to the central logger.
func Log(tag, detail string) {
	central.log(tag, detail)
}

// Logf adds a formatted entry to the central logger.
func Logf(tag, pattern string, args ...interface{}) {
	central.log(tag, fmt.Sprintf(pattern, args...))
}

// Clear all entries from the central logger.
func Clear() {
	central.clear()
}

// Write all entries to output.
func Write(output io.Writer) {
	central.tail(output, maxCentral)
}

// Tail writes the last number entries to output.
func Tail(output io.Writer, number int) {
	central.tail(output, number)
}

// SetEcho writes every new entry to output as well as storing it. A nil
// output turns echoing off.
func SetEcho(output io.Writer) {
	central.setEcho(output)
}
