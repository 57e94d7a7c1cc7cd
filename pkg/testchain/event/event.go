// Package event defines the closed catalog of lifecycle notifications a
// dispatcher delivers, and an in-memory trace of delivered notifications.
package event

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is one delivered notification as seen by one listener.
type Record struct {
	ID      string
	Kind    Kind
	Subject string
	Source  string
	Time    time.Time
}

// NewRecord creates a record with a fresh ID and the current time.
func NewRecord(kind Kind, subject, source string) Record {
	return Record{
		ID:      uuid.New().String(),
		Kind:    kind,
		Subject: subject,
		Source:  source,
		Time:    time.Now(),
	}
}

// String renders the record without its ID or time.
func (r Record) String() string {
	return fmt.Sprintf("%s %s %s", r.Kind, r.Subject, r.Source)
}

// Log is an append-only, concurrency-safe trace of records.
// The zero value is ready to use.
type Log struct {
	mu      sync.Mutex
	records []Record
}

// Append adds a record.
func (l *Log) Append(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, r)
}

// Add records kind for subject on behalf of source.
func (l *Log) Add(kind Kind, subject, source string) {
	l.Append(NewRecord(kind, subject, source))
}

// Records returns a copy of every record in append order.
func (l *Log) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Record(nil), l.records...)
}

// Filter returns the records of the given kind in append order.
func (l *Log) Filter(kind Kind) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Record
	for _, r := range l.records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Sources returns the Source of each record of the given kind, in order.
func (l *Log) Sources(kind Kind) []string {
	recs := l.Filter(kind)
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Source
	}
	return out
}

// Len returns the number of records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Reset discards every record.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}

// Render returns one line per record. The output is stable across runs.
func (l *Log) Render() string {
	var b strings.Builder
	for _, r := range l.Records() {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}
