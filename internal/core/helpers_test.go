package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"studentrecords/pkg/domain"
)

type failingStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingStore) Load(context.Context) ([]Record, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return []Record{}, nil
}

func (f *failingStore) Save(context.Context, []Record) error {
	f.saves++
	return f.saveErr
}

var errDiskFull = errors.New("disk full")

type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recordingAudit) Record(_ context.Context, e AuditEntry) {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
}

func (r *recordingAudit) all() []AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AuditEntry(nil), r.entries...)
}

type logLine struct {
	level string
	msg   string
	args  []any
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	l.lines = append(l.lines, logLine{level: level, msg: msg, args: args})
	l.mu.Unlock()
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *recordingLogger) levels() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.lines))
	for _, line := range l.lines {
		out = append(out, line.level)
	}
	return out
}

// steppingClock advances one second per call.
func steppingClock(start time.Time) Clock {
	var mu sync.Mutex
	now := start
	return ClockFunc(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(time.Second)
		return t
	})
}

func student(id string, courses ...string) Record {
	if len(courses) == 0 {
		courses = []string{"Mathematics"}
	}
	return domain.NewStudent(id, "Student "+id, 20, courses, 2)
}

func ids(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func mustPostgraduate(id, researchDomain string) Record {
	r, err := domain.NewPostgraduate(id, "Researcher "+id, 30, []string{"Thesis"}, 5, researchDomain)
	if err != nil {
		panic(fmt.Sprintf("postgraduate fixture: %v", err))
	}
	return r
}
