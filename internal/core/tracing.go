package core

import (
	"context"
	"encoding/json"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SpanRecord is one finished service operation.
type SpanRecord struct {
	SpanID     string      `json:"span_id"`
	Operation  string      `json:"operation"`
	Status     AuditStatus `json:"status"`
	Error      string      `json:"error,omitempty"`
	Start      time.Time   `json:"start"`
	DurationMS float64     `json:"duration_ms"`
}

// SpanLog is a Tracer that keeps finished spans and, given a writer, streams
// each one as a JSON line.
type SpanLog struct {
	mu    sync.Mutex
	out   io.Writer
	spans []SpanRecord
}

// NewSpanLog returns a SpanLog writing to w. A nil w only retains spans.
func NewSpanLog(w io.Writer) *SpanLog {
	return &SpanLog{out: w}
}

// Spans returns the finished spans in completion order.
func (l *SpanLog) Spans() []SpanRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.spans)
}

// Start implements Tracer.
func (l *SpanLog) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &span{
		log: l,
		rec: SpanRecord{SpanID: uuid.NewString(), Operation: operation, Start: time.Now().UTC()},
	}
}

func (l *SpanLog) finish(rec SpanRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.spans = append(l.spans, rec)
	if l.out == nil {
		return
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_, _ = l.out.Write(append(line, '\n'))
}

type span struct {
	log  *SpanLog
	rec  SpanRecord
	once sync.Once
}

// End records the span on its first call only.
func (s *span) End(err error) {
	s.once.Do(func() {
		rec := s.rec
		rec.DurationMS = float64(time.Since(rec.Start)) / float64(time.Millisecond)
		rec.Status = AuditStatusSuccess
		if err != nil {
			rec.Status = AuditStatusError
			rec.Error = err.Error()
		}
		s.log.finish(rec)
	})
}
