package core

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentrecords/internal/config"
	"studentrecords/internal/infra/persistence/memory"
	"studentrecords/pkg/domain"
)

func TestDefaultServiceOptions(t *testing.T) {
	opts := defaultServiceOptions()
	require.NotNil(t, opts.clock)
	require.NotNil(t, opts.logger)
	require.NotNil(t, opts.audit)
	require.NotNil(t, opts.metrics)
	require.NotNil(t, opts.tracer)
	assert.Equal(t, DefaultBackupPrefix, opts.backupPrefix)
	assert.Nil(t, opts.backups)

	_ = opts.clock.Now()
	opts.audit.Record(context.Background(), AuditEntry{})
	opts.metrics.Observe(context.Background(), "noop", true, 0)
	_, span := opts.tracer.Start(context.Background(), "noop")
	span.End(nil)

	var l noopLogger
	l.Debug("d", "k", 1)
	l.Info("i")
	l.Warn("w")
	l.Error("e")
}

func TestNilOptionsKeepDefaults(t *testing.T) {
	svc := NewInMemoryService(nil, WithLogger(nil), WithClock(nil), WithAuditRecorder(nil), WithMetricsRecorder(nil), WithTracer(nil))
	require.NoError(t, svc.Add(context.Background(), student("AAA0001")))
}

func TestServiceEmitsAuditMetricsTraceAndLogs(t *testing.T) {
	audit := &recordingAudit{}
	logs := &recordingLogger{}
	metrics := NewExpvarRecorder("")
	var traceOut bytes.Buffer
	tracer := NewSpanLog(&traceOut)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	svc := NewInMemoryService(
		WithAuditRecorder(audit),
		WithLogger(logs),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
		WithClock(steppingClock(start)),
	)
	ctx := context.Background()
	require.NoError(t, svc.Add(ctx, student("AAA0001")))
	require.Error(t, svc.Delete(ctx, "ZZZ0009"))

	entries := audit.all()
	require.Len(t, entries, 2)
	assert.Equal(t, OpAdd, entries[0].Operation)
	assert.Equal(t, "AAA0001", entries[0].RecordID)
	assert.Equal(t, AuditStatusSuccess, entries[0].Status)
	assert.Equal(t, 1, entries[0].Changes)
	assert.Equal(t, start, entries[0].StartedAt)
	assert.Equal(t, start.Add(time.Second), entries[0].CompletedAt)
	assert.Equal(t, OpDelete, entries[1].Operation)
	assert.Equal(t, AuditStatusError, entries[1].Status)
	assert.Equal(t, "Student with ID ZZZ0009 does not exist.", entries[1].Error)

	stats := metrics.Stats()
	assert.Equal(t, int64(1), stats[OpAdd].Calls)
	assert.Zero(t, stats[OpAdd].Errors)
	assert.Equal(t, int64(1), stats[OpDelete].Errors)
	assert.GreaterOrEqual(t, stats[OpAdd].MaxMS, 0.0)

	spans := tracer.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, OpAdd, spans[0].Operation)
	assert.Equal(t, AuditStatusSuccess, spans[0].Status)
	assert.Equal(t, AuditStatusError, spans[1].Status)
	assert.Equal(t, "Student with ID ZZZ0009 does not exist.", spans[1].Error)
	assert.NotEqual(t, spans[0].SpanID, spans[1].SpanID)

	scanner := bufio.NewScanner(&traceOut)
	var lines int
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		assert.Equal(t, spans[lines].SpanID, rec.SpanID)
		lines++
	}
	assert.Equal(t, 2, lines)

	assert.Equal(t, []string{"debug", "debug"}, logs.levels())
}

func TestLogLevelSeparatesRejectionsFromFailures(t *testing.T) {
	logs := &recordingLogger{}
	store := &failingStore{}
	svc := NewService(memory.NewStore(), store, WithLogger(logs))
	ctx := context.Background()

	require.Error(t, svc.Add(ctx, student("bad id")))
	require.Error(t, svc.Delete(ctx, "ZZZ0009"))
	store.saveErr = errDiskFull
	require.Error(t, svc.Add(ctx, student("AAA0001")))

	assert.Equal(t, []string{"debug", "debug", "error"}, logs.levels())
	assert.True(t, rejected(&domain.DuplicateIDError{ID: "AAA0001"}))
	assert.False(t, rejected(domain.NewSaveError(errDiskFull)))
	assert.False(t, rejected(context.Canceled))
}

func TestExpvarRecorderPublishes(t *testing.T) {
	rec := NewExpvarRecorder("studentrecords_test_publish")
	rec.Observe(context.Background(), "", true, time.Millisecond)
	rec.Observe(context.Background(), OpAdd, true, 2*time.Millisecond)
	rec.Observe(context.Background(), OpAdd, false, 3*time.Millisecond)

	assert.Equal(t, "studentrecords_test_publish", rec.Name())
	v := expvar.Get(rec.Name())
	require.NotNil(t, v)

	var published map[string]OperationStats
	require.NoError(t, json.Unmarshal([]byte(v.String()), &published))
	assert.NotContains(t, published, "")
	add := published[OpAdd]
	assert.Equal(t, int64(2), add.Calls)
	assert.Equal(t, int64(1), add.Errors)
	assert.InDelta(t, 5.0, add.TotalMS, 0.001)
	assert.InDelta(t, 3.0, add.MaxMS, 0.001)
	assert.Equal(t, add, rec.Stats()[OpAdd])
}

func TestExpvarRecorderGeneratesUniqueNames(t *testing.T) {
	a, b := NewExpvarRecorder(""), NewExpvarRecorder("")
	assert.NotEqual(t, a.Name(), b.Name())
	assert.NotNil(t, expvar.Get(b.Name()))
}

func TestSpanLogEndsOnce(t *testing.T) {
	tracer := NewSpanLog(nil)
	_, span := tracer.Start(context.Background(), "op")
	span.End(errors.New("boom"))
	span.End(nil)

	spans := tracer.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, "boom", spans[0].Error)
	assert.Equal(t, AuditStatusError, spans[0].Status)
	assert.GreaterOrEqual(t, spans[0].DurationMS, 0.0)
}

func TestPrometheusRecorder(t *testing.T) {
	rec := NewPrometheusMetricsRecorder("")
	svc := NewInMemoryService(WithMetricsRecorder(rec))
	ctx := context.Background()
	require.NoError(t, svc.Add(ctx, student("AAA0001")))
	require.NoError(t, svc.Add(ctx, student("BBB0002")))
	var dup *domain.DuplicateIDError
	require.ErrorAs(t, svc.Add(ctx, student("AAA0001")), &dup)

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "studentrecords_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var status string
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "status" {
					status = lp.GetValue()
				}
			}
			counts[status] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"success": 2, "error": 1}, counts)

	path := filepath.Join(t.TempDir(), "students.prom")
	require.NoError(t, rec.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `studentrecords_operations_total{operation="add",status="success"} 2`), string(data))
	assert.Contains(t, string(data), "studentrecords_operation_duration_seconds_bucket")
}

func TestOpenMetricsRecorder(t *testing.T) {
	rec, err := OpenMetricsRecorder(config.MetricsConfig{Backend: config.MetricsNone})
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = OpenMetricsRecorder(config.MetricsConfig{Backend: config.MetricsExpvar})
	require.NoError(t, err)
	assert.IsType(t, &ExpvarRecorder{}, rec)

	rec, err = OpenMetricsRecorder(config.MetricsConfig{Backend: config.MetricsPrometheus})
	require.NoError(t, err)
	assert.IsType(t, &PrometheusMetricsRecorder{}, rec)

	_, err = OpenMetricsRecorder(config.MetricsConfig{Backend: "statsd"})
	assert.Error(t, err)
}
