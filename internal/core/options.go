package core

import (
	"context"
	"time"

	"studentrecords/internal/blob"
	"studentrecords/internal/idgen"
)

// Logger is the structured logging surface used by Service. Arguments after
// the message are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// AuditStatus captures the outcome of an audited operation.
type AuditStatus string

// Audit outcomes.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one service operation.
type AuditEntry struct {
	Operation   string
	RecordID    string
	Status      AuditStatus
	Error       string
	Changes     int
	StartedAt   time.Time
	CompletedAt time.Time
}

// AuditRecorder receives an entry for every service operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MetricsRecorder observes operation outcomes and durations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts a span per service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation error, if any.
type TraceSpan interface {
	End(err error)
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	clock        Clock
	logger       Logger
	audit        AuditRecorder
	metrics      MetricsRecorder
	tracer       Tracer
	backups      blob.Store
	backupPrefix string
	idOptions    []idgen.Option
}

// DefaultBackupPrefix namespaces backup keys when no prefix is configured.
const DefaultBackupPrefix = "snapshots/"

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:        ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:       noopLogger{},
		audit:        noopAuditRecorder{},
		metrics:      noopMetricsRecorder{},
		tracer:       noopTracer{},
		backupPrefix: DefaultBackupPrefix,
	}
}

// WithClock overrides the time source used for audit entries and backup keys.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger routes service logs to logger.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder installs an audit sink.
func WithAuditRecorder(audit AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if audit != nil {
			o.audit = audit
		}
	}
}

// WithMetricsRecorder installs a metrics sink.
func WithMetricsRecorder(metrics MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithBackupStore enables Backup, Backups, Restore and PruneBackups.
func WithBackupStore(store blob.Store) ServiceOption {
	return func(o *serviceOptions) {
		o.backups = store
	}
}

// WithBackupPrefix sets the key prefix for backups.
func WithBackupPrefix(prefix string) ServiceOption {
	return func(o *serviceOptions) {
		o.backupPrefix = prefix
	}
}

// WithIDOptions forwards options to the id generator, e.g. idgen.WithSeed.
func WithIDOptions(opts ...idgen.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.idOptions = append(o.idOptions, opts...)
	}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}
