package core

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq atomic.Uint64

// OperationStats aggregates the observed outcomes of one service operation.
type OperationStats struct {
	Calls   int64   `json:"calls"`
	Errors  int64   `json:"errors"`
	TotalMS float64 `json:"total_ms"`
	MaxMS   float64 `json:"max_ms"`
}

// ExpvarRecorder publishes an expvar.Map keyed by operation, each entry
// holding call and error counts plus total and worst latency.
type ExpvarRecorder struct {
	name string
	root *expvar.Map

	mu  sync.Mutex
	ops map[string]*opVars
}

type opVars struct {
	calls   expvar.Int
	errors  expvar.Int
	totalMS expvar.Float
	maxMS   expvar.Float
}

// NewExpvarRecorder publishes a recorder under name. expvar rejects duplicate
// names, so an empty name is replaced by a generated one.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" {
		name = fmt.Sprintf("studentrecords_operations_%d", expvarSeq.Add(1))
	}
	r := &ExpvarRecorder{
		name: name,
		root: new(expvar.Map).Init(),
		ops:  make(map[string]*opVars),
	}
	expvar.Publish(name, r.root)
	return r
}

// Name returns the expvar export name.
func (r *ExpvarRecorder) Name() string { return r.name }

// Observe implements MetricsRecorder.
func (r *ExpvarRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	ms := float64(duration) / float64(time.Millisecond)

	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.ops[operation]
	if v == nil {
		v = &opVars{}
		entry := new(expvar.Map).Init()
		entry.Set("calls", &v.calls)
		entry.Set("errors", &v.errors)
		entry.Set("total_ms", &v.totalMS)
		entry.Set("max_ms", &v.maxMS)
		r.root.Set(operation, entry)
		r.ops[operation] = v
	}
	v.calls.Add(1)
	if !success {
		v.errors.Add(1)
	}
	v.totalMS.Add(ms)
	if ms > v.maxMS.Value() {
		v.maxMS.Set(ms)
	}
}

// Stats returns the current totals per operation.
func (r *ExpvarRecorder) Stats() map[string]OperationStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]OperationStats, len(r.ops))
	for op, v := range r.ops {
		out[op] = OperationStats{
			Calls:   v.calls.Value(),
			Errors:  v.errors.Value(),
			TotalMS: v.totalMS.Value(),
			MaxMS:   v.maxMS.Value(),
		}
	}
	return out
}
