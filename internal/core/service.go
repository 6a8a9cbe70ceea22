// Package core implements the student records service: validated CRUD over the
// in-memory repository, persistence of every mutation, backups, and the
// logging, metrics, tracing and audit hooks around each operation.
package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"studentrecords/internal/catalog"
	"studentrecords/internal/idgen"
	"studentrecords/internal/infra/persistence/memory"
	"studentrecords/internal/validation"
	"studentrecords/pkg/domain"
)

// Operation names reported to loggers, metrics, tracers and audit sinks.
const (
	OpInitialize   = "initialize"
	OpAdd          = "add"
	OpUpdate       = "update"
	OpDelete       = "delete"
	OpRegister     = "register"
	OpAmend        = "amend"
	OpAddCourse    = "add_course"
	OpRemoveCourse = "remove_course"
	OpBackup       = "backup"
	OpRestore      = "restore"
	OpPrune        = "prune_backups"
)

// Service exposes the record operations. Every mutation runs inside a
// repository transaction that also writes the full snapshot; when the write
// fails the transaction is discarded and the repository keeps its prior state.
type Service struct {
	repo  Repository
	store SnapshotStore
	opts  serviceOptions

	idMu sync.Mutex
	ids  *idgen.Generator
}

// NewService constructs a service over repo, persisting through store.
func NewService(repo Repository, store SnapshotStore, opts ...ServiceOption) *Service {
	cfg := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	svc := &Service{repo: repo, store: store, opts: cfg}
	svc.ids = idgen.New(idgen.IDSetFunc(repo.Exists), cfg.idOptions...)
	return svc
}

// NewInMemoryService wires a fresh repository to an in-memory snapshot store.
func NewInMemoryService(opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(), memory.NewSnapshotStore(), opts...)
}

// NewPersistentService wires a fresh repository to store. Call Initialize to
// load the persisted records.
func NewPersistentService(store SnapshotStore, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(), store, opts...)
}

// Repository returns the underlying record repository.
func (s *Service) Repository() Repository { return s.repo }

// SnapshotStore returns the persistence driver.
func (s *Service) SnapshotStore() SnapshotStore { return s.store }

// Initialize replaces the repository contents with the persisted snapshot.
func (s *Service) Initialize(ctx context.Context) error {
	return s.run(ctx, OpInitialize, "", func(ctx context.Context) (int, error) {
		records, err := s.store.Load(ctx)
		if err != nil {
			return 0, domain.NewLoadError(err)
		}
		s.repo.ImportState(records)
		s.opts.logger.Info("student records loaded", "count", len(records))
		return len(records), nil
	})
}

// Add admits r after checking its id format and uniqueness.
func (s *Service) Add(ctx context.Context, r Record) error {
	return s.mutate(ctx, OpAdd, r.ID, func(tx Transaction) error {
		if err := checkID(r.ID); err != nil {
			return err
		}
		if tx.Exists(r.ID) {
			return &domain.DuplicateIDError{ID: r.ID}
		}
		return tx.Insert(r.Clone())
	})
}

// Update replaces the stored record carrying r.ID wholesale.
func (s *Service) Update(ctx context.Context, r Record) error {
	return s.mutate(ctx, OpUpdate, r.ID, func(tx Transaction) error {
		if err := checkID(r.ID); err != nil {
			return err
		}
		if !tx.Replace(r.Clone()) {
			return &domain.NotFoundError{ID: r.ID}
		}
		return nil
	})
}

// Delete removes the record with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, OpDelete, id, func(tx Transaction) error {
		if !tx.Delete(id) {
			return &domain.NotFoundError{ID: id}
		}
		return nil
	})
}

// List returns every record in insertion order.
func (s *Service) List() []Record {
	return s.repo.All()
}

// Find returns the record with id.
func (s *Service) Find(id string) (Record, bool) {
	return s.repo.Find(id)
}

// Search returns the records whose id, name, courses, field of study, or minor
// or research domain contain keyword, ignoring case. An empty keyword matches
// nothing.
func (s *Service) Search(keyword string) []Record {
	needle := strings.ToLower(keyword)
	matches := make([]Record, 0)
	if needle == "" {
		return matches
	}
	for _, r := range s.repo.All() {
		if matchesKeyword(r, needle) {
			matches = append(matches, r)
		}
	}
	return matches
}

func matchesKeyword(r Record, needle string) bool {
	for _, hay := range []string{r.ID, r.Name, r.CourseList(), r.FieldOfStudy, r.VariantValue()} {
		if hay != "" && strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

// GenerateID derives an unused id from name and age.
func (s *Service) GenerateID(name string, age int) string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return s.ids.Generate(name, age)
}

// Draft carries the user supplied fields for a new record. Register generates
// the id unless ID is set.
type Draft struct {
	ID             string
	Kind           Kind
	Name           string
	Age            int
	Year           int
	Courses        []string
	FieldOfStudy   string
	Minor          string
	ResearchDomain string
}

// Register validates every field of d, assigns a generated id and adds the
// resulting record.
func (s *Service) Register(ctx context.Context, d Draft) (Record, error) {
	var created Record
	err := s.run(ctx, OpRegister, "", func(ctx context.Context) (int, error) {
		r, err := d.record()
		if err != nil {
			return 0, err
		}
		r.ID = strings.TrimSpace(d.ID)
		if r.ID == "" {
			r.ID = s.GenerateID(r.Name, r.Age)
		}
		changes, err := s.commit(ctx, func(tx Transaction) error {
			if err := checkID(r.ID); err != nil {
				return err
			}
			if tx.Exists(r.ID) {
				return &domain.DuplicateIDError{ID: r.ID}
			}
			return tx.Insert(r)
		})
		if err == nil {
			created = r.Clone()
		}
		return len(changes), err
	})
	return created, err
}

// record builds and validates the record described by d, without an id.
func (d Draft) record() (Record, error) {
	kind := d.Kind
	if kind == "" {
		kind = domain.KindStudent
	}
	r, err := domain.NewRecord(kind, "", strings.TrimSpace(d.Name), d.Age, d.Courses, d.Year, domain.VariantFields{
		Minor:          strings.TrimSpace(d.Minor),
		ResearchDomain: strings.TrimSpace(d.ResearchDomain),
	})
	if err != nil {
		return Record{}, err
	}
	r.FieldOfStudy = strings.TrimSpace(d.FieldOfStudy)
	if canonical, ok := catalog.CanonicalField(r.FieldOfStudy); ok {
		r.FieldOfStudy = canonical
	}
	if err := validation.ValidateRecord(r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Patch lists the fields Amend changes. Nil fields keep their stored value.
type Patch struct {
	Name           *string
	Age            *int
	Year           *int
	Courses        []string
	FieldOfStudy   *string
	Minor          *string
	ResearchDomain *string
}

func (p Patch) apply(r *Record) {
	if p.Name != nil {
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.Age != nil {
		r.Age = *p.Age
	}
	if p.Year != nil {
		r.Year = *p.Year
	}
	if p.Courses != nil {
		r.SetCourses(p.Courses)
	}
	if p.FieldOfStudy != nil {
		r.FieldOfStudy = strings.TrimSpace(*p.FieldOfStudy)
		if canonical, ok := catalog.CanonicalField(r.FieldOfStudy); ok {
			r.FieldOfStudy = canonical
		}
	}
	if p.Minor != nil && r.Kind == domain.KindUndergraduate {
		r.Minor = strings.TrimSpace(*p.Minor)
	}
	if p.ResearchDomain != nil && r.Kind == domain.KindPostgraduate {
		r.ResearchDomain = strings.TrimSpace(*p.ResearchDomain)
	}
}

// Amend applies p to the record with id, validates every field of the result
// and replaces the stored record with it.
func (s *Service) Amend(ctx context.Context, id string, p Patch) (Record, error) {
	var updated Record
	err := s.mutate(ctx, OpAmend, id, func(tx Transaction) error {
		r, ok := tx.Find(id)
		if !ok {
			return &domain.NotFoundError{ID: id}
		}
		p.apply(&r)
		if err := validation.ValidateRecord(r); err != nil {
			return err
		}
		tx.Replace(r)
		updated = r.Clone()
		return nil
	})
	return updated, err
}

// AddCourse enrolls the record with id in course. Adding a course that is
// already present leaves the record unchanged.
func (s *Service) AddCourse(ctx context.Context, id, course string) (Record, error) {
	return s.editCourses(ctx, OpAddCourse, id, func(r *Record) error {
		if err := validation.ValidateCourse(strings.TrimSpace(course)); err != nil {
			return err
		}
		r.AddCourse(course)
		return nil
	})
}

// RemoveCourse drops course from the record with id. The last remaining course
// is kept.
func (s *Service) RemoveCourse(ctx context.Context, id, course string) (Record, error) {
	return s.editCourses(ctx, OpRemoveCourse, id, func(r *Record) error {
		r.RemoveCourse(strings.TrimSpace(course))
		return nil
	})
}

func (s *Service) editCourses(ctx context.Context, op, id string, edit func(*Record) error) (Record, error) {
	var updated Record
	err := s.mutate(ctx, op, id, func(tx Transaction) error {
		r, ok := tx.Find(id)
		if !ok {
			return &domain.NotFoundError{ID: id}
		}
		if err := edit(&r); err != nil {
			return err
		}
		tx.Replace(r)
		updated = r.Clone()
		return nil
	})
	return updated, err
}

func checkID(id string) error {
	err := validation.ValidateID(id)
	if err == nil {
		return nil
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return &domain.InvalidIDError{ID: id, Err: ve}
	}
	return &domain.InvalidIDError{ID: id}
}

// mutate runs fn in a repository transaction and persists the resulting state
// before the transaction commits.
func (s *Service) mutate(ctx context.Context, op, id string, fn func(Transaction) error) error {
	return s.run(ctx, op, id, func(ctx context.Context) (int, error) {
		changes, err := s.commit(ctx, fn)
		return len(changes), err
	})
}

// commit writes the snapshot from inside the transaction so that a failed write
// discards it. Transactions without changes skip the write.
func (s *Service) commit(ctx context.Context, fn func(Transaction) error) ([]Change, error) {
	return s.repo.RunInTransaction(ctx, func(tx Transaction) error {
		if err := fn(tx); err != nil {
			return err
		}
		if len(tx.Changes()) == 0 {
			return nil
		}
		return domain.NewSaveError(s.store.Save(ctx, tx.Records()))
	})
}

func (s *Service) run(ctx context.Context, op, id string, fn func(context.Context) (int, error)) error {
	startedAt := s.opts.clock.Now()
	ctx, span := s.opts.tracer.Start(ctx, op)
	begin := time.Now()
	changes, err := fn(ctx)
	elapsed := time.Since(begin)
	span.End(err)
	s.opts.metrics.Observe(ctx, op, err == nil, elapsed)

	entry := AuditEntry{
		Operation:   op,
		RecordID:    id,
		Status:      AuditStatusSuccess,
		Changes:     changes,
		StartedAt:   startedAt,
		CompletedAt: s.opts.clock.Now(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
		if rejected(err) {
			s.opts.logger.Debug("student operation rejected", "operation", op, "id", id, "error", err)
		} else {
			s.opts.logger.Error("student operation failed", "operation", op, "id", id, "error", err)
		}
	} else {
		s.opts.logger.Debug("student operation completed", "operation", op, "id", id, "changes", changes, "duration", elapsed)
	}
	s.opts.audit.Record(ctx, entry)
	return err
}

// rejected reports whether err is a caller mistake rather than an
// infrastructure failure. Storage errors are never rejections.
func rejected(err error) bool {
	var de domain.DomainError
	if !errors.As(err, &de) {
		return false
	}
	return de.Kind() != domain.ErrorKindStorage
}
