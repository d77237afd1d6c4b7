// Package memory is a process-local backend with the same semantics as the
// postgres repositories. It backs the server when database.driver is
// "memory" and the HTTP tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/repository"
)

// Store keeps every table behind one RWMutex for the catalog and one mutex
// per form for submissions, so appends to different forms do not contend.
type Store struct {
	repository.Store

	mu         sync.RWMutex
	clubs      map[int64]*domain.Club
	events     map[int64]*domain.Event
	forms      map[int64]*formEntry
	current    map[domain.Owner]int64
	nextClub   int64
	nextEvent  int64
	nextFormID int64
}

type formEntry struct {
	mu     sync.Mutex
	def    domain.FormDefinition
	subs   []domain.Submission
	nextID int64
}

func NewStore() *Store {
	s := &Store{
		clubs:   make(map[int64]*domain.Club),
		events:  make(map[int64]*domain.Event),
		forms:   make(map[int64]*formEntry),
		current: make(map[domain.Owner]int64),
	}
	s.Store = repository.Store{
		Clubs:       &clubRepository{s},
		Events:      &eventRepository{s},
		Forms:       &formRepository{s},
		Submissions: &submissionRepository{s},
	}
	return s
}

func today() string { return time.Now().Format("2006-01-02") }

type clubRepository struct{ s *Store }

func (r *clubRepository) Create(_ context.Context, c *domain.Club) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextClub++
	c.ID = r.s.nextClub
	c.CreatedOn = today()
	cp := *c
	r.s.clubs[c.ID] = &cp
	return nil
}

func (r *clubRepository) GetByID(_ context.Context, id int64) (*domain.Club, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clubs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *clubRepository) GetByEmail(_ context.Context, email string) (*domain.Club, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.clubs {
		if strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *clubRepository) List(_ context.Context) ([]domain.Club, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	clubs := make([]domain.Club, 0, len(r.s.clubs))
	for _, c := range r.s.clubs {
		clubs = append(clubs, *c)
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].Name < clubs[j].Name })
	return clubs, nil
}

type eventRepository struct{ s *Store }

func (r *eventRepository) Create(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	club, ok := r.s.clubs[e.ClubID]
	if !ok {
		return domain.ErrNotFound
	}
	r.s.nextEvent++
	e.ID = r.s.nextEvent
	e.ClubName = club.Name
	e.CreatedOn = today()
	cp := *e
	r.s.events[e.ID] = &cp
	return nil
}

func (r *eventRepository) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *eventRepository) List(ctx context.Context) ([]domain.Event, error) {
	return r.filter(func(*domain.Event) bool { return true }), nil
}

func (r *eventRepository) ListByClub(_ context.Context, clubID int64) ([]domain.Event, error) {
	return r.filter(func(e *domain.Event) bool { return e.ClubID == clubID }), nil
}

func (r *eventRepository) ListEndedBefore(_ context.Context, date string) ([]domain.Event, error) {
	return r.filter(func(e *domain.Event) bool { return e.Date < date }), nil
}

func (r *eventRepository) filter(keep func(*domain.Event) bool) []domain.Event {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var events []domain.Event
	for _, e := range r.s.events {
		if keep(e) {
			events = append(events, *e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].ID < events[j].ID
	})
	return events
}

type formRepository struct{ s *Store }

// Replace holds the catalog lock and the previous form's lock while it
// swaps the current pointer, so an append racing with it either lands on the
// old version first or observes it superseded.
func (r *formRepository) Replace(_ context.Context, def *domain.FormDefinition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	var version int32 = 1
	if prevID, ok := r.s.current[def.Owner]; ok {
		prev := r.s.forms[prevID]
		prev.mu.Lock()
		prev.def.Superseded = true
		prev.def.Status = domain.FormStatusClosed
		if prev.def.ClosedAt == nil {
			prev.def.ClosedAt = &now
		}
		version = prev.def.Version + 1
		prev.mu.Unlock()
	}

	r.s.nextFormID++
	def.ID = r.s.nextFormID
	def.Version = version
	def.Status = domain.FormStatusOpen
	def.Superseded = false
	def.ClosedAt = nil
	def.CreatedAt = now

	r.s.forms[def.ID] = &formEntry{def: cloneForm(*def), nextID: 1}
	r.s.current[def.Owner] = def.ID
	return nil
}

func (r *formRepository) GetByID(_ context.Context, id int64) (*domain.FormDefinition, error) {
	e, err := r.s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	def := cloneForm(e.def)
	return &def, nil
}

func (r *formRepository) GetCurrent(ctx context.Context, owner domain.Owner) (*domain.FormDefinition, error) {
	r.s.mu.RLock()
	id, ok := r.s.current[owner]
	r.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *formRepository) ListOpen(_ context.Context, kind domain.OwnerKind) ([]domain.FormDefinition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var forms []domain.FormDefinition
	for _, id := range r.s.current {
		e := r.s.forms[id]
		e.mu.Lock()
		if e.def.Owner.Kind == kind && e.def.IsOpen() {
			forms = append(forms, cloneForm(e.def))
		}
		e.mu.Unlock()
	}
	sort.Slice(forms, func(i, j int) bool { return forms[i].ID < forms[j].ID })
	return forms, nil
}

func (r *formRepository) Close(_ context.Context, id int64) error {
	e, err := r.s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.def.Status = domain.FormStatusClosed
	if e.def.ClosedAt == nil {
		now := time.Now().UTC()
		e.def.ClosedAt = &now
	}
	return nil
}

type submissionRepository struct{ s *Store }

func (r *submissionRepository) Append(_ context.Context, sub *domain.Submission) error {
	e, err := r.s.entry(sub.FormID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.def.Superseded, e.def.Version != sub.FormVersion:
		return domain.ErrStaleSchema
	case e.def.Status == domain.FormStatusClosed:
		return domain.ErrFormClosed
	case !e.def.HasRoom(len(e.subs)):
		return domain.ErrCapacityReached
	}

	sub.ID = e.nextID
	sub.SubmittedAt = time.Now().UTC()
	e.nextID++

	stored := *sub
	stored.Values = make(map[string]string, len(sub.Values))
	for k, v := range sub.Values {
		stored.Values[k] = v
	}
	e.subs = append(e.subs, stored)
	return nil
}

func (r *submissionRepository) CountByForm(_ context.Context, formID int64) (int, error) {
	e, err := r.s.entry(formID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs), nil
}

func (r *submissionRepository) ListByForm(_ context.Context, formID int64) ([]domain.Submission, error) {
	e, err := r.s.entry(formID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	subs := make([]domain.Submission, len(e.subs))
	copy(subs, e.subs)
	return subs, nil
}

func (r *submissionRepository) DeleteByForm(_ context.Context, formID int64) (int64, error) {
	e, err := r.s.entry(formID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	n := int64(len(e.subs))
	e.subs = nil
	return n, nil
}

func (s *Store) entry(id int64) (*formEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.forms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func cloneForm(def domain.FormDefinition) domain.FormDefinition {
	def.Fields = append([]domain.FieldSchema(nil), def.Fields...)
	if def.Capacity != nil {
		c := *def.Capacity
		def.Capacity = &c
	}
	if def.ClosedAt != nil {
		t := *def.ClosedAt
		def.ClosedAt = &t
	}
	return def
}
