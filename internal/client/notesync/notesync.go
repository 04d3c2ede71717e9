// Package notesync owns the in-memory note collection of the current session and
// pushes every mutation through the notes API.
//
// Mutations are optimistic with fallback: when the server call fails the local
// collection is changed anyway and the error is kept for the UI to show.
// Delete is always applied locally.
//
// Two guards replace response-arrival ordering:
//   - an epoch, bumped by Clear, drops responses of requests started before the
//     session was cleared;
//   - a per-note operation token lets only the most recently issued operation on
//     a note write its result back.
package notesync

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vova4o/gonotes/internal/client/models"
	"github.com/vova4o/gonotes/package/logger"
)

var (
	// ErrSuperseded marks a response dropped because a newer operation on the same note was issued
	ErrSuperseded = errors.New("superseded by a newer operation")
	// ErrSessionChanged marks a response dropped because Clear ran while it was in flight
	ErrSessionChanged = errors.New("session was cleared while the request was in flight")
	// ErrDeleted marks a response dropped because the note was deleted while the request was in flight
	ErrDeleted = errors.New("note was deleted while the request was in flight")
)

// APIClienter интерфейс клиента API заметок
type APIClienter interface {
	GetNotes(ctx context.Context) ([]models.RemoteNote, error)
	CreateNote(ctx context.Context, note models.RemoteNote) (*models.RemoteNote, error)
	UpdateNote(ctx context.Context, id models.Identifier, note models.RemoteNote) (*models.RemoteNote, error)
	DeleteNote(ctx context.Context, id models.Identifier) error
}

// Sessioner reports whether a session exists
type Sessioner interface {
	IsLoggedIn(ctx context.Context) bool
}

// Outcome says where a mutation ended up
type Outcome int

// Outcomes
const (
	AppliedRemote Outcome = iota + 1
	AppliedLocalFallback
	Discarded
)

func (o Outcome) String() string {
	switch o {
	case AppliedRemote:
		return "remote"
	case AppliedLocalFallback:
		return "localFallback"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Result of a single mutation
type Result struct {
	AppliedTo Outcome
	Note      models.Note
	Err       error
}

// ViewMode grid or list
type ViewMode int

// View modes
const (
	ViewGrid ViewMode = iota
	ViewList
)

func (v ViewMode) String() string {
	if v == ViewList {
		return "list"
	}
	return "grid"
}

// ParseViewMode parses "grid" or "list"
func ParseViewMode(s string) (ViewMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grid":
		return ViewGrid, true
	case "list":
		return ViewList, true
	default:
		return ViewGrid, false
	}
}

// State is a snapshot for the UI
type State struct {
	Notes    []models.Note
	Query    string
	Loading  bool
	Error    string
	ViewMode ViewMode
	Selected string
}

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithClock overrides the clock used for missing remote timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		s.now = now
	}
}

// Synchronizer struct
type Synchronizer struct {
	api APIClienter
	log *logger.Logger
	now func() time.Time

	mu         sync.Mutex
	notes      []models.Note
	query      string
	viewMode   ViewMode
	selected   string
	lastErr    string
	inFlight   int
	epoch      uint64
	refreshSeq uint64
	opSeq      uint64
	latestOp   map[string]uint64
	// deleted maps a removed id to refreshSeq at the moment of removal
	deleted map[string]uint64
}

// New creates a synchronizer with an empty collection
func New(api APIClienter, log *logger.Logger, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		api:      api,
		log:      log.With("component", "notesync"),
		now:      time.Now,
		latestOp: make(map[string]uint64),
		deleted:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadIfLoggedIn refreshes only when a session exists
func (s *Synchronizer) LoadIfLoggedIn(ctx context.Context, session Sessioner) error {
	if !session.IsLoggedIn(ctx) {
		s.log.Info("No session, skipping initial load")
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh replaces the collection with the server list. On failure the collection is kept.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.log.Info("Loading notes from API")

	s.mu.Lock()
	s.inFlight++
	s.lastErr = ""
	s.refreshSeq++
	epoch, seq := s.epoch, s.refreshSeq
	s.mu.Unlock()

	remote, err := s.api.GetNotes(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--

	if epoch != s.epoch {
		return ErrSessionChanged
	}
	if seq != s.refreshSeq {
		return ErrSuperseded
	}

	if err != nil {
		s.log.Error("Failed to load notes: " + err.Error())
		s.lastErr = err.Error()
		return err
	}

	// список, запрошенный после удаления, уже отражает его
	for id, at := range s.deleted {
		if seq > at {
			delete(s.deleted, id)
		}
	}

	notes := make([]models.Note, 0, len(remote))
	index := make(map[string]int, len(remote))
	for _, r := range remote {
		n := models.FromRemote(r, s.now)
		if _, gone := s.deleted[n.ID.String()]; gone {
			continue
		}
		if i, ok := index[n.ID.String()]; ok {
			notes[i] = n
			continue
		}
		index[n.ID.String()] = len(notes)
		notes = append(notes, n)
	}
	s.notes = notes

	s.log.Info("Loaded notes from API")
	return nil
}

// Add sends a new note to the server. On failure the local note is kept as is.
func (s *Synchronizer) Add(ctx context.Context, note models.Note) Result {
	if note.ID.IsZero() {
		note.ID = models.NewLocalID()
	}

	key := note.ID.String()
	epoch, token := s.begin(key)

	saved, err := s.api.CreateNote(ctx, models.ToRemote(note))

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.finish(key, token)

	if res, stale := s.stale(key, epoch, token, note); stale {
		return res
	}

	if err != nil {
		s.log.Error("Failed to create note, keeping it locally: " + err.Error())
		s.lastErr = err.Error()
		s.upsert(note.ID.String(), note)
		return Result{AppliedTo: AppliedLocalFallback, Note: note, Err: err}
	}

	confirmed := models.FromRemote(*saved, s.now)
	s.remove(key)
	s.upsert(confirmed.ID.String(), confirmed)
	return Result{AppliedTo: AppliedRemote, Note: confirmed}
}

// Update sends an edited note. On failure the local edit replaces the entry anyway.
func (s *Synchronizer) Update(ctx context.Context, note models.Note) Result {
	key := note.ID.String()
	epoch, token := s.begin(key)

	saved, err := s.api.UpdateNote(ctx, note.ID, models.ToRemote(note))

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.finish(key, token)

	if res, stale := s.stale(key, epoch, token, note); stale {
		return res
	}

	if err != nil {
		s.log.Error("Failed to update note, applying locally: " + err.Error())
		s.lastErr = err.Error()
		s.replace(key, note)
		return Result{AppliedTo: AppliedLocalFallback, Note: note, Err: err}
	}

	confirmed := models.FromRemote(*saved, s.now)
	if confirmed.ID.String() != key {
		s.remove(confirmed.ID.String())
	}
	s.replace(key, confirmed)
	return Result{AppliedTo: AppliedRemote, Note: confirmed}
}

// Delete removes the note locally regardless of the server answer.
// A delete is never superseded: updates of the same note that complete after it are dropped.
func (s *Synchronizer) Delete(ctx context.Context, id string) Result {
	s.mu.Lock()
	note, ok := s.find(id)
	s.mu.Unlock()
	if !ok {
		note = models.Note{ID: models.ParseIdentifier(id)}
	}

	epoch, token := s.begin(id)

	err := s.api.DeleteNote(ctx, note.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.finish(id, token)

	if epoch != s.epoch {
		s.log.Debug("Dropping response for " + id + ": session cleared")
		return Result{AppliedTo: Discarded, Note: note, Err: ErrSessionChanged}
	}

	s.remove(id)
	s.deleted[id] = s.refreshSeq
	if s.selected == id {
		s.selected = ""
	}

	if err != nil {
		s.log.Error("Failed to delete note on server, removed locally: " + err.Error())
		s.lastErr = err.Error()
		return Result{AppliedTo: AppliedLocalFallback, Note: note, Err: err}
	}

	return Result{AppliedTo: AppliedRemote, Note: note}
}

// TogglePin flips the pinned flag through Update. The bool is false when the note is unknown.
func (s *Synchronizer) TogglePin(ctx context.Context, id string) (Result, bool) {
	s.mu.Lock()
	note, ok := s.find(id)
	s.mu.Unlock()
	if !ok {
		return Result{}, false
	}

	note.IsPinned = !note.IsPinned
	return s.Update(ctx, note), true
}

// FilteredView returns notes matching the query, pinned first, newest first
func (s *Synchronizer) FilteredView() []models.Note {
	s.mu.Lock()
	query := s.query
	notes := make([]models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if matches(n, query) {
			notes = append(notes, n)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].IsPinned != notes[j].IsPinned {
			return notes[i].IsPinned
		}
		return notes[i].Timestamp > notes[j].Timestamp
	})

	return notes
}

func matches(n models.Note, query string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q)
}

// Get returns a note by id
func (s *Synchronizer) Get(id string) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(id)
}

// SetQuery sets the search text
func (s *Synchronizer) SetQuery(query string) {
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()
}

// SetViewMode sets grid or list mode
func (s *Synchronizer) SetViewMode(mode ViewMode) {
	s.mu.Lock()
	s.viewMode = mode
	s.mu.Unlock()
}

// ToggleViewMode switches between grid and list
func (s *Synchronizer) ToggleViewMode() ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewMode == ViewGrid {
		s.viewMode = ViewList
	} else {
		s.viewMode = ViewGrid
	}
	return s.viewMode
}

// Select marks a note as selected, empty id clears the selection
func (s *Synchronizer) Select(id string) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
}

// Selected returns the selected note if it still exists
func (s *Synchronizer) Selected() (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return models.Note{}, false
	}
	return s.find(s.selected)
}

// ClearError dismisses the error banner
func (s *Synchronizer) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// Clear empties the session state. Responses of requests still in flight are dropped.
func (s *Synchronizer) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = nil
	s.query = ""
	s.lastErr = ""
	s.selected = ""
	s.epoch++
	s.latestOp = make(map[string]uint64)
	s.deleted = make(map[string]uint64)
	s.log.Info("Notes cleared")
}

// State returns a copy of the current state
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := make([]models.Note, len(s.notes))
	copy(notes, s.notes)

	return State{
		Notes:    notes,
		Query:    s.query,
		Loading:  s.inFlight > 0,
		Error:    s.lastErr,
		ViewMode: s.viewMode,
		Selected: s.selected,
	}
}

func (s *Synchronizer) begin(key string) (epoch, token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight++
	s.lastErr = ""
	s.opSeq++
	s.latestOp[key] = s.opSeq
	return s.epoch, s.opSeq
}

// finish must be called with s.mu held
func (s *Synchronizer) finish(key string, token uint64) {
	s.inFlight--
	if s.latestOp[key] == token {
		delete(s.latestOp, key)
	}
}

// stale must be called with s.mu held
func (s *Synchronizer) stale(key string, epoch, token uint64, note models.Note) (Result, bool) {
	if epoch != s.epoch {
		s.log.Debug("Dropping response for " + key + ": session cleared")
		return Result{AppliedTo: Discarded, Note: note, Err: ErrSessionChanged}, true
	}
	if _, gone := s.deleted[key]; gone {
		s.log.Debug("Dropping response for " + key + ": note deleted")
		return Result{AppliedTo: Discarded, Note: note, Err: ErrDeleted}, true
	}
	if s.latestOp[key] != token {
		s.log.Debug("Dropping response for " + key + ": superseded")
		return Result{AppliedTo: Discarded, Note: note, Err: ErrSuperseded}, true
	}
	return Result{}, false
}

func (s *Synchronizer) find(id string) (models.Note, bool) {
	for _, n := range s.notes {
		if n.ID.String() == id {
			return n, true
		}
	}
	return models.Note{}, false
}

// upsert replaces the entry with the same id or appends
func (s *Synchronizer) upsert(id string, note models.Note) {
	for i, n := range s.notes {
		if n.ID.String() == id {
			s.notes[i] = note
			return
		}
	}
	s.notes = append(s.notes, note)
}

// replace only touches an existing entry
func (s *Synchronizer) replace(id string, note models.Note) {
	for i, n := range s.notes {
		if n.ID.String() == id {
			s.notes[i] = note
			return
		}
	}
}

func (s *Synchronizer) remove(id string) {
	kept := s.notes[:0]
	for _, n := range s.notes {
		if n.ID.String() != id {
			kept = append(kept, n)
		}
	}
	s.notes = kept
}
