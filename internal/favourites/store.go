package favourites

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
)

const DefaultResyncTimeout = 30 * time.Second

// Membership is the state of one movie in the set.
type Membership int

const (
	Absent Membership = iota
	Present
	PendingAdd
	PendingRemove
)

func (m Membership) String() string {
	switch m {
	case Present:
		return "PRESENT"
	case PendingAdd:
		return "PENDING_ADD"
	case PendingRemove:
		return "PENDING_REMOVE"
	default:
		return "ABSENT"
	}
}

// API is the subset of the account API the store calls.
type API interface {
	Favourites(ctx context.Context) ([]models.Movie, error)
	AddFavourite(ctx context.Context, id models.ID) error
	RemoveFavourite(ctx context.Context, id models.ID) error
}

// SessionSource is the session the store follows.
type SessionSource interface {
	Current() session.Session
	Subscribe(fn session.Listener) (unsubscribe func())
}

// StoreOpts configures a [Store].
type StoreOpts struct {
	API      API
	Sessions SessionSource
	Logger   *log.Logger
	// ResyncTimeout bounds session-triggered background fetches.
	ResyncTimeout time.Duration
}

// pendingOp records a toggle and what is needed to undo it. order is the issue order; settledAt
// is the fetch sequence current when the toggle succeeded.
type pendingOp struct {
	op        Membership
	movie     models.Movie
	index     int
	epoch     uint64
	order     uint64
	settledAt uint64
}

// Store owns the favourites set. Reads return copies.
//
// The mutex is never held across an API call. Listeners may run on background goroutines.
type Store struct {
	api           API
	sessions      SessionSource
	logger        *log.Logger
	resyncTimeout time.Duration

	mu        sync.Mutex
	items     []models.Movie
	pending   map[models.ID]*pendingOp
	settled   []*pendingOp
	issued    uint64
	user      *models.User
	epoch     uint64
	seq       uint64
	inflight  int
	err       error
	listeners map[int]func([]models.Movie)
	nextID    int

	unsubscribe func()
	background  sync.WaitGroup
}

// NewStore creates a store following opts.Sessions. An already authenticated session starts a
// background resync.
func NewStore(opts StoreOpts) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	timeout := opts.ResyncTimeout
	if timeout <= 0 {
		timeout = DefaultResyncTimeout
	}

	s := &Store{
		api:           opts.API,
		sessions:      opts.Sessions,
		logger:        shared.WithLogger(logger, "component", "favourites"),
		resyncTimeout: timeout,
		pending:       make(map[models.ID]*pendingOp),
		listeners:     make(map[int]func([]models.Movie)),
	}

	s.unsubscribe = s.sessions.Subscribe(s.onSession)

	cur := s.sessions.Current()
	s.mu.Lock()
	start := cur.Authenticated() && s.user == nil
	if start {
		s.user = cur.User
	}
	s.mu.Unlock()

	if start {
		s.resyncInBackground()
	}
	return s
}

// Close stops following the session and waits for background resyncs.
func (s *Store) Close() {
	s.unsubscribe()
	s.Wait()
}

// Wait blocks until background resyncs finish.
func (s *Store) Wait() {
	s.background.Wait()
}

func (s *Store) onSession(prev, next session.Session) {
	s.mu.Lock()

	if !next.Authenticated() {
		s.epoch++
		s.user = nil
		s.reset()
		items := slices.Clone(s.items)
		s.mu.Unlock()

		s.logger.Debug("session ended, cleared favourites")
		s.notify(items)
		return
	}

	if s.user != nil && s.user.Same(next.User) {
		s.mu.Unlock()
		return
	}

	s.epoch++
	s.user = next.User
	s.reset()
	items := slices.Clone(s.items)
	s.mu.Unlock()

	s.logger.Debug("session user changed, resyncing", "user", next.Username())
	s.notify(items)
	s.resyncInBackground()
}

// reset empties the set and forgets pending toggles. Callers hold s.mu.
func (s *Store) reset() {
	s.items = nil
	s.err = nil
	clear(s.pending)
	s.settled = nil
}

func (s *Store) resyncInBackground() {
	s.background.Add(1)
	go func() {
		defer s.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.resyncTimeout)
		defer cancel()

		if err := s.Resync(ctx); err != nil {
			if errors.Is(err, shared.ErrResyncSuperseded) {
				s.logger.Debug("discarded stale favourites")
				return
			}
			s.logger.Warn("failed to load favourites", "error", err)
		}
	}()
}

// Resync replaces the set with the server's list, keeping in-flight toggles and toggles that
// succeeded while the fetch was out applied on top.
//
// Anonymous sessions clear the set without a call. A fetch overtaken by a newer fetch or a session
// change returns [shared.ErrResyncSuperseded] and changes nothing. A failed fetch keeps the
// previous set and is reported by [Store.Err].
func (s *Store) Resync(ctx context.Context) error {
	s.mu.Lock()
	if !s.sessions.Current().Authenticated() {
		s.reset()
		items := slices.Clone(s.items)
		s.mu.Unlock()
		s.notify(items)
		return nil
	}

	s.seq++
	seq, epoch := s.seq, s.epoch
	s.inflight++
	s.mu.Unlock()

	list, err := s.api.Favourites(ctx)

	s.mu.Lock()
	s.inflight--

	if seq != s.seq || epoch != s.epoch {
		s.mu.Unlock()
		return shared.ErrResyncSuperseded
	}

	if err != nil {
		s.err = err
		s.mu.Unlock()
		return err
	}

	items := dedupe(list)
	for _, p := range s.replay(seq) {
		idx := indexOf(items, p.movie.ID)
		switch p.op {
		case PendingAdd:
			if idx < 0 {
				items = append(items, p.movie)
			}
		case PendingRemove:
			if idx >= 0 {
				p.index = idx
				items = slices.Delete(items, idx, idx+1)
			}
		}
	}

	s.items = items
	s.err = nil
	s.settled = nil
	snapshot := slices.Clone(items)
	s.mu.Unlock()

	s.logger.Debug("favourites loaded", "count", len(snapshot))
	s.notify(snapshot)
	return nil
}

// replay returns the toggles a fetch issued at seq may not reflect, in issue order: those still in
// flight and those that succeeded after it was issued. Callers hold s.mu.
func (s *Store) replay(seq uint64) []*pendingOp {
	ops := make([]*pendingOp, 0, len(s.pending)+len(s.settled))
	for _, p := range s.pending {
		if p.epoch == s.epoch {
			ops = append(ops, p)
		}
	}
	for _, p := range s.settled {
		if p.epoch == s.epoch && p.settledAt >= seq {
			ops = append(ops, p)
		}
	}
	slices.SortFunc(ops, func(a, b *pendingOp) int { return cmp.Compare(a.order, b.order) })
	return ops
}

// Toggle adds movie when it is absent and removes it when present, optimistically.
//
// It returns the resulting membership. On failure the change is rolled back and the error wraps
// [shared.ErrMutationFailed] along with the request error.
func (s *Store) Toggle(ctx context.Context, movie models.Movie) (Membership, error) {
	if movie.ID == "" {
		return Absent, fmt.Errorf("%w: movie id is required", shared.ErrMissingArgument)
	}

	s.mu.Lock()
	if !s.sessions.Current().Authenticated() {
		s.mu.Unlock()
		return Absent, shared.ErrAuthRequired
	}

	if p, ok := s.pending[movie.ID]; ok {
		s.mu.Unlock()
		return p.op, shared.ErrOperationInProgress
	}

	s.issued++
	p := &pendingOp{epoch: s.epoch, order: s.issued}
	if idx := indexOf(s.items, movie.ID); idx >= 0 {
		p.op = PendingRemove
		p.movie = s.items[idx]
		p.index = idx
		s.items = slices.Delete(s.items, idx, idx+1)
	} else {
		p.op = PendingAdd
		p.movie = movie
		s.items = append(s.items, movie)
	}
	s.pending[movie.ID] = p
	snapshot := slices.Clone(s.items)
	s.mu.Unlock()

	s.notify(snapshot)

	var err error
	if p.op == PendingRemove {
		err = s.api.RemoveFavourite(ctx, movie.ID)
	} else {
		err = s.api.AddFavourite(ctx, movie.ID)
	}

	s.mu.Lock()
	if s.pending[movie.ID] == p {
		delete(s.pending, movie.ID)
	}

	if err == nil {
		if s.inflight > 0 && p.epoch == s.epoch {
			p.settledAt = s.seq
			s.settled = append(s.settled, p)
		}
		snapshot = slices.Clone(s.items)
		s.mu.Unlock()
		s.notify(snapshot)
		if p.op == PendingRemove {
			return Absent, nil
		}
		return Present, nil
	}

	if p.epoch == s.epoch {
		s.rollback(p)
	} else {
		s.logger.Debug("session changed during toggle, skipping rollback", "id", movie.ID)
	}
	snapshot = slices.Clone(s.items)
	s.mu.Unlock()

	s.notify(snapshot)
	s.logger.Warn("favourite update failed", "id", movie.ID, "op", p.op, "error", err)

	if p.op == PendingRemove {
		return Present, fmt.Errorf("%w: %w", shared.ErrMutationFailed, err)
	}
	return Absent, fmt.Errorf("%w: %w", shared.ErrMutationFailed, err)
}

// rollback undoes a failed toggle. Callers hold s.mu.
func (s *Store) rollback(p *pendingOp) {
	idx := indexOf(s.items, p.movie.ID)
	switch p.op {
	case PendingAdd:
		if idx >= 0 {
			s.items = slices.Delete(s.items, idx, idx+1)
		}
	case PendingRemove:
		if idx < 0 {
			at := min(max(p.index, 0), len(s.items))
			s.items = slices.Insert(s.items, at, p.movie)
		}
	}
}

// Items returns a copy of the set in order.
func (s *Store) Items() []models.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Contains reports whether id is in the set, including optimistic additions.
func (s *Store) Contains(id models.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.items, id) >= 0
}

// State returns the membership of id.
func (s *Store) State(id models.ID) Membership {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pending[id]; ok {
		return p.op
	}
	if indexOf(s.items, id) >= 0 {
		return Present
	}
	return Absent
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Err returns the error of the last failed resync, cleared by the next successful one.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Subscribe registers fn to receive a snapshot after every change.
func (s *Store) Subscribe(fn func([]models.Movie)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) notify(items []models.Movie) {
	s.mu.Lock()
	listeners := make([]func([]models.Movie), 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(slices.Clone(items))
	}
}

func indexOf(items []models.Movie, id models.ID) int {
	return slices.IndexFunc(items, func(m models.Movie) bool { return m.ID == id })
}

// dedupe keeps the first occurrence of each id, in order.
func dedupe(list []models.Movie) []models.Movie {
	seen := make(map[models.ID]bool, len(list))
	out := make([]models.Movie, 0, len(list))
	for _, m := range list {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out
}
