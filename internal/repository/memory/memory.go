// Package memory provides mutex-guarded in-memory implementations of the
// store interfaces, used for single-node deployments without Postgres and by
// the dispatch engine's tests. RunAtomic serializes all transactions on one
// lock and rolls the maps back when the callback fails, so callers get the
// same all-or-nothing behavior as the Postgres stores.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	"github.com/gridpulse/streetlight-dispatch/internal/repository"
)

// Store owns all in-memory state.
type Store struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
	assets  map[string]domain.Asset
	workers map[string]domain.Worker
	history map[string][]domain.TicketHistory
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{
		tickets: make(map[string]domain.Ticket),
		assets:  make(map[string]domain.Asset),
		workers: make(map[string]domain.Worker),
		history: make(map[string][]domain.TicketHistory),
	}
	return s
}

// Tickets returns the ticket store view. Each call locks independently.
func (s *Store) Tickets() repository.TicketRepository {
	return &ticketStore{s: s, locking: true}
}

// Assets returns the asset store view.
func (s *Store) Assets() repository.AssetRepository {
	return &assetStore{s: s, locking: true}
}

// Workers returns the directory store view.
func (s *Store) Workers() repository.WorkerRepository {
	return &workerStore{s: s, locking: true}
}

// History returns the audit log view.
func (s *Store) History() repository.HistoryRepository {
	return &historyStore{s: s, locking: true}
}

// RunAtomic runs fn while holding the store lock. On error all writes made
// through the transactional views are rolled back.
func (s *Store) RunAtomic(ctx context.Context, fn func(ctx context.Context, tx repository.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.snapshot()
	err := fn(ctx, repository.Stores{
		Tickets: &ticketStore{s: s},
		Assets:  &assetStore{s: s},
		History: &historyStore{s: s},
	})
	if err != nil {
		s.restore(backup)
		return err
	}
	return nil
}

type state struct {
	tickets map[string]domain.Ticket
	assets  map[string]domain.Asset
	history map[string][]domain.TicketHistory
}

func (s *Store) snapshot() state {
	tickets := make(map[string]domain.Ticket, len(s.tickets))
	for k, v := range s.tickets {
		tickets[k] = v
	}
	assets := make(map[string]domain.Asset, len(s.assets))
	for k, v := range s.assets {
		assets[k] = v
	}
	history := make(map[string][]domain.TicketHistory, len(s.history))
	for k, v := range s.history {
		history[k] = append([]domain.TicketHistory(nil), v...)
	}
	return state{tickets: tickets, assets: assets, history: history}
}

func (s *Store) restore(st state) {
	s.tickets = st.tickets
	s.assets = st.assets
	s.history = st.history
}

// --- tickets ---

type ticketStore struct {
	s       *Store
	locking bool
}

func (t *ticketStore) acquire() func() {
	if !t.locking {
		return func() {}
	}
	t.s.mu.Lock()
	return t.s.mu.Unlock
}

func (t *ticketStore) Create(_ context.Context, ticket *domain.Ticket) error {
	defer t.acquire()()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	t.s.tickets[ticket.ID] = *ticket
	return nil
}

func (t *ticketStore) Update(_ context.Context, ticket *domain.Ticket) error {
	defer t.acquire()()
	if _, ok := t.s.tickets[ticket.ID]; !ok {
		return repository.ErrNotFound
	}
	t.s.tickets[ticket.ID] = *ticket
	return nil
}

func (t *ticketStore) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	defer t.acquire()()
	ticket, ok := t.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ticket, nil
}

func (t *ticketStore) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	// the store lock held by RunAtomic already excludes concurrent writers
	return t.GetByID(ctx, id)
}

func (t *ticketStore) ListByStatus(_ context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	defer t.acquire()()
	var result []domain.Ticket
	for _, ticket := range t.s.tickets {
		if ticket.Status == status {
			result = append(result, ticket)
		}
	}
	sortByCreatedDesc(result)
	return result, nil
}

func (t *ticketStore) FindActiveByAsset(_ context.Context, assetRef string) (*domain.Ticket, error) {
	defer t.acquire()()
	for _, ticket := range t.s.tickets {
		if ticket.AssetRef == assetRef && ticket.Status != domain.TicketStatusResolved {
			found := ticket
			return &found, nil
		}
	}
	return nil, nil
}

func (t *ticketStore) ListAssignedToWorker(_ context.Context, workerID string) ([]domain.Ticket, error) {
	defer t.acquire()()
	var result []domain.Ticket
	for _, ticket := range t.s.tickets {
		if ticket.Status == domain.TicketStatusAssigned &&
			ticket.AssignedWorkerID != nil && *ticket.AssignedWorkerID == workerID {
			result = append(result, ticket)
		}
	}
	sortByCreatedDesc(result)
	return result, nil
}

func sortByCreatedDesc(tickets []domain.Ticket) {
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
}

// --- assets ---

type assetStore struct {
	s       *Store
	locking bool
}

func (a *assetStore) acquire() func() {
	if !a.locking {
		return func() {}
	}
	a.s.mu.Lock()
	return a.s.mu.Unlock
}

func (a *assetStore) Create(_ context.Context, asset *domain.Asset) error {
	defer a.acquire()()
	asset.ID = uuid.NewString()
	now := time.Now()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	a.s.assets[asset.ID] = *asset
	return nil
}

func (a *assetStore) GetByID(_ context.Context, id string) (*domain.Asset, error) {
	defer a.acquire()()
	asset, ok := a.s.assets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &asset, nil
}

func (a *assetStore) GetByAssetID(_ context.Context, assetID string) (*domain.Asset, error) {
	defer a.acquire()()
	for _, asset := range a.s.assets {
		if asset.AssetID == assetID {
			found := asset
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (a *assetStore) List(_ context.Context) ([]domain.Asset, error) {
	defer a.acquire()()
	result := make([]domain.Asset, 0, len(a.s.assets))
	for _, asset := range a.s.assets {
		result = append(result, asset)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].InstalledAt.After(result[j].InstalledAt)
	})
	return result, nil
}

func (a *assetStore) SetStatus(_ context.Context, id string, status domain.AssetStatus) error {
	defer a.acquire()()
	asset, ok := a.s.assets[id]
	if !ok {
		return repository.ErrNotFound
	}
	asset.Status = status
	asset.UpdatedAt = time.Now()
	a.s.assets[id] = asset
	return nil
}

// --- workers ---

type workerStore struct {
	s       *Store
	locking bool
}

func (w *workerStore) acquire() func() {
	if !w.locking {
		return func() {}
	}
	w.s.mu.Lock()
	return w.s.mu.Unlock
}

func (w *workerStore) Create(_ context.Context, worker *domain.Worker) error {
	defer w.acquire()()
	worker.ID = uuid.NewString()
	now := time.Now()
	worker.CreatedAt = now
	worker.UpdatedAt = now
	w.s.workers[worker.ID] = *worker
	return nil
}

func (w *workerStore) GetByID(_ context.Context, id string) (*domain.Worker, error) {
	defer w.acquire()()
	worker, ok := w.s.workers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &worker, nil
}

func (w *workerStore) GetByEmail(_ context.Context, email string) (*domain.Worker, error) {
	defer w.acquire()()
	for _, worker := range w.s.workers {
		if worker.Email == email {
			found := worker
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (w *workerStore) ListByRole(_ context.Context, role domain.WorkerRole) ([]domain.Worker, error) {
	defer w.acquire()()
	var result []domain.Worker
	for _, worker := range w.s.workers {
		if worker.Role == role {
			result = append(result, worker)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DisplayName < result[j].DisplayName
	})
	return result, nil
}

func (w *workerStore) SetLocation(_ context.Context, id string, loc domain.Coordinate, at time.Time) error {
	defer w.acquire()()
	worker, ok := w.s.workers[id]
	if !ok {
		return repository.ErrNotFound
	}
	worker.LastKnownLocation = &domain.Coordinate{Latitude: loc.Latitude, Longitude: loc.Longitude}
	worker.LocationUpdatedAt = &at
	worker.UpdatedAt = time.Now()
	w.s.workers[id] = worker
	return nil
}

// --- history ---

type historyStore struct {
	s       *Store
	locking bool
}

func (h *historyStore) acquire() func() {
	if !h.locking {
		return func() {}
	}
	h.s.mu.Lock()
	return h.s.mu.Unlock
}

func (h *historyStore) Create(_ context.Context, entry *domain.TicketHistory) error {
	defer h.acquire()()
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	h.s.history[entry.TicketID] = append(h.s.history[entry.TicketID], *entry)
	return nil
}

func (h *historyStore) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	defer h.acquire()()
	entries := h.s.history[ticketID]
	return append([]domain.TicketHistory(nil), entries...), nil
}
