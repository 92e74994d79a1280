package service

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"studytrack/internal/models"
)

var (
	ErrNoDateSelected = errors.New("no date selected")
	ErrLoading        = errors.New("progress is loading")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidField   = errors.New("invalid counter field")
	ErrUnknownSubject = errors.New("unknown subject")
)

// RecordStore is the daily record persistence needed by the controller
type RecordStore interface {
	Upsert(record *models.DailyRecord) error
	Get(userID int64, date string) (*models.DailyRecord, error)
	ListRecent(userID int64, limit int) ([]models.DailyRecord, error)
	ListRecentExcluding(userID int64, excludeDate string, limit int) ([]models.DailyRecord, error)
}

// SyncState tags the controller's position in its load cycle
type SyncState int

const (
	StateIdle SyncState = iota
	StateLoading
	StateReady
)

// Controller owns one user's progress snapshot and keeps it reconciled
// with the record store. Mutations are persisted through a trailing-edge
// debounce: a single pending payload whose deadline resets on every
// mutation, flushed as one merge-write when the quiescence window elapses.
// At most one upsert is in flight at a time; a payload produced while a
// write is outstanding supersedes it rather than queueing behind it.
type Controller struct {
	userID       int64
	catalogs     *CatalogService
	records      RecordStore
	debounce     time.Duration
	historyLimit int
	now          func() time.Time

	mu         sync.Mutex
	state      SyncState
	date       string
	snapshot   *models.Snapshot
	generation int // bumped on SelectDate so stale loads are discarded
	pending    *models.DailyRecord
	deadline   time.Time // quiescence deadline for the pending payload
	timer      *time.Timer
	writing    bool
	queued     *models.DailyRecord
}

// NewController creates a controller for one user's session
func NewController(userID int64, catalogs *CatalogService, records RecordStore, debounce time.Duration, historyLimit int) *Controller {
	return &Controller{
		userID:       userID,
		catalogs:     catalogs,
		records:      records,
		debounce:     debounce,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// SelectDate loads the snapshot for a calendar date: the catalog
// (initialized with defaults on first use) merged with that date's record,
// or all zeros when none exists. Switching dates while a load is in
// flight discards the stale load's result. A pending write for the
// previous date is not cancelled; its payload carries its own date and
// flushes normally.
func (c *Controller) SelectDate(date string) (*models.Snapshot, error) {
	if !models.ValidDate(date) {
		return nil, ErrInvalidDate
	}

	c.mu.Lock()
	c.generation++
	generation := c.generation
	c.state = StateLoading
	c.date = date
	c.mu.Unlock()

	catalog, err := c.catalogs.GetOrInit(c.userID)
	if err != nil {
		c.abandonLoad(generation)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	record, err := c.records.Get(c.userID, date)
	if err != nil {
		c.abandonLoad(generation)
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		// A newer SelectDate superseded this load; drop the result
		return nil, ErrLoading
	}

	c.snapshot = BuildSnapshot(catalog, record, date)
	c.state = StateReady
	return c.snapshot.Clone(), nil
}

// abandonLoad returns the controller to Idle after a failed load,
// unless a newer load has already taken over
func (c *Controller) abandonLoad(generation int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation == c.generation {
		c.state = StateIdle
	}
}

// Mutate applies a bounded-below ±1 delta to one subject's counter and
// schedules the debounced write that mirrors the snapshot into the store.
// Mutations are rejected while a load is in flight to avoid racing the
// merge.
func (c *Controller) Mutate(subject string, field models.CountField, delta int) (*models.Snapshot, error) {
	if !models.ValidField(field) {
		return nil, ErrInvalidField
	}
	switch {
	case delta > 0:
		delta = 1
	case delta < 0:
		delta = -1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
		return nil, ErrNoDateSelected
	case StateLoading:
		return nil, ErrLoading
	}

	entry := c.snapshot.Find(subject)
	if entry == nil {
		return nil, ErrUnknownSubject
	}
	if delta != 0 {
		entry.Apply(field, delta)
		c.scheduleWriteLocked()
	}
	return c.snapshot.Clone(), nil
}

// RefreshCatalog rebuilds the snapshot's targets from the given catalog,
// keeping the day's counters, and schedules a write so the stored record's
// total target follows the catalog.
func (c *Controller) RefreshCatalog(catalog *models.Catalog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return
	}

	record := c.snapshot.ToRecord()
	c.snapshot = BuildSnapshot(catalog, record, c.date)
	c.scheduleWriteLocked()
}

// scheduleWriteLocked replaces the pending payload with the snapshot's
// current state and resets the debounce deadline. Callers hold c.mu.
func (c *Controller) scheduleWriteLocked() {
	c.pending = c.snapshot.ToRecord()
	c.deadline = c.now().Add(c.debounce)
	if c.timer != nil {
		c.timer.Reset(c.debounce)
		return
	}
	c.timer = time.AfterFunc(c.debounce, c.flush)
}

// flush issues the single write for an elapsed debounce window. If a
// write is already outstanding the payload is parked to supersede it;
// last snapshot wins, there is no queue.
func (c *Controller) flush() {
	c.mu.Lock()
	if c.pending != nil {
		if remaining := c.deadline.Sub(c.now()); remaining > 0 {
			// A mutation extended the window while this fire waited on the
			// lock; push the flush out to the new deadline
			if c.timer != nil {
				c.timer.Reset(remaining)
			} else {
				c.timer = time.AfterFunc(remaining, c.flush)
			}
			c.mu.Unlock()
			return
		}
	}

	payload := c.pending
	c.pending = nil
	c.timer = nil

	if payload == nil {
		c.mu.Unlock()
		return
	}
	if c.writing {
		c.queued = payload
		c.mu.Unlock()
		return
	}
	c.writing = true

	for payload != nil {
		c.mu.Unlock()
		err := c.records.Upsert(payload)
		c.mu.Lock()
		if err != nil {
			// Transient store failure: the snapshot is kept, the write is
			// simply unconfirmed. The next flush cycle carries the full
			// state again.
			log.Printf("sync: failed to persist record %s: %v", models.RecordKey(payload.UserID, payload.Date), err)
			if c.queued != nil && c.pending == nil {
				// A newer payload was parked behind this write; give it its
				// own debounce cycle instead of dropping it
				c.pending = c.queued
				c.deadline = c.now().Add(c.debounce)
				if c.timer != nil {
					c.timer.Reset(c.debounce)
				} else {
					c.timer = time.AfterFunc(c.debounce, c.flush)
				}
			}
			c.queued = nil
			break
		}
		payload = c.queued
		c.queued = nil
	}

	c.writing = false
	c.mu.Unlock()
}

// Snapshot returns a copy of the current snapshot, or nil with the
// controller's state when none is loaded
func (c *Controller) Snapshot() (*models.Snapshot, SyncState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return nil, c.state
	}
	return c.snapshot.Clone(), c.state
}

// Date returns the currently selected date, if any
func (c *Controller) Date() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

// Syncing reports whether a load or an unconfirmed write is outstanding
func (c *Controller) Syncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateLoading || c.pending != nil || c.writing
}

// Rollup folds the live snapshot with stored history into the requested
// window's aggregate. History excludes the active date by construction,
// so the live day is counted exactly once.
func (c *Controller) Rollup(window Window) (*RollupResult, error) {
	if !ValidWindow(window) {
		return nil, fmt.Errorf("unsupported window %q", window)
	}

	c.mu.Lock()
	switch c.state {
	case StateIdle:
		c.mu.Unlock()
		return nil, ErrNoDateSelected
	case StateLoading:
		c.mu.Unlock()
		return nil, ErrLoading
	}
	snapshot := c.snapshot.Clone()
	date := c.date
	c.mu.Unlock()

	history, err := c.records.ListRecentExcluding(c.userID, date, c.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return Rollup(snapshot, history, window, c.now()), nil
}

// History returns the user's recent daily records, newest first
func (c *Controller) History(limit int) ([]models.DailyRecord, error) {
	if limit <= 0 || limit > c.historyLimit {
		limit = c.historyLimit
	}
	return c.records.ListRecent(c.userID, limit)
}

// SyncManager hands out one controller per user. All state is scoped to
// the authenticated user; controllers never share snapshots.
type SyncManager struct {
	mu          sync.Mutex
	controllers map[int64]*Controller

	catalogs     *CatalogService
	records      RecordStore
	debounce     time.Duration
	historyLimit int
}

// NewSyncManager creates the per-user controller registry
func NewSyncManager(catalogs *CatalogService, records RecordStore, debounce time.Duration, historyLimit int) *SyncManager {
	return &SyncManager{
		controllers:  make(map[int64]*Controller),
		catalogs:     catalogs,
		records:      records,
		debounce:     debounce,
		historyLimit: historyLimit,
	}
}

// ForUser returns the controller for a user, creating it on first use
func (m *SyncManager) ForUser(userID int64) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.controllers[userID]; ok {
		return c
	}
	c := NewController(userID, m.catalogs, m.records, m.debounce, m.historyLimit)
	m.controllers[userID] = c
	return c
}
