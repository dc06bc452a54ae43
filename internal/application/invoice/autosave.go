package invoice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
)

// Default autosave timings
const (
	DefaultDebounce    = time.Second
	DefaultSaveTimeout = 10 * time.Second
)

// SnapshotSource returns the patch to persist at flush time
type SnapshotSource func() invoice.Snapshot

// Autosaver debounces saves of one owner's document.
//
// Schedule restarts the quiet period; when it elapses the source is read
// and the result is written as a merge upsert. Only the state at flush time
// is written, so a burst of edits produces a single save. Saves are
// serialized, which keeps a slow earlier save from landing after a later one
// within this process. Failures are reported and not retried.
type Autosaver struct {
	ownerID     string
	store       invoice.SnapshotStore
	source      SnapshotSource
	debounce    time.Duration
	saveTimeout time.Duration
	listener    StatusListener
	logger      *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	status  SaveStatus
	lastErr error

	saveMu sync.Mutex
}

// AutosaverConfig holds the autosave timings
type AutosaverConfig struct {
	Debounce    time.Duration
	SaveTimeout time.Duration
}

// NewAutosaver creates an autosaver for one owner
func NewAutosaver(
	ownerID string,
	store invoice.SnapshotStore,
	source SnapshotSource,
	cfg AutosaverConfig,
	listener StatusListener,
	logger *zap.Logger,
) *Autosaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}
	return &Autosaver{
		ownerID:     ownerID,
		store:       store,
		source:      source,
		debounce:    cfg.Debounce,
		saveTimeout: cfg.SaveTimeout,
		listener:    listener,
		logger:      logger.With(zap.String("owner_id", ownerID)),
		status:      SaveStatusIdle,
	}
}

// Schedule starts or restarts the quiet period
func (a *Autosaver) Schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.gen++
	a.pending = true
	gen := a.gen
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, func() { a.fire(gen) })
}

// Pending reports whether a save is waiting for the quiet period to end
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// Cancel drops the pending save, if any, and waits for a save in flight
func (a *Autosaver) Cancel() {
	a.mu.Lock()
	a.cancelLocked()
	a.mu.Unlock()

	a.saveMu.Lock()
	defer a.saveMu.Unlock()
}

func (a *Autosaver) cancelLocked() {
	a.pending = false
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Flush performs the pending save now. Without a pending save it only waits
// for a save already in flight.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	pending := a.pending
	a.cancelLocked()
	a.mu.Unlock()

	if !pending {
		a.saveMu.Lock()
		defer a.saveMu.Unlock()
		return nil
	}
	return a.save(ctx)
}

// SaveNow writes patch immediately, bypassing the debounce.
// Logo uploads use it.
func (a *Autosaver) SaveNow(ctx context.Context, patch invoice.Snapshot) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	return a.write(ctx, patch)
}

// Status returns the last save status and its error
func (a *Autosaver) Status() (SaveStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status, a.lastErr
}

func (a *Autosaver) fire(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || !a.pending {
		a.mu.Unlock()
		return
	}
	a.pending = false
	a.timer = nil
	a.mu.Unlock()

	_ = a.save(context.Background())
}

func (a *Autosaver) save(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	return a.write(ctx, a.source())
}

func (a *Autosaver) write(ctx context.Context, patch invoice.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, a.saveTimeout)
	defer cancel()

	a.setStatus(SaveStatusSaving, nil)
	if err := a.store.Save(ctx, a.ownerID, patch); err != nil {
		a.logger.Error("failed to save invoice", zap.Error(err))
		wrapped := fmt.Errorf("%w: %v", shared.ErrPersistenceFailed, err)
		a.setStatus(SaveStatusFailed, wrapped)
		return wrapped
	}
	a.logger.Debug("invoice saved")
	a.setStatus(SaveStatusSaved, nil)
	return nil
}

func (a *Autosaver) setStatus(status SaveStatus, err error) {
	a.mu.Lock()
	a.status = status
	a.lastErr = err
	a.mu.Unlock()

	if a.listener != nil {
		a.listener.OnSaveStatus(a.ownerID, status, err)
	}
}
