package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"idlepond/internal/catalog"
	"idlepond/internal/catch"
	"idlepond/internal/config"
	"idlepond/internal/ledger"
	"idlepond/internal/progress"
	"idlepond/internal/shop"
	"idlepond/internal/storage"
	"idlepond/internal/telemetry"
)

var (
	ErrUnknownPond    = errors.New("game: unknown pond")
	ErrUnknownSpecies = errors.New("game: unknown species")
	ErrEmptyCart      = errors.New("game: cart is empty")
)

// UnknownPondError carries the closest known pond name, if any.
type UnknownPondError struct {
	Name       string
	Suggestion string
}

func (e *UnknownPondError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown pond %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown pond %q", e.Name)
}

func (e *UnknownPondError) Is(target error) bool { return target == ErrUnknownPond }

// Dispatcher produces one random catch for a pond.
type Dispatcher interface {
	RandomCatch(pond string) (catch.Catch, error)
}

type Deps struct {
	Catalog     *catalog.Store
	Dispatcher  Dispatcher
	Store       storage.Store
	Flusher     *storage.Flusher
	Events      telemetry.Repository
	Clock       Clock
	Balance     config.Balance
	Logger      *slog.Logger
	DefaultPond string
	Admin       bool
}

// Engine owns the ledger, the progression tracker and the session marker.
// Every mutation goes through it and is serialized by its mutex.
type Engine struct {
	catalog    *catalog.Store
	dispatcher Dispatcher
	store      storage.Store
	flusher    *storage.Flusher
	events     telemetry.Repository
	clock      Clock
	balance    config.Balance
	logger     *slog.Logger
	admin      bool

	mu       sync.Mutex
	ledger   *ledger.Ledger
	progress *progress.Tracker
	session  Session
	state    atomic.Int32
}

func NewEngine(d Deps) (*Engine, error) {
	if d.Catalog == nil || d.Dispatcher == nil || d.Store == nil {
		return nil, errors.New("game: engine needs a catalog, a dispatcher and a store")
	}
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Events == nil {
		d.Events = telemetry.Discard{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	d.Balance.ApplyDefaults()

	e := &Engine{
		catalog:    d.Catalog,
		dispatcher: d.Dispatcher,
		store:      d.Store,
		flusher:    d.Flusher,
		events:     d.Events,
		clock:      d.Clock,
		balance:    d.Balance,
		logger:     d.Logger,
		admin:      d.Admin,
		ledger:     ledger.New(d.Balance.StackLimit),
		progress:   progress.NewTracker(d.Catalog.AllFish(), d.Logger),
		session:    Session{Pond: d.DefaultPond},
	}
	return e, nil
}

// LoadState reads the saved ledger, progression and session. Missing keys
// leave the fresh defaults in place, and so does corrupt data, with an
// error log. Only storage failures are returned.
func (e *Engine) LoadState(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if data, ok, err := e.load(ctx, storage.KeyLedger); err != nil {
		return err
	} else if ok {
		l, err := ledger.Restore(data, e.balance.StackLimit)
		if err != nil {
			e.logger.Error("discarding unreadable ledger", "err", err)
		} else {
			e.ledger = l
		}
	}

	if data, ok, err := e.load(ctx, storage.KeyProgress); err != nil {
		return err
	} else if ok {
		t, err := progress.Restore(data, e.catalog.AllFish(), e.logger)
		if err != nil {
			e.logger.Error("discarding unreadable progress", "err", err)
		} else {
			e.progress = t
		}
	}

	if data, ok, err := e.load(ctx, storage.KeySession); err != nil {
		return err
	} else if ok {
		s, err := RestoreSession(data)
		if err != nil {
			e.logger.Error("discarding unreadable session", "err", err)
		} else {
			if s.Pond == "" {
				s.Pond = e.session.Pond
			}
			e.session = s
		}
	}

	st := e.progress.State()
	e.logger.Debug("state loaded",
		"pond", e.session.Pond,
		"level", st.Level,
		"coins", e.ledger.Coins(),
		"exit_marker", e.session.LastExitAt != nil,
	)
	return nil
}

func (e *Engine) load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := e.store.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading %s: %w", key, err)
	}
	return data, true, nil
}

func (e *Engine) Pond() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Pond
}

func (e *Engine) SelectPond(ctx context.Context, name string) error {
	if !e.catalog.HasPond(name) {
		perr := &UnknownPondError{Name: name}
		if s, ok := e.catalog.SuggestPond(name); ok {
			perr.Suggestion = s
		}
		return perr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Pond = name
	e.logger.Info("pond selected", "pond", name)
	return e.persistLocked()
}

// CatchOnce runs a single live catch attempt. A failed dispatch counts as
// nothing caught and returns the dispatch error with a nil catch.
func (e *Engine) CatchOnce(ctx context.Context) (catch.Catch, error) {
	if e.CatchupState() == CatchupComputing {
		return nil, ErrCatchupInProgress
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.dispatcher.RandomCatch(e.session.Pond)
	if err != nil {
		e.logger.Debug("nothing caught", "pond", e.session.Pond, "err", err)
		e.record(telemetry.EventNothingCaught, telemetry.EventMetadata{"pond": e.session.Pond})
		return nil, err
	}
	if _, _, err := e.apply(c, e.clock.Now()); err != nil {
		return nil, err
	}
	if err := e.persistLocked(); err != nil {
		e.logger.Error("saving after catch", "err", err)
	}
	return c, nil
}

// apply routes a catch into the ledger and the tracker and returns the XP
// it granted and the levels gained.
func (e *Engine) apply(c catch.Catch, at time.Time) (int, int, error) {
	var xp, levels int
	switch v := c.(type) {
	case *catch.FishCatch:
		xp = v.Exp
		levels = e.progress.AddXP(xp)
		if err := e.progress.RecordCatch(v); err != nil && !errors.Is(err, progress.ErrUnknownFish) {
			return 0, 0, err
		}
		e.ledger.AddFish(v, at)
		e.record(telemetry.EventFishCaught, telemetry.EventMetadata{
			"fish":    v.Name,
			"pond":    v.Pond,
			"rarity":  v.Rarity.String(),
			"quality": v.Quality.String(),
			"weight":  v.Weight,
			"price":   v.Price,
		})
	case *catch.TreasureCatch:
		if err := e.ledger.AddTreasure(v); err != nil {
			return 0, 0, err
		}
		xp = v.Exp
		levels = e.progress.AddXP(xp)
		e.record(telemetry.EventTreasureCaught, telemetry.EventMetadata{"item": v.Name, "rarity": v.Rarity.String()})
	case *catch.GarbageCatch:
		if err := e.ledger.AddGarbage(v); err != nil {
			return 0, 0, err
		}
		e.record(telemetry.EventGarbageCaught, telemetry.EventMetadata{"item": v.Name})
	default:
		return 0, 0, fmt.Errorf("game: unhandled catch type %T", c)
	}

	if levels > 0 {
		st := e.progress.State()
		e.logger.Info("level up", "level", st.Level, "gained", levels)
		e.record(telemetry.EventLevelUp, telemetry.EventMetadata{"levels": levels, "level": st.Level})
	}
	return xp, levels, nil
}

func (s *Summary) tally(c catch.Catch, xp, levels int) {
	switch c.Category() {
	case catch.CategoryFish:
		s.FishCount++
	case catch.CategoryGarbage:
		s.GarbageCount++
	case catch.CategoryTreasure:
		s.TreasureCount++
	}
	s.XPGained += xp
	s.LevelsGained += levels
}

// RunSession fishes live for the configured session length, one catch
// attempt every CatchIntervalSeconds, driven by ticks. Time already spent
// away can be taken off with skipSeconds.
func (e *Engine) RunSession(ctx context.Context, ticks <-chan time.Time, skipSeconds int) (Summary, error) {
	var sum Summary
	startLevel := e.Progress().Level
	sched := NewScheduler(e.balance.CatchIntervalSeconds, func() {
		sum.Attempts++
		c, err := e.CatchOnce(ctx)
		if err != nil {
			sum.Misses++
			return
		}
		var xp int
		switch v := c.(type) {
		case *catch.FishCatch:
			xp = v.Exp
		case *catch.TreasureCatch:
			xp = v.Exp
		}
		sum.tally(c, xp, 0)
	})
	sched.Start(e.balance.SessionMinutes * 60)
	sched.Subtract(skipSeconds)

	err := sched.Drive(ctx, ticks)
	sum.LevelsGained = e.Progress().Level - startLevel
	e.record(telemetry.EventSessionFinished, telemetry.EventMetadata{
		"attempts": sum.Attempts,
		"caught":   sum.Caught(),
	})
	e.logger.Info("session finished", "summary", sum)
	return sum, err
}

// RecordExit stamps the exit marker and writes everything synchronously.
func (e *Engine) RecordExit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	e.session.LastExitAt = &now
	e.logger.Debug("exit recorded", "at", now)
	return e.commitLocked(ctx)
}

func (e *Engine) Sell(ctx context.Context, sec ledger.Section) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	coins, err := e.ledger.SellAll(sec)
	if err != nil {
		return 0, err
	}
	e.record(telemetry.EventSectionSold, telemetry.EventMetadata{"section": sec.String(), "coins": coins})
	e.logger.Info("section sold", "section", sec, "coins", coins, "wallet", e.ledger.Coins())
	return coins, e.persistLocked()
}

// Checkout pays for the cart from the wallet and clears it. A short wallet
// leaves both the wallet and the cart as they were.
func (e *Engine) Checkout(ctx context.Context, cart *shop.Cart) (int, error) {
	if cart.Empty() {
		return 0, ErrEmptyCart
	}
	total, err := cart.Total()
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ledger.Purchase(total, cart.Counts()); err != nil {
		return 0, err
	}
	for _, l := range cart.Lines() {
		e.record(telemetry.EventItemBought, telemetry.EventMetadata{
			"item":     l.Item.Name,
			"quantity": l.Quantity,
			"coins":    l.Item.Price * l.Quantity,
		})
	}
	cart.Clear()
	e.logger.Info("checkout", "coins", total, "wallet", e.ledger.Coins())
	return total, e.persistLocked()
}

func (e *Engine) Gear() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Gear()
}

// Archive moves a basket fish into the library. An unknown id is a no-op.
func (e *Engine) Archive(ctx context.Context, id uuid.UUID) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ledger.MoveFishToLibrary(id) {
		e.logger.Debug("fish not in basket", "id", id)
		return false, nil
	}
	e.record(telemetry.EventFishArchived, telemetry.EventMetadata{"id": id.String()})
	return true, e.persistLocked()
}

func (e *Engine) Sort(ctx context.Context, sec ledger.Section, key ledger.SortKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ledger.Sort(sec, key); err != nil {
		return err
	}
	return e.persistLocked()
}

// ResyncGuide rebuilds guide counts from the fish the player holds. It
// returns held species the guide does not know.
func (e *Engine) ResyncGuide(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	unknown := e.progress.SyncFromLedger(e.ledger)
	e.record(telemetry.EventGuideResynced, telemetry.EventMetadata{"unknown": len(unknown)})
	return unknown, e.persistLocked()
}

func (e *Engine) ResetGuide(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.progress.ResetGuide(e.admin); err != nil {
		return err
	}
	e.record(telemetry.EventGuideReset, nil)
	e.logger.Warn("fish guide reset")
	return e.persistLocked()
}

func (e *Engine) Inventory() ledger.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Snapshot()
}

func (e *Engine) TotalValue(sec ledger.Section) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.TotalValue(sec)
}

func (e *Engine) ExportCSV(w io.Writer, sec ledger.Section) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.WriteCSV(w, sec)
}

func (e *Engine) Progress() progress.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress.State()
}

func (e *Engine) Guide() []progress.GuideEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress.Guide()
}

// Species looks up one fish in the catalog along with its guide entry.
func (e *Engine) Species(name string) (catalog.Fish, progress.GuideEntry, error) {
	f, ok := e.catalog.FishByName(name)
	if !ok {
		return catalog.Fish{}, progress.GuideEntry{}, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.progress.Entry(name)
	if !ok {
		e.logger.Warn("species missing from guide", "fish", name)
		g = progress.GuideEntry{Name: f.Name, Pond: f.Pond, Rarity: f.Rarity}
	}
	return f, g, nil
}

func (e *Engine) StackLimit() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.StackLimit()
}

func (e *Engine) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.clone()
}

func (e *Engine) Ponds() []string { return e.catalog.Ponds() }

func (e *Engine) Events() telemetry.Repository { return e.events }

func (e *Engine) record(et telemetry.EventType, md telemetry.EventMetadata) {
	if err := e.events.RecordEvent(et, md); err != nil {
		e.logger.Warn("telemetry event dropped", "type", et, "err", err)
	}
}

func (e *Engine) snapshotLocked() ([]storage.Entry, error) {
	l, err := e.ledger.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serializing ledger: %w", err)
	}
	p, err := e.progress.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serializing progress: %w", err)
	}
	s, err := e.session.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serializing session: %w", err)
	}
	// session goes last so a torn batch never clears the marker early
	return []storage.Entry{
		{Key: storage.KeyLedger, Data: l},
		{Key: storage.KeyProgress, Data: p},
		{Key: storage.KeySession, Data: s},
	}, nil
}

// persistLocked hands a snapshot to the background flusher, or writes it
// directly when there is none.
func (e *Engine) persistLocked() error {
	entries, err := e.snapshotLocked()
	if err != nil {
		return err
	}
	if e.flusher == nil {
		return e.store.SaveAll(context.Background(), entries)
	}
	for _, en := range entries {
		if !e.flusher.Enqueue(en.Key, en.Data) {
			return storage.ErrFlusherClosed
		}
	}
	return nil
}

// commitLocked persists and waits for the write to land.
func (e *Engine) commitLocked(ctx context.Context) error {
	entries, err := e.snapshotLocked()
	if err != nil {
		return err
	}
	if e.flusher == nil {
		return e.store.SaveAll(ctx, entries)
	}
	for _, en := range entries {
		if !e.flusher.Enqueue(en.Key, en.Data) {
			return storage.ErrFlusherClosed
		}
	}
	return e.flusher.Flush(ctx)
}

// Close drains pending writes. The store stays open; its owner closes it.
func (e *Engine) Close(ctx context.Context) error {
	if e.flusher == nil {
		return nil
	}
	return e.flusher.Close(ctx)
}
