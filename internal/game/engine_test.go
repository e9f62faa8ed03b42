package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idlepond/internal/catalog"
	"idlepond/internal/catch"
	"idlepond/internal/config"
	"idlepond/internal/ledger"
	"idlepond/internal/progress"
	"idlepond/internal/sampler"
	"idlepond/internal/shop"
	"idlepond/internal/storage"
	"idlepond/internal/telemetry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedDispatcher cycles through results; a nil entry is a miss.
type scriptedDispatcher struct {
	results []catch.Catch
	calls   int
	ponds   []string
}

func (d *scriptedDispatcher) RandomCatch(pond string) (catch.Catch, error) {
	d.calls++
	d.ponds = append(d.ponds, pond)
	if len(d.results) == 0 {
		return nil, catch.ErrNoSelection
	}
	c := d.results[(d.calls-1)%len(d.results)]
	if c == nil {
		return nil, catch.ErrNoSelection
	}
	return c, nil
}

func lakeCatalog() *catalog.Store {
	return catalog.New(
		[]catalog.Fish{{Name: "Carp", Rarity: catalog.Common, Pond: "Lake", MinWeight: 1.0, MaxWeight: 5.0, Price: 100, Exp: 10}},
		[]catalog.Garbage{{Name: "Boot", Pond: "Lake", Price: 1, Description: "left foot"}},
		[]catalog.Treasure{{Name: "Pearl", Pond: "Lake", Rarity: catalog.Rare, Price: 50, Exp: 20}},
		quietLogger(),
	)
}

func carp() *catch.FishCatch {
	return &catch.FishCatch{Name: "Carp", Pond: "Lake", Rarity: catalog.Common, Quality: catch.Fine, Weight: 2.5, Price: 225, Exp: 10}
}

func boot() *catch.GarbageCatch {
	return &catch.GarbageCatch{Name: "Boot", Pond: "Lake", Price: 1, Quantity: 1}
}

func pearl() *catch.TreasureCatch {
	return &catch.TreasureCatch{Name: "Pearl", Pond: "Lake", Rarity: catalog.Rare, Price: 50, Exp: 20, Quantity: 1}
}

type engineFixture struct {
	engine *Engine
	disp   *scriptedDispatcher
	store  *storage.MemoryStore
	clock  *StepClock
	events *telemetry.MemoryRepository
}

func newEngineForTest(t *testing.T, balance config.Balance, results ...catch.Catch) engineFixture {
	t.Helper()
	clock := NewStepClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	disp := &scriptedDispatcher{results: results}
	store := storage.NewMemoryStore()
	events := telemetry.NewMemoryRepository(telemetry.WithClock(clock.Now))

	e, err := NewEngine(Deps{
		Catalog:     lakeCatalog(),
		Dispatcher:  disp,
		Store:       store,
		Events:      events,
		Clock:       clock,
		Balance:     balance,
		Logger:      quietLogger(),
		DefaultPond: "Lake",
	})
	require.NoError(t, err)
	return engineFixture{engine: e, disp: disp, store: store, clock: clock, events: events}
}

func savedSession(t *testing.T, store storage.Store) Session {
	t.Helper()
	data, err := store.Load(context.Background(), storage.KeySession)
	require.NoError(t, err)
	s, err := RestoreSession(data)
	require.NoError(t, err)
	return s
}

func TestReplayOffline_ThirtySevenSecondsAtTenIsThreeAttempts(t *testing.T) {
	fx := newEngineForTest(t, config.Default(), carp(), boot(), pearl())

	sum, err := fx.engine.ReplayOffline(context.Background(), 37, 10)
	require.NoError(t, err)

	assert.Equal(t, 3, fx.disp.calls)
	assert.Equal(t, 3, sum.Attempts)
	assert.Equal(t, 1, sum.FishCount)
	assert.Equal(t, 1, sum.GarbageCount)
	assert.Equal(t, 1, sum.TreasureCount)
	assert.Equal(t, 0, sum.Misses)
	assert.Equal(t, 37, sum.OfflineSeconds)
	assert.Equal(t, 30, sum.XPGained)
	assert.Equal(t, []string{"Lake", "Lake", "Lake"}, fx.disp.ponds)
	assert.Equal(t, CatchupSettled, fx.engine.CatchupState())

	inv := fx.engine.Inventory()
	assert.Len(t, inv.Basket, 1)
	assert.Len(t, inv.Garbage, 1)
	assert.Len(t, inv.Treasure, 1)
}

func TestReplayOffline_MissesDoNotAbortTheLoop(t *testing.T) {
	fx := newEngineForTest(t, config.Default(), nil, carp(), nil, nil)

	sum, err := fx.engine.ReplayOffline(context.Background(), 40, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Attempts)
	assert.Equal(t, 3, sum.Misses)
	assert.Equal(t, 1, sum.FishCount)
}

func TestReplayOffline_NoElapsedTime(t *testing.T) {
	for _, elapsed := range []int{0, -30} {
		fx := newEngineForTest(t, config.Default(), carp())
		sum, err := fx.engine.ReplayOffline(context.Background(), elapsed, 4)
		require.NoError(t, err)
		assert.Equal(t, Summary{}, sum)
		assert.Zero(t, fx.disp.calls)
		assert.Zero(t, fx.store.Writes(), "no side effects")
	}
}

func TestReplayOffline_ShorterThanOneInterval(t *testing.T) {
	fx := newEngineForTest(t, config.Default(), carp())
	ctx := context.Background()
	require.NoError(t, fx.engine.RecordExit(ctx))

	sum, err := fx.engine.ReplayOffline(ctx, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, Summary{OfflineSeconds: 3}, sum)
	assert.Zero(t, fx.disp.calls)
	assert.NotNil(t, fx.engine.Session().LastExitAt, "marker kept")
}

func TestReplayOffline_InvalidInterval(t *testing.T) {
	fx := newEngineForTest(t, config.Default(), carp())
	_, err := fx.engine.ReplayOffline(context.Background(), 40, 0)
	assert.ErrorIs(t, err, ErrInvalidInterval)
	assert.Equal(t, CatchupIdle, fx.engine.CatchupState())
}

func TestReplayOffline_NoElapsedTimeWinsOverBadInterval(t *testing.T) {
	fx := newEngineForTest(t, config.Default(), carp())
	sum, err := fx.engine.ReplayOffline(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
	assert.Zero(t, fx.store.Writes())
}

func TestReplayOffline_Capped(t *testing.T) {
	bal := config.Default()
	bal.MaxOfflineCatches = 5
	fx := newEngineForTest(t, bal, boot())

	sum, err := fx.engine.ReplayOffline(context.Background(), 100, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, fx.disp.calls)
	assert.Equal(t, 5, sum.Attempts)
	assert.True(t, sum.Capped)
	assert.Equal(t, 95, sum.Forfeited)
	assert.Equal(t, 100, sum.OfflineSeconds)

	// limit 8: 5 boots fit in one slot
	inv := fx.engine.Inventory()
	require.Len(t, inv.Garbage, 1)
	assert.Equal(t, 5, inv.Garbage[0].Quantity)
}

func TestReplayOffline_ZeroCapIsUnlimited(t *testing.T) {
	bal := config.Default()
	bal.MaxOfflineCatches = 0
	fx := newEngineForTest(t, bal, boot())

	sum, err := fx.engine.ReplayOffline(context.Background(), 6000, 1)
	require.NoError(t, err)
	assert.Equal(t, 6000, sum.Attempts)
	assert.False(t, sum.Capped)
}

func TestHandleOfflineCatches_IdempotentWindow(t *testing.T) {
	fx := newEngineForTest(t, config.Default(), carp())
	ctx := context.Background()

	require.NoError(t, fx.engine.RecordExit(ctx))
	require.NotNil(t, savedSession(t, fx.store).LastExitAt)

	fx.clock.Advance(41 * time.Second)
	first, err := fx.engine.HandleOfflineCatches(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 10, first.Attempts)
	assert.Equal(t, 41, first.OfflineSeconds)
	assert.Nil(t, fx.engine.Session().LastExitAt)
	assert.Nil(t, savedSession(t, fx.store).LastExitAt, "marker cleared on disk")

	second, err := fx.engine.HandleOfflineCatches(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, second)
	assert.Equal(t, 10, fx.disp.calls)

	settled, err := fx.events.Events(telemetry.Query{Types: []telemetry.EventType{telemetry.EventOfflineSettled}})
	require.NoError(t, err)
	assert.Len(t, settled, 1)
}

func TestHandleOfflineCatches_NoMarker(t *testing.T) {
	fx := newEngineForTest(t, config.Default(), carp())
	fx.clock.Advance(time.Hour)

	sum, err := fx.engine.HandleOfflineCatches(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
	assert.Zero(t, fx.disp.calls)
}

func TestCatchOnce_CarpEndToEnd(t *testing.T) {
	bal := config.Default()
	bal.PondOdds = map[string]config.Odds{"Lake": {Fish: 100}}
	bal.RarityWeights = []float64{1, 0, 0, 0, 0}
	require.NoError(t, bal.Validate())

	cat := lakeCatalog()
	disp := catch.NewDispatcher(cat, sampler.NewSeeded(7), bal, quietLogger())
	e, err := NewEngine(Deps{
		Catalog:     cat,
		Dispatcher:  disp,
		Store:       storage.NewMemoryStore(),
		Balance:     bal,
		Logger:      quietLogger(),
		DefaultPond: "Lake",
	})
	require.NoError(t, err)

	c, err := e.CatchOnce(context.Background())
	require.NoError(t, err)
	fish, ok := c.(*catch.FishCatch)
	require.True(t, ok, "got %T", c)
	assert.Equal(t, "Carp", fish.Name)
	assert.GreaterOrEqual(t, fish.Weight, 1.0)
	assert.LessOrEqual(t, fish.Weight, 5.0)
	assert.Equal(t, catch.FishPrice(100, fish.Weight, 5.0, fish.Quality, 1), fish.Price)

	var entry progress.GuideEntry
	for _, g := range e.Guide() {
		if g.Name == "Carp" {
			entry = g
		}
	}
	assert.True(t, entry.Discovered)
	assert.Equal(t, 1, entry.CaughtCount)
	assert.Equal(t, 10, e.Progress().CurrentXP)
	assert.Len(t, e.Inventory().Basket, 1)
}

func TestCatchOnce_NothingCaught(t *testing.T) {
	fx := newEngineForTest(t, config.Default())
	c, err := fx.engine.CatchOnce(context.Background())
	assert.Nil(t, c)
	assert.True(t, errors.Is(err, catch.ErrNoSelection))

	misses, _ := fx.events.Events(telemetry.Query{Types: []telemetry.EventType{telemetry.EventNothingCaught}})
	assert.Len(t, misses, 1)
}

func TestCatchOnce_LevelUp(t *testing.T) {
	big := &catch.TreasureCatch{Name: "Pearl", Pond: "Lake", Rarity: catalog.Rare, Price: 50, Exp: 250, Quantity: 1}
	fx := newEngineForTest(t, config.Default(), big)

	_, err := fx.engine.CatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, progress.State{Level: 2, CurrentXP: 50}, fx.engine.Progress())

	ups, _ := fx.events.Events(telemetry.Query{Types: []telemetry.EventType{telemetry.EventLevelUp}})
	require.Len(t, ups, 1)
	assert.JSONEq(t, `{"levels":2,"level":2}`, ups[0].Metadata)
}

func TestEngine_StateSurvivesRestart(t *testing.T) {
	fx := newEngineForTest(t, config.Default(), carp(), boot())
	ctx := context.Background()

	_, err := fx.engine.CatchOnce(ctx)
	require.NoError(t, err)
	_, err = fx.engine.CatchOnce(ctx)
	require.NoError(t, err)
	require.NoError(t, fx.engine.RecordExit(ctx))

	again, err := NewEngine(Deps{
		Catalog:    lakeCatalog(),
		Dispatcher: &scriptedDispatcher{},
		Store:      fx.store,
		Clock:      fx.clock,
		Balance:    config.Default(),
		Logger:     quietLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, again.LoadState(ctx))

	assert.Equal(t, fx.engine.Inventory(), again.Inventory())
	assert.Equal(t, fx.engine.Progress(), again.Progress())
	assert.Equal(t, "Lake", again.Pond())
	require.NotNil(t, again.Session().LastExitAt)
	assert.True(t, fx.clock.Now().Equal(*again.Session().LastExitAt))
}

func TestEngine_CorruptSaveFallsBackToFreshState(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(ctx, storage.KeyLedger, []byte("{not json")))
	require.NoError(t, store.Save(ctx, storage.KeyProgress, []byte(`{"schema_version":99}`)))
	require.NoError(t, store.Save(ctx, storage.KeySession, []byte("[]")))

	e, err := NewEngine(Deps{
		Catalog:     lakeCatalog(),
		Dispatcher:  &scriptedDispatcher{},
		Store:       store,
		Logger:      quietLogger(),
		DefaultPond: "Lake",
	})
	require.NoError(t, err)
	require.NoError(t, e.LoadState(ctx))

	assert.Empty(t, e.Inventory().Basket)
	assert.Equal(t, progress.State{}, e.Progress())
	assert.Equal(t, "Lake", e.Pond())
	assert.Nil(t, e.Session().LastExitAt)
}

func TestEngine_SelectPond(t *testing.T) {
	fx := newEngineForTest(t, config.Default(), carp())
	ctx := context.Background()

	err := fx.engine.SelectPond(ctx, "Lak")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPond)
	var perr *UnknownPondError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Lake", perr.Suggestion)

	require.NoError(t, fx.engine.SelectPond(ctx, "Lake"))
	assert.Equal(t, "Lake", savedSession(t, fx.store).Pond)
}

func TestEngine_SellArchiveSort(t *testing.T) {
	fx := newEngineForTest(t, config.Default(), carp(), boot(), boot())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := fx.engine.CatchOnce(ctx)
		require.NoError(t, err)
	}

	coins, err := fx.engine.Sell(ctx, ledger.Garbage)
	require.NoError(t, err)
	assert.Equal(t, 2, coins)
	assert.Equal(t, 2, fx.engine.Inventory().Coins)

	basket := fx.engine.Inventory().Basket
	require.Len(t, basket, 1)
	ok, err := fx.engine.Archive(ctx, basket[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = fx.engine.Archive(ctx, basket[0].ID)
	require.NoError(t, err)
	assert.False(t, ok, "already archived")
	assert.Len(t, fx.engine.Inventory().Library, 1)

	value, err := fx.engine.TotalValue(ledger.Library)
	require.NoError(t, err)
	assert.Equal(t, 225, value)

	require.NoError(t, fx.engine.Sort(ctx, ledger.Library, ledger.SortByWeightDesc))
	assert.ErrorIs(t, fx.engine.Sort(ctx, ledger.Garbage, ledger.SortByQuality), ledger.ErrUnsupportedSort)
}

func TestEngine_GuideResyncAndReset(t *testing.T) {
	fx := newEngineForTest(t, config.Default(), carp())
	ctx := context.Background()
	_, err := fx.engine.CatchOnce(ctx)
	require.NoError(t, err)

	unknown, err := fx.engine.ResyncGuide(ctx)
	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.Equal(t, 1, fx.engine.Guide()[0].CaughtCount)

	assert.ErrorIs(t, fx.engine.ResetGuide(ctx), progress.ErrAdminRequired)

	admin, err := NewEngine(Deps{
		Catalog:    lakeCatalog(),
		Dispatcher: &scriptedDispatcher{},
		Store:      fx.store,
		Logger:     quietLogger(),
		Admin:      true,
	})
	require.NoError(t, err)
	require.NoError(t, admin.LoadState(ctx))
	require.True(t, admin.Guide()[0].Discovered)
	require.NoError(t, admin.ResetGuide(ctx))
	assert.False(t, admin.Guide()[0].Discovered)
	assert.Zero(t, admin.Guide()[0].CaughtCount)
}

func TestEngine_WithFlusher(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := storage.NewMemoryStore()
	flusher := storage.NewFlusher(store, quietLogger())
	clock := NewStepClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))

	e, err := NewEngine(Deps{
		Catalog:     lakeCatalog(),
		Dispatcher:  &scriptedDispatcher{results: []catch.Catch{carp()}},
		Store:       store,
		Flusher:     flusher,
		Clock:       clock,
		Logger:      quietLogger(),
		DefaultPond: "Lake",
	})
	require.NoError(t, err)

	_, err = e.CatchOnce(ctx)
	require.NoError(t, err)
	require.NoError(t, e.RecordExit(ctx))
	require.NotNil(t, savedSession(t, store).LastExitAt, "exit is written before RecordExit returns")

	clock.Advance(8 * time.Second)
	sum, err := e.HandleOfflineCatches(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.FishCount)
	assert.Nil(t, savedSession(t, store).LastExitAt)

	require.NoError(t, e.Close(ctx))
	data, err := store.Load(ctx, storage.KeyLedger)
	require.NoError(t, err)
	l, err := ledger.Restore(data, 8)
	require.NoError(t, err)
	assert.Len(t, l.Fish(ledger.Basket), 3)
}

func TestRunSession_FiresEveryInterval(t *testing.T) {
	bal := config.Default()
	bal.SessionMinutes = 1
	bal.CatchIntervalSeconds = 4
	fx := newEngineForTest(t, bal, boot(), nil)

	ticks := make(chan time.Time, 60)
	for i := 0; i < 60; i++ {
		ticks <- time.Time{}
	}

	sum, err := fx.engine.RunSession(context.Background(), ticks, 0)
	require.NoError(t, err)
	// remaining hits 56, 52, ..., 4
	assert.Equal(t, 14, sum.Attempts)
	assert.Equal(t, 7, sum.GarbageCount)
	assert.Equal(t, 7, sum.Misses)
	assert.Equal(t, 14, fx.disp.calls)
}

func TestRunSession_SkipsTimeSpentAway(t *testing.T) {
	bal := config.Default()
	bal.SessionMinutes = 1
	bal.CatchIntervalSeconds = 4
	fx := newEngineForTest(t, bal, boot())

	ticks := make(chan time.Time, 60)
	for i := 0; i < 60; i++ {
		ticks <- time.Time{}
	}
	sum, err := fx.engine.RunSession(context.Background(), ticks, 40)
	require.NoError(t, err)
	// 20 seconds left: 16, 12, 8, 4
	assert.Equal(t, 4, sum.Attempts)
}

// flakyStore fails every batch write while down is set.
type flakyStore struct {
	*storage.MemoryStore
	down bool
}

var errDiskGone = errors.New("disk gone")

func (s *flakyStore) SaveAll(ctx context.Context, entries []storage.Entry) error {
	if s.down {
		return errDiskGone
	}
	return s.MemoryStore.SaveAll(ctx, entries)
}

func TestHandleOfflineCatches_FailedCommitReplaysSameWindow(t *testing.T) {
	ctx := context.Background()
	clock := NewStepClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	store := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	open := func() *Engine {
		e, err := NewEngine(Deps{
			Catalog:     lakeCatalog(),
			Dispatcher:  &scriptedDispatcher{results: []catch.Catch{carp()}},
			Store:       store,
			Clock:       clock,
			Balance:     config.Default(),
			Logger:      quietLogger(),
			DefaultPond: "Lake",
		})
		require.NoError(t, err)
		require.NoError(t, e.LoadState(ctx))
		return e
	}

	first := open()
	require.NoError(t, first.RecordExit(ctx))
	clock.Advance(40 * time.Second)

	store.down = true
	sum, err := first.HandleOfflineCatches(ctx, 10)
	require.ErrorIs(t, err, errDiskGone)
	assert.Equal(t, 4, sum.Attempts)
	assert.NotNil(t, savedSession(t, store).LastExitAt, "marker survives a failed commit")

	store.down = false
	second := open()
	require.NotNil(t, second.Session().LastExitAt)
	assert.Empty(t, second.Inventory().Basket)

	sum, err = second.HandleOfflineCatches(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Attempts)
	assert.Equal(t, 4, sum.FishCount)
	assert.Len(t, second.Inventory().Basket, 4)
	assert.Nil(t, savedSession(t, store).LastExitAt)
}

func TestEngine_Species(t *testing.T) {
	bal := config.Default()
	bal.StackLimit = 3
	fx := newEngineForTest(t, bal, carp())
	ctx := context.Background()

	f, g, err := fx.engine.Species("Carp")
	require.NoError(t, err)
	assert.Equal(t, 100, f.Price)
	assert.False(t, g.Discovered)

	_, err = fx.engine.CatchOnce(ctx)
	require.NoError(t, err)
	_, g, err = fx.engine.Species("Carp")
	require.NoError(t, err)
	assert.True(t, g.Discovered)
	assert.Equal(t, 1, g.CaughtCount)

	_, _, err = fx.engine.Species("Kraken")
	assert.ErrorIs(t, err, ErrUnknownSpecies)
	assert.Equal(t, 3, fx.engine.StackLimit())
}

func TestEngine_Checkout(t *testing.T) {
	fx := newEngineForTest(t, config.Default(), pearl())
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := fx.engine.CatchOnce(ctx)
		require.NoError(t, err)
	}
	_, err := fx.engine.Sell(ctx, ledger.Treasure)
	require.NoError(t, err)
	require.Equal(t, 100, fx.engine.Inventory().Coins)

	var cart shop.Cart
	_, err = fx.engine.Checkout(ctx, &cart)
	assert.ErrorIs(t, err, ErrEmptyCart)

	rod := shop.Item{Tab: shop.TabRods, Name: "Bamboo Rod", Price: 60}
	cart.Add(rod, 1)
	paid, err := fx.engine.Checkout(ctx, &cart)
	require.NoError(t, err)
	assert.Equal(t, 60, paid)
	assert.True(t, cart.Empty())

	cart.Add(rod, 1)
	_, err = fx.engine.Checkout(ctx, &cart)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.False(t, cart.Empty(), "cart kept for another try")
	assert.Equal(t, 40, fx.engine.Inventory().Coins)
	assert.Equal(t, map[string]int{"Bamboo Rod": 1}, fx.engine.Gear())

	bought, _ := fx.events.Events(telemetry.Query{Types: []telemetry.EventType{telemetry.EventItemBought}})
	require.Len(t, bought, 1)

	again, err := NewEngine(Deps{
		Catalog:    lakeCatalog(),
		Dispatcher: &scriptedDispatcher{},
		Store:      fx.store,
		Balance:    config.Default(),
		Logger:     quietLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, again.LoadState(ctx))
	assert.Equal(t, map[string]int{"Bamboo Rod": 1}, again.Gear())
	assert.Equal(t, 40, again.Inventory().Coins)
}
