package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"idlepond/internal/telemetry"
)

var (
	ErrCatchupInProgress = errors.New("game: offline catch-up in progress")
	ErrInvalidInterval   = errors.New("game: catch interval must be positive")
)

type CatchupState int32

const (
	CatchupIdle CatchupState = iota
	CatchupComputing
	CatchupSettled
)

func (s CatchupState) String() string {
	switch s {
	case CatchupIdle:
		return "idle"
	case CatchupComputing:
		return "computing"
	case CatchupSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Summary tallies a run of catch attempts, offline or live.
type Summary struct {
	FishCount      int  `json:"fish_count"`
	GarbageCount   int  `json:"garbage_count"`
	TreasureCount  int  `json:"treasure_count"`
	Misses         int  `json:"misses"`
	Attempts       int  `json:"attempts"`
	OfflineSeconds int  `json:"offline_seconds"`
	Capped         bool `json:"capped"`
	Forfeited      int  `json:"forfeited"`
	XPGained       int  `json:"xp_gained"`
	LevelsGained   int  `json:"levels_gained"`
}

func (s Summary) Caught() int {
	return s.FishCount + s.GarbageCount + s.TreasureCount
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("attempts", s.Attempts),
		slog.Int("fish", s.FishCount),
		slog.Int("garbage", s.GarbageCount),
		slog.Int("treasure", s.TreasureCount),
		slog.Int("misses", s.Misses),
		slog.Int("offline_seconds", s.OfflineSeconds),
		slog.Bool("capped", s.Capped),
		slog.Int("forfeited", s.Forfeited),
		slog.Int("xp", s.XPGained),
		slog.Int("levels", s.LevelsGained),
	)
}

// HandleOfflineCatches replays the time since the stored exit marker. With
// no marker there is nothing to replay.
func (e *Engine) HandleOfflineCatches(ctx context.Context, intervalSeconds int) (Summary, error) {
	elapsed := 0
	e.mu.Lock()
	if e.session.LastExitAt != nil {
		elapsed = wholeSecondsSince(e.clock, *e.session.LastExitAt)
	}
	e.mu.Unlock()
	return e.ReplayOffline(ctx, elapsed, intervalSeconds)
}

// ReplayOffline turns elapsedSeconds of absence into elapsed/interval catch
// attempts, applies them like live catches and commits the result with the
// exit marker cleared. The attempt loop is not interruptible; ctx bounds
// the commit only.
func (e *Engine) ReplayOffline(ctx context.Context, elapsedSeconds, intervalSeconds int) (Summary, error) {
	if elapsedSeconds <= 0 {
		return Summary{}, nil
	}
	if intervalSeconds <= 0 {
		return Summary{}, fmt.Errorf("%w: %d", ErrInvalidInterval, intervalSeconds)
	}
	if !e.beginCatchup() {
		return Summary{}, ErrCatchupInProgress
	}
	defer e.state.Store(int32(CatchupSettled))

	e.mu.Lock()
	defer e.mu.Unlock()

	sum := Summary{OfflineSeconds: elapsedSeconds}

	times := elapsedSeconds / intervalSeconds
	if times <= 0 {
		e.logger.Debug("offline window shorter than one interval", "elapsed", elapsedSeconds, "interval", intervalSeconds)
		return sum, nil
	}
	if limit := e.balance.MaxOfflineCatches; limit > 0 && times > limit {
		sum.Capped = true
		sum.Forfeited = times - limit
		times = limit
	}

	pond := e.session.Pond
	now := e.clock.Now()
	for i := 0; i < times; i++ {
		sum.Attempts++
		c, err := e.dispatcher.RandomCatch(pond)
		if err != nil {
			sum.Misses++
			continue
		}
		xp, levels, err := e.apply(c, now)
		if err != nil {
			e.logger.Error("offline catch not stored", "item", c.ItemName(), "err", err)
			sum.Misses++
			continue
		}
		sum.tally(c, xp, levels)
	}

	e.record(telemetry.EventOfflineSettled, telemetry.EventMetadata{
		"attempts": sum.Attempts,
		"caught":   sum.Caught(),
		"seconds":  sum.OfflineSeconds,
		"capped":   sum.Capped,
	})

	e.session.LastExitAt = nil
	if err := e.commitLocked(ctx); err != nil {
		return sum, fmt.Errorf("committing offline catches: %w", err)
	}
	e.logger.Info("offline catches settled", "pond", pond, "summary", sum)
	return sum, nil
}

func (e *Engine) beginCatchup() bool {
	for {
		cur := e.state.Load()
		if CatchupState(cur) == CatchupComputing {
			return false
		}
		if e.state.CompareAndSwap(cur, int32(CatchupComputing)) {
			return true
		}
	}
}

func (e *Engine) CatchupState() CatchupState {
	return CatchupState(e.state.Load())
}
