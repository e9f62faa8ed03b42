package telemetry

import (
	"encoding/json"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"
)

type Stats struct {
	Period          string            `json:"period"`
	EventCounts     map[EventType]int `json:"event_counts"`
	Attempts        int               `json:"attempts"`
	FishCaught      int               `json:"fish_caught"`
	GarbageCaught   int               `json:"garbage_caught"`
	TreasureCaught  int               `json:"treasure_caught"`
	Misses          int               `json:"misses"`
	CatchRate       float64           `json:"catch_rate"`
	FishByRarity    map[string]int    `json:"fish_by_rarity"`
	FishByQuality   map[string]int    `json:"fish_by_quality"`
	MeanFishWeight  float64           `json:"mean_fish_weight"`
	StdFishWeight   float64           `json:"std_fish_weight"`
	CoinsFromSales  int               `json:"coins_from_sales"`
	CoinsSpent      int               `json:"coins_spent"`
	LevelsGained    int               `json:"levels_gained"`
	OfflineSessions int               `json:"offline_sessions"`
}

// CalculateStats computes catch stats from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:        since.Format("2006-01-02"),
		EventCounts:   make(map[EventType]int),
		FishByRarity:  make(map[string]int),
		FishByQuality: make(map[string]int),
	}
	var weights []float64

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventFishCaught:
			stats.FishCaught++
			if r, ok := metadata["rarity"].(string); ok {
				stats.FishByRarity[r]++
			}
			if q, ok := metadata["quality"].(string); ok {
				stats.FishByQuality[q]++
			}
			if w, ok := metadata["weight"].(float64); ok {
				weights = append(weights, w)
			}
		case EventGarbageCaught:
			stats.GarbageCaught++
		case EventTreasureCaught:
			stats.TreasureCaught++
		case EventNothingCaught:
			stats.Misses++
		case EventSectionSold:
			if c, ok := metadata["coins"].(float64); ok {
				stats.CoinsFromSales += int(c)
			}
		case EventItemBought:
			if c, ok := metadata["coins"].(float64); ok {
				stats.CoinsSpent += int(c)
			}
		case EventLevelUp:
			if n, ok := metadata["levels"].(float64); ok {
				stats.LevelsGained += int(n)
			}
		case EventOfflineSettled:
			stats.OfflineSessions++
		}
	}

	stats.Attempts = stats.FishCaught + stats.GarbageCaught + stats.TreasureCaught + stats.Misses
	if stats.Attempts > 0 {
		stats.CatchRate = float64(stats.Attempts-stats.Misses) / float64(stats.Attempts)
	}
	if len(weights) > 0 {
		stats.MeanFishWeight = stat.Mean(weights, nil)
	}
	if len(weights) > 1 {
		stats.StdFishWeight = stat.StdDev(weights, nil)
	}

	return stats, nil
}

// LogValue implements slog.LogValuer for structured logging.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("period", s.Period),
		slog.Int("attempts", s.Attempts),
		slog.Int("fish", s.FishCaught),
		slog.Int("garbage", s.GarbageCaught),
		slog.Int("treasure", s.TreasureCaught),
		slog.Int("misses", s.Misses),
		slog.Float64("catch_rate", s.CatchRate),
		slog.Float64("mean_fish_weight", s.MeanFishWeight),
		slog.Int("coins_from_sales", s.CoinsFromSales),
		slog.Int("coins_spent", s.CoinsSpent),
		slog.Int("levels_gained", s.LevelsGained),
	)
}
