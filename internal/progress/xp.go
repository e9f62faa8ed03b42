package progress

const (
	levelBand    = 100
	maxBandLevel = 1000
	capXP        = 1000
)

// XPForNextLevel is the XP needed to go from level to level+1.
// It grows by 100 every 100 levels and flattens at 1000.
func XPForNextLevel(level int) int {
	if level < 0 {
		level = 0
	}
	if level >= maxBandLevel {
		return capXP
	}
	return ((level / levelBand) + 1) * 100
}
