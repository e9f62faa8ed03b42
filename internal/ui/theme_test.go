package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"idlepond/internal/catalog"
	"idlepond/internal/catch"
)

func TestBar(t *testing.T) {
	cases := []struct {
		cur, max, width int
		filled          int
	}{
		{0, 100, 10, 0},
		{50, 100, 10, 5},
		{100, 100, 10, 10},
		{150, 100, 10, 10},
		{5, 0, 10, 0},
	}
	for _, tc := range cases {
		got := Bar(tc.cur, tc.max, tc.width)
		assert.Equal(t, tc.filled, strings.Count(got, "█"), "%d/%d", tc.cur, tc.max)
		assert.Equal(t, tc.width-tc.filled, strings.Count(got, "░"))
	}
}

func TestLabels(t *testing.T) {
	assert.Contains(t, LabelValue("Level", 3), "3")
	assert.Contains(t, Heading(IconRod, "Pond"), "Pond")
	for _, r := range catalog.Rarities {
		assert.Contains(t, RarityText(r), r.String())
	}
	assert.Contains(t, QualityText(catch.Flawless), "Flawless")
	assert.Equal(t, IconTreasure, CategoryIcon(catch.CategoryTreasure))
}
