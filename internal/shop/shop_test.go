package shop

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefault_HasBothTabs(t *testing.T) {
	c := Default(quietLogger())
	for _, tab := range Tabs {
		assert.NotEmpty(t, c.Items(tab), tab)
	}
	rod, err := c.Lookup("Bamboo Rod")
	require.NoError(t, err)
	assert.Equal(t, TabRods, rod.Tab)
	assert.Equal(t, 500, rod.Price)
}

func TestLoad_SkipsBadEntries(t *testing.T) {
	fsys := fstest.MapFS{ItemsFile: {Data: []byte(`[
		{"tab": "钓竿", "name": "Reed", "price": 5},
		{"tab": "背包", "name": "Worms", "price": 1},
		{"tab": "cart", "name": "Ghost", "price": 1},
		{"tab": "rods", "name": "Reed", "price": 9},
		{"tab": "rods", "name": "Cursed", "price": -3}
	]`)}}

	c := Load(fsys, quietLogger())

	require.Len(t, c.Items(TabRods), 1)
	assert.Equal(t, 5, c.Items(TabRods)[0].Price, "first definition wins")
	require.Len(t, c.Items(TabBackpack), 1)
	_, err := c.Lookup("Ghost")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestLoad_BrokenFileGivesEmptyShop(t *testing.T) {
	c := Load(fstest.MapFS{ItemsFile: {Data: []byte(`{nope`)}}, quietLogger())
	assert.Empty(t, c.Items(TabRods))

	c = Load(fstest.MapFS{}, quietLogger())
	assert.Empty(t, c.Items(TabBackpack))
}

func TestLookup(t *testing.T) {
	c := Default(quietLogger())

	it, err := c.Lookup("bait box")
	require.NoError(t, err)
	assert.Equal(t, "Bait Box", it.Name)

	_, err = c.Lookup("Bamboo Rdo")
	assert.ErrorIs(t, err, ErrUnknownItem)
	assert.Contains(t, err.Error(), `did you mean "Bamboo Rod"`)

	_, err = c.Lookup("submarine")
	assert.ErrorIs(t, err, ErrUnknownItem)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestCart(t *testing.T) {
	rod := Item{Tab: TabRods, Name: "Rod", Price: 100}
	bait := Item{Tab: TabBackpack, Name: "Bait", Price: 5}

	var c Cart
	assert.True(t, c.Empty())

	c.Add(rod, 1)
	c.Add(bait, 4)
	c.Add(bait, -1)
	total, err := c.Total()
	require.NoError(t, err)
	assert.Equal(t, 115, total)
	assert.Equal(t, map[string]int{"Rod": 1, "Bait": 3}, c.Counts())
	assert.Equal(t, "Rod", c.Lines()[0].Item.Name)

	c.Add(rod, -5)
	assert.Equal(t, map[string]int{"Bait": 3}, c.Counts())
	c.Add(rod, -1)
	assert.Len(t, c.Lines(), 1, "removing an absent item is a no-op")

	c.Add(Item{Name: "Yacht", Price: math.MaxInt / 2}, 3)
	_, err = c.Total()
	assert.ErrorIs(t, err, ErrCartOverflow)

	c.Clear()
	assert.True(t, c.Empty())
}
