package shop

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
)

//go:embed data/shop.json
var builtin embed.FS

const ItemsFile = "shop.json"

var ErrUnknownItem = errors.New("shop: unknown item")

type Tab string

const (
	TabRods     Tab = "rods"
	TabBackpack Tab = "backpack"
)

// Tabs lists the shelves in display order.
var Tabs = []Tab{TabRods, TabBackpack}

// ParseTab accepts the English tab names and the localized ones found in
// older item files.
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rods", "rod", "钓竿":
		return TabRods, nil
	case "backpack", "bag", "背包":
		return TabBackpack, nil
	}
	return "", fmt.Errorf("shop: unknown tab %q", s)
}

type Item struct {
	Tab         Tab    `json:"-"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Price       int    `json:"price"`
	Description string `json:"description"`
}

type rawItem struct {
	Item
	Tab string `json:"tab"`
}

// Catalog is the read-only list of items for sale.
type Catalog struct {
	byTab  map[Tab][]Item
	byName map[string]Item
}

// New indexes items. Duplicates, blank names and negative prices are dropped.
func New(items []Item, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{byTab: map[Tab][]Item{}, byName: map[string]Item{}}
	for _, it := range items {
		switch {
		case strings.TrimSpace(it.Name) == "":
			logger.Warn("shop: dropping item with no name")
			continue
		case it.Price < 0:
			logger.Warn("shop: dropping item with negative price", "item", it.Name)
			continue
		}
		if _, dup := c.byName[it.Name]; dup {
			logger.Warn("shop: dropping duplicate item", "item", it.Name)
			continue
		}
		c.byName[it.Name] = it
		c.byTab[it.Tab] = append(c.byTab[it.Tab], it)
	}
	return c
}

func Default(logger *slog.Logger) *Catalog {
	sub, err := fs.Sub(builtin, "data")
	if err != nil {
		panic(err)
	}
	return Load(sub, logger)
}

func LoadDir(dir string, logger *slog.Logger) *Catalog {
	return Load(os.DirFS(dir), logger)
}

// Load reads ItemsFile from fsys. A missing or malformed file gives an
// empty shop; an item with an unknown tab is skipped.
func Load(fsys fs.FS, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	b, err := fs.ReadFile(fsys, ItemsFile)
	if err != nil {
		logger.Error("shop: read failed", "file", ItemsFile, "err", err)
		return New(nil, logger)
	}
	var raw []rawItem
	if err := json.Unmarshal(b, &raw); err != nil {
		logger.Error("shop: decode failed", "file", ItemsFile, "err", err)
		return New(nil, logger)
	}

	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		tab, err := ParseTab(r.Tab)
		if err != nil {
			logger.Warn("shop: skipping item", "item", r.Name, "err", err)
			continue
		}
		it := r.Item
		it.Tab = tab
		items = append(items, it)
	}
	c := New(items, logger)
	logger.Debug("shop loaded", "items", len(c.byName))
	return c
}

func (c *Catalog) Items(tab Tab) []Item {
	return append([]Item(nil), c.byTab[tab]...)
}

// Lookup finds an item by name, case-insensitively. A miss suggests the
// closest name when one is near.
func (c *Catalog) Lookup(name string) (Item, error) {
	if it, ok := c.byName[name]; ok {
		return it, nil
	}
	want := strings.ToLower(strings.TrimSpace(name))
	best, bestDist := "", -1
	for n, it := range c.byName {
		low := strings.ToLower(n)
		if low == want {
			return it, nil
		}
		d := levenshtein.ComputeDistance(want, low)
		if bestDist < 0 || d < bestDist || (d == bestDist && n < best) {
			best, bestDist = n, d
		}
	}
	if best != "" && bestDist <= max(2, len([]rune(want))/2) {
		return Item{}, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownItem, name, best)
	}
	return Item{}, fmt.Errorf("%w %q", ErrUnknownItem, name)
}
