package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

//go:embed data/*.json
var builtin embed.FS

const (
	FishFile     = "fish.json"
	GarbageFile  = "garbage.json"
	TreasureFile = "treasure.json"
)

type Fish struct {
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Rarity    Rarity  `json:"rarity"`
	Pond      string  `json:"pond"`
	MaxWeight float64 `json:"maximum weight"`
	MinWeight float64 `json:"minimum weight"`
	Price     int     `json:"price"`
	Exp       int     `json:"exp"`
}

// Validate checks the weight range and price of a fish definition.
func (f Fish) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("fish has no name")
	}
	if f.MinWeight < 0 || f.MinWeight > f.MaxWeight {
		return fmt.Errorf("fish %q: bad weight range [%v, %v]", f.Name, f.MinWeight, f.MaxWeight)
	}
	if f.Price < 0 {
		return fmt.Errorf("fish %q: negative price", f.Name)
	}
	return nil
}

type Garbage struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Pond        string `json:"pond"`
	Price       int    `json:"price"`
	Description string `json:"description"`
}

type Treasure struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Pond        string `json:"pond"`
	Rarity      Rarity `json:"rarity"`
	Price       int    `json:"price"`
	Exp         int    `json:"exp"`
	Description string `json:"description"`
}

// Store is the read-only catalog, indexed by pond.
type Store struct {
	fish     []Fish
	garbage  []Garbage
	treasure []Treasure

	fishByPond     map[string][]Fish
	garbageByPond  map[string][]Garbage
	treasureByPond map[string][]Treasure
	fishByName     map[string]Fish
	ponds          []string
}

// New indexes the given entries. Invalid fish definitions are dropped.
func New(fish []Fish, garbage []Garbage, treasure []Treasure, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		fishByPond:     map[string][]Fish{},
		garbageByPond:  map[string][]Garbage{},
		treasureByPond: map[string][]Treasure{},
		fishByName:     map[string]Fish{},
	}
	ponds := map[string]bool{}

	for _, f := range fish {
		if err := f.Validate(); err != nil {
			logger.Warn("catalog: dropping fish", "err", err)
			continue
		}
		s.fish = append(s.fish, f)
		s.fishByPond[f.Pond] = append(s.fishByPond[f.Pond], f)
		if _, dup := s.fishByName[f.Name]; !dup {
			s.fishByName[f.Name] = f
		}
		ponds[f.Pond] = true
	}
	for _, g := range garbage {
		s.garbage = append(s.garbage, g)
		s.garbageByPond[g.Pond] = append(s.garbageByPond[g.Pond], g)
		ponds[g.Pond] = true
	}
	for _, t := range treasure {
		if !t.Rarity.Valid() {
			logger.Warn("catalog: dropping treasure with bad rarity", "name", t.Name)
			continue
		}
		s.treasure = append(s.treasure, t)
		s.treasureByPond[t.Pond] = append(s.treasureByPond[t.Pond], t)
		ponds[t.Pond] = true
	}

	for p := range ponds {
		if p != "" {
			s.ponds = append(s.ponds, p)
		}
	}
	sort.Strings(s.ponds)
	return s
}

// Default loads the built-in catalog.
func Default(logger *slog.Logger) *Store {
	sub, err := fs.Sub(builtin, "data")
	if err != nil {
		panic(err)
	}
	return Load(sub, logger)
}

func LoadDir(dir string, logger *slog.Logger) *Store {
	return Load(os.DirFS(dir), logger)
}

// Load reads the three catalog files from fsys. A missing or malformed
// file leaves that category empty.
func Load(fsys fs.FS, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		fish     []Fish
		garbage  []Garbage
		treasure []Treasure
	)
	readJSON(fsys, FishFile, &fish, logger)
	readJSON(fsys, GarbageFile, &garbage, logger)
	readJSON(fsys, TreasureFile, &treasure, logger)

	s := New(fish, garbage, treasure, logger)
	logger.Debug("catalog loaded",
		"fish", len(s.fish), "garbage", len(s.garbage), "treasure", len(s.treasure), "ponds", len(s.ponds))
	return s
}

func readJSON[T any](fsys fs.FS, name string, out *[]T, logger *slog.Logger) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		logger.Error("catalog: read failed", "file", name, "err", err)
		return
	}
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		logger.Error("catalog: decode failed", "file", name, "err", err)
		return
	}
	*out = items
}

func (s *Store) FishInPond(pond string) []Fish {
	return s.fishByPond[pond]
}

func (s *Store) GarbageInPond(pond string) []Garbage {
	return s.garbageByPond[pond]
}

func (s *Store) TreasureInPond(pond string) []Treasure {
	return s.treasureByPond[pond]
}

// AllFish returns every fish definition in load order.
func (s *Store) AllFish() []Fish {
	out := make([]Fish, len(s.fish))
	copy(out, s.fish)
	return out
}

func (s *Store) FishByName(name string) (Fish, bool) {
	f, ok := s.fishByName[name]
	return f, ok
}

func (s *Store) Ponds() []string {
	out := make([]string, len(s.ponds))
	copy(out, s.ponds)
	return out
}

func (s *Store) HasPond(name string) bool {
	i := sort.SearchStrings(s.ponds, name)
	return i < len(s.ponds) && s.ponds[i] == name
}

// SuggestPond returns the closest known pond name for a typo.
func (s *Store) SuggestPond(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || len(s.ponds) == 0 {
		return "", false
	}
	best := ""
	bestDist := -1
	for _, p := range s.ponds {
		d := levenshtein.ComputeDistance(name, strings.ToLower(p))
		if bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	limit := len([]rune(name)) / 2
	if limit < 2 {
		limit = 2
	}
	if bestDist > limit {
		return "", false
	}
	return best, true
}
