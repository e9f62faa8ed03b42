package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Version string  `yaml:"version" json:"version"`
	Balance Balance `yaml:"balance" json:"balance"`
	Storage Storage `yaml:"storage" json:"storage"`
	Logging Logging `yaml:"logging" json:"logging"`
	Catalog Catalog `yaml:"catalog" json:"catalog"`
	Player  Player  `yaml:"player" json:"player"`
}

type Storage struct {
	// Driver is "file" or "sqlite".
	Driver     string `yaml:"driver" json:"driver"`
	DataDir    string `yaml:"data_dir" json:"data_dir"`
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"`
}

type Logging struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type Catalog struct {
	// Dir holds fish.json, garbage.json and treasure.json. Empty uses the built-in set.
	Dir string `yaml:"dir" json:"dir"`
}

type Player struct {
	DefaultPond string `yaml:"default_pond" json:"default_pond"`
	Admin       bool   `yaml:"admin" json:"admin"`
}

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

func (s *Storage) ApplyDefaults() {
	if strings.TrimSpace(s.Driver) == "" {
		s.Driver = DriverFile
	}
	if strings.TrimSpace(s.DataDir) == "" {
		s.DataDir = "data"
	}
	if s.Driver == DriverSQLite && strings.TrimSpace(s.SQLitePath) == "" {
		s.SQLitePath = s.DataDir + string(os.PathSeparator) + "idlepond.db"
	}
}

func (l *Logging) ApplyDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func (c *Config) ApplyDefaults() {
	c.Balance.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Logging.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.Balance.Validate(); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// LoadDefaults parses the embedded defaults.
func LoadDefaults() (*Config, error) {
	return Load("")
}

// Load starts from the embedded defaults and overlays the file at path, if any.
func Load(path string) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(defaultsYAML, &c); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	c.ApplyDefaults()
	return &c, nil
}
