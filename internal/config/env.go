package config

import (
	"os"
	"strconv"
)

// BalanceFromEnv overlays environment variables onto base. A difficulty
// preset only touches the fields it tunes.
func BalanceFromEnv(base Balance) Balance {
	cfg := base

	// Support preset modes
	if apply, ok := presets[os.Getenv("IDLEPOND_DIFFICULTY")]; ok {
		apply(&cfg)
	}

	if val := getEnvInt("IDLEPOND_STACK_LIMIT"); val > 0 {
		cfg.StackLimit = val
	}
	if val := getEnvInt("IDLEPOND_CATCH_INTERVAL"); val > 0 {
		cfg.CatchIntervalSeconds = val
	}
	if val := getEnvInt("IDLEPOND_SESSION_MINUTES"); val > 0 {
		cfg.SessionMinutes = val
	}
	if val, ok := lookupEnvInt("IDLEPOND_MAX_OFFLINE_CATCHES"); ok && val >= 0 {
		cfg.MaxOfflineCatches = val
	}

	return cfg
}

// ApplyEnv overlays IDLEPOND_* variables onto c.
func (c *Config) ApplyEnv() {
	c.Balance = BalanceFromEnv(c.Balance)

	if v := os.Getenv("IDLEPOND_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("IDLEPOND_STORAGE"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("IDLEPOND_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv("IDLEPOND_CATALOG_DIR"); v != "" {
		c.Catalog.Dir = v
	}
	if v := os.Getenv("IDLEPOND_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("IDLEPOND_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("IDLEPOND_POND"); v != "" {
		c.Player.DefaultPond = v
	}
	if v, err := strconv.ParseBool(os.Getenv("IDLEPOND_ADMIN")); err == nil {
		c.Player.Admin = v
	}
	c.ApplyDefaults()
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func lookupEnvInt(key string) (int, bool) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return 0, false
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return num, true
}
