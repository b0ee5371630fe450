package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var errInvalidConfig = errors.New("invalid config")

// Config holds every startup parameter of the server
type Config struct {
	Addr      string
	ClientDir string // static client files, empty disables
	PublicURL string // join URL encoded by /qr, empty derives it from the request
	DBPath    string // SQLite event log, empty disables

	Seed uint64 // spawner seed, 0 = random

	SpawnInterval     time.Duration
	PhysicsInterval   time.Duration
	BroadcastInterval time.Duration

	MaxMessagesPerSec int // 0 disables rate limiting
	MaxConnsPerIP     int // 0 disables
	MaxConns          int // 0 disables
	StrictOrigin      bool

	LogLevel  string
	LogFormat string // "text" or "json"

	Rules Rules
}

// DefaultConfig returns the stock arena settings
func DefaultConfig() Config {
	return Config{
		Addr:              ":6789",
		SpawnInterval:     10 * time.Millisecond,
		PhysicsInterval:   50 * time.Millisecond,
		BroadcastInterval: 100 * time.Millisecond,
		MaxMessagesPerSec: 200,
		MaxConnsPerIP:     0,
		MaxConns:          1000,
		LogLevel:          "info",
		LogFormat:         "text",
		Rules:             DefaultRules(),
	}
}

// loadDotEnv reads .env into the process environment if the file exists
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadConfig layers defaults, environment (via lookup) and command-line flags,
// in that order of precedence, then validates the result.
func LoadConfig(args []string, lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	env := envReader{lookup: lookup}
	env.str("ARENA_ADDR", &cfg.Addr)
	env.str("ARENA_CLIENT_DIR", &cfg.ClientDir)
	env.str("ARENA_PUBLIC_URL", &cfg.PublicURL)
	env.str("ARENA_DB", &cfg.DBPath)
	env.uint64("ARENA_SEED", &cfg.Seed)
	env.duration("ARENA_SPAWN_INTERVAL", &cfg.SpawnInterval)
	env.duration("ARENA_PHYSICS_INTERVAL", &cfg.PhysicsInterval)
	env.duration("ARENA_BROADCAST_INTERVAL", &cfg.BroadcastInterval)
	env.int("ARENA_MAX_MSG_RATE", &cfg.MaxMessagesPerSec)
	env.int("ARENA_MAX_CONNS_PER_IP", &cfg.MaxConnsPerIP)
	env.int("ARENA_MAX_CONNS", &cfg.MaxConns)
	env.bool("ARENA_STRICT_ORIGIN", &cfg.StrictOrigin)
	env.int("ARENA_MAP_WIDTH", &cfg.Rules.MapWidth)
	env.int("ARENA_MAP_HEIGHT", &cfg.Rules.MapHeight)
	env.int("ARENA_MAX_CELLS", &cfg.Rules.MaxCells)
	env.str("LOG_LEVEL", &cfg.LogLevel)
	env.str("LOG_FORMAT", &cfg.LogFormat)
	if env.err != nil {
		return cfg, env.err
	}

	fl := flag.NewFlagSet("blobarena", flag.ContinueOnError)
	fl.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fl.StringVar(&cfg.ClientDir, "client", cfg.ClientDir, "Path to static client directory")
	fl.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Join URL advertised by /qr")
	fl.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite event log path (empty disables)")
	fl.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Cell spawner seed (0 for random)")
	fl.DurationVar(&cfg.SpawnInterval, "spawn-interval", cfg.SpawnInterval, "Cell spawner period")
	fl.DurationVar(&cfg.PhysicsInterval, "physics-interval", cfg.PhysicsInterval, "Blob physics period")
	fl.DurationVar(&cfg.BroadcastInterval, "broadcast-interval", cfg.BroadcastInterval, "Snapshot broadcast period")
	fl.IntVar(&cfg.MaxMessagesPerSec, "max-msg-rate", cfg.MaxMessagesPerSec, "Per-connection messages per second (0 disables)")
	fl.IntVar(&cfg.MaxConnsPerIP, "max-conns-per-ip", cfg.MaxConnsPerIP, "Connection cap per remote IP (0 disables)")
	fl.IntVar(&cfg.MaxConns, "max-conns", cfg.MaxConns, "Total connection cap (0 disables)")
	fl.BoolVar(&cfg.StrictOrigin, "strict-origin", cfg.StrictOrigin, "Reject websocket upgrades from foreign origins")
	fl.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	fl.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")

	r := &cfg.Rules
	fl.IntVar(&r.MapWidth, "map-width", r.MapWidth, "Map width")
	fl.IntVar(&r.MapHeight, "map-height", r.MapHeight, "Map height")
	fl.IntVar(&r.MaxCells, "max-cells", r.MaxCells, "Maximum live cells")
	fl.Float64Var(&r.StartMass, "start-mass", r.StartMass, "Player mass on join")
	fl.Float64Var(&r.CellMass, "cell-mass", r.CellMass, "Mass of a spawned cell")
	fl.Float64Var(&r.BlobMass, "blob-mass", r.BlobMass, "Mass of a fired blob")
	fl.Float64Var(&r.BlobSpeed, "blob-speed", r.BlobSpeed, "Blob travel per physics tick")
	fl.Float64Var(&r.BlobTravelCap, "blob-travel", r.BlobTravelCap, "Distance after which a blob is retired")
	fl.Float64Var(&r.RadiusScale, "radius-scale", r.RadiusScale, "Radius = scale * sqrt(mass)")
	fl.Float64Var(&r.MinFireMass, "min-fire-mass", r.MinFireMass, "Mass a player must exceed to fire")
	fl.Float64Var(&r.FireCost, "fire-cost", r.FireCost, "Mass a player spends per blob")

	if err := fl.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the simulation cannot run with
func (c Config) Validate() error {
	r := c.Rules
	switch {
	case r.MapWidth <= 0 || r.MapHeight <= 0:
		return fmt.Errorf("%w: map size must be positive, got %dx%d", errInvalidConfig, r.MapWidth, r.MapHeight)
	case r.MaxCells < 0:
		return fmt.Errorf("%w: max cells must not be negative", errInvalidConfig)
	case c.SpawnInterval <= 0 || c.PhysicsInterval <= 0 || c.BroadcastInterval <= 0:
		return fmt.Errorf("%w: tick intervals must be positive", errInvalidConfig)
	case r.BlobSpeed <= 0 || r.BlobTravelCap <= 0:
		return fmt.Errorf("%w: blob speed and travel cap must be positive", errInvalidConfig)
	case r.StartMass <= 0 || r.BlobMass <= 0:
		return fmt.Errorf("%w: start and blob mass must be positive", errInvalidConfig)
	case r.RadiusScale < 0 || r.FireCost < 0 || r.CellMass < 0:
		return fmt.Errorf("%w: radius scale, fire cost and cell mass must not be negative", errInvalidConfig)
	case c.MaxMessagesPerSec < 0 || c.MaxConnsPerIP < 0 || c.MaxConns < 0:
		return fmt.Errorf("%w: connection limits out of range", errInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", errInvalidConfig, c.LogFormat)
	}
	return nil
}

// envReader parses typed environment values, keeping the first error
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	if e.err != nil || e.lookup == nil {
		return "", false
	}
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) fail(key string, err error) {
	e.err = fmt.Errorf("%w: %s: %v", errInvalidConfig, key, err)
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) uint64(key string, dst *uint64) {
	if v, ok := e.get(key); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) bool(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = d
	}
}
