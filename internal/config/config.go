package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"example.com/bnc-solver/internal/solver"
)

// Config describes all runtime settings of the bnc binary.
//
// Load once in main, validate, then pass down by value.
type Config struct {
	Env string // dev|stage|prod

	Log struct {
		Format string // text|json
		Level  slog.Level
	}

	HTTP struct {
		Addr              string
		ReadHeaderTimeout time.Duration
		IdleTimeout       time.Duration
		ShutdownTimeout   time.Duration
	}

	Auth struct {
		Secret   string
		TokenTTL time.Duration
	}

	Solver struct {
		Opener    string // 4-digit code or "random"
		Seed      uint64 // 0 => seeded from the clock
		MaxRounds int
	}

	Bench struct {
		Workers int
	}

	Session struct {
		TTL time.Duration // 0 => never swept
	}
}

func LoadFromEnv() (Config, error) {
	var c Config

	c.Env = envString("APP_ENV", "dev")
	c.Log.Format = envString("LOG_FORMAT", "text")
	level, err := parseLevel(envString("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.Log.Level = level

	port := envString("PORT", "8080")
	c.HTTP.Addr = envString("HTTP_ADDR", ":"+port)
	c.HTTP.ReadHeaderTimeout = envDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second)
	c.HTTP.IdleTimeout = envDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	c.HTTP.ShutdownTimeout = envDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)

	c.Auth.Secret = envString("JWT_SECRET", "dev-secret-change-me")
	c.Auth.TokenTTL = envDuration("JWT_TTL", 24*time.Hour)

	c.Solver.Opener = envString("SOLVER_OPENER", solver.DefaultOpener().String())
	c.Solver.Seed = envUint64("SOLVER_SEED", 0)
	c.Solver.MaxRounds = envInt("SOLVER_MAX_ROUNDS", 16)

	c.Bench.Workers = envInt("BENCH_WORKERS", runtime.NumCPU())

	c.Session.TTL = envDuration("SESSION_TTL", time.Hour)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("HTTP addr is empty")
	}
	if c.Auth.Secret == "" {
		return errors.New("JWT_SECRET is empty")
	}
	if c.Env != "dev" && c.Auth.Secret == "dev-secret-change-me" {
		return fmt.Errorf("refuse to run with default JWT_SECRET in %s", c.Env)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT=%q (want text|json)", c.Log.Format)
	}
	if _, err := solver.ParseOpener(c.Solver.Opener); err != nil {
		return fmt.Errorf("SOLVER_OPENER: %w", err)
	}
	if c.Solver.MaxRounds <= 0 {
		return fmt.Errorf("SOLVER_MAX_ROUNDS=%d must be positive", c.Solver.MaxRounds)
	}
	if c.Bench.Workers <= 0 {
		return fmt.Errorf("BENCH_WORKERS=%d must be positive", c.Bench.Workers)
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("SESSION_TTL=%s is negative", c.Session.TTL)
	}
	return nil
}

// SolverOptions turns the solver section into solver options.
func (c Config) SolverOptions() []solver.Option {
	opt, err := solver.ParseOpener(c.Solver.Opener)
	if err != nil {
		return nil
	}
	return []solver.Option{opt}
}

// SolverSeed returns the configured seed, or a clock-derived one for 0.
func (c Config) SolverSeed() uint64 {
	if c.Solver.Seed != 0 {
		return c.Solver.Seed
	}
	return uint64(time.Now().UnixNano())
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unsupported LOG_LEVEL=%q (want debug|info|warn|error)", s)
	}
	return l, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func envUint64(key string, def uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err == nil {
			return n
		}
	}
	return def
}
