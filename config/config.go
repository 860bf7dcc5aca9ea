// Package config reads simulator settings from the environment and optional .env files.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/minaorangina/removeone/bots"
	"github.com/minaorangina/removeone/deck"
	"github.com/minaorangina/removeone/game"
	"github.com/minaorangina/removeone/tournament"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Game
	Players int `env:"REMOVEONE_PLAYERS,default=4"`
	MaxRank int `env:"REMOVEONE_MAX_RANK,default=8"`
	Copies  int `env:"REMOVEONE_COPIES,default=4"`
	// Deck replaces MaxRank and Copies with explicit ranks, separated by semicolons
	Deck      []int `env:"REMOVEONE_DECK"`
	HandSize  int   `env:"REMOVEONE_HAND_SIZE,default=4"`
	Tokens    int   `env:"REMOVEONE_TOKENS,default=2"`
	MaxRounds int   `env:"REMOVEONE_MAX_ROUNDS,default=64"`

	// Search
	SearchDepth   int           `env:"REMOVEONE_SEARCH_DEPTH,default=2"`
	SearchMode    string        `env:"REMOVEONE_SEARCH_MODE,default=sampled"`
	SearchSamples int           `env:"REMOVEONE_SEARCH_SAMPLES,default=8"`
	NodeBudget    int           `env:"REMOVEONE_NODE_BUDGET,default=200000"`
	TimeBudget    time.Duration `env:"REMOVEONE_TIME_BUDGET,default=0s"`
	TokenWeight   float64       `env:"REMOVEONE_TOKEN_WEIGHT,default=3"`

	// Rating
	KFactor       float64 `env:"REMOVEONE_K_FACTOR,default=32"`
	InitialRating float64 `env:"REMOVEONE_INITIAL_RATING,default=1500"`

	// Run
	Seed            int64  `env:"REMOVEONE_SEED,default=1"`
	GamesPerMatchup int    `env:"REMOVEONE_GAMES_PER_MATCHUP,default=1"`
	Format          string `env:"REMOVEONE_FORMAT,default=round-robin"`
	// Seats defaults to Players
	Seats int `env:"REMOVEONE_SEATS,default=0"`
	// Workers defaults to the number of CPUs
	Workers int `env:"REMOVEONE_WORKERS,default=0"`
	// Addr is where the spectator API listens. Empty means do not serve.
	Addr     string `env:"REMOVEONE_ADDR"`
	LogLevel string `env:"REMOVEONE_LOG_LEVEL,default=info"`
	// ProfileDecisions reports how long each bot takes to decide
	ProfileDecisions bool `env:"REMOVEONE_PROFILE_DECISIONS,default=false"`
}

// Default is the configuration with nothing set in the environment
func Default() Config {
	return Config{
		Players:         4,
		MaxRank:         8,
		Copies:          4,
		HandSize:        4,
		Tokens:          2,
		MaxRounds:       64,
		SearchDepth:     2,
		SearchMode:      bots.SearchModeNames[bots.Sampled],
		SearchSamples:   8,
		NodeBudget:      200000,
		TokenWeight:     3,
		KFactor:         32,
		InitialRating:   1500,
		Seed:            1,
		GamesPerMatchup: 1,
		Format:          tournament.FormatNames[tournament.RoundRobin],
		LogLevel:        logrus.InfoLevel.String(),
	}
}

// Load reads the given .env files, skipping any that do not exist, then decodes the environment.
// Variables already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	existing := []string{}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting before any game starts
func (c Config) Validate() error {
	if _, ok := bots.NameToSearchMode[c.SearchMode]; !ok {
		return &game.ConfigurationError{Field: "search mode", Reason: "must be sampled or worst-case"}
	}
	if _, ok := tournament.NameToFormat[c.Format]; !ok {
		return &game.ConfigurationError{Field: "format", Reason: "must be round-robin or single-elimination"}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return &game.ConfigurationError{Field: "log level", Reason: err.Error()}
	}
	if len(c.Deck) == 0 && (c.MaxRank <= 0 || c.Copies <= 0) {
		return &game.ConfigurationError{Field: "deck", Reason: "max rank and copies must be positive"}
	}
	if c.SearchDepth < 0 {
		return &game.ConfigurationError{Field: "search depth", Reason: "must not be negative"}
	}
	if c.SearchSamples <= 0 {
		return &game.ConfigurationError{Field: "search samples", Reason: "must be positive"}
	}
	if c.NodeBudget < 0 || c.TimeBudget < 0 {
		return &game.ConfigurationError{Field: "search budget", Reason: "must not be negative"}
	}
	if c.TokenWeight < 0 {
		return &game.ConfigurationError{Field: "token weight", Reason: "must not be negative"}
	}
	if c.GamesPerMatchup < 0 {
		return &game.ConfigurationError{Field: "games per matchup", Reason: "must not be negative"}
	}
	if c.Seats < 0 || c.Workers < 0 {
		return &game.ConfigurationError{Field: "seats", Reason: "seats and workers must not be negative"}
	}
	if c.KFactor < 0 {
		return &game.ConfigurationError{Field: "k factor", Reason: "must not be negative"}
	}
	return c.GameOpts().Validate()
}

func (c Config) GameOpts() game.RemoveOneOpts {
	composition := append([]int(nil), c.Deck...)
	if len(composition) == 0 {
		composition = deck.Standard(c.MaxRank, c.Copies)
	}
	return game.RemoveOneOpts{
		Players:     c.Players,
		Composition: composition,
		HandSize:    c.HandSize,
		Tokens:      c.Tokens,
		MaxRounds:   c.MaxRounds,
	}
}

// MinimaxOpts leaves Seed unset. The factory seeds every bot it makes.
func (c Config) MinimaxOpts() bots.MinimaxOpts {
	return bots.MinimaxOpts{
		Depth:       c.SearchDepth,
		Mode:        bots.NameToSearchMode[c.SearchMode],
		Samples:     c.SearchSamples,
		NodeBudget:  c.NodeBudget,
		TimeBudget:  c.TimeBudget,
		TokenWeight: c.TokenWeight,
	}
}

// Entrants is the four bot roster, all weighing tokens the same way
func (c Config) Entrants() []tournament.Entrant {
	return []tournament.Entrant{
		{Name: "random", New: bots.RandomFactory()},
		{Name: "greedy", New: bots.GreedyFactory(bots.GreedyOpts{TokenWeight: c.TokenWeight})},
		{Name: "cardcounting", New: bots.CardCountingFactory(bots.CardCountingOpts{TokenWeight: c.TokenWeight})},
		{Name: "minimax", New: bots.MinimaxFactory(c.MinimaxOpts())},
	}
}

// TournamentOpts has no logger, archive or publisher; the caller wires those
func (c Config) TournamentOpts() tournament.Opts {
	return tournament.Opts{
		GameOpts:        c.GameOpts(),
		Entrants:        c.Entrants(),
		Format:          tournament.NameToFormat[c.Format],
		Seats:           c.Seats,
		GamesPerMatchup: c.GamesPerMatchup,
		Workers:         c.Workers,
		KFactor:         c.KFactor,
		InitialRating:   c.InitialRating,
		Seed:            c.Seed,

		ProfileDecisions: c.ProfileDecisions,
	}
}

// Level is the parsed log level. Validate has already rejected bad names.
func (c Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
