// Package config is responsible for program settings loaded from the
// config file and for resolving the XDG paths used by the program.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"

	"github.com/tobani/outrun/internal/models"
)

type (
	// Config holds all configuration settings.
	Config struct {
		Profile ProfileConfig
		Remote  RemoteConfig
		Coach   CoachConfig
		Share   ShareConfig
	}

	// ProfileConfig holds the static athlete profile.
	ProfileConfig struct {
		Name           string
		Condition      string
		Baseline       string
		StartingWeight float64
		TargetWeight   float64
		ShortTermGoal  GoalConfig
		LongTermGoal   GoalConfig
	}

	// GoalConfig is a named target distance with a deadline.
	GoalConfig struct {
		Name     string
		Date     string
		Distance float64
	}

	// RemoteConfig holds the optional cloud sync settings. An empty
	// endpoint or identity leaves the program in local-only mode.
	RemoteConfig struct {
		Endpoint string
		Identity string
	}

	// CoachConfig holds the coaching-service settings.
	CoachConfig struct {
		APIKey string
		Model  string
	}

	// ShareConfig holds settings for shareable transfer links.
	ShareConfig struct {
		BaseURL string
	}

	// Option is a function that modifies Config.
	Option func(*Config) error
)

const Version = "v0.3.1"

var (
	configDir      = "outrun"
	configFileName = "config.yml"
	dbFileName     = "outrun.db"
	logFileName    = "outrun.log"
	dbFilePath     string
	configFilePath string
	logFilePath    string
)

func Dir() string {
	return configDir
}

func DBFilePath() string {
	return dbFilePath
}

func LogFilePath() string {
	return logFilePath
}

func ConfigFilePath() string {
	return configFilePath
}

// InitializePaths resolves the config, database, and log file paths.
// Setting OUTRUN_ENV isolates the files for that environment.
func InitializePaths() {
	outrunEnv := strings.TrimSpace(os.Getenv("OUTRUN_ENV"))
	if outrunEnv != "" {
		configFileName = fmt.Sprintf("config_%s.yml", outrunEnv)
		dbFileName = fmt.Sprintf("outrun_%s.db", outrunEnv)
		logFileName = fmt.Sprintf("outrun_%s.log", outrunEnv)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	logFilePath = filepath.Join(dataDir, "log", logFileName)
}

// New creates a new Config with default values and applies options.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("config option error: %w", err)
		}
	}

	return cfg, nil
}

// ModelProfile converts the configured profile into the domain shape
// consumed by the coaching service.
func (c *Config) ModelProfile() models.Profile {
	return models.Profile{
		Name:           c.Profile.Name,
		Condition:      c.Profile.Condition,
		Baseline:       c.Profile.Baseline,
		StartingWeight: c.Profile.StartingWeight,
		TargetWeight:   c.Profile.TargetWeight,
		ShortTermGoal: models.Goal{
			Name:     c.Profile.ShortTermGoal.Name,
			Date:     c.Profile.ShortTermGoal.Date,
			Distance: c.Profile.ShortTermGoal.Distance,
		},
		LongTermGoal: models.Goal{
			Name:     c.Profile.LongTermGoal.Name,
			Date:     c.Profile.LongTermGoal.Date,
			Distance: c.Profile.LongTermGoal.Distance,
		},
	}
}
