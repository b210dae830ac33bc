package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// viperKeys defines the mapping between config keys and their Viper
// counterparts.
const (
	keyProfileName       = "profile.name"
	keyProfileCondition  = "profile.condition"
	keyProfileBaseline   = "profile.baseline"
	keyStartingWeight    = "profile.starting_weight"
	keyTargetWeight      = "profile.target_weight"
	keyShortGoalName     = "profile.short_term_goal.name"
	keyShortGoalDate     = "profile.short_term_goal.date"
	keyShortGoalDistance = "profile.short_term_goal.distance"
	keyLongGoalName      = "profile.long_term_goal.name"
	keyLongGoalDate      = "profile.long_term_goal.date"
	keyLongGoalDistance  = "profile.long_term_goal.distance"
	keyRemoteEndpoint    = "remote.endpoint"
	keyRemoteIdentity    = "remote.identity"
	keyCoachAPIKey       = "coach.api_key"
	keyCoachModel        = "coach.model"
	keyShareBaseURL      = "share.base_url"
)

// WithViperConfig returns an Option that loads configuration from
// Viper, writing a default config file on first run.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setupViper(v)

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading config file failed: %w", err)
		}

		if err := v.WriteConfig(); err != nil {
			return fmt.Errorf("writing default config failed: %w", err)
		}

		return loadViperConfig(v, c)
	}
}

// setupViper configures Viper with defaults.
func setupViper(v *viper.Viper) {
	v.SetDefault(keyProfileName, "Athlete")
	v.SetDefault(keyProfileCondition, "Cerebral Palsy")
	v.SetDefault(keyProfileBaseline, "30 min 5k")
	v.SetDefault(keyStartingWeight, 74.5)
	v.SetDefault(keyTargetWeight, 65.0)
	v.SetDefault(keyShortGoalName, "10k Milestone")
	v.SetDefault(keyShortGoalDate, "2026-03-02")
	v.SetDefault(keyShortGoalDistance, 10.0)
	v.SetDefault(keyLongGoalName, "Half Marathon")
	v.SetDefault(keyLongGoalDate, "2026-11-02")
	v.SetDefault(keyLongGoalDistance, 21.1)
	v.SetDefault(keyRemoteEndpoint, "")
	v.SetDefault(keyRemoteIdentity, "")
	v.SetDefault(keyCoachAPIKey, "")
	v.SetDefault(keyCoachModel, "")
	v.SetDefault(keyShareBaseURL, "https://outrun.app/share")
}

// loadViperConfig loads configuration from Viper into the Config
// struct. The coach API key may also come from the environment so it
// never has to live in the config file.
func loadViperConfig(v *viper.Viper, c *Config) error {
	c.Profile = ProfileConfig{
		Name:           v.GetString(keyProfileName),
		Condition:      v.GetString(keyProfileCondition),
		Baseline:       v.GetString(keyProfileBaseline),
		StartingWeight: v.GetFloat64(keyStartingWeight),
		TargetWeight:   v.GetFloat64(keyTargetWeight),
		ShortTermGoal: GoalConfig{
			Name:     v.GetString(keyShortGoalName),
			Date:     v.GetString(keyShortGoalDate),
			Distance: v.GetFloat64(keyShortGoalDistance),
		},
		LongTermGoal: GoalConfig{
			Name:     v.GetString(keyLongGoalName),
			Date:     v.GetString(keyLongGoalDate),
			Distance: v.GetFloat64(keyLongGoalDistance),
		},
	}

	c.Remote = RemoteConfig{
		Endpoint: v.GetString(keyRemoteEndpoint),
		Identity: v.GetString(keyRemoteIdentity),
	}

	c.Coach = CoachConfig{
		APIKey: v.GetString(keyCoachAPIKey),
		Model:  v.GetString(keyCoachModel),
	}

	if c.Coach.APIKey == "" {
		c.Coach.APIKey = os.Getenv("OUTRUN_COACH_API_KEY")
	}

	c.Share = ShareConfig{
		BaseURL: v.GetString(keyShareBaseURL),
	}

	return nil
}
