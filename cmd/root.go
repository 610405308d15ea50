package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/gig-hunter/internal/filtering"
	"github.com/spigell/gig-hunter/internal/scheduler"
	"github.com/spigell/gig-hunter/internal/secrets"
)

const (
	app       = "gig-hunter"
	envPrefix = "GIG_HUNTER"
)

type Config struct {
	// Profile lists the skill profile files, merged in order.
	Profile     []string         `mapstructure:"profile"`
	Threshold   float64          `mapstructure:"threshold"`
	Concurrency int              `mapstructure:"concurrency"`
	UserAgent   string           `mapstructure:"user_agent"`
	Storage     StorageConfig    `mapstructure:"storage"`
	Filters     filtering.Config `mapstructure:"filters"`
	Schedule    scheduler.Config `mapstructure:"schedule"`
	API         APIConfig        `mapstructure:"api"`
}

type StorageConfig struct {
	// Driver is one of memory, sqlite or postgres.
	Driver      string         `mapstructure:"driver"`
	SQLitePath  string         `mapstructure:"sqlite_path"`
	PostgresURL secrets.Source `mapstructure:"postgres_url"`
	// RedisURL moves hunt logs to a Redis stream when set.
	RedisURL    secrets.Source `mapstructure:"redis_url"`
	RedisStream string         `mapstructure:"redis_stream"`
	// RedisMaxLen approximately caps the stream, zero keeps every entry.
	RedisMaxLen int64          `mapstructure:"redis_max_len"`
}

type APIConfig struct {
	Listen string `mapstructure:"listen"`
}

// envAliases keeps the conventional variable names working next to the
// GIG_HUNTER_ prefixed ones.
var envAliases = map[string]string{
	"hunts.upwork.api_key.value":       "UPWORK_API_KEY",
	"hunts.upwork.api_secret.value":    "UPWORK_API_SECRET",
	"hunts.upwork.access_token.value":  "UPWORK_ACCESS_TOKEN",
	"hunts.upwork.access_secret.value": "UPWORK_ACCESS_SECRET",
	"hunts.upwork.min_hourly_rate":     "UPWORK_MIN_HOURLY_RATE",
	"hunts.upwork.target_hourly_rate":  "UPWORK_TARGET_HOURLY_RATE",
	"hunts.upwork.max_hours_per_week":  "UPWORK_MAX_TIME_COMMITMENT",
	"hunts.freelancer.api_key.value":   "FREELANCER_API_KEY",
	"hunts.freelancer.min_budget":      "FREELANCER_MIN_BUDGET",
	"hunts.freelancer.target_budget":   "FREELANCER_TARGET_BUDGET",
	"hunts.freelancer.max_competition": "FREELANCER_MAX_COMPETITION",
	"hunts.indeed.publisher_key.value": "INDEED_PUBLISHER_KEY",
	"hunts.indeed.location":            "INDEED_LOCATION",
	"hunts.indeed.min_salary":          "INDEED_MIN_SALARY",
	"hunts.indeed.remote_only":         "INDEED_REMOTE_ONLY",
	"hunts.angellist.api_key.value":    "ANGELLIST_API_KEY",
	"hunts.angellist.min_salary":       "ANGELLIST_MIN_SALARY",
	"hunts.angellist.remote_only":      "ANGELLIST_REMOTE_ONLY",
	"hunts.wellfound.api_key.value":    "WELLFOUND_API_KEY",
	"storage.postgres_url.value":       "DATABASE_URL",
	"storage.redis_url.value":          "REDIS_URL",
	"threshold":                        "AUTO_APPLY_THRESHOLD",
}

var (
	// Used for flags.
	cfgFile string
	envFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "gig-hunter scans job and freelance platforms and keeps the listings that fit your skills",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is gig-hunter.yaml in current directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "a dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringSlice("profile", nil, "skill profile files (yaml)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))

	viper.SetDefault("threshold", 0.65)
	viper.SetDefault("concurrency", 3)
	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.sqlite_path", "gig-hunter.db")
	viper.SetDefault("storage.redis_max_len", 10000)
	viper.SetDefault("api.listen", ":8080")
}

func initConfig() {
	// A missing dotenv file is fine, a broken one is not.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading %s: %v", envFile, err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	for key, env := range envAliases {
		if err := viper.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.NewReplacer(".", "_").Replace(key)), env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	// Version needs no config.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error. The default file is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
