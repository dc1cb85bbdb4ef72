package core

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains all of the configuration options recognized by the trivium
// server and client. Both read the same JSON file; the client only looks at
// the connection and client_mode related options.
type Config struct {
	// Hostname or IP address on which the server will listen for connections.
	Hostname string `mapstructure:"hostname"`
	// Port on which the game server will listen.
	Port int `mapstructure:"port"`
	// Number of players that must connect before the session starts.
	Players int `mapstructure:"players"`

	// Label used to prefix each question ("Question 1 (mathematics): ...").
	QuestionWord string `mapstructure:"question_word"`
	// Number of seconds players have to answer each question.
	QuestionSeconds float64 `mapstructure:"question_seconds"`
	// Pause between the leaderboard broadcast and the next question.
	QuestionIntervalSeconds float64 `mapstructure:"question_interval_seconds"`
	// Ordered list of category tags, one round per entry.
	QuestionTypes []string `mapstructure:"question_types"`
	// Optional per-category format for the question body; {0} is replaced
	// with the short machine-readable question.
	QuestionFormats map[string]string `mapstructure:"question_formats"`

	// Message templates. Each supports a fixed set of placeholders; anything
	// else is left in the text verbatim.
	ReadyInfo             string `mapstructure:"ready_info"`
	CorrectFeedback       string `mapstructure:"correct_feedback"`
	IncorrectFeedback     string `mapstructure:"incorrect_feedback"`
	PointsNounSingular    string `mapstructure:"points_noun_singular"`
	PointsNounPlural      string `mapstructure:"points_noun_plural"`
	FinalStandingsHeading string `mapstructure:"final_standings_heading"`
	FinalExtra            string `mapstructure:"final_extra"`
	// Optional overrides for FinalExtra chosen by the number of winners.
	OneWinner       string `mapstructure:"one_winner"`
	MultipleWinners string `mapstructure:"multiple_winners"`

	// Client-only options.
	Username     string                 `mapstructure:"username"`
	ClientMode   string                 `mapstructure:"client_mode"`
	OllamaConfig map[string]interface{} `mapstructure:"ollama_config"`

	// Full path to file to which logs will be written. Blank will write to stdout.
	LogFilePath string `mapstructure:"log_file_path"`
	// Minimum level of a log required to be written. Options: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`

	History struct {
		// Record finished sessions to a local sqlite database.
		Enabled bool `mapstructure:"enabled"`
		// Path to the database file.
		Path string `mapstructure:"path"`
	} `mapstructure:"history"`

	Debugging struct {
		// Enable extra info-providing mechanisms for the server.
		Enabled bool `mapstructure:"enabled"`
		// Port on which a pprof server will be started if debug mode is enabled.
		PprofPort int `mapstructure:"pprof_port"`
		// Dump every protocol message sent or received to the log.
		MessageLoggingEnabled bool `mapstructure:"message_logging_enabled"`
	} `mapstructure:"debugging"`
}

const envVarPrefix = "TRIVIUM"

// LoadConfig initializes Viper with the contents of the config file at configPath.
func LoadConfig(configPath string) *Config {
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "configuration not provided")
		os.Exit(1)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("json")

	viper.SetEnvPrefix(envVarPrefix)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if errors.Is(err, viper.ConfigFileNotFoundError{}) || os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "error reading config file: %s does not exist\n", configPath)
		} else {
			fmt.Fprintf(os.Stderr, "error reading config file: %v\n", err)
		}
		os.Exit(1)
	}

	// This allows us to set nested config options through environment
	// variables. For example, history.path can be set using: TRIVIUM_HISTORY_PATH
	for _, k := range viper.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := viper.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			fmt.Fprintf(os.Stderr, "error binding %s to %s\n", k, envVarPrefix+"_"+envVar)
			os.Exit(1)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		fmt.Fprintf(os.Stderr, "error unmarshaling config object: %v\n", err)
		os.Exit(1)
	}
	return config
}

func setDefaults() {
	viper.SetDefault("port", 5055)
	viper.SetDefault("players", 1)
	viper.SetDefault("question_word", "Question")
	viper.SetDefault("question_seconds", 1.0)
	viper.SetDefault("question_interval_seconds", 0.5)
	viper.SetDefault("question_types", []string{"Mathematics"})
	viper.SetDefault("ready_info", "Get ready to play!")
	viper.SetDefault("correct_feedback", "Great job mate!")
	viper.SetDefault("incorrect_feedback", "Incorrect answer :(")
	viper.SetDefault("points_noun_singular", "dream")
	viper.SetDefault("points_noun_plural", "dreams")
	viper.SetDefault("final_standings_heading", "Final standings:")
	viper.SetDefault("final_extra", "{winner} wins!")
	viper.SetDefault("client_mode", "you")
	viper.SetDefault("log_level", "info")
}

// ListenAddress returns the host:port pair the server should bind to.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.Port)
}

// QuestionWindow returns the per-round answer window as a Duration.
func (c *Config) QuestionWindow() time.Duration {
	return time.Duration(c.QuestionSeconds * float64(time.Second))
}

// QuestionInterval returns the pause between rounds as a Duration.
func (c *Config) QuestionInterval() time.Duration {
	return time.Duration(c.QuestionIntervalSeconds * float64(time.Second))
}
