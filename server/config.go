package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Config struct {
	GRPCAddr           string        `mapstructure:"grpc_addr"`
	HTTPAddr           string        `mapstructure:"http_addr"`
	DBPath             string        `mapstructure:"db_path"`
	ModelServerURL     string        `mapstructure:"model_server_url"`
	ModelServerTimeout time.Duration `mapstructure:"model_server_timeout"`
	RecognizerURL      string        `mapstructure:"recognizer_url"`
	Workers            int           `mapstructure:"workers"`
	QueueSize          int           `mapstructure:"queue_size"`
	LandmarkBatch      int           `mapstructure:"landmark_batch"`
	TranslateRetries   int           `mapstructure:"translate_retries"`
	DictionaryFile     string        `mapstructure:"dictionary_file"`
	DictionaryWatch    bool          `mapstructure:"dictionary_watch"`
	Composer           string        `mapstructure:"composer"`
	OpenAIAPIKey       string        `mapstructure:"openai_api_key"`
	OpenAIBaseURL      string        `mapstructure:"openai_base_url"`
	OpenAIModel        string        `mapstructure:"openai_model"`
	Timezone           string        `mapstructure:"timezone"`
	HistoryLimit       int           `mapstructure:"history_limit"`
	LogLevel           string        `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("grpc_addr", ":50051")
	v.SetDefault("http_addr", ":8000")
	v.SetDefault("db_path", "./signtalk.db")
	v.SetDefault("model_server_url", "http://127.0.0.1:8001")
	v.SetDefault("model_server_timeout", "10s")
	v.SetDefault("recognizer_url", "")
	v.SetDefault("workers", 8)
	v.SetDefault("queue_size", 128)
	v.SetDefault("landmark_batch", 10)
	v.SetDefault("translate_retries", 0)
	v.SetDefault("dictionary_file", "")
	v.SetDefault("dictionary_watch", false)
	v.SetDefault("composer", "join")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("timezone", "Asia/Seoul")
	v.SetDefault("history_limit", 1000)
	v.SetDefault("log_level", "info")
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default is ./signtalk.toml or $HOME/.signtalk/signtalk.toml)")
	flags.String("grpc-addr", "", "gRPC listen address")
	flags.String("http-addr", "", "HTTP and websocket listen address")
	flags.String("db", "", "SQLite database path")
	flags.String("model-server", "", "translation model server base URL")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	v.BindPFlag("config", flags.Lookup("config"))
	v.BindPFlag("grpc_addr", flags.Lookup("grpc-addr"))
	v.BindPFlag("http_addr", flags.Lookup("http-addr"))
	v.BindPFlag("db_path", flags.Lookup("db"))
	v.BindPFlag("model_server_url", flags.Lookup("model-server"))
	v.BindPFlag("log_level", flags.Lookup("log-level"))
}

// loadConfig merges defaults, the optional config file, SIGNTALK_ env vars
// and flags, in increasing priority.
func loadConfig(v *viper.Viper) (Config, error) {
	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("signtalk")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.signtalk")
		}
	}

	v.SetEnvPrefix("SIGNTALK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setupLogger(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}
