package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Instagram InstagramConfig `yaml:"instagram" mapstructure:"instagram"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Mail      MailConfig      `yaml:"mail" mapstructure:"mail"`
	Vapi      VapiConfig      `yaml:"vapi" mapstructure:"vapi"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Outreach  OutreachConfig  `yaml:"outreach" mapstructure:"outreach"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// InstagramConfig holds social search API credentials.
type InstagramConfig struct {
	Key     string  `yaml:"key" mapstructure:"key"`
	Host    string  `yaml:"host" mapstructure:"host"`
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// LLMConfig holds Anthropic API settings.
type LLMConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// MailConfig holds SMTP/IMAP mailbox credentials.
type MailConfig struct {
	SMTPHost    string `yaml:"smtp_host" mapstructure:"smtp_host"`
	SMTPPort    int    `yaml:"smtp_port" mapstructure:"smtp_port"`
	IMAPHost    string `yaml:"imap_host" mapstructure:"imap_host"`
	IMAPPort    int    `yaml:"imap_port" mapstructure:"imap_port"`
	Address     string `yaml:"address" mapstructure:"address"`
	Password    string `yaml:"password" mapstructure:"password"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// VapiConfig holds calling vendor credentials and identifiers.
type VapiConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	AssistantID   string `yaml:"assistant_id" mapstructure:"assistant_id"`
	PhoneNumberID string `yaml:"phone_number_id" mapstructure:"phone_number_id"`
}

// NotionConfig holds the optional Notion export target.
type NotionConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	CreatorDB string `yaml:"creator_db" mapstructure:"creator_db"`
}

// DiscoveryConfig tunes the creator discovery pipeline.
type DiscoveryConfig struct {
	MinFollowers       int `yaml:"min_followers" mapstructure:"min_followers"`
	MinPosts           int `yaml:"min_posts" mapstructure:"min_posts"`
	MaxHashtags        int `yaml:"max_hashtags" mapstructure:"max_hashtags"`
	MaxUsersPerHashtag int `yaml:"max_users_per_hashtag" mapstructure:"max_users_per_hashtag"`
	Concurrency        int `yaml:"concurrency" mapstructure:"concurrency"`
}

// OutreachConfig tunes the email outreach tracker.
type OutreachConfig struct {
	PollIntervalSecs int    `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	TimeoutHours     int    `yaml:"timeout_hours" mapstructure:"timeout_hours"`
	TemplatesPath    string `yaml:"templates_path" mapstructure:"templates_path"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the campaign intake server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MATCHBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("instagram.base_url", "https://instagram-social-api.p.rapidapi.com/v1")
	v.SetDefault("instagram.host", "instagram-social-api.p.rapidapi.com")
	v.SetDefault("instagram.rps", 5)
	v.SetDefault("llm.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.imap_port", 993)
	v.SetDefault("mail.timeout_secs", 30)
	v.SetDefault("vapi.base_url", "https://api.vapi.ai")
	v.SetDefault("discovery.min_followers", 1000)
	v.SetDefault("discovery.min_posts", 20)
	v.SetDefault("discovery.max_hashtags", 10)
	v.SetDefault("discovery.max_users_per_hashtag", 35)
	v.SetDefault("discovery.concurrency", 5)
	v.SetDefault("outreach.poll_interval_secs", 30)
	v.SetDefault("outreach.timeout_hours", 24)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "outreach.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
