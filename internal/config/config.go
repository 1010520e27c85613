// Package config loads application configuration from config.yaml and
// PARENTMAP_-prefixed environment variables, and initializes the global
// logger.
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
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Ingest  IngestConfig  `yaml:"ingest" mapstructure:"ingest"`
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig tunes the Postgres connection pool.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// FetchConfig configures remote downloads.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	CacheDir    string `yaml:"cache_dir" mapstructure:"cache_dir"`
}

// IngestConfig configures the ingestion pipeline.
type IngestConfig struct {
	DetailLimit   int    `yaml:"detail_limit" mapstructure:"detail_limit"`
	KeywordFile   string `yaml:"keyword_file" mapstructure:"keyword_file"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	ImageDir      string `yaml:"image_dir" mapstructure:"image_dir"`
}

// SourcesConfig fixes the conventional input locations, one per source.
type SourcesConfig struct {
	ToiletsJSON          string   `yaml:"toilets_json" mapstructure:"toilets_json"`
	NursingMandatoryCSV  string   `yaml:"nursing_mandatory_csv" mapstructure:"nursing_mandatory_csv"`
	NursingVoluntaryCSV  string   `yaml:"nursing_voluntary_csv" mapstructure:"nursing_voluntary_csv"`
	PlaygroundsCSV       string   `yaml:"playgrounds_csv" mapstructure:"playgrounds_csv"`
	TaipeiPlaygroundJSON string   `yaml:"taipei_playgrounds_json" mapstructure:"taipei_playgrounds_json"`
	ParkListURLs         []string `yaml:"park_list_urls" mapstructure:"park_list_urls"`
	SchoolPDFJSON        string   `yaml:"school_pdfs_json" mapstructure:"school_pdfs_json"`
	BoundaryShapefile    string   `yaml:"boundary_shapefile" mapstructure:"boundary_shapefile"`
}

// ServerConfig configures the HTTP mutation endpoint.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads config.yaml (optional) and the environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PARENTMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.cache_dir", "data/cache")
	v.SetDefault("ingest.detail_limit", 8)
	v.SetDefault("ingest.pdftotext_path", "pdftotext")
	v.SetDefault("ingest.image_dir", "data/image")
	v.SetDefault("sources.toilets_json", "data/toilets.json")
	v.SetDefault("sources.nursing_mandatory_csv", "data/nursing-rooms-mandatory.csv")
	v.SetDefault("sources.nursing_voluntary_csv", "data/nursing-rooms-voluntary.csv")
	v.SetDefault("sources.playgrounds_csv", "data/playgrounds.csv")
	v.SetDefault("sources.taipei_playgrounds_json", "data/taipei-playgrounds.json")
	v.SetDefault("sources.park_list_urls", []string{
		"https://www.ntparks.tw/park.php?page=1",
		"https://www.ntparks.tw/park.php?page=2",
	})
	v.SetDefault("sources.school_pdfs_json", "data/school-pdfs.json")

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
