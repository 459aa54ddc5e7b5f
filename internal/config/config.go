package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"spckit/adapters/coercer"
	"spckit/adapters/excel"
	"spckit/internal/analysis"
	"spckit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

// UploadConfig bounds uploaded datasets
type UploadConfig struct {
	MaxBytes   int64                  `mapstructure:"max_bytes"`
	MaxRows    int                    `mapstructure:"max_rows"`
	MaxColumns int                    `mapstructure:"max_columns"`
	Coercion   coercer.CoercionConfig `mapstructure:"coercion"`
}

// AnalysisConfig holds analysis defaults
type AnalysisConfig struct {
	ParetoThreshold float64 `mapstructure:"pareto_threshold"`
	ProfileWorkers  int     `mapstructure:"profile_workers"`
	HistogramBins   int     `mapstructure:"histogram_bins"`
	CatalogFile     string  `mapstructure:"catalog_file"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Reader returns the ingestion settings derived from the upload section.
func (u UploadConfig) Reader() excel.ReaderConfig {
	return excel.ReaderConfig{
		MaxRows:    u.MaxRows,
		MaxColumns: u.MaxColumns,
		Coercion:   u.Coercion,
	}
}

// Load reads configuration from defaults, an optional YAML file and SPC_*
// environment variables, in increasing order of precedence.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SPC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// PORT and GIN_MODE are honoured for hosting environments that set them
	_ = v.BindEnv("server.port", "SPC_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.gin_mode", "SPC_SERVER_GIN_MODE", "GIN_MODE")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "read config %s", cfgFile))
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "decode configuration"))
	}

	if err := validateConfig(&config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	cc := coercer.DefaultCoercionConfig()
	rc := excel.DefaultReaderConfig()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "release")

	v.SetDefault("upload.max_bytes", int64(50<<20))
	v.SetDefault("upload.max_rows", rc.MaxRows)
	v.SetDefault("upload.max_columns", rc.MaxColumns)
	v.SetDefault("upload.coercion.numeric_threshold", cc.NumericThreshold)
	v.SetDefault("upload.coercion.date_threshold", cc.DateThreshold)
	v.SetDefault("upload.coercion.max_categories", cc.MaxCategories)
	v.SetDefault("upload.coercion.normalize_strings", cc.NormalizeStrings)

	v.SetDefault("analysis.pareto_threshold", analysis.DefaultCriticalThreshold)
	v.SetDefault("analysis.profile_workers", 4)
	v.SetDefault("analysis.histogram_bins", 0)
	v.SetDefault("analysis.catalog_file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Upload.MaxBytes <= 0 {
		return errors.ConfigInvalid("upload max_bytes must be positive")
	}
	if config.Upload.MaxRows < 0 || config.Upload.MaxColumns < 0 {
		return errors.ConfigInvalid("upload row and column limits must not be negative")
	}
	if t := config.Upload.Coercion.NumericThreshold; t <= 0 || t > 1 {
		return errors.ConfigInvalid("upload coercion numeric_threshold must be in (0, 1]")
	}
	if t := config.Upload.Coercion.DateThreshold; t <= 0 || t > 1 {
		return errors.ConfigInvalid("upload coercion date_threshold must be in (0, 1]")
	}
	if t := config.Analysis.ParetoThreshold; t <= 0 || t > 100 {
		return errors.ConfigInvalid("analysis pareto_threshold must be in (0, 100]")
	}
	if config.Analysis.ProfileWorkers < 0 {
		return errors.ConfigInvalid("analysis profile_workers must not be negative")
	}
	if b := config.Analysis.HistogramBins; b < 0 || b > analysis.MaxBins {
		return errors.ConfigInvalid("analysis histogram_bins out of range")
	}
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return errors.ConfigInvalid("log level: " + err.Error())
	}
	switch strings.ToLower(config.Log.Format) {
	case "text", "json":
	default:
		return errors.ConfigInvalid("log format must be text or json")
	}
	return nil
}

// LoadCatalog returns the interpretation catalog. An empty path yields the
// built-in catalog; a file replaces only the sections it defines.
func LoadCatalog(path string) (*analysis.Catalog, error) {
	catalog := analysis.DefaultCatalog()
	if path == "" {
		return catalog, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "read catalog %s", path))
	}
	var file analysis.Catalog
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "parse catalog %s", path))
	}

	if len(file.Pareto) > 0 {
		catalog.Pareto = file.Pareto
	}
	if len(file.ParetoDefault) > 0 {
		catalog.ParetoDefault = file.ParetoDefault
	}
	for i, rule := range catalog.Pareto {
		if len(rule.Keywords) == 0 || len(rule.Lines) == 0 {
			return nil, errors.ConfigInvalid("catalog rule " + ruleName(rule, i) + " needs keywords and lines")
		}
	}
	return catalog, nil
}

func ruleName(rule analysis.KeywordRule, i int) string {
	if rule.Name != "" {
		return rule.Name
	}
	return "#" + strconv.Itoa(i+1)
}
