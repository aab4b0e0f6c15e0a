package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"giga/internal/prompts"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       App       `mapstructure:"app"`
	Ads       Ads       `mapstructure:"ads"`
	Gemini    Gemini    `mapstructure:"gemini"`
	Pipeline  Pipeline  `mapstructure:"pipeline"`
	Reporting Reporting `mapstructure:"reporting"`
	Server    Server    `mapstructure:"server"`
	Logging   Logging   `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	ConfigFile string `mapstructure:"config_file"`
}

// Ads holds Google Ads API configuration
type Ads struct {
	DeveloperToken  string `mapstructure:"developer_token"`
	AccountID       string `mapstructure:"account_id"`
	LoginCustomerID string `mapstructure:"login_customer_id"`
	Endpoint        string `mapstructure:"endpoint"`
	Timeout         string `mapstructure:"timeout"`
	RequestDelay    string `mapstructure:"request_delay"`
}

// Gemini holds Vertex AI Gemini configuration
type Gemini struct {
	ProjectID       string  `mapstructure:"project_id"`
	Location        string  `mapstructure:"location"`
	Model           string  `mapstructure:"model"`
	Temperature     float32 `mapstructure:"temperature"`
	TopP            float32 `mapstructure:"top_p"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens"`
	ThinkingBudget  int32   `mapstructure:"thinking_budget"`
}

// Pipeline holds keyword pipeline tuning
type Pipeline struct {
	Country               string  `mapstructure:"country"`
	Language              string  `mapstructure:"language"`
	OutputLanguage        string  `mapstructure:"output_language"`
	MaxIdeas              int     `mapstructure:"max_ideas"`
	MinLatestSearchVolume int64   `mapstructure:"min_latest_search_volume"`
	MinGrowth             float64 `mapstructure:"min_growth"`
	GrowthMetric          string  `mapstructure:"growth_metric"`
	ClusterPromptTemplate string  `mapstructure:"cluster_prompt_template"`
	TrendsPromptTemplate  string  `mapstructure:"trends_prompt_template"`
	BrandName             string  `mapstructure:"brand_name"`
}

// Reporting holds search term report configuration
type Reporting struct {
	RecentDays      int    `mapstructure:"recent_days"`
	BaselineDays    int    `mapstructure:"baseline_days"`
	Metric          string `mapstructure:"metric"`
	MetricThreshold int    `mapstructure:"metric_threshold"`
	Limit           int    `mapstructure:"limit"`
}

// Server holds HTTP API configuration
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Provider exposes the credentials and identifiers the API clients need.
// Implementations are read-only after construction.
type Provider interface {
	DeveloperToken() string
	CustomerID() string
	LoginCustomerID() string
	ProjectID() string
	ModelID() string
}

var (
	globalConfig *Config
	loadMu       sync.Mutex
)

// Load loads the configuration from various sources. The first successful
// load is cached for the lifetime of the process.
func Load(configFile string) (*Config, error) {
	loadMu.Lock()
	defer loadMu.Unlock()
	if globalConfig != nil {
		return globalConfig, nil
	}

	config, err := read(configFile)
	if err != nil {
		return nil, err
	}
	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	config, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return config
}

func read(configFile string) (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".giga")
		v.SetConfigType("yaml")
	}

	setDefaults(v)
	bindEnvironmentVariables(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = v.ConfigFileUsed()

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.debug", false)

	// Ads defaults
	v.SetDefault("ads.endpoint", "https://googleads.googleapis.com/v22")
	v.SetDefault("ads.timeout", "60s")
	v.SetDefault("ads.request_delay", "1s")

	// Gemini defaults
	v.SetDefault("gemini.location", "us-central1")
	v.SetDefault("gemini.model", "gemini-2.5-pro")
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_output_tokens", 8192)
	v.SetDefault("gemini.thinking_budget", 1024)

	// Pipeline defaults
	v.SetDefault("pipeline.output_language", prompts.DefaultLanguage)
	v.SetDefault("pipeline.max_ideas", 10000)
	v.SetDefault("pipeline.min_latest_search_volume", 100)
	v.SetDefault("pipeline.min_growth", 0.1)
	v.SetDefault("pipeline.growth_metric", "yoy")
	v.SetDefault("pipeline.cluster_prompt_template", prompts.DefaultClusterTemplate)
	v.SetDefault("pipeline.trends_prompt_template", prompts.DefaultTrendsTemplate)

	// Reporting defaults
	v.SetDefault("reporting.recent_days", 7)
	v.SetDefault("reporting.baseline_days", 30)
	v.SetDefault("reporting.metric", "clicks")
	v.SetDefault("reporting.metric_threshold", 100)
	v.SetDefault("reporting.limit", 10000)

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables(v *viper.Viper) {
	bindEnvKeys(v, "ads.developer_token", []string{
		"GOOGLE_ADS_DEVELOPER_TOKEN",
		"DEVELOPER_TOKEN",
	})

	bindEnvKeys(v, "ads.account_id", []string{
		"GOOGLE_ADS_ACCOUNT_ID",
		"ADS_ACCOUNT_ID",
	})

	bindEnvKeys(v, "ads.login_customer_id", []string{
		"GOOGLE_ADS_LOGIN_CUSTOMER_ID",
		"LOGIN_CUSTOMER_ID",
	})

	bindEnvKeys(v, "gemini.project_id", []string{
		"GOOGLE_CLOUD_PROJECT",
		"GCP_PROJECT_ID",
	})

	bindEnvKeys(v, "gemini.location", []string{
		"GOOGLE_CLOUD_LOCATION",
	})

	bindEnvKeys(v, "gemini.model", []string{
		"GEMINI_MODEL",
	})

	bindEnvKeys(v, "app.debug", []string{
		"DEBUG",
		"GIGA_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(v *viper.Viper, viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			v.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	config.Ads.AccountID = NormalizeCustomerID(config.Ads.AccountID)
	config.Ads.LoginCustomerID = NormalizeCustomerID(config.Ads.LoginCustomerID)
	if config.Ads.LoginCustomerID == "" {
		config.Ads.LoginCustomerID = config.Ads.AccountID
	}
	config.Ads.Endpoint = strings.TrimRight(config.Ads.Endpoint, "/")

	durations := map[string]string{
		"ads.timeout":       config.Ads.Timeout,
		"ads.request_delay": config.Ads.RequestDelay,
	}
	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	if config.App.Debug {
		config.Logging.Level = "debug"
	}
	return nil
}

// NormalizeCustomerID strips the dashes Google Ads shows in account IDs.
func NormalizeCustomerID(id string) string {
	return strings.TrimSpace(strings.ReplaceAll(id, "-", ""))
}

// validateConfig ensures configured values are well-formed
func validateConfig(config *Config) error {
	var errors []string

	if id := config.Ads.AccountID; id != "" && !isDigits(id) {
		errors = append(errors, fmt.Sprintf("Ads account ID must be numeric (dashes allowed), got %q", id))
	}
	if config.Gemini.Temperature < 0 || config.Gemini.Temperature > 2 {
		errors = append(errors, fmt.Sprintf("gemini.temperature must be between 0 and 2, got %v", config.Gemini.Temperature))
	}
	if config.Gemini.TopP < 0 || config.Gemini.TopP > 1 {
		errors = append(errors, fmt.Sprintf("gemini.top_p must be between 0 and 1, got %v", config.Gemini.TopP))
	}
	if config.Pipeline.MaxIdeas <= 0 {
		errors = append(errors, "pipeline.max_ideas must be positive")
	}
	if config.Reporting.RecentDays <= 0 {
		errors = append(errors, "reporting.recent_days must be positive")
	}
	if config.Reporting.BaselineDays < 0 {
		errors = append(errors, "reporting.baseline_days cannot be negative")
	}
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("server.port out of range: %d", config.Server.Port))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// RequireAds reports missing Google Ads credentials.
func (c *Config) RequireAds() error {
	var missing []string
	if c.Ads.DeveloperToken == "" {
		missing = append(missing, "developer token (GOOGLE_ADS_DEVELOPER_TOKEN or ads.developer_token)")
	}
	if c.Ads.AccountID == "" {
		missing = append(missing, "account ID (GOOGLE_ADS_ACCOUNT_ID or ads.account_id)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("google ads is not configured, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RequireGemini reports missing Vertex AI settings.
func (c *Config) RequireGemini() error {
	if c.Gemini.ProjectID == "" {
		return fmt.Errorf("gemini is not configured: set GOOGLE_CLOUD_PROJECT or gemini.project_id")
	}
	if c.Gemini.Model == "" {
		return fmt.Errorf("gemini is not configured: set GEMINI_MODEL or gemini.model")
	}
	return nil
}

// AdsTimeout returns the parsed Ads HTTP timeout.
func (c *Config) AdsTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Ads.Timeout)
	return d
}

// AdsRequestDelay returns the delay inserted before each rate-limited Ads call.
func (c *Config) AdsRequestDelay() time.Duration {
	d, _ := time.ParseDuration(c.Ads.RequestDelay)
	return d
}

// Provider implementation

func (c *Config) DeveloperToken() string  { return c.Ads.DeveloperToken }
func (c *Config) CustomerID() string      { return c.Ads.AccountID }
func (c *Config) LoginCustomerID() string { return c.Ads.LoginCustomerID }
func (c *Config) ProjectID() string       { return c.Gemini.ProjectID }
func (c *Config) ModelID() string         { return c.Gemini.Model }

// Static is a fixed Provider, handy for tests and one-off tools.
type Static struct {
	Token         string
	Customer      string
	LoginCustomer string
	Project       string
	Model         string
}

func (s Static) DeveloperToken() string { return s.Token }
func (s Static) CustomerID() string     { return NormalizeCustomerID(s.Customer) }
func (s Static) LoginCustomerID() string {
	if s.LoginCustomer == "" {
		return NormalizeCustomerID(s.Customer)
	}
	return NormalizeCustomerID(s.LoginCustomer)
}
func (s Static) ProjectID() string { return s.Project }
func (s Static) ModelID() string   { return s.Model }
