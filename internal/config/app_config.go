package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/temirov/sumtree/internal/utils"
)

// ErrMissingAPIKey indicates that no API credential was found after merging
// every configuration source. This is the only fatal startup condition.
var ErrMissingAPIKey = errors.New("api key is not set: set the OPENAI_API_KEY environment variable or the api_key key in " + utils.ConfigFileName)

const (
	apiKeyEnvironmentVariable           = "OPENAI_API_KEY"
	modelEnvironmentVariable            = "MODEL_NAME"
	apiBaseEnvironmentVariable          = "API_BASE"
	maxRetriesEnvironmentVariable       = "MAX_RETRIES"
	retryDelayEnvironmentVariable       = "RETRY_DELAY"
	maxTokensEnvironmentVariable        = "MAX_TOKENS"
	temperatureEnvironmentVariable      = "TEMPERATURE"
	promptTokenLimitEnvironmentVariable = "PROMPT_TOKEN_LIMIT"
	rateLimitEnvironmentVariable        = "RATE_LIMIT"

	defaultModelName        = "gpt-3.5-turbo"
	defaultAPIBase          = "https://api.openai.com/v1"
	defaultMaxRetries       = 3
	defaultRetryDelaySecond = 5
	defaultMaxTokens        = 500
	defaultTemperature      = 0.3

	configFileMissingMessage   = "configuration file not found, using environment variables and defaults"
	configFileMalformedMessage = "configuration file could not be read, using environment variables and defaults"
	exampleFileWrittenMessage  = "example configuration written"
	exampleFileFailedMessage   = "failed to write example configuration"
)

// exampleConfigurationContent is the template written beside a missing or
// malformed configuration file. The keys mirror the Settings fields.
const exampleConfigurationContent = `# Summarization API configuration
api_key: "your-api-key-here"
model: "` + defaultModelName + `"
api_base: "` + defaultAPIBase + `"

# Request configuration
max_retries: 3
retry_delay: 5
max_tokens: 500
temperature: 0.3

# Optional limits (0 disables)
prompt_token_limit: 0
rate_limit: 0

# Copy this file to ` + utils.ConfigFileName + ` and fill in your API key.
`

// Settings holds the summarization parameters after merging defaults,
// environment variables, and the configuration file, in that precedence order.
type Settings struct {
	APIKey           string  `mapstructure:"api_key"`
	Model            string  `mapstructure:"model"`
	APIBase          string  `mapstructure:"api_base"`
	MaxRetries       int     `mapstructure:"max_retries"`
	RetryDelay       int     `mapstructure:"retry_delay"`
	MaxTokens        int     `mapstructure:"max_tokens"`
	Temperature      float64 `mapstructure:"temperature"`
	PromptTokenLimit int     `mapstructure:"prompt_token_limit"`
	RateLimit        float64 `mapstructure:"rate_limit"`
}

// LoadOptions controls how application settings are discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// LoadSettings builds Settings from defaults, the process environment (after a
// best-effort .env load), and an optional YAML configuration file, with the
// file taking precedence. A missing or malformed file is recovered: the
// environment values stand and an example configuration template is generated
// beside the expected file. A missing credential after the merge is fatal.
func LoadSettings(options LoadOptions, logger *zap.Logger) (Settings, error) {
	_ = godotenv.Load()

	settings := defaultSettings()
	applyEnvironment(&settings)

	configurationFilePath, resolveError := resolveConfigurationFilePath(options)
	if resolveError != nil {
		return Settings{}, resolveError
	}

	if _, statError := os.Stat(configurationFilePath); statError != nil {
		if os.IsNotExist(statError) {
			logger.Warn(configFileMissingMessage, zap.String("path", configurationFilePath))
			writeExampleConfiguration(configurationFilePath, logger)
		} else {
			return Settings{}, fmt.Errorf("stat configuration %s: %w", configurationFilePath, statError)
		}
	} else if mergeError := mergeConfigurationFile(configurationFilePath, &settings); mergeError != nil {
		logger.Error(configFileMalformedMessage, zap.String("path", configurationFilePath), zap.Error(mergeError))
		writeExampleConfiguration(configurationFilePath, logger)
	}

	if settings.APIKey == "" {
		return Settings{}, ErrMissingAPIKey
	}
	return settings, nil
}

// defaultSettings returns the built-in configuration values.
func defaultSettings() Settings {
	return Settings{
		Model:       defaultModelName,
		APIBase:     defaultAPIBase,
		MaxRetries:  defaultMaxRetries,
		RetryDelay:  defaultRetryDelaySecond,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}
}

// applyEnvironment overlays non-empty environment variables onto the settings.
func applyEnvironment(settings *Settings) {
	if value := os.Getenv(apiKeyEnvironmentVariable); value != "" {
		settings.APIKey = value
	}
	if value := os.Getenv(modelEnvironmentVariable); value != "" {
		settings.Model = value
	}
	if value := os.Getenv(apiBaseEnvironmentVariable); value != "" {
		settings.APIBase = value
	}
	if parsed, ok := environmentInt(maxRetriesEnvironmentVariable); ok {
		settings.MaxRetries = parsed
	}
	if parsed, ok := environmentInt(retryDelayEnvironmentVariable); ok {
		settings.RetryDelay = parsed
	}
	if parsed, ok := environmentInt(maxTokensEnvironmentVariable); ok {
		settings.MaxTokens = parsed
	}
	if parsed, ok := environmentFloat(temperatureEnvironmentVariable); ok {
		settings.Temperature = parsed
	}
	if parsed, ok := environmentInt(promptTokenLimitEnvironmentVariable); ok {
		settings.PromptTokenLimit = parsed
	}
	if parsed, ok := environmentFloat(rateLimitEnvironmentVariable); ok {
		settings.RateLimit = parsed
	}
}

func environmentInt(variableName string) (int, bool) {
	rawValue := os.Getenv(variableName)
	if rawValue == "" {
		return 0, false
	}
	parsedValue, parseError := strconv.Atoi(rawValue)
	if parseError != nil {
		return 0, false
	}
	return parsedValue, true
}

func environmentFloat(variableName string) (float64, bool) {
	rawValue := os.Getenv(variableName)
	if rawValue == "" {
		return 0, false
	}
	parsedValue, parseError := strconv.ParseFloat(rawValue, 64)
	if parseError != nil {
		return 0, false
	}
	return parsedValue, true
}

// resolveConfigurationFilePath determines the configuration file location from
// the load options, defaulting to ConfigFileName in the working directory.
func resolveConfigurationFilePath(options LoadOptions) (string, error) {
	if options.ExplicitFilePath != "" {
		if filepath.IsAbs(options.ExplicitFilePath) {
			return options.ExplicitFilePath, nil
		}
		if options.WorkingDirectory != "" {
			return filepath.Join(options.WorkingDirectory, options.ExplicitFilePath), nil
		}
		absolutePath, absoluteError := filepath.Abs(options.ExplicitFilePath)
		if absoluteError != nil {
			return "", fmt.Errorf("resolve configuration path %s: %w", options.ExplicitFilePath, absoluteError)
		}
		return absolutePath, nil
	}
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return "", fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

// mergeConfigurationFile overlays values from the YAML configuration file onto
// the settings. Keys absent from the file keep their current values.
func mergeConfigurationFile(configurationFilePath string, settings *Settings) error {
	reader := viper.New()
	reader.SetConfigFile(configurationFilePath)
	if readError := reader.ReadInConfig(); readError != nil {
		return fmt.Errorf("read configuration from %s: %w", configurationFilePath, readError)
	}

	var fileSettings Settings
	if decodeError := reader.Unmarshal(&fileSettings); decodeError != nil {
		return fmt.Errorf("decode configuration from %s: %w", configurationFilePath, decodeError)
	}

	if reader.IsSet("api_key") {
		settings.APIKey = fileSettings.APIKey
	}
	if reader.IsSet("model") {
		settings.Model = fileSettings.Model
	}
	if reader.IsSet("api_base") {
		settings.APIBase = fileSettings.APIBase
	}
	if reader.IsSet("max_retries") {
		settings.MaxRetries = fileSettings.MaxRetries
	}
	if reader.IsSet("retry_delay") {
		settings.RetryDelay = fileSettings.RetryDelay
	}
	if reader.IsSet("max_tokens") {
		settings.MaxTokens = fileSettings.MaxTokens
	}
	if reader.IsSet("temperature") {
		settings.Temperature = fileSettings.Temperature
	}
	if reader.IsSet("prompt_token_limit") {
		settings.PromptTokenLimit = fileSettings.PromptTokenLimit
	}
	if reader.IsSet("rate_limit") {
		settings.RateLimit = fileSettings.RateLimit
	}
	return nil
}

// writeExampleConfiguration generates the documented example template beside
// the expected configuration file unless one already exists. Failures are
// logged and never abort the run.
func writeExampleConfiguration(configurationFilePath string, logger *zap.Logger) {
	examplePath := configurationFilePath + ".example"
	if _, statError := os.Stat(examplePath); statError == nil {
		return
	}
	if writeError := os.WriteFile(examplePath, []byte(exampleConfigurationContent), 0o644); writeError != nil {
		logger.Error(exampleFileFailedMessage, zap.String("path", examplePath), zap.Error(writeError))
		return
	}
	logger.Info(exampleFileWrittenMessage, zap.String("path", examplePath))
}
