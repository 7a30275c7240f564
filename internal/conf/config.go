// config.go: This file contains the configuration for the seld-go experiment
// pipeline. It defines the settings struct and functions to load and save the
// settings.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pans/seld-go/internal/errors"
)

//go:embed config.yaml
var configFiles embed.FS

// DatasetSettings holds the filesystem locations of the experiment dataset.
// The values are environment specific and always supplied externally, via the
// config file, environment variables or command line flags.
type DatasetSettings struct {
	AudioDir    string // directory with raw multichannel audio recordings
	STFTDir     string // directory with precomputed STFT frames
	MetadataDir string // directory with per-recording annotation CSV files
}

// EngineSettings configures the external numerical engine session.
type EngineSettings struct {
	Debug        bool          // true to log engine session traffic
	Binary       string        // engine executable, e.g. "matlab" or "octave-cli"
	Args         []string      // arguments passed to the engine executable
	ScriptDir    string        // tracker script directory registered on the engine search path
	StartTimeout time.Duration // maximum time to wait for the engine to report ready
}

// AudioSettings holds the short-time analysis parameters. A window of
// WindowSize samples is advanced by WindowSize-WindowOverlap samples and
// transformed with an NFFT point FFT. FrameLength is the duration of one
// annotation frame in seconds.
type AudioSettings struct {
	SampleRate    int     // sample rate of the dataset recordings in Hz
	WindowSize    int     // analysis window length in samples
	WindowOverlap int     // overlap between consecutive windows in samples
	NFFT          int     // FFT length in samples
	FrameLength   float64 // annotation frame duration in seconds
}

// LabelSettings configures the classification label scheme.
type LabelSettings struct {
	NumClasses int    // number of classes including the trailing undefined class
	File       string // optional external class-name file, one name per line; empty for embedded
}

// Settings contains all configuration options for the seld-go experiment pipeline.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-"` // Version from build
	BuildDate string `yaml:"-"` // Build date from build

	Main struct {
		Name string    // name of this experiment node
		Log  LogConfig // logging configuration
	}

	Dataset DatasetSettings // dataset path registry
	Engine  EngineSettings  // external engine configuration
	Audio   AudioSettings   // short-time analysis parameters
	Labels  LabelSettings   // label scheme configuration
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled     bool         // true to enable this log
	Path        string       // Path to the log file
	Rotation    RotationType // Type of log rotation
	MaxSize     int64        // Max size in bytes for RotationSize
	RotationDay string       // Day of the week for RotationWeekly ("Sunday", "Monday", etc.)
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a new
// Settings instance. Loading is idempotent in observable values: repeated
// calls against the same configuration sources produce equal settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	// Create a new settings struct
	settings := &Settings{}

	// Initialize viper and read config
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	// Unmarshal the config into settings
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	// Validate settings
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	// Save settings instance
	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Get OS specific config paths
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	// Assign config paths to Viper
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	// Bind environment variables, function defined in env.go
	if err := bindEnvVars(); err != nil {
		return fmt.Errorf("error binding environment variables: %w", err)
	}

	// Read configuration file
	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	// Create directories for config file
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	// Write default config file
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveSettings saves the current settings to the configuration file.
// It uses SaveYAMLConfig to handle the atomic write process.
func SaveSettings() error {
	settings := GetSettings()
	if settings == nil {
		return fmt.Errorf("no settings loaded")
	}

	// Create a copy of the settings to decouple from the live instance
	settingsCopy := *settings

	// Find the path of the current config file
	configPath, err := FindConfigFile()
	if err != nil {
		return fmt.Errorf("error finding config file: %w", err)
	}

	// Save the settings to the config file
	if err := SaveYAMLConfig(configPath, &settingsCopy); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	log.Printf("Settings saved successfully to %s", configPath)
	return nil
}

// SaveYAMLConfig updates the YAML configuration file with new settings.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	// Marshal the settings struct to YAML
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write the YAML data to a temporary file
	// This is done to ensure atomic write operation
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	// Ensure the temporary file is removed in case of any failure
	defer os.Remove(tempFileName)

	// Write the YAML data to the temporary file
	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	// Close the temporary file after writing
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	// Try to rename the temporary file to replace the original config file
	// This is typically an atomic operation on most filesystems
	if err := os.Rename(tempFileName, configPath); err != nil {
		// If rename fails (e.g., cross-device link), fall back to copy & delete
		if err := moveFile(tempFileName, configPath); err != nil {
			return fmt.Errorf("error copying config file: %w", err)
		}
	}

	return nil
}
