// env.go - Environment variable configuration and validation for seld-go
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "SELD_DEBUG", validateEnvBool},

		// Dataset paths
		{"dataset.audiodir", "SELD_DATASET_AUDIO_DIR", validateEnvPath},
		{"dataset.stftdir", "SELD_DATASET_STFT_DIR", validateEnvPath},
		{"dataset.metadatadir", "SELD_DATASET_METADATA_DIR", validateEnvPath},

		// External engine
		{"engine.binary", "SELD_ENGINE_BINARY", nil},
		{"engine.scriptdir", "SELD_ENGINE_SCRIPT_DIR", validateEnvPath},
		{"engine.starttimeout", "SELD_ENGINE_START_TIMEOUT", validateEnvDuration},
		{"engine.debug", "SELD_ENGINE_DEBUG", validateEnvBool},

		// Short-time analysis parameters
		{"audio.samplerate", "SELD_AUDIO_SAMPLE_RATE", validateEnvPositiveInt},
		{"audio.windowsize", "SELD_AUDIO_WINDOW_SIZE", validateEnvPositiveInt},
		{"audio.windowoverlap", "SELD_AUDIO_WINDOW_OVERLAP", validateEnvNonNegativeInt},
		{"audio.nfft", "SELD_AUDIO_NFFT", validateEnvPositiveInt},
		{"audio.framelength", "SELD_AUDIO_FRAME_LENGTH", validateEnvPositiveFloat},

		// Label scheme
		{"labels.numclasses", "SELD_LABELS_NUM_CLASSES", validateEnvPositiveInt},
		{"labels.file", "SELD_LABELS_FILE", validateEnvPath},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	bindings := getEnvBindings()
	var warnings []string

	for _, binding := range bindings {
		// Bind the environment variable to the config key
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		// Validate the value if it's set and validation function is provided
		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	_, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

// validateEnvPath rejects values that cannot denote a filesystem path
func validateEnvPath(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("path must not be blank")
	}
	if cleaned := filepath.Clean(value); strings.Contains(cleaned, "\x00") {
		return fmt.Errorf("path contains invalid characters")
	}
	return nil
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", d)
	}
	return nil
}

func validateEnvPositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("value must be positive, got %d", n)
	}
	return nil
}

func validateEnvNonNegativeInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("value must be non-negative, got %d", n)
	}
	return nil
}

func validateEnvPositiveFloat(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number: %w", err)
	}
	if f <= 0 {
		return fmt.Errorf("value must be positive, got %g", f)
	}
	return nil
}
