// conf/validate.go

package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"

	"github.com/pans/seld-go/internal/errors"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the structural invariants of the Settings struct.
// Path existence is checked separately by ValidatePaths so that commands which
// only inspect the configuration do not require a populated dataset.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	// Validate short-time analysis parameters
	if err := validateAudioSettings(&settings.Audio); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate engine settings
	if err := validateEngineSettings(&settings.Engine); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate label scheme settings
	if err := validateLabelSettings(&settings.Labels); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// If there are any errors, return the ValidationError
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateAudioSettings validates the short-time analysis parameters
func validateAudioSettings(settings *AudioSettings) error {
	var errs []string

	if settings.SampleRate <= 0 {
		errs = append(errs, "audio sample rate must be positive")
	}

	if settings.WindowSize <= 0 {
		errs = append(errs, "audio window size must be positive")
	}

	// The hop between consecutive windows is WindowSize-WindowOverlap, an
	// overlap equal to or larger than the window would make no forward progress
	if settings.WindowOverlap < 0 {
		errs = append(errs, "audio window overlap must be non-negative")
	} else if settings.WindowOverlap >= settings.WindowSize {
		errs = append(errs, fmt.Sprintf("audio window overlap (%d) must be less than window size (%d)",
			settings.WindowOverlap, settings.WindowSize))
	}

	// Transforming a window longer than the FFT would truncate samples
	if settings.NFFT < settings.WindowSize {
		errs = append(errs, fmt.Sprintf("audio nfft (%d) must be at least window size (%d)",
			settings.NFFT, settings.WindowSize))
	}

	if settings.FrameLength <= 0 {
		errs = append(errs, "audio frame length must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("audio settings errors: %v", errs)
	}

	return nil
}

// validateEngineSettings validates the external engine settings
func validateEngineSettings(settings *EngineSettings) error {
	var errs []string

	if strings.TrimSpace(settings.Binary) == "" {
		errs = append(errs, "engine binary must not be empty")
	}

	if settings.StartTimeout <= 0 {
		errs = append(errs, "engine start timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("engine settings errors: %v", errs)
	}

	return nil
}

// validateLabelSettings validates the label scheme settings
func validateLabelSettings(settings *LabelSettings) error {
	if settings.NumClasses < 1 {
		return fmt.Errorf("labels numclasses must be at least 1, got %d", settings.NumClasses)
	}
	return nil
}

// ValidatePaths eagerly checks that every configured directory exists and is
// readable. The experiment bootstrap runs this before starting the engine so
// misconfigured paths fail up front instead of surfacing later as open errors
// deep inside a run.
func ValidatePaths(settings *Settings) error {
	ve := ValidationError{}

	dirs := []struct {
		name string
		path string
	}{
		{"dataset.audiodir", settings.Dataset.AudioDir},
		{"dataset.stftdir", settings.Dataset.STFTDir},
		{"dataset.metadatadir", settings.Dataset.MetadataDir},
		{"engine.scriptdir", settings.Engine.ScriptDir},
	}

	for _, dir := range dirs {
		if err := checkReadableDir(dir.name, dir.path); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	// The external label file is optional, empty means the embedded vocabulary
	if settings.Labels.File != "" {
		if _, err := os.Stat(settings.Labels.File); err != nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf("labels.file: %v", err))
		}
	}

	// Cross-check the configured sample rate against an actual recording when
	// the audio directory already passed its checks
	if settings.Dataset.AudioDir != "" && len(ve.Errors) == 0 {
		if err := probeAudioDir(settings.Dataset.AudioDir, settings.Audio.SampleRate); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// checkReadableDir verifies that path denotes an existing, readable directory.
func checkReadableDir(name, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%s: path is not configured", name)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %s is not a directory", name, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s: directory not readable: %v", name, err)
	}
	_ = f.Close()

	return nil
}

// probeAudioDir opens the first WAV file found in dir and compares its sample
// rate against the configured value. Directories without WAV files pass, the
// probe only guards against running an experiment with the wrong rate over an
// existing dataset.
func probeAudioDir(dir string, sampleRate int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("dataset.audiodir: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		f, err := os.Open(path)
		if err != nil {
			return errors.New(fmt.Errorf("dataset.audiodir: cannot open %s: %w", entry.Name(), err)).
				Component("conf").
				Category(errors.CategoryFileIO).
				Context("path", path).
				Build()
		}

		decoder := wav.NewDecoder(f)
		decoder.ReadInfo()
		rate := int(decoder.SampleRate)
		readErr := decoder.Err()
		_ = f.Close()

		if readErr != nil || rate == 0 {
			return errors.Newf("dataset.audiodir: %s is not a readable WAV file", entry.Name()).
				Component("conf").
				Category(errors.CategoryValidation).
				Context("path", path).
				Build()
		}

		if rate != sampleRate {
			return errors.Newf("dataset.audiodir: %s has sample rate %d Hz, configured rate is %d Hz",
				entry.Name(), rate, sampleRate).
				Component("conf").
				Category(errors.CategoryValidation).
				Context("path", path).
				Build()
		}

		// One recording is enough, datasets are homogeneous
		return nil
	}

	return nil
}
