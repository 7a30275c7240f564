package conf

import "testing"

func TestEnvValidators(t *testing.T) {
	tests := []struct {
		name     string
		validate func(string) error
		value    string
		wantErr  bool
	}{
		{"bool true", validateEnvBool, "true", false},
		{"bool 1", validateEnvBool, "1", false},
		{"bool garbage", validateEnvBool, "maybe", true},
		{"path ok", validateEnvPath, "/data/foa_dev", false},
		{"path blank", validateEnvPath, "   ", true},
		{"duration ok", validateEnvDuration, "90s", false},
		{"duration negative", validateEnvDuration, "-1m", true},
		{"duration garbage", validateEnvDuration, "soon", true},
		{"positive int ok", validateEnvPositiveInt, "24000", false},
		{"positive int zero", validateEnvPositiveInt, "0", true},
		{"non-negative int zero", validateEnvNonNegativeInt, "0", false},
		{"non-negative int negative", validateEnvNonNegativeInt, "-1", true},
		{"positive float ok", validateEnvPositiveFloat, "0.1", false},
		{"positive float zero", validateEnvPositiveFloat, "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("validator(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestEnvBindingsCoverSettings(t *testing.T) {
	bindings := getEnvBindings()

	seen := make(map[string]bool, len(bindings))
	for _, b := range bindings {
		if seen[b.EnvVar] {
			t.Errorf("duplicate environment variable binding %s", b.EnvVar)
		}
		seen[b.EnvVar] = true
	}

	// every externally supplied path must be overridable from the environment
	for _, key := range []string{
		"dataset.audiodir",
		"dataset.stftdir",
		"dataset.metadatadir",
		"engine.scriptdir",
	} {
		found := false
		for _, b := range bindings {
			if b.ConfigKey == key {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("config key %s has no environment binding", key)
		}
	}
}
