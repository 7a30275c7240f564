package save

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/pans/seld-go/internal/conf"
)

func TestSaveWritesEffectiveConfig(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test redirects the config location via HOME")
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Reset()
	t.Cleanup(viper.Reset)

	// the first load creates the default config file under the fake home
	settings, err := conf.Load()
	if err != nil {
		t.Fatalf("loading settings: %v", err)
	}

	// a change made after loading must survive the round trip
	settings.Main.Name = "lab-node-7"

	cmd := Command()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	configPath := filepath.Join(home, ".config", "seld-go", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if !strings.Contains(string(data), "lab-node-7") {
		t.Errorf("saved config missing the updated node name, got:\n%s", data)
	}
	if !strings.Contains(out.String(), configPath) {
		t.Errorf("save should report the config path, got: %s", out.String())
	}
}
