// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "seld-go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "seld.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)
	viper.SetDefault("main.log.rotationday", "Sunday")

	// Dataset paths are deployment specific, there are no usable defaults.
	// Empty values are caught by ValidatePaths before the engine is started.
	viper.SetDefault("dataset.audiodir", "")
	viper.SetDefault("dataset.stftdir", "")
	viper.SetDefault("dataset.metadatadir", "")

	viper.SetDefault("engine.debug", false)
	viper.SetDefault("engine.binary", "matlab")
	viper.SetDefault("engine.args", []string{"-nodisplay", "-nosplash", "-nodesktop"})
	viper.SetDefault("engine.scriptdir", "")
	viper.SetDefault("engine.starttimeout", 2*time.Minute)

	viper.SetDefault("audio.samplerate", 24000)
	viper.SetDefault("audio.windowsize", 2400)
	viper.SetDefault("audio.windowoverlap", 1200)
	viper.SetDefault("audio.nfft", 2400)
	// each annotation frame corresponds to 100 ms
	viper.SetDefault("audio.framelength", 0.1)

	// 12 regular classes plus the trailing undefined class
	viper.SetDefault("labels.numclasses", 13)
	viper.SetDefault("labels.file", "")
}
