package config

const (
	defaultStagingDir         = "~/.local/share/rscapture/staging"
	defaultOutputDir          = "~/Videos"
	defaultLogDir             = "~/.local/share/rscapture/logs"
	defaultDisplay            = ":0.0"
	defaultFramerate          = 30
	defaultStopTimeoutSeconds = 5
	defaultQuality            = "medium"
	defaultEncodePreset       = "medium"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Capture: Capture{
			Display:            defaultDisplay,
			Framerate:          defaultFramerate,
			StopTimeoutSeconds: defaultStopTimeoutSeconds,
		},
		Encode: Encode{
			DefaultQuality: defaultQuality,
			Preset:         defaultEncodePreset,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
