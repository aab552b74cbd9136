package config

import (
	"errors"
	"fmt"
)

var validQualities = map[string]struct{}{
	"low":    {},
	"medium": {},
	"high":   {},
}

var validEncodePresets = map[string]struct{}{
	"ultrafast": {},
	"superfast": {},
	"veryfast":  {},
	"faster":    {},
	"fast":      {},
	"medium":    {},
	"slow":      {},
	"slower":    {},
	"veryslow":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.Framerate < 1 || c.Capture.Framerate > 240 {
		return fmt.Errorf("capture.framerate must be between 1 and 240, got %d", c.Capture.Framerate)
	}
	if c.Capture.StopTimeoutSeconds < 1 {
		return errors.New("capture.stop_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateEncode() error {
	if _, ok := validQualities[c.Encode.DefaultQuality]; !ok {
		return fmt.Errorf("encode.default_quality must be one of low, medium, high; got %q", c.Encode.DefaultQuality)
	}
	if _, ok := validEncodePresets[c.Encode.Preset]; !ok {
		return fmt.Errorf("encode.preset %q is not a recognized x264 preset", c.Encode.Preset)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error; got %q", c.Logging.Level)
	}
	return nil
}
