package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCapture()
	c.normalizeEncode()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCapture() {
	c.Capture.Display = strings.TrimSpace(c.Capture.Display)
	if c.Capture.Display == "" {
		if value, ok := os.LookupEnv("DISPLAY"); ok && strings.TrimSpace(value) != "" {
			c.Capture.Display = strings.TrimSpace(value)
		} else {
			c.Capture.Display = defaultDisplay
		}
	}
	if c.Capture.Framerate <= 0 {
		c.Capture.Framerate = defaultFramerate
	}
	if c.Capture.StopTimeoutSeconds <= 0 {
		c.Capture.StopTimeoutSeconds = defaultStopTimeoutSeconds
	}
}

func (c *Config) normalizeEncode() {
	c.Encode.DefaultQuality = strings.ToLower(strings.TrimSpace(c.Encode.DefaultQuality))
	if c.Encode.DefaultQuality == "" {
		c.Encode.DefaultQuality = defaultQuality
	}
	c.Encode.Preset = strings.TrimSpace(c.Encode.Preset)
	if c.Encode.Preset == "" {
		c.Encode.Preset = defaultEncodePreset
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
