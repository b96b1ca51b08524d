package config

import (
	"errors"
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Conversion.FFmpegBinary = strings.TrimSpace(c.Conversion.FFmpegBinary)
	if c.Conversion.FFmpegBinary == "" {
		c.Conversion.FFmpegBinary = defaultFFmpegBinary
	}
	c.Conversion.FFprobeBinary = strings.TrimSpace(c.Conversion.FFprobeBinary)
	if c.Conversion.FFprobeBinary == "" {
		c.Conversion.FFprobeBinary = defaultFFprobeBinary
	}
	c.Conversion.TargetContainer = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Conversion.TargetContainer)), ".")
	if c.Conversion.TargetContainer == "" {
		c.Conversion.TargetContainer = defaultTargetContainer
	}
	exts := c.Conversion.SourceExtensions[:0]
	for _, ext := range c.Conversion.SourceExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = defaultSourceExtensions()
	}
	c.Conversion.SourceExtensions = exts

	if c.Naming.OutputDirectory != "" {
		if c.Naming.OutputDirectory, err = expandPath(c.Naming.OutputDirectory); err != nil {
			return fmt.Errorf("naming.output_directory: %w", err)
		}
	}
	c.Naming.SubdirectoryName = strings.TrimSpace(c.Naming.SubdirectoryName)
	if c.Naming.SubdirectoryName == "" {
		c.Naming.SubdirectoryName = defaultSubdirectoryName
	}
	if strings.TrimSpace(c.Naming.FilenamePattern) == "" {
		c.Naming.FilenamePattern = defaultFilenamePattern
	}

	if c.Presets.Path != "" {
		if c.Presets.Path, err = expandPath(c.Presets.Path); err != nil {
			return fmt.Errorf("presets.path: %w", err)
		}
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Conversion.QueuePollInterval <= 0 {
		return errors.New("conversion.queue_poll_interval must be positive")
	}
	if c.Conversion.ErrorRetryInterval <= 0 {
		return errors.New("conversion.error_retry_interval must be positive")
	}
	if c.Conversion.ProgressSampleInterval <= 0 {
		return errors.New("conversion.progress_sample_interval must be positive")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	return nil
}
