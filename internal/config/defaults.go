package config

const (
	defaultDataDir                = "~/.local/share/convoy"
	defaultLogDir                 = "~/.local/share/convoy/logs"
	defaultFFmpegBinary           = "ffmpeg"
	defaultFFprobeBinary          = "ffprobe"
	defaultTargetContainer        = "mp4"
	defaultQueuePollInterval      = 2
	defaultErrorRetryInterval     = 10
	defaultProgressSampleInterval = 1
	defaultSubdirectoryName       = "converted"
	defaultFilenamePattern        = "{name}_converted"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 14
	defaultNotifyRequestTimeout   = 10
)

func defaultSourceExtensions() []string {
	return []string{".webm", ".mkv", ".avi", ".mov", ".m4v"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Conversion: Conversion{
			FFmpegBinary:           defaultFFmpegBinary,
			FFprobeBinary:          defaultFFprobeBinary,
			SourceExtensions:       defaultSourceExtensions(),
			TargetContainer:        defaultTargetContainer,
			QueuePollInterval:      defaultQueuePollInterval,
			ErrorRetryInterval:     defaultErrorRetryInterval,
			ProgressSampleInterval: defaultProgressSampleInterval,
		},
		Naming: Naming{
			UseSubdirectory:  true,
			SubdirectoryName: defaultSubdirectoryName,
			FilenamePattern:  defaultFilenamePattern,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
	}
}
