package queue

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"convoy/internal/naming"
)

const (
	settingOutputDirectory  = "output_directory"
	settingUseSubdirectory  = "use_subdirectory"
	settingSubdirectoryName = "subdirectory_name"
	settingFilenamePattern  = "filename_pattern"
	settingZoomedThumbnails = "zoomed_thumbnails"
)

// DefaultSettings returns the naming preferences used before any are persisted.
func DefaultSettings() Settings {
	return Settings{
		UseSubdirectory:  true,
		SubdirectoryName: "converted",
		FilenamePattern:  naming.DefaultTemplate,
	}
}

// LoadSettings reads persisted naming settings. Missing keys keep their
// defaults; the boolean reports whether any settings row exists at all, so
// callers can seed configuration values on first run.
func (s *Store) LoadSettings(ctx context.Context) (Settings, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return Settings{}, false, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	settings := DefaultSettings()
	found := false
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, false, err
		}
		found = true
		switch key {
		case settingOutputDirectory:
			settings.OutputDirectory = value
		case settingUseSubdirectory:
			settings.UseSubdirectory = parseBoolSetting(value, settings.UseSubdirectory)
		case settingSubdirectoryName:
			if strings.TrimSpace(value) != "" {
				settings.SubdirectoryName = value
			}
		case settingFilenamePattern:
			if naming.Validate(value) {
				settings.FilenamePattern = value
			}
		case settingZoomedThumbnails:
			settings.ZoomedThumbnails = parseBoolSetting(value, settings.ZoomedThumbnails)
		}
	}
	if err := rows.Err(); err != nil {
		return Settings{}, false, err
	}
	return settings, found, nil
}

// SaveSettings persists naming settings. An invalid filename pattern is
// replaced with the default; the stored pattern is always valid.
func (s *Store) SaveSettings(ctx context.Context, settings Settings) (Settings, error) {
	if !naming.Validate(settings.FilenamePattern) {
		settings.FilenamePattern = naming.DefaultTemplate
	}
	if strings.TrimSpace(settings.SubdirectoryName) == "" {
		settings.SubdirectoryName = DefaultSettings().SubdirectoryName
	}

	pairs := map[string]string{
		settingOutputDirectory:  settings.OutputDirectory,
		settingUseSubdirectory:  strconv.FormatBool(settings.UseSubdirectory),
		settingSubdirectoryName: settings.SubdirectoryName,
		settingFilenamePattern:  settings.FilenamePattern,
		settingZoomedThumbnails: strconv.FormatBool(settings.ZoomedThumbnails),
	}
	for key, value := range pairs {
		if _, err := s.execWithRetry(
			ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
             ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key,
			value,
		); err != nil {
			return Settings{}, fmt.Errorf("save setting %s: %w", key, err)
		}
	}
	return settings, nil
}

func parseBoolSetting(value string, fallback bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
