package backend

import (
	"fmt"

	"fincal/internal/codec"
	"fincal/internal/config"
	"fincal/internal/core"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:            backendType,
		SQLiteDBPath:    appConfig.SQLiteDBPath,
		DataFilePath:    appConfig.DataFilePath,
		CalendarID:      appConfig.GoogleCalendarID,
		Credentials:     appConfig.GoogleCredentials,
		RemoteTimeout:   appConfig.RemoteTimeout,
		Locale:          appConfig.Locale,
		DefaultCurrency: appConfig.DefaultCurrency,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case FileBackend:
		if c.DataFilePath == "" {
			return fmt.Errorf("data file path is required for file backend")
		}
	case CalendarBackend:
		if c.Credentials == nil {
			return fmt.Errorf("credentials are required for calendar backend")
		}
	}
	return nil
}

// Codec builds the codec for the configured locale and currency.
func (c Config) Codec() *codec.Codec {
	vocab, ok := codec.VocabularyByName(c.Locale)
	if !ok {
		vocab = codec.English
	}
	return codec.New(codec.WithVocabulary(vocab), codec.WithDefaultCurrency(c.DefaultCurrency))
}

// ReportLocale returns the trend labels for the configured locale.
func (c Config) ReportLocale() core.Locale {
	return core.LocaleByName(c.Locale)
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, FileBackend, SQLiteBackend, CalendarBackend}
}
