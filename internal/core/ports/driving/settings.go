package driving

import "github.com/custodia-labs/reposcope/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates one setting by its config key.
	Set(key, value string) error

	// Reset removes a stored setting so its default applies.
	Reset(key string) error

	// Keys returns the recognised config keys.
	Keys() []string

	// Values returns each setting in string form with secrets masked.
	Values() (map[string]string, error)

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
