package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyMaxFileSize  = "viewer.max_file_size"
	KeyTheme        = "viewer.theme"
	KeyCacheEnabled = "cache.enabled"
	KeyCacheDir     = "cache.dir"
	KeyGitHubToken  = "github.token"
	KeyGitHubAPIURL = "github.api_url"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Viewer: domain.ViewerSettings{
			MaxFileSize: s.getInt64(KeyMaxFileSize, defaults.Viewer.MaxFileSize),
			Theme:       s.getTheme(defaults.Viewer.Theme),
		},
		GitHub: domain.GitHubSettings{
			Token:  s.configStore.GetString(KeyGitHubToken),
			APIURL: s.configStore.GetString(KeyGitHubAPIURL), // Empty means api.github.com
		},
		Cache: domain.CacheSettings{
			Enabled: s.getBool(KeyCacheEnabled, defaults.Cache.Enabled),
			Dir:     s.configStore.GetString(KeyCacheDir),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}
	if settings.Viewer.MaxFileSize <= 0 {
		return fmt.Errorf("%w: max file size must be positive", domain.ErrInvalidInput)
	}
	if !settings.Viewer.Theme.IsValid() {
		return fmt.Errorf("%w: unknown theme %q", domain.ErrInvalidInput, settings.Viewer.Theme)
	}

	if err := s.configStore.Set(KeyMaxFileSize, settings.Viewer.MaxFileSize); err != nil {
		return fmt.Errorf("save max file size: %w", err)
	}
	if err := s.configStore.Set(KeyTheme, settings.Viewer.Theme.String()); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	if err := s.configStore.Set(KeyCacheEnabled, settings.Cache.Enabled); err != nil {
		return fmt.Errorf("save cache enabled: %w", err)
	}
	if err := s.configStore.Set(KeyCacheDir, settings.Cache.Dir); err != nil {
		return fmt.Errorf("save cache dir: %w", err)
	}
	if err := s.configStore.Set(KeyGitHubAPIURL, settings.GitHub.APIURL); err != nil {
		return fmt.Errorf("save github api_url: %w", err)
	}
	if settings.GitHub.Token != "" {
		if err := s.configStore.Set(KeyGitHubToken, settings.GitHub.Token); err != nil {
			return fmt.Errorf("save github token: %w", err)
		}
	}

	return nil
}

// Set updates one setting from its string form.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case KeyMaxFileSize:
		size, err := strconv.ParseInt(value, 10, 64)
		if err != nil || size <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, size)
	case KeyTheme:
		if !domain.Theme(value).IsValid() {
			return fmt.Errorf("%w: unknown theme %q", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, value)
	case KeyCacheEnabled:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, enabled)
	case KeyCacheDir, KeyGitHubToken, KeyGitHubAPIURL:
		return s.configStore.Set(key, value)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// Reset removes a stored setting so its default applies again.
func (s *SettingsService) Reset(key string) error {
	if !s.isKey(key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Unset(key)
}

// Keys returns the recognised config keys.
func (s *SettingsService) Keys() []string {
	return []string{KeyMaxFileSize, KeyTheme, KeyCacheEnabled, KeyCacheDir, KeyGitHubToken, KeyGitHubAPIURL}
}

// Values returns every setting in its string form, keyed by config key.
// The token is masked.
func (s *SettingsService) Values() (map[string]string, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		KeyMaxFileSize:  strconv.FormatInt(settings.Viewer.MaxFileSize, 10),
		KeyTheme:        settings.Viewer.Theme.String(),
		KeyCacheEnabled: strconv.FormatBool(settings.Cache.Enabled),
		KeyCacheDir:     settings.Cache.Dir,
		KeyGitHubToken:  MaskToken(settings.GitHub.Token),
		KeyGitHubAPIURL: settings.GitHub.APIURL,
	}, nil
}

// MaskToken hides all but the last four characters of a token.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", 8) + token[len(token)-4:]
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) isKey(key string) bool {
	for _, k := range s.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func (s *SettingsService) getInt64(key string, defaultVal int64) int64 {
	val := s.configStore.GetInt64(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getTheme(defaultVal domain.Theme) domain.Theme {
	theme := domain.Theme(s.configStore.GetString(KeyTheme))
	if !theme.IsValid() {
		return defaultVal
	}
	return theme
}
