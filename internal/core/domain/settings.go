package domain

// Theme selects the colour palette used by renderers and the TUI.
type Theme string

// Available themes.
const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// IsValid returns true if the theme is recognised.
func (t Theme) IsValid() bool {
	return t == ThemeDark || t == ThemeLight
}

// String returns the string representation.
func (t Theme) String() string {
	return string(t)
}

// AllThemes returns all available themes.
func AllThemes() []Theme {
	return []Theme{ThemeDark, ThemeLight}
}

// ViewerSettings controls loading and rendering.
type ViewerSettings struct {
	// MaxFileSize is the size in bytes at or above which files are not fetched.
	MaxFileSize int64

	// Theme is the colour palette.
	Theme Theme
}

// GitHubSettings configures access to the GitHub API.
type GitHubSettings struct {
	// Token is a personal access token. Empty means anonymous access.
	Token string

	// APIURL overrides the API base URL for GitHub Enterprise.
	APIURL string
}

// CacheSettings configures the persistent blob cache.
type CacheSettings struct {
	// Enabled turns the sqlite blob cache on.
	Enabled bool

	// Dir is where the cache database lives. Empty means the config dir.
	Dir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Viewer ViewerSettings
	GitHub GitHubSettings
	Cache  CacheSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Viewer: ViewerSettings{
			MaxFileSize: DefaultMaxFileSize,
			Theme:       ThemeDark,
		},
		Cache: CacheSettings{
			Enabled: true,
		},
	}
}

// HasToken reports whether GitHub requests are authenticated.
func (s AppSettings) HasToken() bool {
	return s.GitHub.Token != ""
}
