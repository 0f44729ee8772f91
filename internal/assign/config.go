package assign

// DefaultThemePrefix marks the row announcing the meeting theme
const DefaultThemePrefix = "Theme for the meeting"

// Config lists the agenda rows the engine never assigns
type Config struct {
	// SkipRoles are exact role labels that are never auto-assigned
	SkipRoles []string `yaml:"skip_roles" json:"skip_roles"`

	// ThemePrefix drops every row whose label starts with it
	ThemePrefix string `yaml:"theme_prefix" json:"theme_prefix"`
}

// DefaultConfig returns the administrative rows found on the club agenda
func DefaultConfig() Config {
	return Config{
		SkipRoles: []string{
			"Sergeant at Arms",
			"Presiding Officer",
			"Club Business",
			"Guest Introductions",
			"Break",
			"Awards",
			"Meeting Close",
		},
		ThemePrefix: DefaultThemePrefix,
	}
}
