package prefs

// DefaultTheme is the theme applied when none is stored.
const DefaultTheme = "default.json"

// ThemeOption is a site theme the host can apply, identified by its theme file.
type ThemeOption struct {
	File string
	Name string
}

// Themes lists the site themes in the order the host presents them.
var Themes = []ThemeOption{
	{File: "default.json", Name: "Default Theme"},
	{File: "draconic.json", Name: "Draconic Purple Theme"},
	{File: "light.json", Name: "Default Light Theme"},
	{File: "skylea.json", Name: "sky.lea.moe"},
	{File: "nightblue.json", Name: "Night Blue Theme"},
	{File: "sunrise.json", Name: "Sunrise Orange Theme"},
	{File: "burning-cinnabar.json", Name: "Burning Cinnabar Theme"},
	{File: "candycane.json", Name: "Candy Cane Theme"},
	{File: "april-fools-2024.json", Name: "April Fools 2024 Theme"},
}

// IsTheme reports whether id is a known theme file.
func IsTheme(id string) bool {
	for _, t := range Themes {
		if t.File == id {
			return true
		}
	}
	return false
}

// ThemeName returns the display name for id, or id itself when unknown.
func ThemeName(id string) string {
	for _, t := range Themes {
		if t.File == id {
			return t.Name
		}
	}
	return id
}

// NextTheme returns the theme after id in presentation order, wrapping around.
// Unknown ids move to the first theme.
func NextTheme(id string) string {
	for i, t := range Themes {
		if t.File == id {
			return Themes[(i+1)%len(Themes)].File
		}
	}
	return Themes[0].File
}
