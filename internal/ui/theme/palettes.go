package theme

// Accent colors of the stats site themes, keyed by theme file.
var sitePalettes = map[string]palette{
	"default.json":          newPalette("#0bda51", "#4fc3f7", "#ffd54f"),
	"draconic.json":         newPalette("#a447ef", "#d18cff", "#f0c3ff"),
	"light.json":            newPalette("#128c3e", "#0277bd", "#b26a00"),
	"skylea.json":           newPalette("#ff9f1c", "#57a5ff", "#ffe08a"),
	"nightblue.json":        newPalette("#3f72ff", "#8fb3ff", "#c9d8ff"),
	"sunrise.json":          newPalette("#f97b22", "#ffb347", "#ffd8a8"),
	"burning-cinnabar.json": newPalette("#e34234", "#ff8a65", "#ffcc80"),
	"candycane.json":        newPalette("#e0245e", "#2bb673", "#ffffff"),
	"april-fools-2024.json": newPalette("#ff4fd8", "#00e5ff", "#fff700"),
}
