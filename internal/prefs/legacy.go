package prefs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "skycryptplus/internal/errors"
)

// LegacyDirs returns the directories earlier releases stored config.json in,
// most recent first: %APPDATA%, the Linux/macOS fallbacks used alongside it,
// and the Documents folder of the first releases.
func LegacyDirs() []string {
	var dirs []string
	if appData := os.Getenv("APPDATA"); appData != "" {
		dirs = append(dirs, filepath.Join(appData, AppDirName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".local", "share", AppDirName),
			filepath.Join(home, "Library", "Preferences", AppDirName),
			filepath.Join(home, "Documents", AppDirName),
		)
	}
	return dirs
}

// ImportLegacy copies a document from a legacy location into the canonical
// one when the canonical file does not exist yet. The legacy file is left
// untouched. It reports whether a document was imported.
func (s *Store) ImportLegacy() (bool, error) {
	if _, err := os.Stat(s.Path()); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		wrapped := apperrors.New(apperrors.CodeConfigurationError, "stat "+s.Path(), err)
		s.log.Errorf("Error checking config before legacy import: %v", wrapped)
		return false, wrapped
	}

	for _, dir := range s.legacyDirs {
		path := filepath.Join(dir, FileName)
		if filepath.Clean(path) == filepath.Clean(s.Path()) {
			continue
		}
		//nolint:gosec // G304: Path is one of the fixed legacy config locations
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		doc, err := s.decode(data)
		if err != nil {
			s.log.Warnf("Skipping unusable legacy config %s: %v", path, err)
			continue
		}
		if err := s.save(doc); err != nil {
			s.log.Errorf("Error importing legacy config %s: %v", path, err)
			return false, err
		}
		s.log.Infof("Imported config from %s into %s", path, s.Path())
		return true, nil
	}
	return false, nil
}
