package prefs

import (
	"strings"

	apperrors "skycryptplus/internal/errors"
)

// AddSavedProfile appends a player/profile pair to the saved list. It
// reports false without error when the pair is already saved.
func (s *Store) AddSavedProfile(player, profile, display string) (bool, error) {
	entry := SavedProfile{
		PlayerName:  strings.TrimSpace(player),
		ProfileName: strings.TrimSpace(profile),
		DisplayName: strings.TrimSpace(display),
	}
	if entry.DisplayName == "" {
		entry.DisplayName = entry.PlayerName + " - " + entry.ProfileName
	}
	if err := s.validator.validateProfile(entry); err != nil {
		s.log.Errorf("Error adding saved profile: %v", err)
		return false, err
	}

	added := false
	err := s.update(func(doc *Document) error {
		profiles := doc.Profiles()
		for _, p := range profiles {
			if p.Matches(entry.PlayerName, entry.ProfileName) {
				return nil
			}
		}
		doc.SavedProfiles = append(profiles, entry)
		added = true
		return nil
	})
	if err != nil {
		s.log.Errorf("Error adding saved profile: %v", err)
		return false, err
	}
	if !added {
		s.log.Infof("Profile %s/%s already exists", entry.PlayerName, entry.ProfileName)
	}
	return added, nil
}

// RemoveSavedProfile drops a pair from the saved list. The last saved
// profile cannot be removed. Removing the active profile makes the first
// remaining one active.
func (s *Store) RemoveSavedProfile(player, profile string) (bool, error) {
	removed := false
	err := s.update(func(doc *Document) error {
		profiles := doc.Profiles()
		kept := make([]SavedProfile, 0, len(profiles))
		for _, p := range profiles {
			if !p.Matches(player, profile) {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(profiles) {
			return apperrors.New(apperrors.CodeNotFound, "profile "+player+"/"+profile+" is not saved", nil)
		}
		if len(kept) == 0 {
			return apperrors.Validation("cannot remove the last saved profile",
				map[string]string{keySavedProfiles: "must keep at least one profile"})
		}
		if doc.PlayerName == player && doc.DefaultProfile == profile {
			doc.PlayerName = kept[0].PlayerName
			doc.DefaultProfile = kept[0].ProfileName
		}
		doc.SavedProfiles = kept
		removed = true
		return nil
	})
	if err != nil {
		s.log.Errorf("Error removing saved profile: %v", err)
		return false, err
	}
	return removed, nil
}

// SwitchProfile makes a saved pair the active player/profile.
func (s *Store) SwitchProfile(player, profile string) (bool, error) {
	err := s.update(func(doc *Document) error {
		profiles := doc.Profiles()
		for _, p := range profiles {
			if p.Matches(player, profile) {
				doc.PlayerName = p.PlayerName
				doc.DefaultProfile = p.ProfileName
				doc.SavedProfiles = profiles
				return nil
			}
		}
		return apperrors.New(apperrors.CodeNotFound, "profile "+player+"/"+profile+" not found in saved profiles", nil)
	})
	if err != nil {
		s.log.Errorf("Error switching profile: %v", err)
		return false, err
	}
	return true, nil
}
