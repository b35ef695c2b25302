package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"homebook/internal/apperr"
)

// Load reads the settings document into the file tier. A missing file
// is not an error (first start); a malformed one is a Config error.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return apperr.Config("read settings "+s.path, err)
	}

	// Values are strings or null; null clears the override.
	var doc map[string]*string
	if err := json.Unmarshal(data, &doc); err != nil {
		return apperr.Config("parse settings "+s.path, err)
	}

	s.muKnown.Lock()
	s.muFree.Lock()
	defer s.muFree.Unlock()
	defer s.muKnown.Unlock()

	fileKeys := make(map[string]bool)
	for _, desc := range known {
		if desc.FileKey != "" {
			fileKeys[desc.FileKey] = true
		}
	}
	for key, value := range doc {
		if value == nil {
			continue
		}
		if fileKeys[key] {
			s.file[key] = *value
		} else {
			s.free[key] = *value
		}
	}
	return nil
}

// SaveFile serialises the union of both tiers back to the settings
// document. The file is rewritten atomically: write a sibling temp
// file, then rename over the target.
func (s *Store) SaveFile() error {
	doc := make(map[string]*string)

	s.muKnown.RLock()
	for key, value := range s.file {
		v := value
		doc[key] = &v
	}
	s.muKnown.RUnlock()

	s.muFree.RLock()
	for key, value := range s.free {
		v := value
		doc[key] = &v
	}
	s.muFree.RUnlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperr.Config("encode settings", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".homebook-settings-*")
	if err != nil {
		return apperr.Config("create temp settings", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperr.Config("write temp settings", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperr.Config("close temp settings", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperr.Config(fmt.Sprintf("replace settings %s", s.path), err)
	}
	return nil
}

// DefaultSettingsPath returns the dotfile under the user's home.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".homebook.json"
	}
	return filepath.Join(home, ".homebook.json")
}

// DefaultDatabasePath returns the database file under the user's home.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "homebook.db"
	}
	return filepath.Join(home, "homebook.db")
}
