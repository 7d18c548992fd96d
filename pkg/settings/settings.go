// Package settings manages persistent user settings for the freightline CLIs.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings holds persistent user preferences
type Settings struct {
	// UTSFDir overrides the default serviceability file directory
	UTSFDir string `json:"utsf_dir,omitempty"`

	// PincodeFile overrides the default master pincode catalog path
	PincodeFile string `json:"pincode_file,omitempty"`

	// Editor is recorded against control-plane changes when --editor is
	// not given
	Editor string `json:"editor,omitempty"`

	// AuditLog overrides the default operations trail path
	AuditLog string `json:"audit_log,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "freightline_settings.json"
	}
	return filepath.Join(home, ".freightline", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetUTSFDir returns the serviceability directory (with fallback)
func (s *Settings) GetUTSFDir() string {
	if s.UTSFDir != "" {
		return s.UTSFDir
	}
	return "/var/lib/freightline/utsf"
}

// GetPincodeFile returns the master pincode catalog path (with fallback)
func (s *Settings) GetPincodeFile() string {
	if s.PincodeFile != "" {
		return s.PincodeFile
	}
	return "/var/lib/freightline/pincodes.json"
}

// SetEditor sets the recorded editor identity
func (s *Settings) SetEditor(editor string) {
	s.Editor = editor
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
