package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSettings_Defaults(t *testing.T) {
	s := &Settings{}

	if got := s.GetUTSFDir(); got != "/var/lib/freightline/utsf" {
		t.Errorf("GetUTSFDir() default = %q", got)
	}
	if got := s.GetPincodeFile(); got != "/var/lib/freightline/pincodes.json" {
		t.Errorf("GetPincodeFile() default = %q", got)
	}
	if s.Editor != "" {
		t.Errorf("Editor should be empty, got %q", s.Editor)
	}
}

func TestSettings_Overrides(t *testing.T) {
	s := &Settings{UTSFDir: "/custom/utsf", PincodeFile: "/custom/pins.json"}

	if s.GetUTSFDir() != "/custom/utsf" {
		t.Errorf("GetUTSFDir() = %q", s.GetUTSFDir())
	}
	if s.GetPincodeFile() != "/custom/pins.json" {
		t.Errorf("GetPincodeFile() = %q", s.GetPincodeFile())
	}

	s.SetEditor("ops-team")
	if s.Editor != "ops-team" {
		t.Errorf("SetEditor() failed, got %q", s.Editor)
	}
}

func TestSettings_Clear(t *testing.T) {
	s := &Settings{UTSFDir: "/x", PincodeFile: "/y", Editor: "z", AuditLog: "/w"}

	s.Clear()

	if s.UTSFDir != "" || s.PincodeFile != "" || s.Editor != "" || s.AuditLog != "" {
		t.Error("Clear() should reset all fields to empty")
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	original := &Settings{
		UTSFDir:     "/data/utsf",
		PincodeFile: "/data/pincodes.json",
		Editor:      "alice",
		AuditLog:    "/var/log/freightline/ops.log",
	}

	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if *loaded != *original {
		t.Errorf("loaded = %+v, want %+v", loaded, original)
	}
}

func TestSettings_LoadNonExistent(t *testing.T) {
	s, err := LoadFrom("/nonexistent/path/settings.json")
	if err != nil {
		t.Fatalf("LoadFrom() non-existent should not error: %v", err)
	}
	if s == nil || s.UTSFDir != "" {
		t.Error("LoadFrom() non-existent should return empty settings")
	}
}

func TestSettings_LoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{bad json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() invalid JSON should error")
	}
}
