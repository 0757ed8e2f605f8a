package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alimgiray/mailscope/internal/repositories"
)

const outputDirectoryKey = "output_directory"

// SettingsService manages the configurable output directory where result
// files are written. Invalid or unset configuration falls back to a default
// directory rather than failing.
type SettingsService struct {
	settingsRepo *repositories.SettingsRepository
	defaultDir   string
}

func NewSettingsService(settingsRepo *repositories.SettingsRepository, defaultDir string) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		defaultDir:   defaultDir,
	}
}

// ValidateDirectory checks that a directory path is usable for saving files:
// it can be created if missing and is writable. The returned path is absolute
// with ~ expanded.
func (s *SettingsService) ValidateDirectory(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("directory path is empty")
	}

	// Expand ~ to the user home directory
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	// Probe writability with a throwaway file
	probe := filepath.Join(absPath, ".write_test")
	f, err := os.Create(probe)
	if err != nil {
		return "", fmt.Errorf("directory is not writable: %w", err)
	}
	f.Close()
	os.Remove(probe)

	return absPath, nil
}

// GetOutputDirectory returns the configured output directory, falling back
// to the default when unset or no longer valid
func (s *SettingsService) GetOutputDirectory() string {
	path, err := s.settingsRepo.Get(outputDirectoryKey)
	if err == nil && path != "" {
		if validated, err := s.ValidateDirectory(path); err == nil {
			return validated
		}
	}

	if validated, err := s.ValidateDirectory(s.defaultDir); err == nil {
		return validated
	}
	return s.defaultDir
}

// SetOutputDirectory validates and persists a new output directory,
// returning the normalized absolute path
func (s *SettingsService) SetOutputDirectory(path string) (string, error) {
	absPath, err := s.ValidateDirectory(path)
	if err != nil {
		return "", err
	}

	if err := s.settingsRepo.Set(outputDirectoryKey, absPath); err != nil {
		return "", err
	}

	return absPath, nil
}
