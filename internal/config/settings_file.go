package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings mirrors the user-editable settings file.
type Settings struct {
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	FullHD        bool   `yaml:"full_hd"`
	PlayFromStart bool   `yaml:"play_from_start"`
}

// LoadSettings reads the YAML settings file. A missing file yields zero settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}
