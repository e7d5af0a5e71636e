package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is what hrxctl keeps between runs.
type Profile struct {
	BaseURL      string `yaml:"base_url,omitempty"`
	AccessToken  string `yaml:"access_token,omitempty"`
	RefreshToken string `yaml:"refresh_token,omitempty"`
	User         *User  `yaml:"user,omitempty"`
	Theme        Theme  `yaml:"theme,omitempty"`
}

// DefaultProfilePath is <user config dir>/hrx/profile.yaml.
func DefaultProfilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user config directory: %w", err)
	}
	return filepath.Join(dir, "hrx", "profile.yaml"), nil
}

// LoadProfile reads path. A missing file yields an empty profile.
func LoadProfile(path string) (Profile, error) {
	var p Profile
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("failed to read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return p, nil
}

// SaveProfile writes p readable only by the owner since it holds tokens.
func SaveProfile(path string, p Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// ProfileFrom captures the persisted parts of s.
func ProfileFrom(s State, baseURL, accessToken, refreshToken string) Profile {
	p := Profile{BaseURL: baseURL, Theme: s.Theme}
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		p.User = &u
		p.AccessToken = accessToken
		p.RefreshToken = refreshToken
	}
	return p
}
