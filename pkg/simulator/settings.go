package simulator

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Settings is the simulator's key/value configuration. Keys keep their
// original FIXimulator names for config compatibility; per-session sections
// carry OnBehalfOfCompID / OnBehalfOfSubID.
//
// Mutations persist via Save, which writes the map back to the path it was
// loaded from.
type Settings struct {
	mu       sync.RWMutex
	path     string
	values   map[string]string
	sessions map[string]map[string]string
}

type settingsFile struct {
	Settings map[string]any            `yaml:"settings"`
	Sessions map[string]map[string]any `yaml:"sessions"`
}

// NewSettings returns an empty settings map, useful for tests and for
// running with pure defaults.
func NewSettings() *Settings {
	return &Settings{
		values:   make(map[string]string),
		sessions: make(map[string]map[string]string),
	}
}

// LoadSettings reads the settings file, expanding environment variables
// before parsing.
func LoadSettings(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		zap.S().Errorf("failed to load settings file %s: %v", path, err)
		return nil, err
	}
	raw = []byte(os.ExpandEnv(string(raw)))

	var file settingsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		zap.S().Errorf("failed to parse settings file %s: %v", path, err)
		return nil, err
	}

	s := NewSettings()
	s.path = path
	for k, v := range file.Settings {
		s.values[k] = fmt.Sprint(v)
	}
	for session, kv := range file.Sessions {
		m := make(map[string]string, len(kv))
		for k, v := range kv {
			m[k] = fmt.Sprint(v)
		}
		s.sessions[session] = m
	}
	return s, nil
}

// Save writes the settings back to their file.
func (s *Settings) Save() error {
	s.mu.RLock()
	file := settingsFile{
		Settings: make(map[string]any, len(s.values)),
		Sessions: make(map[string]map[string]any, len(s.sessions)),
	}
	for k, v := range s.values {
		file.Settings[k] = v
	}
	for session, kv := range s.sessions {
		m := make(map[string]any, len(kv))
		for k, v := range kv {
			m[k] = v
		}
		file.Sessions[session] = m
	}
	path := s.path
	s.mu.RUnlock()

	if path == "" {
		return nil
	}
	raw, err := yaml.Marshal(&file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func (s *Settings) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *Settings) GetString(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetBool returns the key as a boolean, or fallback when absent or
// malformed. "Y"/"N" are accepted alongside the usual spellings.
func (s *Settings) GetBool(key string, fallback bool) bool {
	v, ok := s.GetString(key)
	if !ok {
		return fallback
	}
	switch v {
	case "Y", "y":
		return true
	case "N", "n":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// GetInt returns the key as an integer, or fallback when absent or
// malformed.
func (s *Settings) GetInt(key string, fallback int) int {
	v, ok := s.GetString(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// SessionString returns a per-session value such as OnBehalfOfCompID.
func (s *Settings) SessionString(sessionID, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kv, ok := s.sessions[sessionID]
	if !ok {
		return "", false
	}
	v, ok := kv[key]
	return v, ok
}

// SetSessionString sets a per-session value.
func (s *Settings) SetSessionString(sessionID, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kv, ok := s.sessions[sessionID]
	if !ok {
		kv = make(map[string]string)
		s.sessions[sessionID] = kv
	}
	kv[key] = value
}
