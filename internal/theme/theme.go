// Package theme はライト/ダークの切り替えを保存する（永続化するのはこれだけ）
package theme

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

type prefs struct {
	DarkMode bool `yaml:"dark_mode"`
}

// Storeはテーマフラグをyamlファイルに持つ
type Store struct {
	path string

	mu   sync.Mutex
	dark bool
}

// Openはファイルが無ければライトで始める
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var p prefs
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	s.dark = p.DarkMode
	return s, nil
}

func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dark {
		return Dark
	}
	return Light
}

// Toggleは切り替えて保存する。保存に失敗したら元に戻す
func (s *Store) Toggle() (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dark = !s.dark
	if err := s.save(); err != nil {
		s.dark = !s.dark
		return s.modeLocked(), err
	}
	return s.modeLocked(), nil
}

func (s *Store) modeLocked() Mode {
	if s.dark {
		return Dark
	}
	return Light
}

func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	b, err := yaml.Marshal(prefs{DarkMode: s.dark})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
