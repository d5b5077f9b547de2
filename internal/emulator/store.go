package emulator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrNetworkNotFound = errors.New("network not found")
	ErrAmbiguousID     = errors.New("ambiguous network id")
)

// Store keeps one JSON record per running network.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) Save(n *Network) error {
	if n.ID == "" {
		return fmt.Errorf("save network: empty id")
	}

	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fmt.Errorf("encode network %s: %w", n.ID, err)
	}
	return os.WriteFile(s.path(n.ID), data, 0644)
}

func (s *Store) FindByID(id string) (*Network, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNetworkNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var n Network
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode network %s: %w", id, err)
	}
	return &n, nil
}

// Find resolves a full ID or a unique ID prefix.
func (s *Store) Find(target string) (*Network, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNetworkNotFound)
	}

	networks, err := s.List()
	if err != nil {
		return nil, err
	}

	var match *Network
	for _, n := range networks {
		if n.ID == target {
			return n, nil
		}
		if !strings.HasPrefix(n.ID, target) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, target)
		}
		match = n
	}

	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNetworkNotFound, target)
	}
	return match, nil
}

// List returns every stored network ordered by creation time. Unreadable
// records are skipped.
func (s *Store) List() ([]*Network, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var networks []*Network
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}

		n, err := s.FindByID(strings.TrimSuffix(file.Name(), ".json"))
		if err == nil {
			networks = append(networks, n)
		}
	}

	sort.Slice(networks, func(i, j int) bool {
		if networks[i].CreatedAt != networks[j].CreatedAt {
			return networks[i].CreatedAt < networks[j].CreatedAt
		}
		return networks[i].ID < networks[j].ID
	})
	return networks, nil
}

func (s *Store) Delete(id string) error {
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNetworkNotFound, id)
	}
	return err
}
