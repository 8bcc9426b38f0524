package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lukasreiter/quorum/internal/models"
	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML shape of a user catalog file. Either section may
// be empty.
type catalogFile struct {
	Personas []models.Participant `yaml:"personas"`
	Councils []models.Council     `yaml:"councils"`
}

// LoadDir builds a catalog from the built-in records plus every *.yaml /
// *.yml file in dir, applied in filename order. Later records override
// earlier ones with the same id. An empty dir path returns the built-in
// catalog unchanged. A malformed record fails the whole load.
func LoadDir(dir string) (*Static, error) {
	s := Default()
	if dir == "" {
		return s, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog file %s: %w", name, err)
		}
		if err := s.mergeYAML(data); err != nil {
			return nil, fmt.Errorf("catalog file %s: %w", name, err)
		}
	}
	return s, nil
}

// mergeYAML parses one catalog file and applies its records.
func (s *Static) mergeYAML(data []byte) error {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	for _, p := range file.Personas {
		if err := s.addParticipant(p); err != nil {
			return err
		}
	}
	for _, c := range file.Councils {
		if err := s.addCouncil(c); err != nil {
			return err
		}
	}
	return nil
}
