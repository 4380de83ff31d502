package profiles

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

// DefaultCatalogue returns the built-in candidate set.
func DefaultCatalogue() ([]model.Candidate, error) {
	return ParseCatalogue(defaultCatalogue)
}

// LoadCatalogueFile reads a YAML candidate list; an empty path yields the
// built-in set.
func LoadCatalogueFile(path string) ([]model.Candidate, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalogue()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue %s: %w", path, err)
	}
	return ParseCatalogue(raw)
}

func ParseCatalogue(raw []byte) ([]model.Candidate, error) {
	var out []model.Candidate
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}

	seen := make(map[string]struct{}, len(out))
	for i, c := range out {
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("catalogue entry %d: id is required", i)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("catalogue entry %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = struct{}{}
		if len(c.Photos) == 0 {
			return nil, fmt.Errorf("catalogue entry %q: at least one photo is required", c.ID)
		}
	}
	return out, nil
}
