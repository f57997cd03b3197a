package features

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of a user flag catalog:
//
//	flags:
//	  - name: dark_minimap
//	    title: Dark minimap
//	    description: Render the minimap with the dark palette
//	    default: false
type catalogFile struct {
	Flags []Feature `yaml:"flags"`
}

// LoadCatalog reads extra feature definitions from a YAML file. A relative
// path is resolved against baseDir. A missing file is not an error.
func LoadCatalog(path, baseDir string) ([]Feature, error) {
	if path == "" {
		return nil, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading flag catalog: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing flag catalog %s: %w", path, err)
	}

	seen := make(map[string]bool, len(cf.Flags))
	out := make([]Feature, 0, len(cf.Flags))
	for i, f := range cf.Flags {
		if f.Name == "" {
			return nil, fmt.Errorf("flag catalog %s: entry %d has no name", path, i)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("flag catalog %s: duplicate flag %q", path, f.Name)
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	return out, nil
}
