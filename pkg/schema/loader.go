package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type documentFile struct {
	Forms map[string]formFile `json:"forms" yaml:"forms"`
}

type formFile struct {
	Title        string       `json:"title" yaml:"title"`
	Description  string       `json:"description" yaml:"description"`
	Fields       []Field      `json:"fields" yaml:"fields"`
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies"`
}

// LoadFile reads a single JSON or YAML schema document from disk.
func LoadFile(path string) (*Store, error) {
	src := SourceFromFile(path)
	data, err := os.ReadFile(src.Location)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", src.Location, err)
	}
	doc, err := NewDocument(src, data)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", src.Location, err)
	}
	forms, err := Parse(doc)
	if err != nil {
		return nil, err
	}
	return NewStore(forms...), nil
}

// LoadFS walks the provided filesystem and parses every JSON/YAML schema file.
// When fsys is nil or holds no schema files, the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := NewStore()
	if fsys == nil {
		return store, nil
	}

	origins := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}
		doc, err := NewDocument(SourceFromFS(path), data)
		if err != nil {
			return fmt.Errorf("schema: %s: %w", path, err)
		}

		forms, err := Parse(doc)
		if err != nil {
			return err
		}
		for _, form := range forms {
			if previous, exists := origins[form.ID]; exists {
				return fmt.Errorf("schema: duplicate form %q (files %s and %s)", form.ID, previous, path)
			}
			origins[form.ID] = path
			store.forms[form.ID] = form
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes a schema document and validates every form it declares. Forms
// are returned sorted by identifier.
func Parse(doc Document) ([]Form, error) {
	raw := doc.Raw()
	source := doc.Location()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("schema: file %s is empty", source)
	}

	var file documentFile
	if err := json.Unmarshal(raw, &file); err != nil {
		file = documentFile{}
		if yamlErr := yaml.Unmarshal(raw, &file); yamlErr != nil {
			return nil, fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", source, yamlErr)
		}
	}
	if len(file.Forms) == 0 {
		return nil, fmt.Errorf("schema: file %s declares no forms", source)
	}

	ids := make([]string, 0, len(file.Forms))
	for id := range file.Forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	forms := make([]Form, 0, len(ids))
	for _, rawID := range ids {
		id := strings.TrimSpace(rawID)
		if id == "" {
			return nil, fmt.Errorf("schema: file %s defines an empty form id", source)
		}
		entry := file.Forms[rawID]
		form := Form{
			ID:           id,
			Title:        entry.Title,
			Description:  entry.Description,
			Fields:       entry.Fields,
			Dependencies: entry.Dependencies,
		}
		if err := Validate(form); err != nil {
			return nil, fmt.Errorf("%w (file %s)", err, source)
		}
		forms = append(forms, form)
	}
	return forms, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
