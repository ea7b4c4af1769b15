package reference

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nutrigrade/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a reference table file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the file format from the extension, defaulting to JSON
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates the reference table at path.
// Every failure is a *LoadError; the table is fatal configuration and callers should not continue without it.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Index: -1, Err: err}
	}

	table, err := Parse(data, FormatFromPath(path))
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Source = path
		}
		return nil, err
	}

	log.Printf("[REFERENCE] Loaded %d additives from %s", table.Len(), path)
	return table, nil
}

// Parse decodes reference table bytes in the given format
func Parse(data []byte, format Format) (*Table, error) {
	records, err := decode(data, format)
	if err != nil {
		return nil, &LoadError{Index: -1, Reason: fmt.Sprintf("malformed %s", format), Err: err}
	}
	return NewTable(records)
}

func decode(data []byte, format Format) ([]domain.AdditiveRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}

	var (
		records []domain.AdditiveRecord
		err     error
	)
	switch format {
	case FormatYAML:
		records, err = decodeYAML(trimmed)
	default:
		records, err = decodeJSON(trimmed)
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, errors.New("no additive records")
	}
	return records, nil
}

// decodeJSON accepts a bare record list or the wrapper object {"additives": [...]}
func decodeJSON(data []byte) ([]domain.AdditiveRecord, error) {
	if data[0] != '{' {
		var records []domain.AdditiveRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	for key := range wrapped {
		if key != "additives" {
			return nil, fmt.Errorf("unknown key %q", key)
		}
	}
	list, ok := wrapped["additives"]
	if !ok || bytes.Equal(bytes.TrimSpace(list), []byte("null")) {
		return nil, errors.New(`missing "additives" list`)
	}

	var records []domain.AdditiveRecord
	if err := json.Unmarshal(list, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeYAML(data []byte) ([]domain.AdditiveRecord, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, errors.New("empty document")
	}

	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		var records []domain.AdditiveRecord
		if err := root.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var list *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		if key != "additives" {
			return nil, fmt.Errorf("line %d: unknown key %q", root.Content[i].Line, key)
		}
		list = root.Content[i+1]
	}
	if list == nil || list.Tag == "!!null" {
		return nil, errors.New(`missing "additives" list`)
	}

	var records []domain.AdditiveRecord
	if err := list.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}
