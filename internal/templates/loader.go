package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TemplateError reports a malformed or invalid repository template. It is
// fatal and always surfaced before any live write.
type TemplateError struct {
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// LoadPermissionSets reads every JSON file in dir, each a single
// permission set object, and returns the templates in file discovery order.
// Malformed JSON fails with a path-and-offset diagnostic.
func LoadPermissionSets(dir string) ([]PermissionSet, error) {
	paths, err := jsonFiles(dir)
	if err != nil {
		return nil, err
	}

	sets := make([]PermissionSet, 0, len(paths))
	for _, path := range paths {
		var ps PermissionSet
		if err := decodeFile(path, &ps); err != nil {
			return nil, err
		}
		sets = append(sets, ps)
	}
	return sets, nil
}

// LoadAssignments reads every JSON file in dir, each an object
// {"Assignments": [...]}, and returns the flattened assignment list
// preserving file discovery order.
func LoadAssignments(dir string) ([]Assignment, error) {
	paths, err := jsonFiles(dir)
	if err != nil {
		return nil, err
	}

	var assignments []Assignment
	for _, path := range paths {
		var doc struct {
			Assignments []Assignment `json:"Assignments"`
		}
		if err := decodeFile(path, &doc); err != nil {
			return nil, err
		}
		assignments = append(assignments, doc.Assignments...)
	}
	return assignments, nil
}

// jsonFiles lists the .json files in dir in lexical order, which is the file
// discovery order the loaders guarantee.
func jsonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &TemplateError{Path: dir, Err: err}
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// decodeFile unmarshals one template file into v, converting syntax errors
// into path-and-offset diagnostics.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &TemplateError{Path: path, Err: err}
	}

	if err := json.Unmarshal(data, v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return &TemplateError{
				Path: path,
				Err:  fmt.Errorf("invalid JSON at offset %d: %w", syntaxErr.Offset, err),
			}
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &TemplateError{
				Path: path,
				Err:  fmt.Errorf("invalid value at offset %d: %w", typeErr.Offset, err),
			}
		}
		return &TemplateError{Path: path, Err: err}
	}
	return nil
}
