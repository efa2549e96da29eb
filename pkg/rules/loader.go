package rules

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type documentFile struct {
	Rules map[string][]Rule `json:"rules" yaml:"rules"`
}

// Load parses a JSON or YAML rule document. Both a top-level "rules" object
// and a bare path-to-rules mapping are accepted. source names the document in
// error messages.
func Load(data []byte, source string) (Set, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("rules: file %s is empty", source)
	}

	raw, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}

	set := make(Set, len(raw))
	for key, list := range raw {
		path := strings.TrimSpace(key)
		if path == "" {
			return nil, fmt.Errorf("rules: file %s defines rules for an empty path", source)
		}
		if _, exists := set[path]; exists {
			return nil, fmt.Errorf("rules: file %s defines duplicate path %q", source, path)
		}
		for idx, rule := range list {
			if err := checkRule(rule); err != nil {
				return nil, fmt.Errorf("rules: file %s path %q rule %d: %w", source, path, idx, err)
			}
		}
		set[path] = append([]Rule(nil), list...)
	}
	return set, nil
}

// LoadFile reads and parses a rule document from disk.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	return Load(data, path)
}

// LoadFS walks fsys and merges every JSON/YAML document into one Set. Files
// are visited in lexical order; a path defined by two files is an error.
func LoadFS(fsys fs.FS) (Set, error) {
	set := make(Set)
	if fsys == nil {
		return set, nil
	}

	var files []string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isRuleFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	origin := make(map[string]string)
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("rules: read %s: %w", file, err)
		}
		parsed, err := Load(data, file)
		if err != nil {
			return nil, err
		}
		for key, list := range parsed {
			if prev, exists := origin[key]; exists {
				return nil, fmt.Errorf("rules: duplicate path %q (files %s and %s)", key, prev, file)
			}
			origin[key] = file
			set[key] = list
		}
	}
	return set, nil
}

func parseDocument(data []byte, source string) (map[string][]Rule, error) {
	var doc documentFile
	if err := json.Unmarshal(data, &doc); err == nil && doc.Rules != nil {
		return doc.Rules, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil && doc.Rules != nil {
		return doc.Rules, nil
	}

	var bare map[string][]Rule
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}
	if err := yaml.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	return nil, fmt.Errorf("rules: parse %s: invalid JSON or YAML", source)
}

func checkRule(rule Rule) error {
	if !rule.Type.Valid() {
		return fmt.Errorf("unknown type %q", rule.Type)
	}
	for _, trigger := range rule.Trigger {
		if trigger != TriggerChange && trigger != TriggerBlur {
			return fmt.Errorf("unknown trigger %q", trigger)
		}
	}
	if rule.Pattern != "" {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
	}
	if rule.Min != nil && rule.Max != nil && *rule.Min > *rule.Max {
		return fmt.Errorf("min %v exceeds max %v", *rule.Min, *rule.Max)
	}
	if rule.Type == TypeEnum && len(rule.Enum) == 0 {
		return fmt.Errorf("enum type requires enum values")
	}
	return nil
}

func isRuleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
