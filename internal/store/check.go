package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Diff lists the dotted keys that exist in only one of two config files.
type Diff struct {
	Base        string
	Comp        string
	MissingComp []string // in base, not in comp
	ExtraComp   []string // in comp, not in base
}

// Equivalent is true when both files define the same set of keys.
func (d Diff) Equivalent() bool {
	return len(d.MissingComp) == 0 && len(d.ExtraComp) == 0
}

// LocalPath returns the conventional local override path for a tracked
// config file: config.yaml -> config_local.yaml.
func LocalPath(base string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_local" + ext
}

// CompareFiles checks that a tracked config and its local copy define the same keys.
// When comp is empty the local path of base is used.
func CompareFiles(base, comp string) (Diff, error) {
	if comp == "" {
		comp = LocalPath(base)
	}
	d := Diff{Base: base, Comp: comp}

	baseKeys, err := fileKeys(base)
	if err != nil {
		return d, fmt.Errorf("--base=%s: %w", base, err)
	}
	compKeys, err := fileKeys(comp)
	if err != nil {
		return d, fmt.Errorf("--comp=%s: %w", comp, err)
	}

	for k := range baseKeys {
		if !compKeys[k] {
			d.MissingComp = append(d.MissingComp, k)
		}
	}
	for k := range compKeys {
		if !baseKeys[k] {
			d.ExtraComp = append(d.ExtraComp, k)
		}
	}
	sort.Strings(d.MissingComp)
	sort.Strings(d.ExtraComp)
	return d, nil
}

func fileKeys(path string) (map[string]bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	keys := map[string]bool{}
	flatten("", doc, keys)
	return keys, nil
}

func flatten(prefix string, node map[string]any, out map[string]bool) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok && len(child) > 0 {
			flatten(key, child, out)
			continue
		}
		out[key] = true
	}
}
