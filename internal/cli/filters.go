package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bastiangx/wordhunt/pkg/filters"
)

// filterFlags are the command line shortcuts for the common filters. Anything else
// goes through --filters, a YAML, JSON or TOML file holding a full filter spec.
type filterFlags struct {
	file       string
	minLength  int
	maxLength  int
	startsWith string
	endsWith   string
	contains   string
	excludes   string
	rarityMin  float64
	difficulty string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.file, "filters", "", "filter spec file (.yaml, .json or .toml)")
	fs.IntVar(&f.minLength, "min-length", 0, "minimum word length")
	fs.IntVar(&f.maxLength, "max-length", 0, "maximum word length")
	fs.StringVar(&f.startsWith, "starts-with", "", "required prefix")
	fs.StringVar(&f.endsWith, "ends-with", "", "required suffix")
	fs.StringVar(&f.contains, "contains", "", "required substring")
	fs.StringVar(&f.excludes, "excludes", "", "letters that must not appear")
	fs.Float64Var(&f.rarityMin, "rarity", 0, "minimum rarity score (hyper mode)")
	fs.StringVar(&f.difficulty, "difficulty", "", "pronunciation difficulty: easy, medium, hard or any (hyper mode)")
}

var filterFlagNames = []string{
	"filters", "min-length", "max-length", "starts-with", "ends-with",
	"contains", "excludes", "rarity", "difficulty",
}

// set reports whether any filter flag was given.
func (f *filterFlags) set(cmd *cobra.Command) bool {
	for _, name := range filterFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// spec reads the file, if any, and lays the flags over it.
func (f *filterFlags) spec(cmd *cobra.Command) (filters.Spec, error) {
	var spec filters.Spec
	if f.file != "" {
		loaded, err := loadSpec(f.file)
		if err != nil {
			return spec, err
		}
		spec = loaded
	}

	changed := cmd.Flags().Changed
	if changed("min-length") || changed("max-length") {
		length := filters.Length{Min: filters.DefaultMinLength, Max: filters.DefaultMaxLength}
		if spec.Length != nil {
			length = *spec.Length
		}
		if changed("min-length") {
			length.Min = f.minLength
		}
		if changed("max-length") {
			length.Max = f.maxLength
		}
		spec.Length = &length
	}

	if f.startsWith != "" || f.endsWith != "" || f.contains != "" || f.excludes != "" {
		var p filters.Pattern
		if spec.Pattern != nil {
			p = *spec.Pattern
		}
		if f.startsWith != "" {
			p.StartsWith = f.startsWith
		}
		if f.endsWith != "" {
			p.EndsWith = f.endsWith
		}
		if f.contains != "" {
			p.Contains = f.contains
		}
		if f.excludes != "" {
			p.Excludes = f.excludes
		}
		spec.Pattern = &p
	}

	if changed("rarity") {
		r := filters.Range{Min: f.rarityMin, Max: 1}
		if spec.Rarity != nil {
			r.Max = spec.Rarity.Max
		}
		spec.Rarity = &r
	}
	if f.difficulty != "" {
		p := filters.Pronunciation{}
		if spec.Pronunciation != nil {
			p = *spec.Pronunciation
		}
		p.Difficulty = f.difficulty
		spec.Pronunciation = &p
	}
	return spec, nil
}

// loadSpec decodes a filter spec file by extension.
func loadSpec(path string) (filters.Spec, error) {
	var spec filters.Spec
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("failed to read filters: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &spec)
	case ".json":
		err = json.Unmarshal(data, &spec)
	case ".toml":
		err = toml.Unmarshal(data, &spec)
	default:
		return spec, fmt.Errorf("unsupported filter file %s: use .yaml, .json or .toml", path)
	}
	if err != nil {
		return spec, fmt.Errorf("failed to parse filters %s: %w", path, err)
	}
	return spec, nil
}
