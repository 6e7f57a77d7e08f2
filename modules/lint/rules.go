package lint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/config"
	"gopkg.in/yaml.v3"
)

// ruleFile is the part of an ESLint or stylelint configuration file this
// package understands.
type ruleFile struct {
	Rules map[string]any `json:"rules" yaml:"rules"`
}

// candidates returns rel followed by its YAML equivalents.
func candidates(rel string) []string {
	ext := filepath.Ext(rel)
	stem := strings.TrimSuffix(rel, ext)
	out := []string{rel}
	for _, alt := range []string{".json", ".yaml", ".yml"} {
		if alt != ext {
			out = append(out, stem+alt)
		}
	}
	return out
}

// LoadRuleSet reads the rules of a lint configuration file. The first of
// rel and its .json, .yaml and .yml equivalents that exists is used. When
// none exists the rule set is empty and found is false.
func LoadRuleSet(root, rel string) (rules config.RuleSet, found bool, err error) {
	for _, c := range candidates(rel) {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(c)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("reading rule set: %w", err)
		}
		rules, err := decodeRuleSet(c, data)
		if err != nil {
			return nil, false, fmt.Errorf("decoding rule set %s: %w", c, err)
		}
		return rules, true, nil
	}
	return config.RuleSet{}, false, nil
}

func decodeRuleSet(name string, data []byte) (config.RuleSet, error) {
	var f ruleFile
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	}
	if f.Rules == nil {
		return config.RuleSet{}, nil
	}
	return config.RuleSet(f.Rules), nil
}
