package analysis

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule is a single compiled detection rule. Tier is "crisis", "concern" or a
// distortion name such as "catastrophizing".
type Rule struct {
	Name    string
	Tier    string
	Pattern *regexp.Regexp
}

type ruleSpec struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

type rulesFile struct {
	Version     int        `yaml:"version"`
	Crisis      []ruleSpec `yaml:"crisis"`
	Concern     []ruleSpec `yaml:"concern"`
	Distortions []ruleSpec `yaml:"distortions"`
}

// RuleSet holds the compiled urgency and distortion rules. It is immutable
// after construction and safe for concurrent use.
type RuleSet struct {
	crisis      []Rule
	concern     []Rule
	distortions []Rule
}

// DefaultRules parses the embedded rule catalog. It panics on failure since
// the embedded data is fixed at build time.
func DefaultRules() *RuleSet {
	rs, err := parseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("analysis: embedded rules invalid: %v", err))
	}
	return rs
}

// LoadRules reads a rule catalog from path. An empty path returns the
// embedded defaults.
func LoadRules(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("analysis: read rules %s: %w", path, err)
	}
	rs, err := parseRules(raw)
	if err != nil {
		return nil, fmt.Errorf("analysis: parse rules %s: %w", path, err)
	}
	return rs, nil
}

func parseRules(raw []byte) (*RuleSet, error) {
	var f rulesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if len(f.Crisis) == 0 || len(f.Concern) == 0 {
		return nil, fmt.Errorf("crisis and concern sections must be non-empty")
	}
	rs := &RuleSet{}
	var err error
	if rs.crisis, err = compileTier(f.Crisis, "crisis"); err != nil {
		return nil, err
	}
	if rs.concern, err = compileTier(f.Concern, "concern"); err != nil {
		return nil, err
	}
	for _, spec := range f.Distortions {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("distortion rule %q: %w", spec.Name, err)
		}
		rs.distortions = append(rs.distortions, Rule{Name: spec.Name, Tier: spec.Name, Pattern: re})
	}
	return rs, nil
}

func compileTier(specs []ruleSpec, tier string) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%s rule %q: %w", tier, spec.Name, err)
		}
		rules = append(rules, Rule{Name: spec.Name, Tier: tier, Pattern: re})
	}
	return rules, nil
}

// DetectUrgency returns the urgency tier for lower-cased text. Crisis rules
// are checked before concern rules; within a tier the first match wins.
func (rs *RuleSet) DetectUrgency(text string) (UrgencyLevel, string) {
	for _, r := range rs.crisis {
		if r.Pattern.MatchString(text) {
			return UrgencyCrisis, r.Name
		}
	}
	for _, r := range rs.concern {
		if r.Pattern.MatchString(text) {
			return UrgencyConcern, r.Name
		}
	}
	return UrgencyNone, ""
}

// DetectDistortions returns the names of all cognitive distortion rules that
// match lower-cased text, in catalog order with duplicates removed.
func (rs *RuleSet) DetectDistortions(text string) []string {
	var found []string
	seen := make(map[string]bool, len(rs.distortions))
	for _, r := range rs.distortions {
		if seen[r.Name] {
			continue
		}
		if r.Pattern.MatchString(text) {
			seen[r.Name] = true
			found = append(found, r.Name)
		}
	}
	return found
}

// DistortionNames lists the distortion rule names in catalog order.
func (rs *RuleSet) DistortionNames() []string {
	names := make([]string, 0, len(rs.distortions))
	seen := make(map[string]bool, len(rs.distortions))
	for _, r := range rs.distortions {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	return names
}
