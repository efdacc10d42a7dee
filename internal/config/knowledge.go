package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

type Alias struct {
	Alias     string `yaml:"alias"`
	Community string `yaml:"community"`
}

type RoleRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// TermGap describes a topic where local documents usually cover a narrower fixture
// than the one residents ask about.
type TermGap struct {
	Topic    string   `yaml:"topic"`
	Broader  []string `yaml:"broader"`
	Narrower []string `yaml:"narrower"`
	Notice   string   `yaml:"notice"`
}

type EmergencyRule struct {
	UrgentConditions      []string `yaml:"urgent_conditions"`
	ResponsibilityPhrases []string `yaml:"responsibility_phrases"`
	Link                  string   `yaml:"link"`
}

type Knowledge struct {
	GlobalPartition string        `yaml:"global_partition"`
	DefaultRole     string        `yaml:"default_role"`
	Aliases         []Alias       `yaml:"aliases"`
	Roles           []RoleRule    `yaml:"roles"`
	TermGaps        []TermGap     `yaml:"term_gaps"`
	Emergency       EmergencyRule `yaml:"emergency"`
}

// LoadKnowledge parses the rules file at path, or the embedded defaults when path is empty.
func LoadKnowledge(path string) (Knowledge, error) {
	data := defaultKnowledge
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Knowledge{}, fmt.Errorf("reading knowledge file: %w", err)
		}
		data = raw
	}
	return ParseKnowledge(data)
}

func ParseKnowledge(data []byte) (Knowledge, error) {
	var k Knowledge
	if err := yaml.Unmarshal(data, &k); err != nil {
		return Knowledge{}, fmt.Errorf("parsing knowledge file: %w", err)
	}
	k.applyDefaults()
	if err := k.validate(); err != nil {
		return Knowledge{}, err
	}
	return k, nil
}

func (k *Knowledge) applyDefaults() {
	if strings.TrimSpace(k.GlobalPartition) == "" {
		k.GlobalPartition = DefaultGlobalName
	}
	if strings.TrimSpace(k.DefaultRole) == "" {
		k.DefaultRole = DefaultRole
	}
	k.GlobalPartition = strings.TrimSpace(k.GlobalPartition)
	k.Emergency.Link = strings.TrimSpace(k.Emergency.Link)
}

func (k *Knowledge) validate() error {
	for i, a := range k.Aliases {
		if strings.TrimSpace(a.Alias) == "" || strings.TrimSpace(a.Community) == "" {
			return fmt.Errorf("alias %d: alias and community are required", i)
		}
		if strings.EqualFold(a.Community, k.GlobalPartition) {
			return fmt.Errorf("alias %q points at the global partition", a.Alias)
		}
	}
	for _, g := range k.TermGaps {
		if len(g.Broader) == 0 || len(g.Narrower) == 0 {
			return fmt.Errorf("term gap %q needs broader and narrower terms", g.Topic)
		}
	}
	if len(k.Emergency.UrgentConditions) > 0 && k.Emergency.Link == "" {
		return errors.New("emergency rule has conditions but no link")
	}
	return nil
}
