// File path: internal/classify/policy.go
package classify

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Category string

const (
	Fact        Category = "FACT"
	ComplexFact Category = "COMPLEX_FACT"
	Comparison  Category = "COMPARISON"
	Investment  Category = "INVESTMENT"
	Market      Category = "MARKET"
	Irrelevant  Category = "IRRELEVANT"
)

func (c Category) String() string { return string(c) }

type Mode string

const (
	ModePlain     Mode = "plain"
	ModeWebSearch Mode = "web_search"
)

func (m Mode) WebSearch() bool { return m == ModeWebSearch }

// Route is the static answer strategy for one category.
type Route struct {
	Category    Category `yaml:"name"`
	Description string   `yaml:"description"`
	Fetcher     string   `yaml:"fetcher"`
	Template    string   `yaml:"template"`
	Mode        Mode     `yaml:"mode"`
}

//go:embed policy.yaml
var defaultPolicy []byte

// Policy maps categories to routes. It is read-only after loading.
type Policy struct {
	DefaultCategory Category `yaml:"default"`
	Routes          []Route  `yaml:"categories"`

	index map[Category]Route
}

// DefaultPolicy returns the embedded category table.
func DefaultPolicy() *Policy {
	policy, err := ParsePolicy(defaultPolicy)
	if err != nil {
		panic(fmt.Sprintf("classify: embedded policy invalid: %v", err))
	}
	return policy
}

// LoadPolicy reads the file named by INSIGHTS_POLICY_FILE, or returns the
// embedded policy when it is unset.
func LoadPolicy() (*Policy, error) {
	path := strings.TrimSpace(os.Getenv("INSIGHTS_POLICY_FILE"))
	if path == "" {
		return DefaultPolicy(), nil
	}
	return LoadPolicyFile(path)
}

func LoadPolicyFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	policy, err := ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", path, err)
	}
	return policy, nil
}

func ParsePolicy(data []byte) (*Policy, error) {
	var policy Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}
	policy.normalize()
	if err := policy.validate(); err != nil {
		return nil, err
	}
	return &policy, nil
}

func (p *Policy) normalize() {
	p.DefaultCategory = Category(canonicalLabel(string(p.DefaultCategory)))
	for i := range p.Routes {
		route := &p.Routes[i]
		route.Category = Category(canonicalLabel(string(route.Category)))
		route.Fetcher = strings.ToLower(strings.TrimSpace(route.Fetcher))
		route.Template = strings.ToLower(strings.TrimSpace(route.Template))
		route.Mode = Mode(strings.ToLower(strings.TrimSpace(string(route.Mode))))
		route.Description = strings.TrimSpace(route.Description)
		if route.Mode == "" {
			route.Mode = ModePlain
		}
	}
}

func (p *Policy) validate() error {
	if len(p.Routes) == 0 {
		return errors.New("policy defines no categories")
	}
	p.index = make(map[Category]Route, len(p.Routes))
	for _, route := range p.Routes {
		if route.Category == "" {
			return errors.New("policy category missing name")
		}
		if _, dup := p.index[route.Category]; dup {
			return fmt.Errorf("category %s defined twice", route.Category)
		}
		if route.Fetcher == "" {
			return fmt.Errorf("category %s missing fetcher", route.Category)
		}
		if route.Template == "" {
			return fmt.Errorf("category %s missing template", route.Category)
		}
		switch route.Mode {
		case ModePlain, ModeWebSearch:
		default:
			return fmt.Errorf("category %s has unknown mode %q", route.Category, route.Mode)
		}
		p.index[route.Category] = route
	}
	if p.DefaultCategory == "" {
		p.DefaultCategory = Comparison
	}
	if _, ok := p.index[p.DefaultCategory]; !ok {
		return fmt.Errorf("default category %s is not defined", p.DefaultCategory)
	}
	return nil
}

// Lookup returns the route for c and whether c is a known category.
func (p *Policy) Lookup(c Category) (Route, bool) {
	route, ok := p.index[c]
	return route, ok
}

// Route returns the route for c, or the default category's route.
func (p *Policy) Route(c Category) Route {
	if route, ok := p.index[c]; ok {
		return route
	}
	return p.index[p.DefaultCategory]
}

func (p *Policy) Default() Category {
	return p.DefaultCategory
}

func (p *Policy) Categories() []Category {
	out := make([]Category, 0, len(p.Routes))
	for _, route := range p.Routes {
		out = append(out, route.Category)
	}
	return out
}

func canonicalLabel(raw string) string {
	label := strings.ToUpper(strings.TrimSpace(raw))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(label)
}
