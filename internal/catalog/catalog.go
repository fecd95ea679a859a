package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Payment plans.
const (
	PlanFull        = "full"
	PlanInstallment = "installment"
)

// ErrInvalidCatalog wraps structural problems in a catalog file.
var ErrInvalidCatalog = errors.New("catalog: invalid")

// Course is one course with its prices in whole naira.
type Course struct {
	Name             string `yaml:"name"`
	FullPrice        int64  `yaml:"full_price"`
	InstallmentPrice int64  `yaml:"installment_price"`
}

// Mode is a learning mode and the courses offered in it.
type Mode struct {
	ID      string   `yaml:"id"`
	Label   string   `yaml:"label"`
	Courses []Course `yaml:"courses"`
}

type file struct {
	DefaultLink string `yaml:"default_link"`
	Gateways    struct {
		Modes map[string]string `yaml:"modes"`
		Plans map[string]string `yaml:"plans"`
	} `yaml:"gateways"`
	Modes []Mode `yaml:"modes"`
}

// Catalog holds the course list and payment-gateway link table.
type Catalog struct {
	defaultLink string
	modeLinks   map[string]string
	planLinks   map[string]string
	modes       []Mode
}

// Load reads and validates a catalog YAML file.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes and validates catalog YAML.
func Parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	c := &Catalog{
		defaultLink: strings.TrimSpace(f.DefaultLink),
		modeLinks:   normalizeLinks(f.Gateways.Modes),
		planLinks:   normalizeLinks(f.Gateways.Plans),
		modes:       f.Modes,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func normalizeLinks(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

func (c *Catalog) validate() error {
	var problems []string
	check := func(name, link string) {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			problems = append(problems, name)
		}
	}
	check("default_link", c.defaultLink)
	for k, v := range c.modeLinks {
		check("gateways.modes."+k, v)
	}
	for k, v := range c.planLinks {
		check("gateways.plans."+k, v)
	}
	seen := make(map[string]bool)
	for i, m := range c.modes {
		id := strings.ToLower(strings.TrimSpace(m.ID))
		if id == "" || seen[id] {
			problems = append(problems, fmt.Sprintf("modes[%d].id", i))
		}
		seen[id] = true
		c.modes[i].ID = id
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, ", "))
	}
	return nil
}

// Modes returns the learning modes in file order.
func (c *Catalog) Modes() []Mode {
	out := make([]Mode, len(c.modes))
	copy(out, c.modes)
	return out
}

// Courses returns the courses offered in mode, or nil for an unknown mode.
func (c *Catalog) Courses(mode string) []Course {
	mode = strings.ToLower(strings.TrimSpace(mode))
	for _, m := range c.modes {
		if m.ID == mode {
			out := make([]Course, len(m.Courses))
			copy(out, m.Courses)
			return out
		}
	}
	return nil
}

// ModeLink returns the gateway link for a learning mode.
func (c *Catalog) ModeLink(mode string) (string, bool) {
	link, ok := c.modeLinks[strings.ToLower(strings.TrimSpace(mode))]
	return link, ok && link != ""
}

// PlanLink returns the gateway link for a payment plan, or the default link.
func (c *Catalog) PlanLink(plan string) string {
	if link := c.planLinks[strings.ToLower(strings.TrimSpace(plan))]; link != "" {
		return link
	}
	return c.defaultLink
}

// DefaultLink returns the generic enrollment link.
func (c *Catalog) DefaultLink() string { return c.defaultLink }

// WithRegistrationID appends registration_id to a gateway link.
func WithRegistrationID(link, id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return link
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	q := u.Query()
	q.Set("registration_id", id)
	u.RawQuery = q.Encode()
	return u.String()
}
