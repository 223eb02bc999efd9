// README: YAML-backed activity catalog for the offline itinerary builder (embedded default, file override).
package itinerary

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

type Catalog struct {
	Destinations []DestinationPlan `yaml:"destinations"`
	Default      DestinationPlan   `yaml:"default"`
}

// DestinationPlan holds the per-slot option lists for one destination.
type DestinationPlan struct {
	Match         []string `yaml:"match"`
	Morning       []string `yaml:"morning"`
	Afternoon     []string `yaml:"afternoon"`
	Evening       []string `yaml:"evening"`
	Lunch         []string `yaml:"lunch"`
	Dinner        []string `yaml:"dinner"`
	Neighborhoods []string `yaml:"neighborhoods"`
}

func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog file. An empty path yields the embedded default.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i := range c.Destinations {
		if len(lo.Compact(c.Destinations[i].Match)) == 0 {
			return nil, fmt.Errorf("parse catalog: destination %d has no match terms", i)
		}
		c.Destinations[i].compact()
	}
	c.Default.compact()
	return &c, nil
}

func (d *DestinationPlan) compact() {
	for _, list := range []*[]string{&d.Morning, &d.Afternoon, &d.Evening, &d.Lunch, &d.Dinner, &d.Neighborhoods} {
		*list = lo.Compact(lo.Map(*list, func(s string, _ int) string { return strings.TrimSpace(s) }))
	}
}

// Lookup returns the first destination whose match term occurs in name, else Default.
func (c *Catalog) Lookup(name string) DestinationPlan {
	if c == nil {
		return DestinationPlan{}
	}
	lower := strings.ToLower(name)
	for _, d := range c.Destinations {
		for _, term := range d.Match {
			if term = strings.ToLower(strings.TrimSpace(term)); term != "" && strings.Contains(lower, term) {
				return d
			}
		}
	}
	return c.Default
}
