// Package world holds the static content tables: world lore, playable classes
// and the opening scenario for each.
package world

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/textfilter"
	"gopkg.in/yaml.v3"
)

//go:embed data/worlds.yaml
var defaultWorlds []byte

const (
	unknownLore      = "No information is known about this world."
	unknownWorldName = "Unknown World"
)

// Scenario is an opening situation.
type Scenario struct {
	Location string   `yaml:"location"`
	Text     string   `yaml:"text"`
	Options  []string `yaml:"choices"`
}

// Choices returns the scenario options with sequential ids.
func (s Scenario) Choices() []state.Choice {
	out := make([]state.Choice, 0, len(s.Options))
	for i, text := range s.Options {
		out = append(out, state.Choice{ID: string(rune('A' + i)), Text: text})
	}
	return out
}

// Class is a playable class or faction.
type Class struct {
	ID     string                  `yaml:"id"`
	Name   string                  `yaml:"name"`
	Stats  map[skillcheck.Stat]int `yaml:"stats"`
	Skills []string                `yaml:"skills"`
	Start  *Scenario               `yaml:"start,omitempty"`
}

// World is one setting a game can take place in.
type World struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Lore    string   `yaml:"lore"`
	Rating  string   `yaml:"rating,omitempty"`
	Start   Scenario `yaml:"start"`
	Classes []Class  `yaml:"classes"`
}

// Catalog is the read-only set of worlds.
type Catalog struct {
	worlds []World
	byID   map[string]*World
}

type catalogFile struct {
	Worlds []World `yaml:"worlds"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultWorlds)
}

// Load reads a catalog from a YAML file. An empty path loads the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read worlds file: %w", err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML. Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse worlds: %w", err)
	}

	c := &Catalog{
		worlds: f.Worlds,
		byID:   make(map[string]*World, len(f.Worlds)),
	}
	for i := range c.worlds {
		w := &c.worlds[i]
		if _, dup := c.byID[w.ID]; dup {
			return nil, fmt.Errorf("duplicate world id %q", w.ID)
		}
		c.byID[w.ID] = w
	}
	return c, nil
}

// World returns the world with the given id.
func (c *Catalog) World(id string) (*World, bool) {
	w, ok := c.byID[id]
	return w, ok
}

// Worlds returns all worlds in file order.
func (c *Catalog) Worlds() []World {
	return c.worlds
}

// Lore returns the lore summary for a world, with a placeholder for unknown ids.
func (c *Catalog) Lore(worldID string) string {
	if w, ok := c.byID[worldID]; ok {
		return w.Lore
	}
	return unknownLore
}

// DisplayName returns the world's name, with a placeholder for unknown ids.
func (c *Catalog) DisplayName(worldID string) string {
	if w, ok := c.byID[worldID]; ok {
		return w.Name
	}
	return unknownWorldName
}

// Rating returns the world's content rating, or "" when unknown or unrated.
func (c *Catalog) Rating(worldID string) string {
	if w, ok := c.byID[worldID]; ok {
		return w.Rating
	}
	return ""
}

// Class looks up a class within a world.
func (c *Catalog) Class(worldID, classID string) (*Class, bool) {
	w, ok := c.byID[worldID]
	if !ok || classID == "" {
		return nil, false
	}
	for i := range w.Classes {
		if w.Classes[i].ID == classID {
			return &w.Classes[i], true
		}
	}
	return nil, false
}

// BaseStats returns the starting attributes and skills for a class.
func (c *Catalog) BaseStats(worldID, classID string) ([]state.Attribute, []string, bool) {
	cl, ok := c.Class(worldID, classID)
	if !ok {
		return nil, nil, false
	}
	attrs := make([]state.Attribute, 0, len(cl.Stats))
	for _, s := range skillcheck.Stats {
		if v, ok := cl.Stats[s]; ok {
			attrs = append(attrs, state.Attribute{Name: s, Score: v})
		}
	}
	return attrs, append([]string(nil), cl.Skills...), true
}

// StartingScenario returns the class scenario when one exists, else the world's generic opening.
func (c *Catalog) StartingScenario(worldID, classID string) (Scenario, bool) {
	w, ok := c.byID[worldID]
	if !ok {
		return Scenario{}, false
	}
	if cl, ok := c.Class(worldID, classID); ok && cl.Start != nil {
		return *cl.Start, true
	}
	return w.Start, true
}

var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Validate checks the catalog for content errors and reports all of them.
func (c *Catalog) Validate() error {
	var errs []error
	if len(c.worlds) == 0 {
		errs = append(errs, errors.New("no worlds defined"))
	}
	for _, w := range c.worlds {
		if !idPattern.MatchString(w.ID) {
			errs = append(errs, fmt.Errorf("world id %q must be lowercase snake_case", w.ID))
		}
		if strings.TrimSpace(w.Name) == "" {
			errs = append(errs, fmt.Errorf("world %q: name is required", w.ID))
		}
		if strings.TrimSpace(w.Lore) == "" {
			errs = append(errs, fmt.Errorf("world %q: lore is required", w.ID))
		}
		if w.Rating != "" && !textfilter.KnownRating(w.Rating) {
			errs = append(errs, fmt.Errorf("world %q: unknown rating %q", w.ID, w.Rating))
		}
		errs = append(errs, validateScenario(w.ID, &w.Start)...)

		seen := make(map[string]bool)
		for _, cl := range w.Classes {
			if !idPattern.MatchString(cl.ID) {
				errs = append(errs, fmt.Errorf("world %q: class id %q must be lowercase snake_case", w.ID, cl.ID))
			}
			if seen[cl.ID] {
				errs = append(errs, fmt.Errorf("world %q: duplicate class id %q", w.ID, cl.ID))
			}
			seen[cl.ID] = true
			for s := range cl.Stats {
				if !s.Valid() {
					errs = append(errs, fmt.Errorf("world %q: class %q has unknown stat %q", w.ID, cl.ID, s))
				}
			}
			if cl.Start != nil {
				errs = append(errs, validateScenario(w.ID+"/"+cl.ID, cl.Start)...)
			}
		}
	}
	return errors.Join(errs...)
}

func validateScenario(owner string, s *Scenario) []error {
	var errs []error
	if strings.TrimSpace(s.Text) == "" {
		errs = append(errs, fmt.Errorf("%s: scenario text is required", owner))
	}
	if len(s.Options) == 0 {
		errs = append(errs, fmt.Errorf("%s: scenario needs at least one choice", owner))
	}
	if len(s.Options) > 26 {
		errs = append(errs, fmt.Errorf("%s: scenario has more than 26 choices", owner))
	}
	if s.Location != "" && !idPattern.MatchString(s.Location) {
		errs = append(errs, fmt.Errorf("%s: location %q must be lowercase snake_case", owner, s.Location))
	}
	return errs
}
