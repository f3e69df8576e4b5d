// Package catalog holds the canonical list of projects applicants can apply for.
// The same catalog backs the projects API, the registration form, the admin
// dashboard filter and the public projects page.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed projects.yml
var defaultProjectsYAML []byte

// Project is one entry of the catalog.
type Project struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description,omitempty"`
	Category    string `yaml:"category" json:"category,omitempty"`
	Difficulty  string `yaml:"difficulty" json:"difficulty,omitempty"`
	Duration    string `yaml:"duration" json:"duration,omitempty"`
}

// Catalog is an ordered, immutable set of projects keyed by title.
type Catalog struct {
	projects []Project
	byTitle  map[string]int
}

type document struct {
	Projects []Project `yaml:"projects"`
}

// Parse decodes a YAML catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode project catalog: %w", err)
	}
	return New(doc.Projects)
}

// New builds a catalog from projects, rejecting blank or duplicate titles.
func New(projects []Project) (*Catalog, error) {
	if len(projects) == 0 {
		return nil, errors.New("project catalog is empty")
	}
	c := &Catalog{
		projects: make([]Project, len(projects)),
		byTitle:  make(map[string]int, len(projects)),
	}
	for i, p := range projects {
		if p.Title == "" {
			return nil, fmt.Errorf("project %d has no title", i)
		}
		if _, dup := c.byTitle[p.Title]; dup {
			return nil, fmt.Errorf("duplicate project title %q", p.Title)
		}
		c.projects[i] = p
		c.byTitle[p.Title] = i
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultProjectsYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// List returns a copy of all projects in catalog order.
func (c *Catalog) List() []Project {
	out := make([]Project, len(c.projects))
	copy(out, c.projects)
	return out
}

// Titles returns project titles in catalog order.
func (c *Catalog) Titles() []string {
	out := make([]string, len(c.projects))
	for i, p := range c.projects {
		out[i] = p.Title
	}
	return out
}

// Contains reports whether title names a catalog project. The match is exact.
func (c *Catalog) Contains(title string) bool {
	_, ok := c.byTitle[title]
	return ok
}

// Lookup returns the project with the given title.
func (c *Catalog) Lookup(title string) (Project, bool) {
	i, ok := c.byTitle[title]
	if !ok {
		return Project{}, false
	}
	return c.projects[i], true
}
