// Package catalog holds the static table mapping medical specialties to the
// symptoms that typically lead a patient to them.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed specialties.yaml
var defaultCatalog []byte

// Specialty is one row of the catalog.
type Specialty struct {
	Name     string   `yaml:"name" json:"name"`
	Symptoms []string `yaml:"symptoms" json:"symptoms"`
}

type catalogFile struct {
	Specialties []Specialty `yaml:"specialties"`
}

// Catalog is an ordered, read-only specialty table.
type Catalog struct {
	specialties []Specialty
	byName      map[string]string
	vocabulary  []string
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded specialties.yaml is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(file.Specialties) == 0 {
		return nil, fmt.Errorf("catalog has no specialties")
	}

	c := &Catalog{
		specialties: make([]Specialty, 0, len(file.Specialties)),
		byName:      make(map[string]string, len(file.Specialties)),
	}
	words := make(map[string]struct{})
	for i, s := range file.Specialties {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		key := strings.ToLower(name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("catalog lists %q twice", name)
		}
		c.byName[key] = name
		c.specialties = append(c.specialties, Specialty{Name: name, Symptoms: s.Symptoms})

		for _, symptom := range s.Symptoms {
			for _, w := range strings.FieldsFunc(strings.ToLower(symptom), isWordSeparator) {
				words[w] = struct{}{}
			}
		}
	}

	c.vocabulary = make([]string, 0, len(words))
	for w := range words {
		c.vocabulary = append(c.vocabulary, w)
	}
	sort.Strings(c.vocabulary)
	return c, nil
}

// Specialties returns the entries in catalog order.
func (c *Catalog) Specialties() []Specialty {
	return c.specialties
}

// Names returns the specialty names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.specialties))
	for i, s := range c.specialties {
		names[i] = s.Name
	}
	return names
}

// Canonical resolves name case-insensitively to the catalog spelling.
func (c *Catalog) Canonical(name string) (string, bool) {
	canonical, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}

// Vocabulary returns every lower-cased word used in a symptom phrase, sorted.
func (c *Catalog) Vocabulary() []string {
	return c.vocabulary
}

func isWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
