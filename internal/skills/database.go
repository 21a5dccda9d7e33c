package skills

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed skills.yaml
var defaultSkillData []byte

type Skill struct {
	Name     string   `yaml:"name"`
	Variants []string `yaml:"variants"`
}

type Category struct {
	Key       string  `yaml:"key"`
	Name      string  `yaml:"name"`
	Technical bool    `yaml:"technical"`
	Skills    []Skill `yaml:"skills"`
}

// Database is an ordered, read-only table of skill categories.
type Database struct {
	categories []Category
	technical  map[string]struct{}
}

var (
	defaultOnce sync.Once
	defaultDB   *Database
	defaultErr  error
)

// Default returns the embedded skill table, parsed on first use.
func Default() (*Database, error) {
	defaultOnce.Do(func() {
		defaultDB, defaultErr = Parse(defaultSkillData)
	})
	return defaultDB, defaultErr
}

// Parse decodes a YAML skill table. Variants are lowercased on load.
func Parse(data []byte) (*Database, error) {
	var doc struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse skill database: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("skill database has no categories")
	}

	db := &Database{technical: make(map[string]struct{})}
	seen := make(map[string]struct{}, len(doc.Categories))

	for i, cat := range doc.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("category %d has no name", i)
		}
		if _, dup := seen[cat.Name]; dup {
			return nil, fmt.Errorf("duplicate category %q", cat.Name)
		}
		seen[cat.Name] = struct{}{}

		for j, skill := range cat.Skills {
			if skill.Name == "" {
				return nil, fmt.Errorf("category %q: skill %d has no name", cat.Name, j)
			}
			variants := make([]string, 0, len(skill.Variants))
			for _, v := range skill.Variants {
				if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
					variants = append(variants, v)
				}
			}
			cat.Skills[j].Variants = variants
			if cat.Technical {
				db.technical[skill.Name] = struct{}{}
			}
		}
		db.categories = append(db.categories, cat)
	}

	return db, nil
}

// Categories returns the categories in scan order. Callers must not mutate them.
func (d *Database) Categories() []Category {
	return d.categories
}

func (d *Database) Category(name string) (Category, bool) {
	for _, c := range d.categories {
		if c.Name == name || c.Key == name {
			return c, true
		}
	}
	return Category{}, false
}

// IsTechnical reports whether skill is listed under any technical category.
func (d *Database) IsTechnical(skill string) bool {
	_, ok := d.technical[skill]
	return ok
}
