// Package schema holds the immutable description of the hotel-review
// property graph: entity types, relationship types, and their typed
// properties. The catalog is loaded once at startup and read-only after.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/guestgraph/guestgraph/helper"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// PropertyType enumerates supported property data types
type PropertyType string

const (
	PropertyString   PropertyType = "string"
	PropertyInteger  PropertyType = "integer"
	PropertyFloat    PropertyType = "float"
	PropertyBoolean  PropertyType = "boolean"
	PropertyDatetime PropertyType = "datetime"
	PropertyJSON     PropertyType = "json"
	PropertyUUID     PropertyType = "uuid"
)

// PropertySpec describes one typed property with its constraints
type PropertySpec struct {
	Name        string       `yaml:"name"`
	Type        PropertyType `yaml:"type"`
	Description string       `yaml:"description"`
	Required    bool         `yaml:"required,omitempty"`
	Indexed     bool         `yaml:"indexed,omitempty"`
	Unique      bool         `yaml:"unique,omitempty"`
	Min         *float64     `yaml:"min,omitempty"`
	Max         *float64     `yaml:"max,omitempty"`
	MaxLength   *int         `yaml:"max_length,omitempty"`
}

// EntityType describes one vertex label
type EntityType struct {
	Label       string         `yaml:"label"`
	Description string         `yaml:"description"`
	Properties  []PropertySpec `yaml:"properties,omitempty"`
}

// RelationshipType describes one edge label between two entity types
type RelationshipType struct {
	Label       string         `yaml:"label"`
	From        string         `yaml:"from"`
	To          string         `yaml:"to"`
	Description string         `yaml:"description"`
	Properties  []PropertySpec `yaml:"properties,omitempty"`
}

// Catalog is the loaded schema. All lookups are safe for concurrent use
// because the catalog is never mutated after Load.
type Catalog struct {
	Version       int                `yaml:"version"`
	Entities      []EntityType       `yaml:"entities"`
	Relationships []RelationshipType `yaml:"relationships"`

	entityByLabel       map[string]*EntityType
	relationshipByLabel map[string]*RelationshipType
}

// Load parses the embedded default catalog
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile parses a catalog from a YAML file on disk
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("read catalog file", err)
	}
	return Parse(data)
}

// Parse parses and validates catalog YAML
func Parse(data []byte) (*Catalog, error) {
	catalog := &Catalog{}
	if err := yaml.Unmarshal(data, catalog); err != nil {
		return nil, helper.NewError("parse catalog yaml", err)
	}

	catalog.entityByLabel = make(map[string]*EntityType, len(catalog.Entities))
	for i := range catalog.Entities {
		entity := &catalog.Entities[i]
		if _, exists := catalog.entityByLabel[entity.Label]; exists {
			return nil, helper.NewError("validate catalog", fmt.Errorf("duplicate entity label %q", entity.Label))
		}
		catalog.entityByLabel[entity.Label] = entity
	}

	catalog.relationshipByLabel = make(map[string]*RelationshipType, len(catalog.Relationships))
	for i := range catalog.Relationships {
		relationship := &catalog.Relationships[i]
		if _, exists := catalog.relationshipByLabel[relationship.Label]; exists {
			return nil, helper.NewError("validate catalog", fmt.Errorf("duplicate relationship label %q", relationship.Label))
		}
		// Both endpoints must reference declared entity types
		if _, ok := catalog.entityByLabel[relationship.From]; !ok {
			return nil, helper.NewError("validate catalog",
				fmt.Errorf("relationship %q references unknown entity type %q", relationship.Label, relationship.From))
		}
		if _, ok := catalog.entityByLabel[relationship.To]; !ok {
			return nil, helper.NewError("validate catalog",
				fmt.Errorf("relationship %q references unknown entity type %q", relationship.Label, relationship.To))
		}
		catalog.relationshipByLabel[relationship.Label] = relationship
	}

	return catalog, nil
}

// Entity returns the entity type with the given label
func (c *Catalog) Entity(label string) (*EntityType, bool) {
	entity, ok := c.entityByLabel[label]
	return entity, ok
}

// Relationship returns the relationship type with the given label
func (c *Catalog) Relationship(label string) (*RelationshipType, bool) {
	relationship, ok := c.relationshipByLabel[label]
	return relationship, ok
}

// HasRelationship reports whether the label exists in the catalog
func (c *Catalog) HasRelationship(label string) bool {
	_, ok := c.relationshipByLabel[label]
	return ok
}

// EntityLabels returns all vertex labels in declaration order
func (c *Catalog) EntityLabels() []string {
	labels := make([]string, len(c.Entities))
	for i, entity := range c.Entities {
		labels[i] = entity.Label
	}
	return labels
}

// RelationshipLabels returns all edge labels in declaration order
func (c *Catalog) RelationshipLabels() []string {
	labels := make([]string, len(c.Relationships))
	for i, relationship := range c.Relationships {
		labels[i] = relationship.Label
	}
	return labels
}

// OutgoingRelationships returns relationships whose source is the given entity type
func (c *Catalog) OutgoingRelationships(entityLabel string) []*RelationshipType {
	var relationships []*RelationshipType
	for i := range c.Relationships {
		if c.Relationships[i].From == entityLabel {
			relationships = append(relationships, &c.Relationships[i])
		}
	}
	return relationships
}

// RelationshipsBetween returns relationships connecting the two entity
// types, in either direction
func (c *Catalog) RelationshipsBetween(labelA, labelB string) []*RelationshipType {
	var relationships []*RelationshipType
	for i := range c.Relationships {
		relationship := &c.Relationships[i]
		if (relationship.From == labelA && relationship.To == labelB) ||
			(relationship.From == labelB && relationship.To == labelA) {
			relationships = append(relationships, relationship)
		}
	}
	return relationships
}

// IncomingRelationships returns relationships whose target is the given entity type
func (c *Catalog) IncomingRelationships(entityLabel string) []*RelationshipType {
	var relationships []*RelationshipType
	for i := range c.Relationships {
		if c.Relationships[i].To == entityLabel {
			relationships = append(relationships, &c.Relationships[i])
		}
	}
	return relationships
}

// PromptDescription renders the catalog as a plain-text schema section for
// query-translation prompts
func (c *Catalog) PromptDescription() string {
	var b strings.Builder

	b.WriteString("Hotel Review Graph Schema:\n\nVERTICES (Nodes):\n")
	for _, entity := range c.Entities {
		fmt.Fprintf(&b, "- %s: %s\n", entity.Label, entity.Description)
		if len(entity.Properties) > 0 {
			names := make([]string, len(entity.Properties))
			for i, property := range entity.Properties {
				names[i] = fmt.Sprintf("%s: %s", property.Name, property.Description)
			}
			fmt.Fprintf(&b, "  Properties: %s\n", strings.Join(names, ", "))
		}
	}

	b.WriteString("\nEDGES (Relationships):\n")
	for _, relationship := range c.Relationships {
		fmt.Fprintf(&b, "- %s: %s -> %s (%s)\n",
			relationship.Label, relationship.From, relationship.To, relationship.Description)
	}

	return b.String()
}
