package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryCPU         Category = "cpus"
	CategoryGPU         Category = "gpus"
	CategoryRAM         Category = "ram"
	CategoryStorage     Category = "storages"
	CategoryCooling     Category = "cooling"
	CategoryDrive       Category = "drives"
	CategoryMotherboard Category = "motherboards"
	CategoryPSU         Category = "psus"
)

// Categories lists every catalog category in display order.
var Categories = []Category{
	CategoryCPU, CategoryGPU, CategoryRAM, CategoryStorage,
	CategoryCooling, CategoryDrive, CategoryMotherboard, CategoryPSU,
}

var categoryAliases = map[string]Category{
	"cpu":         CategoryCPU,
	"gpu":         CategoryGPU,
	"rams":        CategoryRAM,
	"memory":      CategoryRAM,
	"storage":     CategoryStorage,
	"drive":       CategoryDrive,
	"motherboard": CategoryMotherboard,
	"psu":         CategoryPSU,
}

// ParseCategory accepts the URL slug of a category or one of its singular
// aliases, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == v {
			return c, true
		}
	}
	c, ok := categoryAliases[v]
	return c, ok
}

// PowerField is the JSON name of the wattage-bearing attribute.
func (c Category) PowerField() string {
	if c == CategoryPSU {
		return "wattage"
	}
	return "consumption"
}

// Component is one catalog record. Power keeps the value exactly as it was
// supplied ("65W", "650"); it is parsed when a snapshot is built.
type Component struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Category  Category  `gorm:"type:varchar(20);not null;uniqueIndex:idx_components_category_name"`
	Name      string    `gorm:"size:200;not null;uniqueIndex:idx_components_category_name"`
	Power     string    `gorm:"size:60"`
	Type      string    `gorm:"size:40"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarshalJSON renders the record shape served by the catalog API:
// {"name", "consumption"} or {"name", "wattage"} for PSUs.
func (c Component) MarshalJSON() ([]byte, error) {
	m := map[string]any{"name": c.Name, c.Category.PowerField(): c.Power}
	if c.Type != "" {
		m["type"] = c.Type
	}
	return json.Marshal(m)
}

type ComponentFilter struct {
	Category Category
	Query    string
}
