package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/psucalc/internal/domain"
)

type memComponents struct {
	items []domain.Component
}

func (m *memComponents) List(_ context.Context, f domain.ComponentFilter) ([]domain.Component, error) {
	var out []domain.Component
	for _, c := range m.items {
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memComponents) FindByName(_ context.Context, cat domain.Category, name string) (*domain.Component, error) {
	for _, c := range m.items {
		if c.Category == cat && c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memComponents) Save(_ context.Context, c *domain.Component) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	for i := range m.items {
		if m.items[i].ID == c.ID {
			m.items[i] = *c
			return nil
		}
		if m.items[i].Category == c.Category && m.items[i].Name == c.Name {
			return domain.ErrConflict
		}
	}
	m.items = append(m.items, *c)
	return nil
}

func (m *memComponents) Delete(_ context.Context, cat domain.Category, name string) error {
	for i, c := range m.items {
		if c.Category == cat && c.Name == name {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memComponents) All(ctx context.Context) ([]domain.Component, error) {
	return m.List(ctx, domain.ComponentFilter{})
}

type memConfigs struct {
	items []domain.SavedConfig
}

func (m *memConfigs) List(_ context.Context, tokens []string) ([]domain.SavedConfig, error) {
	var out []domain.SavedConfig
	for i := len(m.items) - 1; i >= 0; i-- {
		c := m.items[i]
		hay := strings.ToLower(strings.Join([]string{c.Name, c.CPU, c.GPU, c.RAM, c.Storage}, " "))
		ok := true
		for _, tok := range tokens {
			if !strings.Contains(hay, strings.ToLower(tok)) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memConfigs) Find(_ context.Context, id uuid.UUID) (*domain.SavedConfig, error) {
	for _, c := range m.items {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memConfigs) Save(_ context.Context, c *domain.SavedConfig) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.items = append(m.items, *c)
	return nil
}

func (m *memConfigs) Rename(_ context.Context, id uuid.UUID, name string) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Name = name
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memConfigs) Delete(_ context.Context, id uuid.UUID) error {
	for i, c := range m.items {
		if c.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type stubSpecs struct {
	value string
	err   error
	urls  []string
}

func (s *stubSpecs) FetchWattage(_ context.Context, url string) (string, error) {
	s.urls = append(s.urls, url)
	return s.value, s.err
}

func seededCatalog() *memComponents {
	return &memComponents{items: []domain.Component{
		{ID: uuid.New(), Category: domain.CategoryCPU, Name: "Intel Core i5-12400", Power: "65W"},
		{ID: uuid.New(), Category: domain.CategoryGPU, Name: "RTX 3060", Power: "170W"},
		{ID: uuid.New(), Category: domain.CategoryRAM, Name: "DDR4 16GB", Power: "5W"},
		{ID: uuid.New(), Category: domain.CategoryStorage, Name: "970 EVO", Power: "5W", Type: "ssd"},
		{ID: uuid.New(), Category: domain.CategoryStorage, Name: "Barracuda 2TB", Power: "10W", Type: "hdd"},
		{ID: uuid.New(), Category: domain.CategoryCooling, Name: "Hyper 212", Power: "5"},
		{ID: uuid.New(), Category: domain.CategoryDrive, Name: "DVD-RW", Power: "15"},
		{ID: uuid.New(), Category: domain.CategoryMotherboard, Name: "B660", Power: "50"},
		{ID: uuid.New(), Category: domain.CategoryPSU, Name: "RM750", Power: "750"},
		{ID: uuid.New(), Category: domain.CategoryPSU, Name: "CX650", Power: "650"},
		{ID: uuid.New(), Category: domain.CategoryPSU, Name: "EVGA 500", Power: "500"},
	}}
}
