package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/psucalc/internal/power"
)

const DefaultConfigName = "Result"

// SavedConfig is a stored estimation: display strings of the selection,
// the required wattage and the PSU shortlist at the time it was computed.
type SavedConfig struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string      `gorm:"size:140;not null" json:"name"`
	CPU       string      `gorm:"size:200" json:"cpu"`
	GPU       string      `gorm:"size:200" json:"gpu"`
	RAM       string      `gorm:"size:220" json:"ram"`
	Storage   string      `gorm:"type:text" json:"storage"`
	Watts     int         `gorm:"not null;default:0" json:"watts"`
	MarginPct int         `gorm:"not null;default:0" json:"power_margin"`
	PSUs      []power.PSU `gorm:"type:text;serializer:json" json:"psus"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
}

// NewSavedConfig builds the history entry for sel and its result. RAM is shown
// as "<name> x<modules>" when more than one module is installed; storage is
// the comma-joined list of non-blank names.
func NewSavedConfig(name string, sel power.Selection, res power.Result) *SavedConfig {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultConfigName
	}
	ram := sel.RAM
	if ram != "" && sel.RAMModules > 1 {
		ram = fmt.Sprintf("%s x%d", sel.RAM, sel.RAMModules)
	}
	disks := make([]string, 0, len(sel.Storage))
	for _, s := range sel.Storage {
		if strings.TrimSpace(s) != "" {
			disks = append(disks, s)
		}
	}
	psus := make([]power.PSU, len(res.PSUs))
	copy(psus, res.PSUs)
	return &SavedConfig{
		Name:      name,
		CPU:       sel.CPU,
		GPU:       sel.GPU,
		RAM:       ram,
		Storage:   strings.Join(disks, ", "),
		Watts:     res.Required,
		MarginPct: sel.MarginPct,
		PSUs:      psus,
	}
}
