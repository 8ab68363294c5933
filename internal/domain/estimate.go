package domain

import "github.com/phenrril/psucalc/internal/power"

const (
	DefaultMarginPct  = 20
	DefaultRAMModules = 1
)

// EstimateRequest is the user input as it arrives at a boundary (HTTP body,
// CLI flags, console session). Range checks live here; power.Estimate itself
// accepts any value.
type EstimateRequest struct {
	CPU         string   `json:"cpu" validate:"max=200"`
	GPU         string   `json:"gpu" validate:"max=200"`
	RAM         string   `json:"ram" validate:"max=200"`
	RAMModules  *int     `json:"ram_modules" validate:"omitempty,min=1,max=4"`
	Storages    []string `json:"storages" validate:"max=16,dive,max=200"`
	Cooling     string   `json:"cooling" validate:"max=200"`
	Drive       string   `json:"drive" validate:"max=200"`
	Motherboard string   `json:"motherboard" validate:"max=200"`
	MarginPct   *int     `json:"power_margin" validate:"omitempty,min=10,max=50"`

	Save bool   `json:"save"`
	Name string `json:"name" validate:"max=140"`
}

// Selection applies defaults and converts the request for power.Estimate.
func (r EstimateRequest) Selection() power.Selection {
	modules := DefaultRAMModules
	if r.RAMModules != nil {
		modules = *r.RAMModules
	}
	margin := DefaultMarginPct
	if r.MarginPct != nil {
		margin = *r.MarginPct
	}
	storages := make([]string, len(r.Storages))
	copy(storages, r.Storages)
	return power.Selection{
		CPU:         r.CPU,
		GPU:         r.GPU,
		RAM:         r.RAM,
		RAMModules:  modules,
		Storage:     storages,
		Cooling:     r.Cooling,
		Drive:       r.Drive,
		Motherboard: r.Motherboard,
		MarginPct:   margin,
	}
}
