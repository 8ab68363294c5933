// Package power estimates the minimum power-supply wattage for a PC
// configuration and shortlists catalog PSUs that can serve it.
//
// Everything in this package is pure: no I/O, no shared state, inputs are
// never mutated.
package power

import (
	"math"
	"sort"
	"strings"
)

const (
	// Overhead covers motherboard baseline, fans and peripherals that the
	// catalog does not model.
	Overhead = 200
	// MaxShortlist bounds the number of PSUs returned.
	MaxShortlist = 5
)

// Selection is the user's configuration. Empty names contribute 0 W.
type Selection struct {
	CPU         string
	GPU         string
	RAM         string
	RAMModules  int
	Storage     []string
	Cooling     string
	Drive       string
	Motherboard string
	MarginPct   int
}

// StorageDetail is one resolved storage device, in selection order.
type StorageDetail struct {
	Name        string `json:"name"`
	Consumption int    `json:"consumption"`
}

// Breakdown is the per-component draw behind a Result, in watts.
type Breakdown struct {
	CPU            int             `json:"cpu_w"`
	GPU            int             `json:"gpu_w"`
	RAM            int             `json:"ram_w"`
	RAMSingle      int             `json:"ram_w_single"`
	RAMModules     int             `json:"ram_modules"`
	Storage        int             `json:"storage_w"`
	StorageDetails []StorageDetail `json:"storage_details"`
	Cooling        int             `json:"cooling_w"`
	Drive          int             `json:"drive_w"`
	Motherboard    int             `json:"motherboard_w"`
	Overhead       int             `json:"overhead"`
	RawTotal       int             `json:"raw_total"`
	MarginPct      int             `json:"power_margin"`
}

// PSU is one shortlisted power supply.
type PSU struct {
	Name    string `json:"name"`
	Wattage int    `json:"wattage"`
}

// Result is the outcome of Estimate.
type Result struct {
	Required  int       `json:"required"`
	Breakdown Breakdown `json:"breakdown"`
	PSUs      []PSU     `json:"psus"`
}

// HasPSU reports whether at least one catalog PSU meets the requirement.
// An empty shortlist is a valid outcome that callers must surface.
func (r Result) HasPSU() bool { return len(r.PSUs) > 0 }

// Estimate computes the required wattage for s against c and the ascending
// shortlist of PSUs whose capacity covers it.
func Estimate(c Catalog, s Selection) Result {
	b := Breakdown{
		CPU:            watts(c.CPUs, s.CPU),
		GPU:            watts(c.GPUs, s.GPU),
		RAMSingle:      watts(c.RAM, s.RAM),
		RAMModules:     s.RAMModules,
		StorageDetails: []StorageDetail{},
		Cooling:        watts(c.Cooling, s.Cooling),
		Drive:          watts(c.Drives, s.Drive),
		Motherboard:    watts(c.Motherboards, s.Motherboard),
		Overhead:       Overhead,
		MarginPct:      s.MarginPct,
	}
	if s.RAMModules > 0 {
		b.RAM = mulSat(b.RAMSingle, s.RAMModules)
	}

	for _, name := range s.Storage {
		if strings.TrimSpace(name) == "" {
			continue
		}
		r, ok := Lookup(c.Storage, name)
		if !ok {
			continue
		}
		b.Storage = addSat(b.Storage, r.Watts)
		b.StorageDetails = append(b.StorageDetails, StorageDetail{Name: name, Consumption: r.Watts})
	}

	for _, w := range []int{b.CPU, b.GPU, b.RAM, b.Storage, b.Cooling, b.Drive, b.Motherboard, b.Overhead} {
		b.RawTotal = addSat(b.RawTotal, w)
	}
	required := Required(b.RawTotal, s.MarginPct)

	return Result{
		Required:  required,
		Breakdown: b,
		PSUs:      Shortlist(c.PSUs, required),
	}
}

// Required returns ceil(raw * (1 + marginPct/100)). The ceiling is computed
// in integers so that values such as 200 at 10% give exactly 220. A product
// that does not fit an int saturates instead of wrapping.
func Required(raw, marginPct int) int {
	p, ok := mulChecked(raw, addSat(100, marginPct))
	if !ok {
		return p
	}
	return ceilDiv(p, 100)
}

func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

// addSat adds without wrapping: results clamp to math.MaxInt / math.MinInt.
func addSat(a, b int) int {
	s := a + b
	switch {
	case a > 0 && b > 0 && s < 0:
		return math.MaxInt
	case a < 0 && b < 0 && s >= 0:
		return math.MinInt
	}
	return s
}

func mulSat(a, b int) int {
	p, _ := mulChecked(a, b)
	return p
}

// mulChecked returns a*b and true, or the saturated bound and false on
// overflow.
func mulChecked(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	overflow := p/b != a ||
		(a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt)
	if !overflow {
		return p, true
	}
	if (a < 0) == (b < 0) {
		return math.MaxInt, false
	}
	return math.MinInt, false
}

// Shortlist keeps PSUs with capacity >= required, sorted ascending by
// capacity (ties in catalog order) and truncated to MaxShortlist.
func Shortlist(psus []Record, required int) []PSU {
	out := []PSU{}
	for _, p := range psus {
		if p.Watts >= required {
			out = append(out, PSU{Name: p.Name, Wattage: p.Watts})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Wattage < out[j].Wattage })
	if len(out) > MaxShortlist {
		out = out[:MaxShortlist]
	}
	return out
}
