package power

// Record is one catalog entry with its wattage already parsed.
type Record struct {
	Name  string
	Watts int
}

// Catalog is a read-only snapshot of every category used by Estimate. The
// order of each list is significant: Lookup returns the first substring
// match in this order.
type Catalog struct {
	CPUs         []Record
	GPUs         []Record
	RAM          []Record
	Storage      []Record
	Cooling      []Record
	Drives       []Record
	Motherboards []Record
	PSUs         []Record
}

// Raw catalog keys as served by the catalog API.
const (
	KeyCPUs         = "cpus"
	KeyGPUs         = "gpus"
	KeyRAM          = "rams"
	KeyStorage      = "storages"
	KeyCooling      = "cooling"
	KeyDrives       = "drives"
	KeyMotherboards = "motherboards"
	KeyPSUs         = "psus"
)

// FromRaw builds a Catalog from category key -> list of field maps, the
// shape returned by the catalog API. Records without a name are dropped.
func FromRaw(raw map[string][]map[string]any) Catalog {
	ram := raw[KeyRAM]
	if ram == nil {
		ram = raw["ram"]
	}
	return Catalog{
		CPUs:         records(raw[KeyCPUs], "consumption", ParseWatt),
		GPUs:         records(raw[KeyGPUs], "consumption", ParseWatt),
		RAM:          records(ram, "consumption", ParseWatt),
		Storage:      records(raw[KeyStorage], "consumption", ParseWatt),
		Cooling:      records(raw[KeyCooling], "consumption", ParseCapacity),
		Drives:       records(raw[KeyDrives], "consumption", ParseCapacity),
		Motherboards: records(raw[KeyMotherboards], "consumption", ParseCapacity),
		PSUs:         records(raw[KeyPSUs], "wattage", ParseCapacity),
	}
}

func records(rows []map[string]any, field string, parse func(string) int) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		name, _ := row["name"].(string)
		if name == "" {
			continue
		}
		out = append(out, Record{Name: name, Watts: parse(Stringify(row[field]))})
	}
	return out
}
