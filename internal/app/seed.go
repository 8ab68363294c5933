package app

import "github.com/phenrril/psucalc/internal/domain"

func part(cat domain.Category, name, power string) domain.Component {
	return domain.Component{Category: cat, Name: name, Power: power}
}

func disk(name, power, typ string) domain.Component {
	return domain.Component{Category: domain.CategoryStorage, Name: name, Power: power, Type: typ}
}

func defaultCatalog() []domain.Component {
	return []domain.Component{
		part(domain.CategoryCPU, "Intel Core i3-12100F", "58W"),
		part(domain.CategoryCPU, "Intel Core i5-12400F", "65W"),
		part(domain.CategoryCPU, "Intel Core i7-13700K", "125W"),
		part(domain.CategoryCPU, "Intel Core i9-13900K", "253W"),
		part(domain.CategoryCPU, "AMD Ryzen 5 5600X", "65W"),
		part(domain.CategoryCPU, "AMD Ryzen 7 5800X3D", "105W"),
		part(domain.CategoryCPU, "AMD Ryzen 9 7950X", "170W"),

		part(domain.CategoryGPU, "NVIDIA GeForce GTX 1650", "75W"),
		part(domain.CategoryGPU, "NVIDIA GeForce RTX 3060", "170W"),
		part(domain.CategoryGPU, "NVIDIA GeForce RTX 3070", "220W"),
		part(domain.CategoryGPU, "NVIDIA GeForce RTX 4070", "200W"),
		part(domain.CategoryGPU, "NVIDIA GeForce RTX 4090", "450W"),
		part(domain.CategoryGPU, "AMD Radeon RX 6600", "132W"),
		part(domain.CategoryGPU, "AMD Radeon RX 7900 XTX", "355W"),

		part(domain.CategoryRAM, "DDR4 8GB 3200", "3W"),
		part(domain.CategoryRAM, "DDR4 16GB 3200", "5W"),
		part(domain.CategoryRAM, "DDR5 16GB 6000", "6W"),
		part(domain.CategoryRAM, "DDR5 32GB 6000", "8W"),

		disk("Samsung 970 EVO Plus 1TB", "6W", "ssd"),
		disk("Samsung 870 EVO 1TB", "4W", "ssd"),
		disk("WD Blue 2TB", "6W", "hdd"),
		disk("Seagate Barracuda 4TB", "8W", "hdd"),

		part(domain.CategoryCooling, "Stock cooler", "3"),
		part(domain.CategoryCooling, "Cooler Master Hyper 212", "4"),
		part(domain.CategoryCooling, "Noctua NH-D15", "5"),
		part(domain.CategoryCooling, "240mm AIO", "12"),
		part(domain.CategoryCooling, "360mm AIO", "18"),

		part(domain.CategoryDrive, "DVD-RW", "15"),
		part(domain.CategoryDrive, "Blu-ray", "25"),

		part(domain.CategoryMotherboard, "A520 mATX", "20"),
		part(domain.CategoryMotherboard, "B550 ATX", "25"),
		part(domain.CategoryMotherboard, "B660 ATX", "30"),
		part(domain.CategoryMotherboard, "X670E ATX", "45"),
		part(domain.CategoryMotherboard, "Z790 ATX", "45"),

		part(domain.CategoryPSU, "EVGA 500 W1", "500"),
		part(domain.CategoryPSU, "Corsair CX550F", "550"),
		part(domain.CategoryPSU, "Corsair CX650", "650"),
		part(domain.CategoryPSU, "Seasonic Focus GX-750", "750"),
		part(domain.CategoryPSU, "Corsair RM850x", "850"),
		part(domain.CategoryPSU, "be quiet! Straight Power 11 1000W", "1000"),
		part(domain.CategoryPSU, "Corsair HX1200", "1200"),
		part(domain.CategoryPSU, "Seasonic Prime TX-1600", "1600"),
	}
}
