package model

// StateToCities maps each state in the dataset to the cities it covers.
var StateToCities = map[string][]string{
	"Delhi":       {"Delhi"},
	"Maharashtra": {"Mumbai", "Pune", "Nagpur"},
	"Tamil Nadu":  {"Chennai", "Vellore"},
	"Karnataka":   {"Bangalore"},
	"Telangana":   {"Hyderabad"},
	"West Bengal": {"Kolkata"},
	"Gujarat":     {"Ahmedabad"},
	"Uttarakhand": {"Roorkee"},
}

// RegionToCities maps each region of India to the dataset cities inside it.
var RegionToCities = map[string][]string{
	"North":   {"Delhi", "Roorkee"},
	"South":   {"Chennai", "Bangalore", "Hyderabad", "Vellore"},
	"West":    {"Mumbai", "Pune", "Ahmedabad", "Nagpur"},
	"East":    {"Kolkata"},
	"Central": {}, // no dataset cities fall in the Central region
}

// StateCities returns the cities for a state. Unknown states resolve to an
// empty list: the caller cannot narrow by city, which is not an error.
func StateCities(state string) []string {
	return StateToCities[state]
}

// RegionCities returns the cities for a region, empty for unknown regions.
func RegionCities(region string) []string {
	return RegionToCities[region]
}
