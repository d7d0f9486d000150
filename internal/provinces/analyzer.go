package provinces

import (
	"sort"
	"strings"

	"marketplace-console/internal/models"
)

// Variant is one original spelling observed under a group key
type Variant struct {
	Name          string `json:"name"`
	LocationCount int    `json:"location_count"`
	CityCount     int    `json:"city_count"`
}

// Group aggregates locations sharing a normalized province name and code
type Group struct {
	Key            string    `json:"key"`
	NormalizedName string    `json:"normalized_name"`
	Code           string    `json:"code"`
	LocationCount  int       `json:"location_count"`
	CityCount      int       `json:"city_count"`
	Variants       []Variant `json:"variants"`
	Duplicate      bool      `json:"duplicate"`
}

// SecondLevel compares distinct cities and regencies with the official counts
type SecondLevel struct {
	Cities            int `json:"cities"`
	Regencies         int `json:"regencies"`
	Total             int `json:"total"`
	OfficialCities    int `json:"official_cities"`
	OfficialRegencies int `json:"official_regencies"`
	OfficialTotal     int `json:"official_total"`
}

// Analysis is the province completeness and duplicate report
type Analysis struct {
	TotalLocations int         `json:"total_locations"`
	Groups         []Group     `json:"groups"`
	Duplicates     []Group     `json:"duplicates"`
	Missing        []string    `json:"missing"`
	Found          int         `json:"found"`
	Total          int         `json:"total"`
	SecondLevel    SecondLevel `json:"second_level"`
}

// GroupKey is the grouping key of a province name and code
func GroupKey(provinceName, provinceCode string) string {
	return models.NormalizeProvinceName(provinceName) + "-" + provinceCode
}

type groupAcc struct {
	group    *Group
	cities   map[string]struct{}
	variants map[string]int // spelling -> index in group.Variants
	vcities  []map[string]struct{}
}

// Analyze groups locations by normalized province name and code, flags groups seen
// under more than one original spelling, and lists reference provinces with no match.
// Groups are ordered by key; variants keep first-seen order.
func Analyze(locations []models.Location) *Analysis {
	accs := make(map[string]*groupAcc)
	order := make([]string, 0)
	kota := make(map[string]struct{})
	kabupaten := make(map[string]struct{})

	for i := range locations {
		loc := &locations[i]
		key := GroupKey(loc.ProvinceName, loc.ProvinceCode)

		acc, ok := accs[key]
		if !ok {
			acc = &groupAcc{
				group: &Group{
					Key:            key,
					NormalizedName: loc.NormalizedProvinceName(),
					Code:           loc.ProvinceCode,
				},
				cities:   make(map[string]struct{}),
				variants: make(map[string]int),
			}
			accs[key] = acc
			order = append(order, key)
		}

		vi, ok := acc.variants[loc.ProvinceName]
		if !ok {
			vi = len(acc.group.Variants)
			acc.variants[loc.ProvinceName] = vi
			acc.group.Variants = append(acc.group.Variants, Variant{Name: loc.ProvinceName})
			acc.vcities = append(acc.vcities, make(map[string]struct{}))
		}

		acc.group.LocationCount++
		acc.group.Variants[vi].LocationCount++
		acc.cities[loc.CityName] = struct{}{}
		acc.vcities[vi][loc.CityName] = struct{}{}

		city := key + "|" + strings.ToUpper(strings.TrimSpace(loc.CityName))
		switch strings.ToUpper(loc.CityType) {
		case models.CityTypeKota:
			kota[city] = struct{}{}
		case models.CityTypeKabupaten:
			kabupaten[city] = struct{}{}
		}
	}

	a := &Analysis{
		TotalLocations: len(locations),
		Groups:         make([]Group, 0, len(order)),
		Duplicates:     make([]Group, 0),
		Total:          len(reference),
		SecondLevel: SecondLevel{
			Cities:            len(kota),
			Regencies:         len(kabupaten),
			Total:             len(kota) + len(kabupaten),
			OfficialCities:    OfficialCities,
			OfficialRegencies: OfficialRegencies,
			OfficialTotal:     OfficialTotal,
		},
	}

	for _, key := range order {
		acc := accs[key]
		g := acc.group
		g.CityCount = len(acc.cities)
		for i := range g.Variants {
			g.Variants[i].CityCount = len(acc.vcities[i])
		}
		g.Duplicate = len(g.Variants) > 1
		a.Groups = append(a.Groups, *g)
	}
	sort.SliceStable(a.Groups, func(i, j int) bool {
		return a.Groups[i].Key < a.Groups[j].Key
	})
	for _, g := range a.Groups {
		if g.Duplicate {
			a.Duplicates = append(a.Duplicates, g)
		}
	}

	a.Missing = missingProvinces(a.Groups)
	a.Found = a.Total - len(a.Missing)
	return a
}

// a reference province counts as present when any normalized name equals or contains it
func missingProvinces(groups []Group) []string {
	missing := make([]string, 0)
	for _, name := range reference {
		want := strings.ToUpper(name)
		found := false
		for _, g := range groups {
			if g.NormalizedName == want || strings.Contains(g.NormalizedName, want) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	return missing
}

// FindGroup returns the group with the given key
func (a *Analysis) FindGroup(key string) (Group, bool) {
	for _, g := range a.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}
