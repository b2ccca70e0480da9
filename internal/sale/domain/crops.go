package domain

import (
	"strings"

	"github.com/gosimple/slug"
)

type Crop struct {
	Name string `json:"name"`
	Zone string `json:"zone"`
	GMO  bool   `json:"gmo"`
}

var crops = []Crop{
	{Name: "Blé", Zone: "Tous les continents"},
	{Name: "Orge", Zone: "Amérique, Asie, Europe, Océanie"},
	{Name: "Avoine", Zone: "Amérique, Europe, Océanie"},
	{Name: "Soja", Zone: "Amérique, Asie"},
	{Name: "Maïs", Zone: "Afrique, Amérique, Asie, Europe"},
	{Name: "Seigle", Zone: "Asie, Europe"},
	{Name: "Tournesol", Zone: "Afrique, Europe, Océanie"},
	{Name: "Fonio (O.G.M)", Zone: "Tous les continents", GMO: true},
	{Name: "Sorgho (O.G.M)", Zone: "Tous les continents", GMO: true},
	{Name: "Kamut (O.G.M)", Zone: "Tous les continents", GMO: true},
	{Name: "Épaufre glacé", Zone: "Edora uniquement"},
	{Name: "Avoine arctique", Zone: "Edora uniquement"},
}

var cropsByKey = func() map[string]Crop {
	index := make(map[string]Crop, len(crops))
	for _, c := range crops {
		index[cropKey(c.Name)] = c
	}
	return index
}()

// Crops returns the catalog in display order.
func Crops() []Crop {
	out := make([]Crop, len(crops))
	copy(out, crops)
	return out
}

// LookupCrop matches a crop ignoring case, accents and the GMO suffix.
func LookupCrop(name string) (Crop, bool) {
	c, ok := cropsByKey[cropKey(name)]
	return c, ok
}

func cropKey(name string) string {
	key := slug.Make(name)
	for _, suffix := range []string{"-o-g-m", "-ogm"} {
		key = strings.TrimSuffix(key, suffix)
	}
	return key
}
