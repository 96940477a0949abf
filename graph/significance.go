package graph

import "sort"

const (
	DefaultSmallGraphThreshold = 20
	DefaultMinConnectivity     = 2
)

// SignificancePolicy entscheidet, welche Sekundär-Scholars angezeigt werden.
type SignificancePolicy struct {
	// Unterhalb dieser Anzahl Primär-Scholars werden alle Sekundären gezeigt.
	SmallGraphThreshold int
	// Sonst muss die Konnektivität diesen Wert übersteigen (>, nicht >=).
	MinConnectivity int
}

func DefaultSignificancePolicy() SignificancePolicy {
	return SignificancePolicy{
		SmallGraphThreshold: DefaultSmallGraphThreshold,
		MinConnectivity:     DefaultMinConnectivity,
	}
}

func (p SignificancePolicy) normalized() SignificancePolicy {
	if p.SmallGraphThreshold <= 0 {
		p.SmallGraphThreshold = DefaultSmallGraphThreshold
	}
	if p.MinConnectivity < 0 {
		p.MinConnectivity = DefaultMinConnectivity
	}
	return p
}

// Selection ist das Ergebnis von Select.
type Selection struct {
	IDs []string
	// ShowAll: kleiner Graph, alle referenzierten Sekundären.
	ShowAll bool
	// Fallback: strenger Filter war leer, daher alle referenzierten Sekundären.
	Fallback bool
}

// Select wählt aus connectivity (Sekundär-ID -> Anzahl verschiedener
// Primär-Endpunkte) die anzuzeigenden IDs, sortiert.
func (p SignificancePolicy) Select(primaryCount int, connectivity map[string]int) Selection {
	p = p.normalized()

	all := make([]string, 0, len(connectivity))
	for id, n := range connectivity {
		if n > 0 {
			all = append(all, id)
		}
	}
	sort.Strings(all)

	if primaryCount < p.SmallGraphThreshold {
		return Selection{IDs: all, ShowAll: true}
	}

	strict := make([]string, 0, len(all))
	for _, id := range all {
		if connectivity[id] > p.MinConnectivity {
			strict = append(strict, id)
		}
	}
	if len(strict) == 0 {
		return Selection{IDs: all, Fallback: len(all) > 0}
	}
	return Selection{IDs: strict}
}
