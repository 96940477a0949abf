package graph

import (
	"sort"

	"scholar-graph/models"
)

// Consolidated ist die zusammengeführte Beziehung zu einem Endpunkt.
type Consolidated struct {
	EndpointID       string
	Label            models.RelationType
	Weight           int
	AllRelationTypes []models.RelationType
}

// Consolidate führt alle Beziehungszeilen von ownerID (beide Richtungen) zu
// genau einem Datensatz pro anderem Endpunkt zusammen.
//
// Label ist der Typ mit der höchsten Priorität, Weight das Maximum (nicht die
// Summe) über alle Zeilen des Paars. Das Ergebnis hängt nicht von der
// Reihenfolge der Zeilen ab.
func Consolidate(ownerID string, rows []models.Relationship) []Consolidated {
	type acc struct {
		label  models.RelationType
		weight int
		types  map[models.RelationType]struct{}
	}
	byEndpoint := make(map[string]*acc)

	for _, row := range rows {
		other, ok := row.Other(ownerID)
		if !ok || other == ownerID || other == "" {
			continue
		}
		typ := row.Type
		if typ == "" {
			typ = models.RelationCoauthor
		}
		weight := row.Weight
		if weight < 1 {
			weight = 1
		}

		a, seen := byEndpoint[other]
		if !seen {
			byEndpoint[other] = &acc{
				label:  typ,
				weight: weight,
				types:  map[models.RelationType]struct{}{typ: {}},
			}
			continue
		}
		a.types[typ] = struct{}{}
		if models.RelationLess(typ, a.label) {
			a.label = typ
		}
		if weight > a.weight {
			a.weight = weight
		}
	}

	out := make([]Consolidated, 0, len(byEndpoint))
	for id, a := range byEndpoint {
		types := make([]models.RelationType, 0, len(a.types))
		for t := range a.types {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return models.RelationLess(types[i], types[j]) })
		out = append(out, Consolidated{
			EndpointID:       id,
			Label:            a.label,
			Weight:           a.weight,
			AllRelationTypes: types,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].EndpointID < out[j].EndpointID
	})
	return out
}
