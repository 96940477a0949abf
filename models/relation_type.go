package models

// RelationType ist der Typ einer Beziehung. Unbekannte Typen sind erlaubt.
type RelationType string

const (
	RelationAdvisor   RelationType = "advisor"
	RelationColleague RelationType = "colleague"
	RelationCoauthor  RelationType = "coauthor"
)

// UnknownRelationPriority gilt für alle nicht erkannten Typen.
const UnknownRelationPriority = 999

// KnownRelationTypes sind die Typen, die der Graph standardmäßig anzeigt.
var KnownRelationTypes = []RelationType{RelationCoauthor, RelationAdvisor, RelationColleague}

// Priority liefert den Rang des Typs; kleiner ist wichtiger.
func (t RelationType) Priority() int {
	switch t {
	case RelationAdvisor:
		return 1
	case RelationColleague:
		return 2
	case RelationCoauthor:
		return 3
	}
	return UnknownRelationPriority
}

// Known meldet, ob t einer der drei Standardtypen ist.
func (t RelationType) Known() bool {
	return t.Priority() != UnknownRelationPriority
}

// RelationLess ordnet Typen nach Priorität, bei Gleichstand lexikografisch.
func RelationLess(a, b RelationType) bool {
	pa, pb := a.Priority(), b.Priority()
	if pa != pb {
		return pa < pb
	}
	return a < b
}
