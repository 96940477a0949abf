package filter

import (
	"fmt"
	"strings"

	"scholar-graph/models"
)

// Family gruppiert Prädikate nach der Tabelle, auf der sie geprüft werden.
// Prädikate derselben Familie Publication bzw. Institution müssen für
// denselben Datensatz gelten.
type Family string

const (
	FamilyScholar     Family = "scholar"
	FamilyInterest    Family = "interest"
	FamilyPublication Family = "publication"
	FamilyInstitution Family = "institution"
)

// Field ist ein logisches Feld; der Store bildet es über eine feste Liste auf
// Spalten ab.
type Field string

const (
	FieldCitedBy         Field = "citedby"
	FieldHIndex          Field = "hindex"
	FieldAffiliation     Field = "affiliation"
	FieldInterest        Field = "interest"
	FieldVenue           Field = "venue"
	FieldYear            Field = "year"
	FieldTitle           Field = "title"
	FieldPaperCitations  Field = "num_citations"
	FieldCountry         Field = "country"
	FieldInstitutionType Field = "inst_type"
)

type Op string

const (
	OpGTE      Op = ">="
	OpLTE      Op = "<="
	OpEq       Op = "="
	OpContains Op = "contains"
	OpPrefix   Op = "prefix"
)

// Textual meldet, ob der Operator auf Text mit LIKE arbeitet.
func (o Op) Textual() bool {
	return o == OpContains || o == OpPrefix
}

// Predicate ist eine einzelne Bedingung. Value ist int oder string.
type Predicate struct {
	Key    string
	Family Family
	Field  Field
	Op     Op
	Value  any
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s.%s %s %v", p.Family, p.Field, p.Op, p.Value)
}

// Query ist das Ergebnis von Compile.
type Query struct {
	Predicates []Predicate
	// Roles schränkt auf diese Rollen ein; leer heißt alle.
	Roles []models.Role
	// MinConnections ist nur gesetzt, wenn die Option übergeben wurde.
	MinConnections *int
	Visibility     models.Visibility
	// Relations ist der Kantenfilter des Projectors.
	Relations []models.RelationType
}

// IsUnconstrained meldet, ob die Query nur durch die Sichtbarkeit
// eingeschränkt ist.
func (q Query) IsUnconstrained() bool {
	return len(q.Predicates) == 0 && len(q.Roles) == 0 && q.MinConnections == nil
}

// Family liefert die Prädikate einer Familie in Compile-Reihenfolge.
func (q Query) Family(f Family) []Predicate {
	var out []Predicate
	for _, p := range q.Predicates {
		if p.Family == f {
			out = append(out, p)
		}
	}
	return out
}

func (q Query) String() string {
	parts := make([]string, 0, len(q.Predicates)+3)
	for _, p := range q.Predicates {
		parts = append(parts, p.String())
	}
	if len(q.Roles) > 0 {
		parts = append(parts, fmt.Sprintf("role in %v", q.Roles))
	}
	if q.MinConnections != nil {
		parts = append(parts, fmt.Sprintf("connections >= %d", *q.MinConnections))
	}
	parts = append(parts, "visibility "+q.Visibility.String())
	return strings.Join(parts, " AND ")
}
