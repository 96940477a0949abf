// Package graph baut aus den Scholar-Daten den Visualisierungsgraphen
// (Knoten + Kanten) für das Frontend.
package graph

import (
	"encoding/json"

	"scholar-graph/models"
)

// Group ist die Darstellungsgruppe eines Knotens.
type Group string

const (
	GroupPrimary       Group = "primary"
	GroupSecondary     Group = "secondary"
	GroupNotInterested Group = "not-interested"
)

// GroupForRole bildet eine Rolle auf ihre Gruppe ab.
func GroupForRole(r models.Role) Group {
	switch r {
	case models.RolePrimary:
		return GroupPrimary
	case models.RoleNotInterested:
		return GroupNotInterested
	case models.RoleSecondary:
		return GroupSecondary
	}
	return GroupSecondary
}

// Graph ist die an das Frontend gelieferte Projektion.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Empty liefert einen Graph ohne Knoten, der als "[]" serialisiert wird.
func Empty() *Graph {
	return &Graph{Nodes: []Node{}, Edges: []Edge{}}
}

func (g *Graph) IsEmpty() bool {
	return g == nil || len(g.Nodes) == 0
}

// NodeIDs liefert die Menge aller Knoten-IDs.
func (g *Graph) NodeIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}
	return ids
}

type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Group Group    `json:"group"`
	Data  NodeData `json:"data"`
}

// NodeData sind die Anzeigeattribute eines Knotens. Extensions enthält die
// offenen Zusatzfelder des Entity-Datensatzes und wird beim Serialisieren in
// dasselbe Objekt gemischt; deklarierte Felder haben Vorrang.
type NodeData struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	ScholarID    string         `json:"scholar_id"`
	Affiliation  string         `json:"affiliation"`
	Interests    []string       `json:"interests"`
	Tags         []string       `json:"tags"`
	IsSecondary  bool           `json:"is_secondary"`
	Role         models.Role    `json:"role"`
	CitedBy      int            `json:"citedby"`
	HIndex       int            `json:"hindex"`
	I10Index     int            `json:"i10index"`
	CitesPerYear map[string]int `json:"cites_per_year,omitempty"`
	URLPicture   string         `json:"url_picture"`
	Homepage     string         `json:"homepage"`

	Extensions map[string]any `json:"-"`
}

func (d NodeData) MarshalJSON() ([]byte, error) {
	type plain NodeData
	raw, err := json.Marshal(plain(d))
	if err != nil || len(d.Extensions) == 0 {
		return raw, err
	}
	merged := make(map[string]json.RawMessage, len(d.Extensions)+16)
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, err
	}
	for k, v := range d.Extensions {
		if _, exists := merged[k]; exists {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = b
	}
	return json.Marshal(merged)
}

type Edge struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Label  string    `json:"label"`
	Weight int       `json:"weight"`
	Data   *EdgeData `json:"data,omitempty"`
}

// EdgeData wird nur gesetzt, wenn zwischen dem Paar mehrere Typen existieren.
type EdgeData struct {
	AllRelations []string `json:"all_relations"`
}

// pairKey ist der kanonische Schlüssel eines ungeordneten Paars.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

func edgeFrom(source string, c Consolidated) Edge {
	e := Edge{
		Source: source,
		Target: c.EndpointID,
		Label:  string(c.Label),
		Weight: c.Weight,
	}
	if len(c.AllRelationTypes) > 1 {
		all := make([]string, len(c.AllRelationTypes))
		for i, t := range c.AllRelationTypes {
			all[i] = string(t)
		}
		e.Data = &EdgeData{AllRelations: all}
	}
	return e
}
