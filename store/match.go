package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"scholar-graph/apierr"
	"scholar-graph/filter"
	"scholar-graph/models"
)

// columns ist die feste Zuordnung logischer Felder zu Spalten. Andere Felder
// werden abgelehnt; Werte gehen nur als Parameter in das SQL.
var columns = map[filter.Family]map[filter.Field]string{
	filter.FamilyScholar: {
		filter.FieldCitedBy:     "scholars.citedby",
		filter.FieldHIndex:      "scholars.hindex",
		filter.FieldAffiliation: "scholars.affiliation",
	},
	filter.FamilyInterest: {
		filter.FieldInterest: "interests.interest",
	},
	filter.FamilyPublication: {
		filter.FieldVenue:          "p.venue",
		filter.FieldYear:           "p.year",
		filter.FieldTitle:          "p.title",
		filter.FieldPaperCitations: "p.num_citations",
	},
	filter.FamilyInstitution: {
		filter.FieldCountry:         "i.country",
		filter.FieldInstitutionType: "i.inst_type",
	},
}

const (
	interestExists    = "EXISTS (SELECT 1 FROM interests WHERE interests.entity_id = scholars.id AND %s)"
	publicationExists = "EXISTS (SELECT 1 FROM authorships a JOIN publications p ON p.id = a.publication_id WHERE a.scholar_id = scholars.id AND %s)"
	institutionExists = "EXISTS (SELECT 1 FROM scholar_institutions si JOIN institutions i ON i.id = si.institution_id WHERE si.scholar_id = scholars.id AND %s)"

	// Anzahl der Beziehungszeilen in beiden Richtungen; ein Coautoren-Paar zählt doppelt.
	connectionCount = `(SELECT COUNT(*) FROM relationships r
		WHERE (r.source_id = scholars.id OR r.target_id = scholars.id)%s) >= ?`
	strictEndpoint = `
		AND (CASE WHEN r.source_id = scholars.id THEN r.target_id ELSE r.source_id END)
		NOT IN (SELECT hidden.id FROM scholars hidden WHERE hidden.role = ?)`
)

// MatchScholars setzt q in eine parametrisierte Abfrage um und liefert die
// IDs der passenden Scholars, nach Zitationen absteigend.
func (s *Store) MatchScholars(ctx context.Context, q filter.Query) ([]string, error) {
	tx := s.conn(ctx).Model(&models.Scholar{})

	tx, err := applyQuery(tx, q)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := tx.Order("scholars.citedby DESC").Order("scholars.id").Pluck("scholars.id", &ids).Error; err != nil {
		return nil, wrap("store.MatchScholars", err)
	}
	s.log.Debug("Matched scholars", zap.Stringer("query", q), zap.Int("matched", len(ids)))
	return ids, nil
}

func applyQuery(tx *gorm.DB, q filter.Query) (*gorm.DB, error) {
	for _, p := range q.Family(filter.FamilyScholar) {
		cond, arg, err := condition(p)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(cond, arg)
	}

	for _, p := range q.Family(filter.FamilyInterest) {
		cond, arg, err := condition(p)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(fmt.Sprintf(interestExists, cond), arg)
	}

	// Publikations- und Institutionsprädikate müssen jeweils für denselben
	// Datensatz gelten, daher ein EXISTS pro Familie.
	for _, group := range []struct {
		family filter.Family
		tmpl   string
	}{
		{filter.FamilyPublication, publicationExists},
		{filter.FamilyInstitution, institutionExists},
	} {
		preds := q.Family(group.family)
		if len(preds) == 0 {
			continue
		}
		conds := make([]string, 0, len(preds))
		args := make([]any, 0, len(preds))
		for _, p := range preds {
			cond, arg, err := condition(p)
			if err != nil {
				return nil, err
			}
			conds = append(conds, cond)
			args = append(args, arg)
		}
		tx = tx.Where(fmt.Sprintf(group.tmpl, strings.Join(conds, " AND ")), args...)
	}

	if len(q.Roles) > 0 {
		tx = tx.Where("scholars.role IN ?", roleValues(q.Roles))
	}

	if q.MinConnections != nil {
		var args []any
		extra := ""
		if q.Visibility.Strict() {
			extra = strictEndpoint
			args = append(args, int(models.RoleNotInterested))
		}
		args = append(args, *q.MinConnections)
		tx = tx.Where(fmt.Sprintf(connectionCount, extra), args...)
	}

	if q.Visibility.HidesNotInterested() {
		tx = tx.Where("scholars.role <> ?", int(models.RoleNotInterested))
	}
	return tx, nil
}

// condition baut die Bedingung für ein Prädikat. Die Spalte stammt immer aus
// columns, der Wert wird gebunden.
func condition(p filter.Predicate) (string, any, error) {
	col, ok := columns[p.Family][p.Field]
	if !ok {
		return "", nil, apierr.Validation("store.MatchScholars", fmt.Errorf("field %s not filterable in %s", p.Field, p.Family))
	}
	switch p.Op {
	case filter.OpGTE, filter.OpLTE, filter.OpEq:
		return fmt.Sprintf("%s %s ?", col, p.Op), p.Value, nil
	case filter.OpContains, filter.OpPrefix:
		text, ok := p.Value.(string)
		if !ok {
			return "", nil, apierr.Validation("store.MatchScholars", fmt.Errorf("%s expects text, got %T", p.Op, p.Value))
		}
		pattern := escapeLike(strings.ToLower(text)) + "%"
		if p.Op == filter.OpContains {
			pattern = "%" + pattern
		}
		return fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col), pattern, nil
	}
	return "", nil, apierr.Validation("store.MatchScholars", fmt.Errorf("unsupported operator %q", p.Op))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
