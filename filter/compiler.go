package filter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"scholar-graph/models"
)

// yearToUnbounded ist der Wert, den das Frontend für "kein Jahresende" sendet.
const yearToUnbounded = 9999

// Store ist der Teil des Stores, den der Compiler braucht.
type Store interface {
	// MatchScholars liefert die IDs aller Scholars, die q erfüllen,
	// sortiert nach Zitationen absteigend.
	MatchScholars(ctx context.Context, q Query) ([]string, error)
}

// Compile übersetzt den Options-Beutel in eine Query. Nicht lesbare Werte
// werden als ValidationIssue gemeldet; das Prädikat entfällt dann.
func Compile(opts Options) (Query, []ValidationIssue) {
	r := &reader{opts: opts}
	var q Query

	addInt := func(key string, fam Family, field Field, op Op) {
		if n, ok := r.positive(key); ok {
			q.Predicates = append(q.Predicates, Predicate{Key: key, Family: fam, Field: field, Op: op, Value: n})
		}
	}
	addText := func(key string, fam Family, field Field, op Op) {
		if s, ok := r.text(key); ok {
			q.Predicates = append(q.Predicates, Predicate{Key: key, Family: fam, Field: field, Op: op, Value: s})
		}
	}

	addInt(KeyMinCitations, FamilyScholar, FieldCitedBy, OpGTE)
	addInt(KeyMinCitationsLt, FamilyScholar, FieldCitedBy, OpLTE)
	addInt(KeyMinCitationsEq, FamilyScholar, FieldCitedBy, OpEq)
	addInt(KeyMinHIndex, FamilyScholar, FieldHIndex, OpGTE)
	addInt(KeyMinHIndexLt, FamilyScholar, FieldHIndex, OpLTE)
	addInt(KeyMinHIndexEq, FamilyScholar, FieldHIndex, OpEq)

	addText(KeyAffiliationKeyword, FamilyScholar, FieldAffiliation, OpContains)
	addText(KeyAffiliationKeywordEquals, FamilyScholar, FieldAffiliation, OpEq)
	addText(KeyAffiliationKeywordStartsWith, FamilyScholar, FieldAffiliation, OpPrefix)

	addText(KeyInterestKeyword, FamilyInterest, FieldInterest, OpContains)
	addText(KeyInterestKeywordEquals, FamilyInterest, FieldInterest, OpEq)
	addText(KeyTagFilter, FamilyInterest, FieldInterest, OpEq)

	addText(KeyVenueKeyword, FamilyPublication, FieldVenue, OpContains)
	addText(KeyVenueKeywordEquals, FamilyPublication, FieldVenue, OpEq)
	addInt(KeyYearFrom, FamilyPublication, FieldYear, OpGTE)
	if n, ok := r.integer(KeyYearTo); ok && n < yearToUnbounded {
		q.Predicates = append(q.Predicates, Predicate{Key: KeyYearTo, Family: FamilyPublication, Field: FieldYear, Op: OpLTE, Value: n})
	}
	addInt(KeyYearEq, FamilyPublication, FieldYear, OpEq)
	addText(KeyPaperTitleKeyword, FamilyPublication, FieldTitle, OpContains)
	addText(KeyPaperTitleKeywordEquals, FamilyPublication, FieldTitle, OpEq)
	addInt(KeyMinPaperCitations, FamilyPublication, FieldPaperCitations, OpGTE)
	addInt(KeyMinPaperCitationsLt, FamilyPublication, FieldPaperCitations, OpLTE)
	addInt(KeyMinPaperCitationsEq, FamilyPublication, FieldPaperCitations, OpEq)

	addText(KeyCountryKeyword, FamilyInstitution, FieldCountry, OpContains)
	addText(KeyCountryKeywordEquals, FamilyInstitution, FieldCountry, OpEq)
	addText(KeyInstitutionType, FamilyInstitution, FieldInstitutionType, OpEq)

	showPrimary, _ := r.flag(KeyShowPrimary)
	showSecondary, _ := r.flag(KeyShowSecondary)
	switch {
	case showPrimary && !showSecondary:
		q.Roles = []models.Role{models.RolePrimary}
	case showSecondary && !showPrimary:
		q.Roles = []models.Role{models.RoleSecondary, models.RoleNotInterested}
	}

	if n, ok := r.integer(KeyMinConnections); ok && n >= 1 {
		q.MinConnections = &n
	}

	q.Visibility = models.VisibilityDefault
	if hide, ok := r.flag(KeyHideNotInterested); ok {
		q.Visibility = models.VisibilityFromHideFlag(hide)
	}
	if showAll, _ := r.flag(KeyShowAllScholars); showAll {
		q.Visibility = models.VisibilityShowAll
	}

	show := map[models.RelationType]bool{
		models.RelationAdvisor:   r.flagOr(KeyShowAdvisor, true),
		models.RelationColleague: r.flagOr(KeyShowColleague, true),
		models.RelationCoauthor:  r.flagOr(KeyShowCoauthor, true),
	}
	// Ist kein Typ ausgewählt, gelten wieder alle.
	var selected []models.RelationType
	for _, t := range models.KnownRelationTypes {
		if show[t] {
			selected = append(selected, t)
		}
	}
	if len(selected) < len(models.KnownRelationTypes) {
		q.Relations = selected
	}

	return q, r.issues
}

// Compiler kompiliert Optionen und ermittelt die Kandidaten über den Store.
type Compiler struct {
	store Store
	log   *zap.Logger
}

func NewCompiler(store Store, log *zap.Logger) *Compiler {
	return &Compiler{store: store, log: log.With(zap.String("component", "filter_compiler"))}
}

// Compile wie das Paket-Compile, loggt aber die verworfenen Optionen.
func (c *Compiler) Compile(opts Options) Query {
	q, issues := Compile(opts)
	for _, issue := range issues {
		c.log.Warn("Ignoring invalid filter option",
			zap.String("key", issue.Key),
			zap.Any("value", issue.Value),
			zap.String("reason", issue.Reason))
	}
	c.log.Debug("Compiled filter", zap.Stringer("query", q))
	return q
}

// Candidates liefert die Scholar-IDs, die alle Prädikate von q erfüllen.
func (c *Compiler) Candidates(ctx context.Context, q Query) ([]string, error) {
	ids, err := c.store.MatchScholars(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("match scholars: %w", err)
	}
	c.log.Info("Filter matched scholars",
		zap.Int("predicates", len(q.Predicates)),
		zap.Int("matched", len(ids)),
		zap.Bool("unconstrained", q.IsUnconstrained()))
	return ids, nil
}
