// Package filter übersetzt die Filteroptionen des Frontends in eine typisierte
// Query, die der Store in parametrisiertes SQL umsetzt.
package filter

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Options ist der rohe Options-Beutel aus dem Request-Body.
type Options map[string]any

// Option-Schlüssel, wie sie das Frontend sendet.
const (
	KeyMinCitations   = "minCitations"
	KeyMinCitationsLt = "minCitationsLt"
	KeyMinCitationsEq = "minCitationsEq"
	KeyMinHIndex      = "minHIndex"
	KeyMinHIndexLt    = "minHIndexLt"
	KeyMinHIndexEq    = "minHIndexEq"

	KeyInterestKeyword       = "interestKeyword"
	KeyInterestKeywordEquals = "interestKeywordEquals"
	KeyTagFilter             = "tagFilter"

	KeyAffiliationKeyword           = "affiliationKeyword"
	KeyAffiliationKeywordEquals     = "affiliationKeywordEquals"
	KeyAffiliationKeywordStartsWith = "affiliationKeywordStartsWith"

	KeyVenueKeyword            = "venueKeyword"
	KeyVenueKeywordEquals      = "venueKeywordEquals"
	KeyYearFrom                = "yearFrom"
	KeyYearTo                  = "yearTo"
	KeyYearEq                  = "yearEq"
	KeyPaperTitleKeyword       = "paperTitleKeyword"
	KeyPaperTitleKeywordEquals = "paperTitleKeywordEquals"
	KeyMinPaperCitations       = "minPaperCitations"
	KeyMinPaperCitationsLt     = "minPaperCitationsLt"
	KeyMinPaperCitationsEq     = "minPaperCitationsEq"

	KeyCountryKeyword       = "countryKeyword"
	KeyCountryKeywordEquals = "countryKeywordEquals"
	KeyInstitutionType      = "institutionType"

	KeyShowPrimary    = "showPrimary"
	KeyShowSecondary  = "showSecondary"
	KeyMinConnections = "minConnections"

	KeyHideNotInterested = "hideNotInterested"
	KeyShowAllScholars   = "showAllScholars"

	KeyShowCoauthor  = "showCoauthor"
	KeyShowAdvisor   = "showAdvisor"
	KeyShowColleague = "showColleague"
)

// ValidationIssue beschreibt einen Optionswert, der nicht gelesen werden konnte.
// Das zugehörige Prädikat wird verworfen.
type ValidationIssue struct {
	Key    string
	Value  any
	Reason string
}

func (i ValidationIssue) Error() string {
	return fmt.Sprintf("option %s=%v: %s", i.Key, i.Value, i.Reason)
}

// reader liest typisierte Werte und sammelt Probleme.
type reader struct {
	opts   Options
	issues []ValidationIssue
}

func (r *reader) raw(key string) (any, bool) {
	v, ok := r.opts[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r *reader) fail(key string, v any, err error) {
	r.issues = append(r.issues, ValidationIssue{Key: key, Value: v, Reason: err.Error()})
}

// text liefert einen getrimmten, nicht leeren String.
func (r *reader) text(key string) (string, bool) {
	v, ok := r.raw(key)
	if !ok {
		return "", false
	}
	switch v.(type) {
	case map[string]any, []any:
		r.fail(key, v, fmt.Errorf("expected string, got %T", v))
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		r.fail(key, v, err)
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// integer liest Zahlen, numerische Strings und JSON-Floats.
func (r *reader) integer(key string) (int, bool) {
	v, ok := r.raw(key)
	if !ok {
		return 0, false
	}
	if s, isString := v.(string); isString {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		v = s
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		r.fail(key, v, err)
		return 0, false
	}
	return n, true
}

// positive ist integer, aber nur Werte > 0 zählen als gesetzt.
func (r *reader) positive(key string) (int, bool) {
	n, ok := r.integer(key)
	return n, ok && n > 0
}

func (r *reader) flag(key string) (bool, bool) {
	v, ok := r.raw(key)
	if !ok {
		return false, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return false, false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		r.fail(key, v, err)
		return false, false
	}
	return b, true
}

func (r *reader) flagOr(key string, def bool) bool {
	if b, ok := r.flag(key); ok {
		return b
	}
	return def
}
