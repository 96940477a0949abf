package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scholar-graph/models"
)

func TestCompileEmptyOptions(t *testing.T) {
	q, issues := Compile(Options{})

	assert.Empty(t, issues)
	assert.True(t, q.IsUnconstrained())
	assert.Equal(t, models.VisibilityDefault, q.Visibility)
	assert.Nil(t, q.Relations)
	assert.Nil(t, q.MinConnections)
}

func TestCompileScholarPredicates(t *testing.T) {
	q, issues := Compile(Options{
		KeyMinCitations:   100,
		KeyMinHIndexLt:    "40",
		KeyMinCitationsEq: 0,
		KeyMinHIndex:      -3,
	})

	require.Empty(t, issues)
	assert.Equal(t, []Predicate{
		{Key: KeyMinCitations, Family: FamilyScholar, Field: FieldCitedBy, Op: OpGTE, Value: 100},
		{Key: KeyMinHIndexLt, Family: FamilyScholar, Field: FieldHIndex, Op: OpLTE, Value: 40},
	}, q.Predicates)
}

func TestCompileJSONNumbers(t *testing.T) {
	// encoding/json liefert float64
	q, issues := Compile(Options{KeyYearFrom: float64(2020)})

	require.Empty(t, issues)
	require.Len(t, q.Predicates, 1)
	assert.Equal(t, 2020, q.Predicates[0].Value)
	assert.Equal(t, FamilyPublication, q.Predicates[0].Family)
}

func TestCompileTextPredicates(t *testing.T) {
	q, issues := Compile(Options{
		KeyInterestKeyword:              "  Machine Learning ",
		KeyTagFilter:                    "favourite",
		KeyAffiliationKeywordStartsWith: "MIT",
		KeyVenueKeyword:                 "",
		KeyCountryKeywordEquals:         "Germany",
	})

	require.Empty(t, issues)
	assert.ElementsMatch(t, []Predicate{
		{Key: KeyAffiliationKeywordStartsWith, Family: FamilyScholar, Field: FieldAffiliation, Op: OpPrefix, Value: "MIT"},
		{Key: KeyInterestKeyword, Family: FamilyInterest, Field: FieldInterest, Op: OpContains, Value: "Machine Learning"},
		{Key: KeyTagFilter, Family: FamilyInterest, Field: FieldInterest, Op: OpEq, Value: "favourite"},
		{Key: KeyCountryKeywordEquals, Family: FamilyInstitution, Field: FieldCountry, Op: OpEq, Value: "Germany"},
	}, q.Predicates)
	assert.Len(t, q.Family(FamilyInterest), 2)
}

func TestCompileYearTo(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"unbounded sentinel", 9999, 0},
		{"bounded", 2019, 1},
		{"zero is a bound", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := Compile(Options{KeyYearTo: tt.value})
			assert.Len(t, q.Predicates, tt.want)
		})
	}
}

func TestCompileInvalidValues(t *testing.T) {
	q, issues := Compile(Options{
		KeyMinCitations:      "lots",
		KeyHideNotInterested: "maybe",
		KeyInterestKeyword:   []any{"a", "b"},
		KeyMinHIndex:         7,
	})

	require.Len(t, issues, 3)
	keys := []string{issues[0].Key, issues[1].Key, issues[2].Key}
	assert.ElementsMatch(t, []string{KeyMinCitations, KeyHideNotInterested, KeyInterestKeyword}, keys)
	require.Len(t, q.Predicates, 1)
	assert.Equal(t, KeyMinHIndex, q.Predicates[0].Key)
	assert.Equal(t, models.VisibilityDefault, q.Visibility)
	assert.Contains(t, issues[0].Error(), "option ")
}

func TestCompileVisibility(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want models.Visibility
	}{
		{"absent", Options{}, models.VisibilityDefault},
		{"hide true", Options{KeyHideNotInterested: true}, models.VisibilityStrictHidden},
		{"hide false", Options{KeyHideNotInterested: false}, models.VisibilityShowAll},
		{"hide string", Options{KeyHideNotInterested: "true"}, models.VisibilityStrictHidden},
		{"show all overrides", Options{KeyHideNotInterested: true, KeyShowAllScholars: true}, models.VisibilityShowAll},
		{"show all false is neutral", Options{KeyShowAllScholars: false}, models.VisibilityDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, issues := Compile(tt.opts)
			require.Empty(t, issues)
			assert.Equal(t, tt.want, q.Visibility)
		})
	}
}

func TestCompileRoles(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []models.Role
	}{
		{"none", Options{}, nil},
		{"both", Options{KeyShowPrimary: true, KeyShowSecondary: true}, nil},
		{"neither", Options{KeyShowPrimary: false, KeyShowSecondary: false}, nil},
		{"primary", Options{KeyShowPrimary: true, KeyShowSecondary: false}, []models.Role{models.RolePrimary}},
		{"secondary", Options{KeyShowSecondary: "true"}, []models.Role{models.RoleSecondary, models.RoleNotInterested}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := Compile(tt.opts)
			assert.Equal(t, tt.want, q.Roles)
		})
	}
}

func TestCompileMinConnections(t *testing.T) {
	q, _ := Compile(Options{KeyMinConnections: 3})
	require.NotNil(t, q.MinConnections)
	assert.Equal(t, 3, *q.MinConnections)
	assert.False(t, q.IsUnconstrained())

	q, _ = Compile(Options{KeyMinConnections: 0})
	assert.Nil(t, q.MinConnections)
}

func TestCompileRelations(t *testing.T) {
	q, _ := Compile(Options{KeyShowCoauthor: true, KeyShowAdvisor: true, KeyShowColleague: true})
	assert.Nil(t, q.Relations)

	q, _ = Compile(Options{KeyShowCoauthor: false})
	assert.Equal(t, []models.RelationType{models.RelationAdvisor, models.RelationColleague}, q.Relations)

	q, _ = Compile(Options{KeyShowCoauthor: "false", KeyShowAdvisor: 0, KeyShowColleague: false})
	assert.Nil(t, q.Relations)
}

type stubStore struct {
	got Query
	ids []string
	err error
}

func (s *stubStore) MatchScholars(_ context.Context, q Query) ([]string, error) {
	s.got = q
	return s.ids, s.err
}

func TestCompilerCandidates(t *testing.T) {
	st := &stubStore{ids: []string{"a", "b"}}
	c := NewCompiler(st, zap.NewNop())

	q := c.Compile(Options{KeyMinCitations: 10, KeyMinHIndex: "x"})
	ids, err := c.Candidates(context.Background(), q)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, q, st.got)
	assert.Len(t, st.got.Predicates, 1)
}

func TestCompilerCandidatesError(t *testing.T) {
	boom := errors.New("db down")
	c := NewCompiler(&stubStore{err: boom}, zap.NewNop())

	_, err := c.Candidates(context.Background(), Query{})

	require.ErrorIs(t, err, boom)
}
