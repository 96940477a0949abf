package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"scholar-graph/apierr"
	"scholar-graph/models"
	"scholar-graph/store"
	"scholar-graph/store/storetest"
)

type seed struct {
	t   *testing.T
	ctx context.Context
	s   *store.Store
}

func newSeed(t *testing.T) *seed {
	return &seed{t: t, ctx: context.Background(), s: storetest.NewTestingStore(t)}
}

func (sd *seed) scholar(id string, role models.Role, citedBy, hIndex int, affiliation string) *seed {
	sd.t.Helper()
	require.NoError(sd.t, sd.s.UpsertEntity(sd.ctx, &models.Entity{ID: id, Kind: models.KindScholar, Name: "Name " + id}))
	require.NoError(sd.t, sd.s.UpsertScholar(sd.ctx, &models.Scholar{
		ID: id, Role: role, CitedBy: citedBy, HIndex: hIndex, Affiliation: affiliation,
	}))
	return sd
}

func (sd *seed) publication(scholarID, pubID string, year, citations int, venue, title string) *seed {
	sd.t.Helper()
	require.NoError(sd.t, sd.s.UpsertPublication(sd.ctx, &models.Publication{
		ID: pubID, Title: title, Year: year, Venue: venue, NumCitations: citations,
	}))
	_, err := sd.s.AddAuthorship(sd.ctx, scholarID, pubID)
	require.NoError(sd.t, err)
	return sd
}

func (sd *seed) institution(scholarID, instID, country, typ string) *seed {
	sd.t.Helper()
	require.NoError(sd.t, sd.s.UpsertInstitution(sd.ctx, &models.Institution{ID: instID, Name: "Inst " + instID, Country: country, Type: typ}))
	require.NoError(sd.t, sd.s.LinkInstitution(sd.ctx, &models.ScholarInstitution{ScholarID: scholarID, InstitutionID: instID, IsCurrent: true}))
	return sd
}

func (sd *seed) coauthor(a, b string, w int) *seed {
	sd.t.Helper()
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		_, err := sd.s.UpsertRelationship(sd.ctx, models.Relationship{
			SourceID: pair[0], SourceKind: models.KindScholar,
			TargetID: pair[1], TargetKind: models.KindScholar,
			Type: models.RelationCoauthor,
		}, w)
		require.NoError(sd.t, err)
	}
	return sd
}

func TestScholarRoundTrip(t *testing.T) {
	sd := newSeed(t)
	ctx := sd.ctx

	require.NoError(t, sd.s.UpsertEntity(ctx, &models.Entity{
		ID: "s1", Kind: models.KindScholar, Name: "Grace Hopper",
		Data: datatypes.JSONMap{"source": "scholar"},
	}))
	require.NoError(t, sd.s.UpsertScholar(ctx, &models.Scholar{
		ID: "s1", Affiliation: "Yale", CitedBy: 500, HIndex: 20, Role: models.RolePrimary,
		CitesPerYear: datatypes.NewJSONType(map[string]int{"2020": 7}),
	}))

	e, err := sd.s.Entity(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", e.Name)
	assert.Equal(t, "scholar", e.Data["source"])

	sc, err := sd.s.Scholar(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.RolePrimary, sc.Role)
	assert.Equal(t, 7, sc.CitesPerYear.Data()["2020"])

	// Upsert überschreibt auch Nullwerte
	require.NoError(t, sd.s.UpsertScholar(ctx, &models.Scholar{ID: "s1", Role: models.RoleSecondary}))
	sc, err = sd.s.Scholar(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSecondary, sc.Role)
	assert.Zero(t, sc.CitedBy)

	_, err = sd.s.Scholar(ctx, "missing")
	assert.True(t, apierr.IsNotFound(err))
	_, err = sd.s.Entity(ctx, "missing")
	assert.True(t, apierr.IsNotFound(err))
}

func TestScholarsByRole(t *testing.T) {
	sd := newSeed(t).
		scholar("b", models.RolePrimary, 0, 0, "").
		scholar("a", models.RolePrimary, 0, 0, "").
		scholar("c", models.RoleSecondary, 0, 0, "").
		scholar("d", models.RoleNotInterested, 0, 0, "")

	got, err := sd.s.ScholarsByRole(sd.ctx, models.RolePrimary)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	got, err = sd.s.ScholarsByRole(sd.ctx, models.RoleSecondary, models.RoleNotInterested)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = sd.s.ScholarsByRole(sd.ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnsureScholarKeepsExistingRole(t *testing.T) {
	sd := newSeed(t).scholar("p", models.RolePrimary, 10, 1, "")

	created, err := sd.s.EnsureScholar(sd.ctx, &models.Scholar{ID: "p", Role: models.RoleSecondary})
	require.NoError(t, err)
	assert.False(t, created)

	sc, err := sd.s.Scholar(sd.ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, models.RolePrimary, sc.Role)
	assert.Equal(t, 10, sc.CitedBy)

	created, err = sd.s.EnsureScholar(sd.ctx, &models.Scholar{ID: "new", Role: models.RoleSecondary})
	require.NoError(t, err)
	assert.True(t, created)
}

func TestSetRole(t *testing.T) {
	sd := newSeed(t).scholar("s", models.RoleSecondary, 0, 0, "")

	require.NoError(t, sd.s.SetRole(sd.ctx, "s", models.RoleNotInterested))
	sc, err := sd.s.Scholar(sd.ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, models.RoleNotInterested, sc.Role)

	assert.True(t, apierr.IsNotFound(sd.s.SetRole(sd.ctx, "ghost", models.RolePrimary)))
	assert.True(t, apierr.IsValidation(sd.s.SetRole(sd.ctx, "s", models.Role(7))))
}

func TestReplaceInterestsPreservesTags(t *testing.T) {
	sd := newSeed(t).scholar("s", models.RoleSecondary, 0, 0, "")
	ctx := sd.ctx

	require.NoError(t, sd.s.AddTag(ctx, "s", "favourite"))
	require.NoError(t, sd.s.ReplaceInterests(ctx, "s", []string{"Databases", "Graphs", "Databases", " "}))
	require.NoError(t, sd.s.ReplaceInterests(ctx, "s", []string{"Graphs", "favourite", "Compilers"}))

	rows, err := sd.s.Interests(ctx, "s")
	require.NoError(t, err)

	got := map[string]bool{}
	for _, r := range rows {
		got[r.Text] = r.IsCustom
	}
	assert.Equal(t, map[string]bool{"Compilers": false, "Graphs": false, "favourite": true}, got)
}

func TestUpsertRelationshipWeightNeverDecreases(t *testing.T) {
	sd := newSeed(t).scholar("a", models.RoleSecondary, 0, 0, "").scholar("b", models.RoleSecondary, 0, 0, "")
	ctx := sd.ctx
	rel := models.Relationship{
		SourceID: "a", SourceKind: models.KindScholar,
		TargetID: "b", TargetKind: models.KindScholar,
		Type: models.RelationCoauthor,
	}

	steps := []struct {
		delta int
		want  int
	}{
		{3, 3},
		{0, 3},
		{2, 5},
		{-4, 5},
	}
	for _, step := range steps {
		got, err := sd.s.UpsertRelationship(ctx, rel, step.delta)
		require.NoError(t, err)
		assert.Equal(t, step.want, got.Weight)
	}

	stored, err := sd.s.Relationship(ctx, "a", "b", models.RelationCoauthor)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Weight)

	zero, err := sd.s.UpsertRelationship(ctx, models.Relationship{
		SourceID: "a", SourceKind: models.KindScholar, TargetID: "b", TargetKind: models.KindScholar,
		Type: models.RelationAdvisor,
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, zero.Weight)

	_, err = sd.s.UpsertRelationship(ctx, models.Relationship{SourceID: "a"}, 1)
	assert.True(t, apierr.IsValidation(err))
}

func TestRelationshipsForBothDirections(t *testing.T) {
	sd := newSeed(t)
	ctx := sd.ctx
	sd.coauthor("a", "b", 2)
	_, err := sd.s.UpsertRelationship(ctx, models.Relationship{
		SourceID: "c", SourceKind: models.KindScholar, TargetID: "a", TargetKind: models.KindScholar,
		Type: models.RelationAdvisor,
	}, 1)
	require.NoError(t, err)
	_, err = sd.s.UpsertRelationship(ctx, models.Relationship{
		SourceID: "a", SourceKind: models.KindScholar, TargetID: "inst_x", TargetKind: models.KindInstitution,
		Type: "affiliated",
	}, 1)
	require.NoError(t, err)

	rows, err := sd.s.RelationshipsFor(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, models.KindScholar, r.SourceKind)
		assert.Equal(t, models.KindScholar, r.TargetKind)
	}
}

func TestDeleteRelationship(t *testing.T) {
	sd := newSeed(t)
	sd.coauthor("a", "b", 1)

	deleted, err := sd.s.DeleteRelationship(sd.ctx, "a", "b", models.RelationCoauthor)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = sd.s.DeleteRelationship(sd.ctx, "a", "b", models.RelationCoauthor)
	require.NoError(t, err)
	assert.False(t, deleted)

	rows, err := sd.s.RelationshipsFor(sd.ctx, "a")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestTransactionRollsBack(t *testing.T) {
	sd := newSeed(t)
	boom := errors.New("boom")

	err := sd.s.Transaction(sd.ctx, func(tx *store.Store) error {
		if err := tx.UpsertEntity(sd.ctx, &models.Entity{ID: "x", Kind: models.KindScholar, Name: "X"}); err != nil {
			return err
		}
		if err := tx.UpsertScholar(sd.ctx, &models.Scholar{ID: "x"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = sd.s.Entity(sd.ctx, "x")
	assert.True(t, apierr.IsNotFound(err))
	_, err = sd.s.Scholar(sd.ctx, "x")
	assert.True(t, apierr.IsNotFound(err))
}

func TestPublicationsAndInstitutionLinks(t *testing.T) {
	sd := newSeed(t).scholar("s", models.RolePrimary, 0, 0, "").
		publication("s", "p1", 2018, 3, "VLDB", "Old").
		publication("s", "p2", 2022, 9, "SIGMOD", "New").
		institution("s", "i1", "Germany", "university")

	added, err := sd.s.AddAuthorship(sd.ctx, "s", "p1")
	require.NoError(t, err)
	assert.False(t, added)

	pubs, err := sd.s.Publications(sd.ctx, "s")
	require.NoError(t, err)
	require.Len(t, pubs, 2)
	assert.Equal(t, "p2", pubs[0].ID)

	links, err := sd.s.InstitutionLinks(sd.ctx, "s")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "Germany", links[0].Country)
	assert.Equal(t, "university", links[0].Type)
	assert.True(t, links[0].IsCurrent)
}

func TestUpsertPublicationUpdatesExisting(t *testing.T) {
	sd := newSeed(t).scholar("s", models.RolePrimary, 0, 0, "")
	first := &models.Publication{ID: "p1", Title: "Draft", Year: 2021, CitedByURL: "https://scholar.test/a"}
	require.NoError(t, sd.s.UpsertPublication(sd.ctx, first))
	_, err := sd.s.AddAuthorship(sd.ctx, "s", "p1")
	require.NoError(t, err)

	require.NoError(t, sd.s.UpsertPublication(sd.ctx, &models.Publication{
		ID: "p1", Title: "Final", Year: 2022, NumCitations: 7, CitedByURL: "https://scholar.test/b",
	}))

	pubs, err := sd.s.Publications(sd.ctx, "s")
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	assert.Equal(t, "Final", pubs[0].Title)
	assert.Equal(t, 2022, pubs[0].Year)
	assert.Equal(t, 7, pubs[0].NumCitations)
	assert.Equal(t, "https://scholar.test/b", pubs[0].CitedByURL)
}
