package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scholar-graph/apierr"
	"scholar-graph/models"
)

func TestScholarServiceDetail(t *testing.T) {
	_, st := seedNetwork(t)
	ctx := context.Background()
	require.NoError(t, st.AddTag(ctx, "alice", "favourite"))
	svc := NewScholarService(st, zap.NewNop())

	d, err := svc.Detail(ctx, "alice")

	require.NoError(t, err)
	assert.Equal(t, "Alice", d.Entity.Name)
	assert.Equal(t, models.RolePrimary, d.Scholar.Role)
	assert.Equal(t, []string{"Databases"}, d.Interests)
	assert.Equal(t, []string{"favourite"}, d.Tags)
	require.Len(t, d.Publications, 1)
	assert.Equal(t, "Query Plans", d.Publications[0].Title)
	require.Len(t, d.Institutions, 1)
	assert.Equal(t, "ETH Zurich", d.Institutions[0].Name)
}

func TestScholarServiceDetailSecondary(t *testing.T) {
	_, st := seedNetwork(t)
	svc := NewScholarService(st, zap.NewNop())

	d, err := svc.Detail(context.Background(), "dave")

	require.NoError(t, err)
	assert.Equal(t, models.RoleSecondary, d.Scholar.Role)
	assert.Empty(t, d.Interests)
	assert.Empty(t, d.Publications)
}

func TestScholarServiceDetailNotFound(t *testing.T) {
	_, st := seedNetwork(t)
	svc := NewScholarService(st, zap.NewNop())

	_, err := svc.Detail(context.Background(), "nobody")

	assert.True(t, apierr.IsNotFound(err))
}

func TestScholarServiceSetRole(t *testing.T) {
	_, st := seedNetwork(t)
	svc := NewScholarService(st, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.SetRole(ctx, "carol", models.RolePrimary))
	sc, err := st.Scholar(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, models.RolePrimary, sc.Role)

	assert.True(t, apierr.IsNotFound(svc.SetRole(ctx, "nobody", models.RolePrimary)))
	assert.True(t, apierr.IsValidation(svc.SetRole(ctx, "carol", models.Role(7))))
}
