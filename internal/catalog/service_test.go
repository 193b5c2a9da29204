package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carenow-backend/internal/metrics"
	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/internal/repository/memory"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/logger"
)

// countingRepo counts List calls to observe cache behaviour.
type countingRepo struct {
	repository.ServiceRepository
	lists int
}

func (r *countingRepo) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	r.lists++
	return r.ServiceRepository.List(ctx, activeOnly)
}

func setup(t *testing.T) (*Service, *countingRepo) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Seed(context.Background()))
	repo := &countingRepo{ServiceRepository: store.Repositories().Services}
	return NewService(repo, time.Minute, metrics.New(), logger.Nop()), repo
}

func TestListIsCached(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)

	first, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, first, len(memory.DemoServices))

	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)

	// callers may not corrupt the cached slice
	first[0].Name = "changed"
	again, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again[0].Name)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)

	_, err := svc.List(ctx)
	require.NoError(t, err)

	price := 120000.0
	inactive := false
	_, err = svc.Update(ctx, "elder_care_1", models.UpdateServiceInput{BasePrice: &price})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "elder_care_1")
	require.NoError(t, err)
	assert.Equal(t, 120000.0, got.BasePrice)

	_, err = svc.Update(ctx, "pet_care_1", models.UpdateServiceInput{IsActive: &inactive})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(memory.DemoServices)-1)
	assert.Equal(t, 2, repo.lists)
}

func TestGetUnknownService(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errs.Is(err, models.ErrNotFound))
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	created, err := svc.Create(ctx, models.CreateServiceInput{
		ID: "elder_care_2", Name: "Night Watch", Category: models.CategoryElderCare, BasePrice: 150000,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(memory.DemoServices)+1)
}
