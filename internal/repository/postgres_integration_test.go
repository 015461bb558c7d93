//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/cheapplay/internal/model"
)

func newTestRepository(t *testing.T) *PostgresRepository {
	t.Helper()

	dsn := os.Getenv("DATABASE_URI")
	if dsn == "" {
		t.Skip("DATABASE_URI is not set")
	}

	repo, err := NewPostgresRepository(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func newOrder() *model.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Order{
		ID:        uuid.NewString(),
		Code:      "IT-" + uuid.NewString()[:8],
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgresRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	o := newOrder()
	require.NoError(t, repo.CreateOrder(ctx, o))

	byID, err := repo.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Code, byID.Code)
	assert.Equal(t, model.StatusPending, byID.Status)
	assert.Nil(t, byID.LoginInfo)
	assert.Nil(t, byID.AccessCode)

	byCode, err := repo.GetOrderByCode(ctx, o.Code)
	require.NoError(t, err)
	assert.Equal(t, o.ID, byCode.ID)

	err = repo.CreateOrder(ctx, &model.Order{ID: uuid.NewString(), Code: o.Code, Status: model.StatusPending, CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt})
	assert.ErrorIs(t, err, ErrCodeExists)

	_, err = repo.GetOrderByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPostgresRepository_UpdateRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	o := newOrder()
	require.NoError(t, repo.CreateOrder(ctx, o))

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, o.Redeem("buyer@example.com", now))
	o.IssueAccessCode("4821", "buyer@example.com", now)
	require.NoError(t, o.AttachCredentials(model.LoginInfo{Email: "acc@example.com", Password: `p"w`, TwoFA: "X1"}, now))
	require.NoError(t, repo.UpdateOrder(ctx, o))

	got, err := repo.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.True(t, got.IsRedeemed)
	assert.Equal(t, "buyer@example.com", got.Email)
	require.NotNil(t, got.LoginInfo)
	assert.Equal(t, *o.LoginInfo, *got.LoginInfo)
	require.NotNil(t, got.AccessCode)
	assert.Equal(t, "4821", got.AccessCode.Code)
	assert.True(t, got.AccessCode.CreatedAt.Equal(now))
	require.NotNil(t, got.Completed)
	assert.Equal(t, "completed", got.Completed.Label)

	got.ClearAccessCode(now)
	require.NoError(t, repo.UpdateOrder(ctx, got))

	again, err := repo.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, again.AccessCode)

	missing := newOrder()
	assert.ErrorIs(t, repo.UpdateOrder(ctx, missing), ErrOrderNotFound)
}

func TestPostgresRepository_ListOrders(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	o := newOrder()
	o.Status = model.StatusCancelled
	require.NoError(t, repo.CreateOrder(ctx, o))

	orders, err := repo.ListOrders(ctx, model.StatusCancelled, 100)
	require.NoError(t, err)

	found := false
	for _, got := range orders {
		assert.Equal(t, model.StatusCancelled, got.Status)
		if got.ID == o.ID {
			found = true
		}
	}
	assert.True(t, found)
}
