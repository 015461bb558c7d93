package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/cheapplay/internal/model"
)

func TestViewRedemption(t *testing.T) {
	type want struct {
		err        error
		status     model.Status
		updates    int
		isRedeemed bool
	}

	tests := []struct {
		name  string
		order model.Order
		code  string
		want  want
	}{
		{
			name:  "unknown code",
			order: model.Order{ID: "o1", Code: "ABC123", Status: model.StatusPending},
			code:  "NOPE",
			want:  want{err: ErrInvalidCode, status: model.StatusPending},
		},
		{
			name:  "empty code",
			order: model.Order{ID: "o1", Code: "ABC123", Status: model.StatusPending},
			code:  "   ",
			want:  want{err: ErrInvalidCode, status: model.StatusPending},
		},
		{
			name:  "delivered order is inert",
			order: model.Order{ID: "o1", Code: "ABC123", Status: model.StatusDelivered, IsRedeemed: true},
			code:  "ABC123",
			want:  want{err: ErrAlreadyRedeemed, status: model.StatusDelivered, isRedeemed: true},
		},
		{
			name:  "pending order moves to processing on view",
			order: model.Order{ID: "o1", Code: "ABC123", Status: model.StatusPending},
			code:  " ABC123 ",
			want:  want{status: model.StatusProcessing, updates: 1},
		},
		{
			name:  "completed order is read only",
			order: model.Order{ID: "o1", Code: "ABC123", Status: model.StatusCompleted, IsRedeemed: true},
			code:  "ABC123",
			want:  want{status: model.StatusCompleted, isRedeemed: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo(tt.order)
			svc := newTestService(repo, baseTime)

			o, err := svc.ViewRedemption(context.Background(), tt.code)
			if tt.want.err != nil {
				require.ErrorIs(t, err, tt.want.err)
				assert.Nil(t, o)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want.status, o.Status)
			}

			stored := repo.orders["o1"]
			assert.Equal(t, tt.want.status, stored.Status)
			assert.Equal(t, tt.want.isRedeemed, stored.IsRedeemed)
			assert.Equal(t, tt.want.updates, repo.updates)
		})
	}
}

func TestConfirmRedemption_Scenario(t *testing.T) {
	repo := newMemRepo(model.Order{ID: "o1", Code: "ABC123", Status: model.StatusPending})
	svc := newTestService(repo, baseTime)

	o, err := svc.ConfirmRedemption(context.Background(), "ABC123", "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, o.Status)
	assert.True(t, o.IsRedeemed)

	stored := repo.orders["o1"]
	assert.Equal(t, model.StatusProcessing, stored.Status)
	assert.True(t, stored.IsRedeemed)
	assert.Equal(t, "buyer@example.com", stored.Email)
	assert.Equal(t, baseTime, stored.UpdatedAt)
	require.NotNil(t, stored.Processing)
	assert.Equal(t, "completed", stored.Processing.Status)
	require.NotNil(t, stored.Completed)
	assert.Equal(t, "processing", stored.Completed.Status)
	assert.Equal(t, 1, repo.updates)

	_, err = svc.ConfirmRedemption(context.Background(), "ABC123", "other@example.com")
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)
	assert.Equal(t, 1, repo.updates)
	assert.Equal(t, "buyer@example.com", repo.orders["o1"].Email)
}

func TestConfirmRedemption_AfterView(t *testing.T) {
	repo := newMemRepo(model.Order{ID: "o1", Code: "ABC123", Status: model.StatusPending})
	svc := newTestService(repo, baseTime)

	_, err := svc.ViewRedemption(context.Background(), "ABC123")
	require.NoError(t, err)

	o, err := svc.ConfirmRedemption(context.Background(), "ABC123", "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, o.Status)
	assert.True(t, o.IsRedeemed)
	assert.Equal(t, 2, repo.updates)
}

func TestConfirmRedemption_DeliveredNeverMutates(t *testing.T) {
	order := model.Order{ID: "o1", Code: "ABC123", Status: model.StatusDelivered, Email: "first@example.com"}
	repo := newMemRepo(order)
	svc := newTestService(repo, baseTime)

	_, err := svc.ConfirmRedemption(context.Background(), "ABC123", "buyer@example.com")
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)
	assert.Equal(t, 0, repo.updates)
	assert.Equal(t, order, repo.orders["o1"])
}

func TestConfirmRedemption_InvalidEmailSkipsStore(t *testing.T) {
	repo := newMemRepo(model.Order{ID: "o1", Code: "ABC123", Status: model.StatusPending})
	svc := newTestService(repo, baseTime)

	_, err := svc.ConfirmRedemption(context.Background(), "ABC123", "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Equal(t, 0, repo.reads)
}

func TestConfirmRedemption_CancelledRejected(t *testing.T) {
	repo := newMemRepo(model.Order{ID: "o1", Code: "ABC123", Status: model.StatusCancelled})
	svc := newTestService(repo, baseTime)

	_, err := svc.ConfirmRedemption(context.Background(), "ABC123", "buyer@example.com")
	assert.ErrorIs(t, err, model.ErrIllegalTransition)
	assert.Equal(t, 0, repo.updates)
}

func TestConfirmRedemption_StoreFailure(t *testing.T) {
	repo := newMemRepo(model.Order{ID: "o1", Code: "ABC123", Status: model.StatusPending})
	repo.updateErr = errors.New("connection reset by peer")
	svc := newTestService(repo, baseTime)

	_, err := svc.ConfirmRedemption(context.Background(), "ABC123", "buyer@example.com")
	require.Error(t, err)
	assert.False(t, repo.orders["o1"].IsRedeemed)
}
