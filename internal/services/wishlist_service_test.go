package services_test

import (
	"context"
	"testing"

	"vastraa/internal/apperrors"
	"vastraa/internal/models"
	"vastraa/internal/repositories"
	"vastraa/internal/services"
	"vastraa/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWishlistService_ToggleTwiceRestoresState(t *testing.T) {
	wishlist := new(MockWishlistRepository)
	products := new(MockProductRepository)
	service := services.NewWishlistService(wishlist, products, nil, zap.NewNop())
	ctx := context.Background()

	products.On("GetByID", mock.Anything, "p1").Return(&models.Product{Base: models.Base{ID: "p1"}}, nil).Twice()
	wishlist.On("Toggle", mock.Anything, alice.UserID, "p1").Return(repositories.WishlistAdded, nil).Once()
	wishlist.On("Toggle", mock.Anything, alice.UserID, "p1").Return(repositories.WishlistRemoved, nil).Once()

	state, err := service.Toggle(ctx, alice, "p1")
	require.NoError(t, err)
	assert.Equal(t, repositories.WishlistAdded, state)

	state, err = service.Toggle(ctx, alice, "p1")
	require.NoError(t, err)
	assert.Equal(t, repositories.WishlistRemoved, state)

	wishlist.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestWishlistService_AnonymousCaller(t *testing.T) {
	wishlist := new(MockWishlistRepository)
	service := services.NewWishlistService(wishlist, new(MockProductRepository), nil, zap.NewNop())
	ctx := context.Background()

	_, err := service.Toggle(ctx, session.Session{}, "p1")
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))

	items, err := service.List(ctx, session.Session{})
	require.NoError(t, err)
	assert.Empty(t, items)

	saved, err := service.Contains(ctx, session.Session{}, "p1")
	require.NoError(t, err)
	assert.False(t, saved)

	wishlist.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything)
}

func TestWishlistService_ToggleUnknownProduct(t *testing.T) {
	wishlist := new(MockWishlistRepository)
	products := new(MockProductRepository)
	service := services.NewWishlistService(wishlist, products, nil, zap.NewNop())

	products.On("GetByID", mock.Anything, "gone").Return(nil, apperrors.NotFound("product with ID gone not found")).Once()
	_, err := service.Toggle(context.Background(), alice, "gone")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	wishlist.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything)
}
