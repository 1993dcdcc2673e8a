package services_test

import (
	"context"
	"errors"
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

func validCheckout() services.CheckoutRequest {
	return services.CheckoutRequest{
		Address: models.Address{
			FullName: "Aanya Sharma",
			Phone:    "9876543210",
			Street:   "12 MG Road",
			City:     "Jaipur",
			Pincode:  "302001",
		},
		PaymentMethod: "upi",
	}
}

func TestOrderService_CheckoutValidation(t *testing.T) {
	orders := new(MockOrderRepository)
	service := services.NewOrderService(orders, nil, nil, zap.NewNop())
	ctx := context.Background()

	_, err := service.Checkout(ctx, session.Session{}, validCheckout())
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))

	missingPincode := validCheckout()
	missingPincode.Address.Pincode = ""
	_, err = service.Checkout(ctx, alice, missingPincode)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidationFailed))
	assert.Contains(t, err.Error(), "pincode")

	badPayment := validCheckout()
	badPayment.PaymentMethod = "bitcoin"
	_, err = service.Checkout(ctx, alice, badPayment)
	assert.True(t, apperrors.Is(err, apperrors.KindValidationFailed))

	orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

func TestOrderService_CheckoutPublishesEvent(t *testing.T) {
	orders := new(MockOrderRepository)
	events := new(MockEventPublisher)
	service := services.NewOrderService(orders, nil, events, zap.NewNop())

	placed := &models.Order{
		Base:          models.Base{ID: "order-1"},
		UserID:        alice.UserID,
		TotalPrice:    1300,
		PaymentMethod: "upi",
		Status:        models.OrderStatusPlaced,
		Items:         []models.OrderItem{{Quantity: 2}, {Quantity: 1}},
	}
	orders.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(p repositories.PlaceOrderParams) bool {
		return p.UserID == alice.UserID && p.PaymentMethod == "upi" && p.Address.FullName == "Aanya Sharma"
	})).Return(placed, nil).Once()
	events.On("PublishEvent", services.EventOrderPlaced, mock.MatchedBy(func(e services.OrderPlacedEvent) bool {
		return e.OrderID == "order-1" && e.ItemCount == 3 && e.Total == 1300
	})).Return(nil).Once()

	order, err := service.Checkout(context.Background(), alice, validCheckout())
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
	orders.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestOrderService_PublishFailureDoesNotFailCheckout(t *testing.T) {
	orders := new(MockOrderRepository)
	events := new(MockEventPublisher)
	service := services.NewOrderService(orders, nil, events, zap.NewNop())

	orders.On("PlaceOrder", mock.Anything, mock.Anything).Return(&models.Order{Base: models.Base{ID: "order-2"}, UserID: alice.UserID}, nil).Once()
	events.On("PublishEvent", services.EventOrderPlaced, mock.Anything).Return(errors.New("broker down")).Once()

	order, err := service.Checkout(context.Background(), alice, validCheckout())
	require.NoError(t, err)
	assert.Equal(t, "order-2", order.ID)
}

func TestOrderService_GetIsScopedToOwner(t *testing.T) {
	orders := new(MockOrderRepository)
	service := services.NewOrderService(orders, nil, nil, zap.NewNop())
	ctx := context.Background()
	bob := session.Session{UserID: "user-bob"}

	orders.On("GetByID", mock.Anything, alice.UserID, "order-1").Return(&models.Order{Base: models.Base{ID: "order-1"}, UserID: alice.UserID}, nil).Once()
	orders.On("GetByID", mock.Anything, bob.UserID, "order-1").Return(nil, apperrors.NotFound("order with ID order-1 not found")).Once()

	order, err := service.Get(ctx, alice, "order-1")
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, order.UserID)

	_, err = service.Get(ctx, bob, "order-1")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = service.Get(ctx, session.Session{}, "order-1")
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))
	orders.AssertExpectations(t)
}

func TestOrderService_AdvanceStatus(t *testing.T) {
	orders := new(MockOrderRepository)
	events := new(MockEventPublisher)
	service := services.NewOrderService(orders, nil, events, zap.NewNop())
	ctx := context.Background()

	_, err := service.AdvanceStatus(ctx, "order-1", "cancelled")
	assert.True(t, apperrors.Is(err, apperrors.KindValidationFailed))

	orders.On("GetByID", mock.Anything, "", "order-1").Return(&models.Order{Base: models.Base{ID: "order-1"}, UserID: alice.UserID, Status: models.OrderStatusShipped}, nil).Once()
	_, err = service.AdvanceStatus(ctx, "order-1", models.OrderStatusProcessing)
	assert.True(t, apperrors.Is(err, apperrors.KindValidationFailed))

	orders.On("GetByID", mock.Anything, "", "order-1").Return(&models.Order{Base: models.Base{ID: "order-1"}, UserID: alice.UserID, Status: models.OrderStatusPlaced}, nil).Once()
	orders.On("UpdateStatus", mock.Anything, "order-1", models.OrderStatusPlaced, models.OrderStatusProcessing).Return(nil).Once()
	events.On("PublishEvent", services.EventOrderStatusChanged, services.OrderStatusChangedEvent{
		OrderID: "order-1", UserID: alice.UserID, From: models.OrderStatusPlaced, To: models.OrderStatusProcessing,
	}).Return(nil).Once()

	order, err := service.AdvanceStatus(ctx, "order-1", models.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	orders.AssertExpectations(t)
	events.AssertExpectations(t)
}
