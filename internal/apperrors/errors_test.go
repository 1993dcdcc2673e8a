package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"vastraa/internal/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedErrors(t *testing.T) {
	err := fmt.Errorf("adding to cart: %w", apperrors.AuthRequired())
	assert.Equal(t, apperrors.KindAuthRequired, apperrors.KindOf(err))
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))
	assert.False(t, apperrors.Is(nil, apperrors.KindAuthRequired))

	plain := errors.New("connection reset")
	assert.Equal(t, apperrors.KindRemoteFailure, apperrors.KindOf(plain))
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("duplicate key")
	err := apperrors.Remote("failed to insert cart item", cause)
	assert.Equal(t, "failed to insert cart item: duplicate key", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "cart item abc not found", apperrors.NotFound("cart item %s not found", "abc").Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, apperrors.HTTPStatus(apperrors.KindAuthRequired))
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(apperrors.KindNotFound))
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(apperrors.KindValidationFailed))
	assert.Equal(t, http.StatusForbidden, apperrors.HTTPStatus(apperrors.KindForbidden))
	assert.Equal(t, http.StatusConflict, apperrors.HTTPStatus(apperrors.KindConflict))
	assert.Equal(t, http.StatusTooManyRequests, apperrors.HTTPStatus(apperrors.KindRateLimited))
	assert.Equal(t, http.StatusBadGateway, apperrors.HTTPStatus(apperrors.KindRemoteFailure))
}
