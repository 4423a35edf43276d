package types

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/weisyn/purchaser/pkg/types"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.WrapUnauthorizedError("x"), http.StatusUnauthorized, CodeUnauthorized},
		{domain.WrapNotFoundError("chain_setting", "bnb"), http.StatusNotFound, CodeNotFound},
		{domain.WrapInvalidPrincipalError("x", "bad"), http.StatusBadRequest, CodeInvalidPrincipal},
		{domain.WrapInvalidArgumentError("msg", "bad"), http.StatusBadRequest, CodeInvalidArgument},
		{fmt.Errorf("deploy_erc20: %w", domain.ErrValueOutOfRange), http.StatusBadRequest, CodeEncodingFailed},
		{domain.ErrUnknownCommand, http.StatusBadRequest, CodeUnknownCommand},
		{domain.ErrUnsupportedCommand, http.StatusBadRequest, CodeUnsupportedCommand},
		{domain.ErrNotInstantiated, http.StatusServiceUnavailable, CodeNotInstantiated},
		{errors.New("disk full"), http.StatusInternalServerError, CodeCommonInternalError},
	}
	for _, tt := range tests {
		pd := FromError(tt.err)
		assert.Equal(t, tt.status, pd.Status, tt.err.Error())
		assert.Equal(t, tt.code, pd.Code)
		assert.Equal(t, tt.err.Error(), pd.Detail)
		assert.NotEmpty(t, pd.TraceID)
	}
}

func TestProblemDetails_WriteJSON(t *testing.T) {
	pd := NewProblemDetails(CodeNotFound, LayerManagerService, "m", "d", http.StatusNotFound, nil)
	w := httptest.NewRecorder()
	pd.WriteJSON(w)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), CodeNotFound)

	wrapped := fmt.Errorf("x: %w", pd)
	got, ok := IsProblemDetails(wrapped)
	assert.True(t, ok)
	assert.Same(t, pd, got)
	assert.Same(t, pd, FromError(wrapped))
}
