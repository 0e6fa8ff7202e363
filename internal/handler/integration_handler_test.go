package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"regnify/internal/domain"
	"regnify/internal/handler"
	"regnify/internal/middleware"
	"regnify/internal/service"
	"regnify/mocks"
)

func integrationRequest() service.IntegrationInput {
	return service.IntegrationInput{
		ServiceProviderName: "PEPPOL Gateway",
		SendEndpointURL:     "https://gateway.example.com/send",
		FetchEndpointURL:    "https://gateway.example.com/status",
		AuthType:            domain.AuthAPIKey,
		APIKey:              "k-123",
	}
}

func TestIntegrationHandler_Create(t *testing.T) {
	svc := new(mocks.MockIntegrationService)
	h := handler.NewIntegrationHandler(svc)

	input := integrationRequest()
	svc.On("Create", mock.Anything, input, mock.MatchedBy(func(a service.Actor) bool { return a.Username == "root" })).
		Return(&domain.IntegrationConfig{ID: uuid.New(), ServiceProviderName: "PEPPOL Gateway", APIKey: "k-123"}, nil)

	c, w := jsonContext(http.MethodPost, "/api/v1/integration/configs", input)
	c.Set(middleware.ContextKeyUsername, "root")
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "k-123")
	svc.AssertExpectations(t)
}

func TestIntegrationHandler_Create_Validation(t *testing.T) {
	svc := new(mocks.MockIntegrationService)
	h := handler.NewIntegrationHandler(svc)

	input := integrationRequest()
	input.SendEndpointURL = "not a url"
	c, w := jsonContext(http.MethodPost, "/api/v1/integration/configs", input)
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestIntegrationHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrDuplicateProvider, http.StatusConflict, "DUPLICATE_PROVIDER"},
		{domain.ErrInvalidAuthType, http.StatusBadRequest, "INVALID_AUTH_TYPE"},
		{domain.ErrInvalidSendingTime, http.StatusBadRequest, "INVALID_SENDING_TIME"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			svc := new(mocks.MockIntegrationService)
			h := handler.NewIntegrationHandler(svc)
			svc.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			c, w := jsonContext(http.MethodPost, "/api/v1/integration/configs", integrationRequest())
			h.Create(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeResponse(t, w).Error.Code)
		})
	}
}

func TestIntegrationHandler_GetByID(t *testing.T) {
	svc := new(mocks.MockIntegrationService)
	h := handler.NewIntegrationHandler(svc)
	id := uuid.New()
	svc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrIntegrationNotFound)

	c, w := jsonContext(http.MethodGet, "/api/v1/integration/configs/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.GetByID(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "INTEGRATION_NOT_FOUND", decodeResponse(t, w).Error.Code)

	c, w = jsonContext(http.MethodGet, "/api/v1/integration/configs/nope", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	h.GetByID(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntegrationHandler_GenerateCredentials(t *testing.T) {
	svc := new(mocks.MockIntegrationService)
	h := handler.NewIntegrationHandler(svc)
	id := uuid.New()
	svc.On("GenerateCredentials", mock.Anything, id, mock.Anything).
		Return(&service.GeneratedCredentials{ClientKey: "CLIENT_1A2B3C4D", ClientSecret: "s3cr3t"}, nil)

	c, w := jsonContext(http.MethodPost, "/api/v1/integration/configs/"+id.String()+"/generate-credentials", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.GenerateCredentials(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "CLIENT_1A2B3C4D", data["client_key"])
	assert.Equal(t, "s3cr3t", data["client_secret"])
}

func TestIntegrationHandler_TestConnection(t *testing.T) {
	svc := new(mocks.MockIntegrationService)
	h := handler.NewIntegrationHandler(svc)
	ok, down := uuid.New(), uuid.New()
	svc.On("TestConnection", mock.Anything, ok, mock.Anything).Return("Connection test successful", nil)
	svc.On("TestConnection", mock.Anything, down, mock.Anything).
		Return("", fmt.Errorf("%w: %s", domain.ErrConnectionFailed, "https://gateway.example.com/status returned 503"))

	c, w := jsonContext(http.MethodPost, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: ok.String()}}
	h.TestConnection(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Connection test successful", decodeResponse(t, w).Data.(map[string]interface{})["message"])

	c, w = jsonContext(http.MethodPost, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: down.String()}}
	h.TestConnection(c)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "CONNECTION_FAILED", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "returned 503")
}

func TestIntegrationHandler_FetchStatus_Failed(t *testing.T) {
	svc := new(mocks.MockIntegrationService)
	h := handler.NewIntegrationHandler(svc)
	id := uuid.New()
	svc.On("FetchStatus", mock.Anything, id, mock.Anything).Return("", domain.ErrStatusFetchFailed)

	c, w := jsonContext(http.MethodPost, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.FetchStatus(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestIntegrationHandler_DeleteAndToggle(t *testing.T) {
	svc := new(mocks.MockIntegrationService)
	h := handler.NewIntegrationHandler(svc)
	id := uuid.New()
	svc.On("Delete", mock.Anything, id, mock.Anything).Return(nil)
	svc.On("ToggleStatus", mock.Anything, id, mock.Anything).Return(&domain.IntegrationConfig{ID: id, IsActive: true}, nil)

	c, w := jsonContext(http.MethodDelete, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Delete(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = jsonContext(http.MethodPatch, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.ToggleStatus(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeResponse(t, w).Data.(map[string]interface{})["is_active"])
}

func TestIntegrationHandler_List_Error(t *testing.T) {
	svc := new(mocks.MockIntegrationService)
	h := handler.NewIntegrationHandler(svc)
	svc.On("List", mock.Anything).Return(nil, errors.New("db down"))

	c, w := jsonContext(http.MethodGet, "/api/v1/integration/configs", nil)
	h.List(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
