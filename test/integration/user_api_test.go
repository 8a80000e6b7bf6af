package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecommerce-platform/internal/auth"
	"ecommerce-platform/internal/database"
	"ecommerce-platform/internal/handler"
	"ecommerce-platform/internal/model"
	"ecommerce-platform/internal/repository"
	"ecommerce-platform/internal/router"
	"ecommerce-platform/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userAPI struct {
	server *httptest.Server
	bus    *recordingBus
	tokens *auth.TokenManager
}

func newUserAPI(t *testing.T) *userAPI {
	t.Helper()

	pool := SetupTestDB(t)
	logger := testLogger()

	require.NoError(t, database.InitUserSchema(context.Background(), pool, logger))

	memCache := newMemoryCache()
	bus := &recordingBus{}
	tokens := auth.NewTokenManager("integration-secret", time.Hour)

	repo := repository.NewUserRepository(pool, logger)
	authSvc := service.NewAuthService(repo, memCache, bus, tokens, 24*time.Hour, logger)
	userSvc := service.NewUserService(repo, logger)

	authHandler := handler.NewAuthHandler(authSvc, logger)
	userHandler := handler.NewUserHandler(userSvc, logger)
	healthHandler := handler.NewHealthHandler("user-api", pool, memCache, bus, logger)

	server := httptest.NewServer(router.NewUserRouter(authHandler, userHandler, healthHandler, tokens, logger))
	t.Cleanup(server.Close)

	return &userAPI{server: server, bus: bus, tokens: tokens}
}

func (api *userAPI) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(encoded)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, api.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (api *userAPI) register(t *testing.T, name, email, password string) model.AuthResponse {
	t.Helper()

	resp := api.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterParams{
		Name: name, Email: email, Password: password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[model.AuthResponse](t, resp)
}

func TestUserAPI_RegisterAndLogin(t *testing.T) {
	api := newUserAPI(t)

	registered := api.register(t, "Ada", "ada@example.com", "s3cret-pw")
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, model.RoleCustomer, registered.User.Role)
	assert.Equal(t, []string{model.EventUserCreated}, api.bus.publishedKeys())

	t.Run("Duplicate email rejected", func(t *testing.T) {
		resp := api.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterParams{
			Name: "Ada Again", Email: "ada@example.com", Password: "other-pw",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		body := decodeBody[model.ErrorResponse](t, resp)
		assert.Equal(t, model.ErrCodeEmailTaken, body.Error)
	})

	t.Run("Login succeeds with the right password", func(t *testing.T) {
		resp := api.do(t, http.MethodPost, "/api/auth/login", "", model.LoginParams{
			Email: "ada@example.com", Password: "s3cret-pw",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		login := decodeBody[model.AuthResponse](t, resp)
		assert.NotEmpty(t, login.Token)
		assert.Equal(t, registered.User.ID, login.User.ID)
	})

	t.Run("Wrong password and unknown email fail identically", func(t *testing.T) {
		wrongPw := api.do(t, http.MethodPost, "/api/auth/login", "", model.LoginParams{
			Email: "ada@example.com", Password: "wrong",
		})
		unknown := api.do(t, http.MethodPost, "/api/auth/login", "", model.LoginParams{
			Email: "nobody@example.com", Password: "s3cret-pw",
		})

		assert.Equal(t, http.StatusUnauthorized, wrongPw.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, unknown.StatusCode)

		wrongBody := decodeBody[model.ErrorResponse](t, wrongPw)
		unknownBody := decodeBody[model.ErrorResponse](t, unknown)
		assert.Equal(t, wrongBody.Error, unknownBody.Error)
		assert.Equal(t, wrongBody.Message, unknownBody.Message)
	})
}

func TestUserAPI_Me(t *testing.T) {
	api := newUserAPI(t)

	registered := api.register(t, "Ada", "ada@example.com", "s3cret-pw")

	resp := api.do(t, http.MethodGet, "/api/users/me", registered.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody[model.User](t, resp)
	assert.Equal(t, "ada@example.com", me.Email)

	resp = api.do(t, http.MethodPut, "/api/users/me", registered.Token, map[string]string{"name": "Grace"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	renamed := decodeBody[model.User](t, resp)
	assert.Equal(t, "Grace", renamed.Name)

	resp = api.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestUserAPI_AdminRoutes(t *testing.T) {
	api := newUserAPI(t)

	registered := api.register(t, "Ada", "ada@example.com", "s3cret-pw")

	adminToken, err := api.tokens.Issue(999, "admin@example.com", model.RoleAdmin)
	require.NoError(t, err)

	t.Run("Customer forbidden from listing", func(t *testing.T) {
		resp := api.do(t, http.MethodGet, "/api/users", registered.Token, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("Admin lists users", func(t *testing.T) {
		resp := api.do(t, http.MethodGet, "/api/users", adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		users := decodeBody[[]model.User](t, resp)
		assert.Len(t, users, 1)
	})

	t.Run("Admin deletes a user", func(t *testing.T) {
		resp := api.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", registered.User.ID), adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		resp = api.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", registered.User.ID), adminToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})
}
