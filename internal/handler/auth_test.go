package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videotube/backend/config"
	"github.com/videotube/backend/internal/constants"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/model"
	"github.com/videotube/backend/internal/service"
	"github.com/videotube/backend/pkg/media"
	"gorm.io/gorm"
)

// memoryUserStore is a map-backed UserStore for handler flow tests.
type memoryUserStore struct {
	nextID uint
	users  map[uint]*model.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{nextID: 1, users: make(map[uint]*model.User)}
}

func (m *memoryUserStore) GetByID(_ context.Context, id uint) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memoryUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return m.GetByUsernameOrEmail(context.Background(), username, "")
}

func (m *memoryUserStore) GetByUsernameOrEmail(_ context.Context, username, email string) (*model.User, error) {
	for _, user := range m.users {
		if (username != "" && user.Username == strings.ToLower(username)) ||
			(email != "" && user.Email == email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryUserStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	_, err := m.GetByUsernameOrEmail(context.Background(), username, email)
	return err == nil, nil
}

func (m *memoryUserStore) Create(_ context.Context, user *model.User) error {
	user.ID = m.nextID
	m.nextID++
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryUserStore) UpdateRefreshToken(_ context.Context, id uint, token string) error {
	user, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.RefreshToken = token
	return nil
}

func (m *memoryUserStore) UpdatePassword(_ context.Context, id uint, hashedPassword string) error {
	user, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (m *memoryUserStore) UpdateAccount(_ context.Context, id uint, fullName, email string) error {
	user, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.FullName = fullName
	user.Email = email
	return nil
}

func (m *memoryUserStore) UpdateAvatar(_ context.Context, id uint, avatarURL string) error {
	user, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Avatar = avatarURL
	return nil
}

func (m *memoryUserStore) UpdateCoverImage(_ context.Context, id uint, coverURL string) error {
	user, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.CoverImage = coverURL
	return nil
}

func (m *memoryUserStore) WatchHistory(context.Context, uint) ([]model.WatchEvent, error) {
	return nil, nil
}

func (m *memoryUserStore) RecordWatchEvent(context.Context, *model.WatchEvent) error { return nil }

// stubUploader returns a deterministic URL without touching the network.
type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, filename string, file io.Reader) (*media.UploadResult, error) {
	_, _ = io.Copy(io.Discard, file)
	return &media.UploadResult{
		PublicID: "stub",
		URL:      "https://media.example.com/uploads/" + filename,
	}, nil
}

type authFixture struct {
	router *gin.Engine
	store  *memoryUserStore
}

func newAuthTestRouter(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemoryUserStore()
	tokens := service.NewTokenService(config.JWTConfig{
		AccessSecret:  "access-secret",
		AccessExpiry:  time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshExpiry: time.Hour,
	}, store)
	authService := service.NewAuthService(store, tokens)

	authHandler := NewAuthHandler(authService, tokens, stubUploader{})
	guard := middleware.NewAuthMiddleware(tokens, store)

	router := gin.New()
	router.Use(middleware.ErrorHandler())

	users := router.Group("/api/v1/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/refresh-token", authHandler.RefreshToken)

	protected := users.Group("")
	protected.Use(guard.RequireAuth())
	protected.POST("/logout", authHandler.Logout)
	protected.POST("/change-password", authHandler.ChangePassword)

	return &authFixture{router: router, store: store}
}

func (f *authFixture) register(t *testing.T, username, email string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("fullname", "Ana Torres"))
	require.NoError(t, writer.WriteField("email", email))
	require.NoError(t, writer.WriteField("password", "correct-horse"))
	require.NoError(t, writer.WriteField("username", username))
	part, err := writer.CreateFormFile("avatar", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (f *authFixture) login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func cookieByName(res *http.Response, name string) *http.Cookie {
	for _, cookie := range res.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestRegister_ReturnsCreatedEnvelope(t *testing.T) {
	f := newAuthTestRouter(t)
	f.register(t, "Ana", "ana@example.com")

	user := f.store.users[1]
	require.NotNil(t, user)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, "https://media.example.com/uploads/avatar.png", user.Avatar)
}

func TestRegister_MissingAvatarIsValidationError(t *testing.T) {
	f := newAuthTestRouter(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("fullname", "Ana Torres"))
	require.NoError(t, writer.WriteField("email", "ana@example.com"))
	require.NoError(t, writer.WriteField("password", "correct-horse"))
	require.NoError(t, writer.WriteField("username", "ana"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, false, envelope["success"])
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	f := newAuthTestRouter(t)
	f.register(t, "ana", "ana@example.com")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("fullname", "Other"))
	require.NoError(t, writer.WriteField("email", "other@example.com"))
	require.NoError(t, writer.WriteField("password", "correct-horse"))
	require.NoError(t, writer.WriteField("username", "ANA"))
	part, err := writer.CreateFormFile("avatar", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_SetsCookiesAndEnvelope(t *testing.T) {
	f := newAuthTestRouter(t)
	f.register(t, "ana", "ana@example.com")

	w := f.login(t, "ana", "correct-horse")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := w.Result()
	access := cookieByName(res, constants.CookieAccessToken)
	refresh := cookieByName(res, constants.CookieRefreshToken)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.True(t, refresh.HttpOnly)
	assert.True(t, refresh.Secure)

	var envelope struct {
		StatusCode int  `json:"statusCode"`
		Success    bool `json:"success"`
		Data       struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
			User         struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, http.StatusOK, envelope.StatusCode)
	assert.Equal(t, "ana", envelope.Data.User.Username)
	assert.Equal(t, access.Value, envelope.Data.AccessToken)
	assert.Equal(t, refresh.Value, envelope.Data.RefreshToken)
}

func TestLogin_WrongPasswordEnvelope(t *testing.T) {
	f := newAuthTestRouter(t)
	f.register(t, "ana", "ana@example.com")

	w := f.login(t, "ana", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, float64(http.StatusUnauthorized), envelope["statusCode"])
}

func TestRefreshToken_FromCookieRotates(t *testing.T) {
	f := newAuthTestRouter(t)
	f.register(t, "ana", "ana@example.com")

	login := f.login(t, "ana", "correct-horse")
	require.Equal(t, http.StatusOK, login.Code)
	refresh := cookieByName(login.Result(), constants.CookieRefreshToken)
	require.NotNil(t, refresh)

	// JWT iat has second precision; make sure the rotated token differs.
	time.Sleep(1100 * time.Millisecond)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(refresh)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The presented token is single use: replaying it must fail.
	replay := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	replay.AddCookie(refresh)
	w2 := httptest.NewRecorder()
	f.router.ServeHTTP(w2, replay)

	assert.Equal(t, http.StatusUnauthorized, w2.Code)
}

func TestRefreshToken_MissingTokenIsUnauthorized(t *testing.T) {
	f := newAuthTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_ClearsCookiesAndStoredToken(t *testing.T) {
	f := newAuthTestRouter(t)
	f.register(t, "ana", "ana@example.com")

	login := f.login(t, "ana", "correct-horse")
	access := cookieByName(login.Result(), constants.CookieAccessToken)
	refresh := cookieByName(login.Result(), constants.CookieRefreshToken)
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.AddCookie(access)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, f.store.users[1].RefreshToken)

	for _, cookie := range w.Result().Cookies() {
		assert.Less(t, cookie.MaxAge, 0, "cookie %s should be expired", cookie.Name)
	}

	// A refresh with the pre-logout token must fail.
	refreshReq := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	refreshReq.AddCookie(refresh)
	w2 := httptest.NewRecorder()
	f.router.ServeHTTP(w2, refreshReq)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	f := newAuthTestRouter(t)
	f.register(t, "ana", "ana@example.com")

	login := f.login(t, "ana", "correct-horse")
	access := cookieByName(login.Result(), constants.CookieAccessToken)
	require.NotNil(t, access)

	payload, err := json.Marshal(map[string]string{
		"oldPassword": "wrong",
		"newPassword": "new-password-123",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(access)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
