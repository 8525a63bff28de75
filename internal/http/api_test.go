package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsite-server/internal/auth"
	"finsite-server/internal/mailer"
	"finsite-server/internal/repository"
	"finsite-server/internal/repository/sqlite"
	"finsite-server/internal/service"
	"finsite-server/internal/storage"
)

type fakeMailer struct {
	mu        sync.Mutex
	enquiries []mailer.Enquiry
	err       error
}

func (f *fakeMailer) SendEnquiry(_ context.Context, enq mailer.Enquiry) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enquiries = append(f.enquiries, enq)
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) PutObject(_ context.Context, _, key, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) GetObject(_ context.Context, _, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) DeleteObjects(_ context.Context, _ string, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.objects, key)
	}
	return nil
}

func (f *fakeStorage) ListObjects(_ context.Context, _, _ string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

type testServer struct {
	router *gin.Engine
	users  repository.UserRepository
	mail   *fakeMailer
	store  *fakeStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := sqlite.NewUserRepository(db)
	require.NoError(t, users.Init(ctx))
	events := sqlite.NewEventRepository(db)
	require.NoError(t, events.Init(ctx))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := newFakeStorage()
	mail := &fakeMailer{}

	authService := service.NewAuthService(users, auth.NewHasher())
	eventService := service.NewEventService(events, store, "test-bucket", "finsite",
		service.EventLimits{MaxFileBytes: 8 << 20, MaxFiles: 50}, logger)

	router := gin.New()
	NewHandler(authService, eventService, mail, logger).RegisterRoutes(router)

	return &testServer{router: router, users: users, mail: mail, store: store}
}

func (ts *testServer) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie in response", auth.CookieName)
	return nil
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	// register with messy casing and whitespace
	w := ts.doJSON(t, http.MethodPost, "/api/auth/register", gin.H{
		"fullName": "Jane Doe",
		"email":    "Jane.Doe@Example.com ",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"id":1}`, w.Body.String())

	regCookie := sessionCookie(t, w)
	assert.Len(t, regCookie.Value, 64)
	assert.True(t, regCookie.HttpOnly)
	assert.True(t, regCookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, regCookie.SameSite)
	assert.Equal(t, 86400, regCookie.MaxAge)

	// same email, different case: taken
	w = ts.doJSON(t, http.MethodPost, "/api/auth/register", gin.H{
		"fullName": "Jane Again",
		"email":    "jane.doe@example.com",
		"password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Email is already registered."}`, w.Body.String())

	// wrong password
	wrongPassword := ts.doJSON(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "jane.doe@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)

	// unknown email must be byte-identical to the wrong-password response
	unknownEmail := ts.doJSON(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "nobody@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.Bytes(), unknownEmail.Body.Bytes())

	// successful login issues a fresh cookie
	w = ts.doJSON(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "jane.doe@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"id":1,"name":"Jane Doe"}`, w.Body.String())
	loginCookie := sessionCookie(t, w)
	assert.NotEqual(t, regCookie.Value, loginCookie.Value)

	// logout clears the cookie but leaves the stored token alone
	w = ts.doJSON(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	cleared := sessionCookie(t, w)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	stored, err := ts.users.GetByEmail(context.Background(), "jane.doe@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.SessionToken)
	assert.Equal(t, loginCookie.Value, *stored.SessionToken)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"empty body", gin.H{}},
		{"missing name", gin.H{"email": "a@b.c", "password": "x"}},
		{"missing email", gin.H{"fullName": "A", "password": "x"}},
		{"missing password", gin.H{"fullName": "A", "email": "a@b.c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.doJSON(t, http.MethodPost, "/api/auth/register", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Full name, email and password are required."}`, w.Body.String())
		})
	}
}

func TestLoginValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodPost, "/api/auth/login", gin.H{"email": "a@b.c"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Email and password are required."}`, w.Body.String())
}

func TestRegisterRememberExtendsCookie(t *testing.T) {
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodPost, "/api/auth/register", gin.H{
		"fullName": "Jane Doe",
		"email":    "jane.doe@example.com",
		"password": "secret123",
		"remember": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2592000, sessionCookie(t, w).MaxAge)
}

func TestContactForm(t *testing.T) {
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodPost, "/api/contact", gin.H{
		"name":  "John Smith",
		"email": "john@example.com",
		"phone": "555-0100",
		"msg":   "I'd like some advice.",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Your message has been sent successfully."}`, w.Body.String())
	require.Len(t, ts.mail.enquiries, 1)
	assert.Equal(t, "John Smith", ts.mail.enquiries[0].Name)
}

func TestContactFormValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodPost, "/api/contact", gin.H{"name": "John Smith"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Name, email, and message are required."}`, w.Body.String())
	assert.Empty(t, ts.mail.enquiries)
}

func TestContactFormMailFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.mail.err = fmt.Errorf("smtp unreachable")

	w := ts.doJSON(t, http.MethodPost, "/api/contact", gin.H{
		"name":  "John Smith",
		"email": "john@example.com",
		"msg":   "Hello",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Failed to send message. Please try again."}`, w.Body.String())
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestEventLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t,
		map[string]string{"title": "Summit", "description": "Annual", "event_date": "2026-03-14"},
		map[string][]byte{"banner.jpg": []byte("jpeg-bytes")},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/events", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var created EventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Summit", created.Title)
	require.Len(t, created.Images, 1)

	// fetch the blob back
	blobReq := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/events/image/%d/blob", created.Images[0].ID), nil)
	blobW := httptest.NewRecorder()
	ts.router.ServeHTTP(blobW, blobReq)
	require.Equal(t, http.StatusOK, blobW.Code)
	assert.Equal(t, []byte("jpeg-bytes"), blobW.Body.Bytes())

	// list
	listW := ts.doJSON(t, http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, listW.Code)
	var events []EventResponse
	require.NoError(t, json.Unmarshal(listW.Body.Bytes(), &events))
	require.Len(t, events, 1)

	// delete
	delW := ts.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/events/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, delW.Code)
	assert.Equal(t, 0, len(ts.store.objects))

	getW := ts.doJSON(t, http.MethodGet, fmt.Sprintf("/api/events/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, getW.Code)
}

func TestEventInvalidID(t *testing.T) {
	ts := newTestServer(t)

	w := ts.doJSON(t, http.MethodGet, "/api/events/banana", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
