package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testApp builds an app over an in-memory sqlite database and a temp upload
// dir, and returns it together with its real router.
func testApp(t *testing.T) (*app, http.Handler) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// single writer; sqlite serializes anyway and this avoids busy errors
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, autoMigrate(db))

	cfg := Config{
		JWTSecret: "test-secret",
		UploadDir: t.TempDir(),
	}
	a := newApp(cfg, db)
	return a, a.routes()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// doForm sends an urlencoded form body, the way a plain HTML form would.
func doForm(t *testing.T, h http.Handler, method, path, token string, fields url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// doMultipart sends a multipart form with the given fields and, when
// fileField is non-empty, a single file part of fileSize bytes.
func doMultipart(t *testing.T, h http.Handler, method, path, token string, fields map[string]string, fileField, fileName string, fileSize int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(bytes.Repeat([]byte{0x42}, fileSize))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func registerUser(t *testing.T, h http.Handler, name, email, password string) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/users/register", "", registerReq{
		Name: name, Email: email, Password: password, Password2: password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func loginUser(t *testing.T, h http.Handler, email, password string) loginResp {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/users/login", "", loginReq{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[loginResp](t, rec)
}

// signupAndLogin registers a fresh user and returns their session.
func signupAndLogin(t *testing.T, h http.Handler, name, email string) loginResp {
	t.Helper()
	registerUser(t, h, name, email, "secret1")
	return loginUser(t, h, email, "secret1")
}

func createPost(t *testing.T, h http.Handler, token, title, category, description string) Post {
	t.Helper()
	rec := doMultipart(t, h, http.MethodPost, "/posts/", token, map[string]string{
		"title": title, "category": category, "description": description,
	}, "thumbnail", "cover.png", 1024)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[Post](t, rec)
}

func errMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, rec)["message"]
}
