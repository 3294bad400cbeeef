package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"live-commerce/internal/middleware"
	"live-commerce/internal/repository"
	"live-commerce/internal/service"
	"live-commerce/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testAPI struct {
	router   chi.Router
	auth     service.AuthService
	products service.ProductService
	images   *storage.Local
}

// newTestAPI wires every handler over in-memory repositories. With
// protected set, mutations need a seller or admin token.
func newTestAPI(t *testing.T, protected bool) *testAPI {
	t.Helper()
	logger := zap.NewNop()

	productRepo := repository.NewProductRepository()
	images := storage.NewLocal(t.TempDir(), "/uploads")

	api := &testAPI{
		router:   chi.NewRouter(),
		auth:     service.NewAuthService(repository.NewUserRepository(), repository.NewRefreshTokenRepository(), testSecret, 0),
		products: service.NewProductService(productRepo, images, logger),
		images:   images,
	}

	authenticate := middleware.AuthMiddleware(testSecret, logger)
	var sellers, members func(http.Handler) http.Handler
	if protected {
		members = authenticate
		sellers = func(next http.Handler) http.Handler {
			return authenticate(middleware.RequireRole(logger, "seller", "admin")(next))
		}
	}

	NewAuthHandler(api.auth, logger).RegisterRoutes(api.router, authenticate)
	NewProductHandler(api.products, logger).RegisterRoutes(api.router, sellers)
	NewReservationHandler(service.NewReservationService(repository.NewReservationRepository(), productRepo), logger).
		RegisterRoutes(api.router, members)
	NewStreamHandler(service.NewStreamService(repository.NewStreamRepository()), logger).
		RegisterRoutes(api.router, sellers)

	return api
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) json(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(req)
}

func multipartProduct(t *testing.T, method, path, product string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField(productField, product))
	if image != nil {
		part, err := mw.CreateFormFile(imageField, "ring.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[middleware.ErrorResponse](t, w).Message
}
