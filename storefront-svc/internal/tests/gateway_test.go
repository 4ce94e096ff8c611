package tests

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/gateway"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/mocks"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func sessionAs(token string, role domain.Role) gateway.SessionResolver {
	return func(*http.Request) (string, domain.Role) { return token, role }
}

func newGatewayRouter(client gateway.HTTPClient, resolver gateway.SessionResolver) *mux.Router {
	gw := gateway.NewGateway(gateway.Config{UpstreamURL: "http://api/"}, client, resolver)
	r := mux.NewRouter()
	gw.RegisterRoutes(r)
	return r
}

func TestGateway_RoleGuards(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		role     domain.Role
		wantCode int
		proxied  bool
	}{
		{name: "anonymous owner route", method: "GET", path: "/api/orders", wantCode: http.StatusUnauthorized},
		{name: "client on owner route", method: "GET", path: "/api/orders", token: "t", role: domain.RoleClient, wantCode: http.StatusForbidden},
		{name: "client creates product", method: "POST", path: "/api/product", token: "t", role: domain.RoleClient, wantCode: http.StatusForbidden},
		{name: "owner lists orders", method: "GET", path: "/api/orders", token: "t", role: domain.RoleOwner, wantCode: http.StatusOK, proxied: true},
		{name: "owner deletes product", method: "DELETE", path: "/api/product/3", token: "t", role: domain.RoleOwner, wantCode: http.StatusOK, proxied: true},
		{name: "owner registers admin", method: "POST", path: "/api/admin/register", token: "t", role: domain.RoleOwner, wantCode: http.StatusOK, proxied: true},
		{name: "client order history", method: "GET", path: "/api/client/orders", token: "t", role: domain.RoleClient, wantCode: http.StatusOK, proxied: true},
		{name: "owner order history", method: "GET", path: "/api/client/orders", token: "t", role: domain.RoleOwner, wantCode: http.StatusOK, proxied: true},
		{name: "anonymous order history", method: "GET", path: "/api/client/orders", wantCode: http.StatusUnauthorized},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockClient := mocks.NewHTTPClient(t)
			if testCase.proxied {
				mockClient.On("Do", mock.Anything).Return(jsonResponse(http.StatusOK, `{}`), nil).Once()
			}
			r := newGatewayRouter(mockClient, sessionAs(testCase.token, testCase.role))

			req := httptest.NewRequest(testCase.method, testCase.path, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, testCase.wantCode, rr.Code)
		})
	}
}

func TestGateway_ProxyStripsPrefixAndAddsToken(t *testing.T) {
	mockClient := mocks.NewHTTPClient(t)
	r := newGatewayRouter(mockClient, sessionAs("owner-jwt", domain.RoleOwner))

	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == "http://api/orders/12?expand=items" &&
			req.Method == http.MethodGet &&
			req.Header.Get("Authorization") == "Bearer owner-jwt" &&
			req.Header.Get("Cookie") == ""
	})).Return(jsonResponse(http.StatusOK, `{"order_id":12}`), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/orders/12?expand=items", nil)
	req.Header.Set("Cookie", "storefront_sid=abc")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"order_id":12`)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestGateway_ProxyPassesUpstreamStatus(t *testing.T) {
	mockClient := mocks.NewHTTPClient(t)
	r := newGatewayRouter(mockClient, sessionAs("t", domain.RoleOwner))

	mockClient.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader(`{"error":"Order not found"}`)),
		Header:     make(http.Header),
	}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/99", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Order not found")
}

func TestGateway_ProxyKeepsRouterCORSHeaders(t *testing.T) {
	mockClient := mocks.NewHTTPClient(t)
	r := newGatewayRouter(mockClient, sessionAs("t", domain.RoleOwner))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "https://shop.test")
			next.ServeHTTP(w, req)
		})
	})

	upstreamHeader := make(http.Header)
	upstreamHeader.Set("Access-Control-Allow-Origin", "*")
	upstreamHeader.Set("Connection", "keep-alive")
	upstreamHeader.Set("Content-Type", "application/json")
	mockClient.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`[]`)),
		Header:     upstreamHeader,
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://shop.test", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Connection"))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestGateway_ProxyError(t *testing.T) {
	mockClient := mocks.NewHTTPClient(t)
	r := newGatewayRouter(mockClient, sessionAs("t", domain.RoleOwner))

	mockClient.On("Do", mock.Anything).Return(nil, errors.New("connection failed")).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/product", strings.NewReader(`{"meat":"Brisket"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}
