package gateway

import (
	"io"
	"net/http"
	"strings"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	UpstreamURL string
}

// SessionResolver returns the bearer token and role of the caller's session.
type SessionResolver func(r *http.Request) (token string, role domain.Role)

// Gateway forwards owner and order-history calls to the smoked-meat API on
// behalf of the browser session, adding its bearer token.
type Gateway struct {
	config  Config
	client  HTTPClient
	session SessionResolver
}

func NewGateway(config Config, client HTTPClient, session SessionResolver) *Gateway {
	return &Gateway{
		config:  Config{UpstreamURL: strings.TrimRight(config.UpstreamURL, "/")},
		client:  client,
		session: session,
	}
}

func (g *Gateway) RegisterRoutes(r *mux.Router) {
	owner := g.RequireRole(domain.RoleOwner)
	anyRole := g.RequireRole(domain.RoleClient, domain.RoleOwner)

	r.Handle("/api/product", owner(g.RouteHandler)).Methods("POST")
	r.Handle("/api/product/{id:[0-9]+}", owner(g.RouteHandler)).Methods("PUT", "DELETE")
	r.Handle("/api/orders", owner(g.RouteHandler)).Methods("GET")
	r.Handle("/api/orders/{id:[0-9]+}", owner(g.RouteHandler)).Methods("GET", "DELETE")
	r.Handle("/api/admin/register", owner(g.RouteHandler)).Methods("POST")
	r.Handle("/api/client/orders", anyRole(g.RouteHandler)).Methods("GET")
}

// RequireRole answers 401 for anonymous sessions and 403 for sessions whose
// role is not in roles.
func (g *Gateway) RequireRole(roles ...domain.Role) func(http.HandlerFunc) http.Handler {
	return func(next http.HandlerFunc) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, role := g.session(r)
			if token == "" || role == domain.RoleNone {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next(w, r)
					return
				}
			}
			log.Warn().Str("path", r.URL.Path).Str("role", string(role)).Msg("Forbidden gateway call")
			http.Error(w, "insufficient permissions", http.StatusForbidden)
		})
	}
}

// RouteHandler strips the /api prefix, which the upstream API does not use.
func (g *Gateway) RouteHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	token, _ := g.session(r)
	g.ProxyRequest(w, r, path, token)
}

func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, path, token string) {
	url := g.config.UpstreamURL + path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}
	log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Str("target", url).Msg("Proxying request")

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, r.Body)
	if err != nil {
		log.Error().Err(err).Str("target", url).Msg("Failed to create proxy request")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for k, v := range r.Header {
		if k == "Cookie" {
			continue
		}
		req.Header[k] = v
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("target", url).Msg("Failed to proxy request")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		if skipResponseHeader(k) {
			continue
		}
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Error().Err(err).Msg("Failed to copy proxy response")
	}
}

var hopByHopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// skipResponseHeader keeps CORS headers set by the router and hop-by-hop
// headers of the upstream hop out of the proxied response.
func skipResponseHeader(key string) bool {
	key = http.CanonicalHeaderKey(key)
	return hopByHopHeaders[key] || strings.HasPrefix(key, "Access-Control-")
}
