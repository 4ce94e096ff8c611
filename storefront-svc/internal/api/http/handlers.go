package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/cart"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/client"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	SessionCookie = "storefront_sid"

	defaultPageSize    = 10
	maxPageSize        = 100
	defaultReceiptsMax = 20
)

type Handler struct {
	Sessions service.SessionProvider
	Catalog  service.CatalogService
	Cart     service.CartServiceInterface
	Pricing  service.SinglePricer
	Checkout service.CheckoutServiceInterface
	Auth     service.Authenticator
	Receipts service.ReceiptRepository // nil when no database is configured
	QR       service.QRGenerator
}

func NewHandler(
	sessions service.SessionProvider,
	catalog service.CatalogService,
	cartSvc service.CartServiceInterface,
	pricing service.SinglePricer,
	checkout service.CheckoutServiceInterface,
	authenticator service.Authenticator,
	receipts service.ReceiptRepository,
	qr service.QRGenerator,
) *Handler {
	return &Handler{
		Sessions: sessions,
		Catalog:  catalog,
		Cart:     cartSvc,
		Pricing:  pricing,
		Checkout: checkout,
		Auth:     authenticator,
		Receipts: receipts,
		QR:       qr,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/assortment", h.getAssortment).Methods("GET")
	r.HandleFunc("/api/calculate-price", h.calculatePrice).Methods("POST")

	r.HandleFunc("/api/cart", h.getCart).Methods("GET")
	r.HandleFunc("/api/cart", h.clearCart).Methods("DELETE")
	r.HandleFunc("/api/cart/items", h.addCartItem).Methods("POST")
	r.HandleFunc("/api/cart/items", h.removeCartItem).Methods("DELETE")
	r.HandleFunc("/api/cart/items/quantity", h.updateCartQuantity).Methods("PATCH")
	r.HandleFunc("/api/cart/items/spice", h.updateCartSpice).Methods("PATCH")

	r.HandleFunc("/api/order", h.placeOrder).Methods("POST")
	r.HandleFunc("/api/receipts", h.getReceipts).Methods("GET")
	r.HandleFunc("/api/receipts/{id:[0-9]+}/qrcode", h.getReceiptQRCode).Methods("GET")

	r.HandleFunc("/api/login", h.login).Methods("POST")
	r.HandleFunc("/api/register", h.register).Methods("POST")
	r.HandleFunc("/api/logout", h.logout).Methods("POST")
	r.HandleFunc("/api/session", h.getSession).Methods("GET")
}

// SessionAuth reports the bearer token and role behind the request's session
// cookie without issuing a new cookie.
func (h *Handler) SessionAuth(r *http.Request) (string, domain.Role) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || uuid.Validate(cookie.Value) != nil {
		return "", domain.RoleNone
	}
	sess := h.Sessions.Get(r.Context(), cookie.Value)
	return sess.Auth.Token(), sess.Auth.Role()
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) *service.Session {
	if cookie, err := r.Cookie(SessionCookie); err == nil && uuid.Validate(cookie.Value) == nil {
		return h.Sessions.Get(r.Context(), cookie.Value)
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return h.Sessions.Get(r.Context(), id)
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "storefront-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getAssortment(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil || page < 1 {
		http.Error(w, "Invalid page", http.StatusBadRequest)
		return
	}
	size, err := queryInt(r, "size", defaultPageSize)
	if err != nil || size < 1 || size > maxPageSize {
		http.Error(w, "Invalid page size", http.StatusBadRequest)
		return
	}

	catalog, err := h.Catalog.FetchCatalogPage(r.Context(), page, size)
	if err != nil {
		writeUpstreamError(w, err, "Failed to load assortment")
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

type priceRequest struct {
	ID       int             `json:"id"`
	Quantity decimal.Decimal `json:"quantity"`
}

func (h *Handler) calculatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !req.Quantity.IsPositive() {
		http.Error(w, "Quantity must be positive", http.StatusBadRequest)
		return
	}

	item, err := h.Pricing.QuoteSingle(r.Context(), req.ID, req.Quantity)
	if err != nil {
		writeUpstreamError(w, err, "Failed to calculate price")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type cartLine struct {
	ID            int             `json:"id"`
	Meat          string          `json:"meat"`
	Price         decimal.Decimal `json:"price"`
	Quantity      decimal.Decimal `json:"quantity"`
	SelectedSpice string          `json:"selected_spice"`
	Spice         domain.Spice    `json:"spice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type cartView struct {
	Items         []cartLine      `json:"items"`
	LocalTotal    decimal.Decimal `json:"local_total"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Authoritative bool            `json:"authoritative"`
	Pending       bool            `json:"pending"`
	PricingError  string          `json:"pricing_error,omitempty"`
}

func newCartView(store *cart.Store) cartView {
	lines := store.Lines()
	view := cartView{Items: make([]cartLine, 0, len(lines))}
	for _, line := range lines {
		view.Items = append(view.Items, cartLine{
			ID:            line.Key.ProductID,
			Meat:          line.Product.Meat,
			Price:         line.Product.Price,
			Quantity:      line.Quantity,
			SelectedSpice: line.SelectedSpice(),
			Spice:         line.Product.Spice,
			Subtotal:      line.Subtotal(),
		})
	}

	total := store.Total()
	view.LocalTotal = store.LocalTotal()
	view.TotalPrice = total.Amount
	view.Authoritative = total.Authoritative
	view.Pending = total.Pending
	if err := store.LastError(); err != nil {
		view.PricingError = err.Error()
	}
	return view
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	writeJSON(w, http.StatusOK, newCartView(sess.Cart))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	sess.Cart.Clear()
	writeJSON(w, http.StatusOK, newCartView(sess.Cart))
}

type addItemRequest struct {
	ID            int             `json:"id"`
	Quantity      decimal.Decimal `json:"quantity"`
	SelectedSpice string          `json:"selected_spice"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := h.session(w, r)
	if _, err := h.Cart.AddProduct(r.Context(), sess.Cart, req.ID, req.Quantity, req.SelectedSpice); err != nil {
		switch {
		case errors.Is(err, service.ErrProductUnavailable):
			http.Error(w, err.Error(), http.StatusConflict)
		case client.IsNotFound(err):
			http.Error(w, "Product not found", http.StatusNotFound)
		default:
			writeUpstreamError(w, err, "Failed to add product")
		}
		return
	}
	writeJSON(w, http.StatusOK, newCartView(sess.Cart))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	sess := h.session(w, r)
	sess.Cart.Remove(cart.ItemKey{ProductID: id, Spice: r.URL.Query().Get("spice")})
	writeJSON(w, http.StatusOK, newCartView(sess.Cart))
}

type updateItemRequest struct {
	ID            int             `json:"id"`
	SelectedSpice string          `json:"selected_spice"`
	Quantity      decimal.Decimal `json:"quantity"`
	NewSpice      string          `json:"new_spice"`
}

func (r updateItemRequest) key() cart.ItemKey {
	return cart.ItemKey{ProductID: r.ID, Spice: r.SelectedSpice}
}

func (h *Handler) updateCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := h.session(w, r)
	sess.Cart.UpdateQuantity(req.key(), req.Quantity)
	writeJSON(w, http.StatusOK, newCartView(sess.Cart))
}

func (h *Handler) updateCartSpice(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := h.session(w, r)
	sess.Cart.UpdateSpice(req.key(), req.NewSpice)
	writeJSON(w, http.StatusOK, newCartView(sess.Cart))
}

type orderRequest struct {
	PhoneNumber string `json:"phone_number"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := h.session(w, r)
	phone := req.PhoneNumber
	if claims, ok := sess.Auth.Claims(); ok && phone == "" {
		phone = claims.PhoneNumber
	}

	confirmation, err := h.Checkout.PlaceOrder(r.Context(), service.CheckoutRequest{
		SessionID:   sess.ID,
		Token:       sess.Auth.Token(),
		PhoneNumber: phone,
		Cart:        sess.Cart,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) || errors.Is(err, service.ErrInvalidPhone) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeUpstreamError(w, err, "Failed to place order")
		return
	}
	writeJSON(w, http.StatusOK, confirmation)
}

func (h *Handler) getReceipts(w http.ResponseWriter, r *http.Request) {
	if h.Receipts == nil {
		http.Error(w, "Receipts are not enabled", http.StatusServiceUnavailable)
		return
	}
	limit, err := queryInt(r, "limit", defaultReceiptsMax)
	if err != nil || limit < 1 || limit > maxPageSize {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}

	sess := h.session(w, r)
	receipts, err := h.Receipts.ListReceipts(r.Context(), sess.ID, limit)
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to list receipts")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

func (h *Handler) getReceiptQRCode(w http.ResponseWriter, r *http.Request) {
	if h.Receipts == nil {
		http.Error(w, "Receipts are not enabled", http.StatusServiceUnavailable)
		return
	}
	orderID, _ := strconv.Atoi(mux.Vars(r)["id"])

	sess := h.session(w, r)
	if _, err := h.Receipts.GetReceipt(r.Context(), sess.ID, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	png, err := h.QR.Generate(orderID)
	if err != nil {
		log.Error().Err(err).Int("order_id", orderID).Msg("Failed to generate QR code")
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionView struct {
	Authenticated bool        `json:"authenticated"`
	Role          domain.Role `json:"role,omitempty"`
	Username      string      `json:"username,omitempty"`
	Name          string      `json:"name,omitempty"`
	PhoneNumber   string      `json:"phone_number,omitempty"`
}

func newSessionView(sess *service.Session) sessionView {
	claims, ok := sess.Auth.Claims()
	if !ok {
		return sessionView{}
	}
	return sessionView{
		Authenticated: true,
		Role:          claims.Role,
		Username:      claims.Username,
		Name:          claims.Name,
		PhoneNumber:   claims.PhoneNumber,
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	token, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeUpstreamError(w, err, "Failed to log in")
		return
	}
	h.startSession(w, r, token)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}
	if req.PhoneNumber != "" {
		phone, err := service.NormalizePhone(req.PhoneNumber)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.PhoneNumber = phone
	}

	token, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		writeUpstreamError(w, err, "Failed to register")
		return
	}
	h.startSession(w, r, token)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, token string) {
	sess := h.session(w, r)
	if err := sess.Auth.Login(r.Context(), token); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to start session")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if err := sess.Auth.Logout(r.Context()); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to forget session token")
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSessionView(h.session(w, r)))
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeUpstreamError passes API answers through and maps transport failures to 502.
func writeUpstreamError(w http.ResponseWriter, err error, msg string) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		http.Error(w, apiErr.Message, apiErr.Status)
		return
	}
	log.Error().Err(err).Msg(msg)
	http.Error(w, msg, http.StatusBadGateway)
}
