package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sip-sunshine/internal/cart"
	"sip-sunshine/internal/logger"
	"sip-sunshine/internal/models"
)

// Handler exposes the order intake and cart endpoints over HTTP.
type Handler struct {
	service *Service
	carts   *cart.Manager
	logger  *logger.Logger
}

func NewHandler(service *Service, carts *cart.Manager, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		carts:   carts,
		logger:  log,
	}
}

// Routes builds the HTTP router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(h.withLogging)

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/orders/create/", h.CreateOrder)
		r.Get("/orders/{number}", h.GetOrder)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{id}/quantity", h.UpdateCartQuantity)
			r.Put("/items/{id}/instructions", h.UpdateCartInstructions)
			r.Delete("/items/{id}", h.RemoveCartItem)
			r.Delete("/", h.ClearCart)
			r.Post("/checkout", h.Checkout)
		})
	})

	return r
}

// CreateOrder handles POST /api/orders/create/ requests
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	if r.Header.Get("Content-Type") != "application/json" {
		h.writeError(w, http.StatusBadRequest, "Content-Type must be application/json")
		return
	}

	var req models.CreateOrderRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		h.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	response, err := h.service.CreateOrder(r.Context(), &req, requestID)
	if err != nil {
		var validationErr models.ValidationError
		if errors.As(err, &validationErr) {
			h.logger.Error("validation_failed", "Order validation failed", requestID, err, map[string]interface{}{
				"field":      validationErr.Field,
				"order_type": req.OrderType,
			})
			h.writeError(w, http.StatusBadRequest, validationErr.Message)
			return
		}

		h.logger.Error("order_creation_failed", "Failed to create order", requestID, err, map[string]interface{}{
			"guest_name": req.GuestName,
			"order_type": req.OrderType,
		})
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("order_created", "Order created successfully", requestID, map[string]interface{}{
		"order_number": response.OrderNumber,
		"total":        response.Total,
	})

	h.writeJSON(w, http.StatusOK, response)
}

// GetOrder handles GET /api/orders/{number} requests
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	order, err := h.service.GetOrder(r.Context(), number)
	if errors.Is(err, ErrOrderNotFound) {
		h.writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		h.logger.Error("order_lookup_failed", "Failed to load order", middleware.GetReqID(r.Context()), err, map[string]interface{}{
			"order_number": number,
		})
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := h.service.HealthCheck(ctx)

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "order-service",
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
	}

	h.writeJSON(w, status, response)
}

// addItemRequest is the AddCartItem body: the item attributes the menu page
// carries on its add-to-cart triggers.
type addItemRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
}

// GetCart handles GET /api/cart/ requests
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionCart(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, store.View())
}

// AddCartItem handles POST /api/cart/items requests
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionCart(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	item := cart.LineItem{
		ID:          req.ID,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
	}
	if !store.AddItem(r.Context(), item, req.Quantity) {
		h.writeError(w, http.StatusBadRequest, "Invalid item data")
		return
	}

	h.writeJSON(w, http.StatusCreated, store.View())
}

// UpdateCartQuantity handles PUT /api/cart/items/{id}/quantity requests
func (h *Handler) UpdateCartQuantity(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionCart(w, r)
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	store.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	h.writeJSON(w, http.StatusOK, store.View())
}

// UpdateCartInstructions handles PUT /api/cart/items/{id}/instructions requests
func (h *Handler) UpdateCartInstructions(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionCart(w, r)
	if !ok {
		return
	}

	var req struct {
		SpecialInstructions string `json:"special_instructions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	store.UpdateInstructions(r.Context(), chi.URLParam(r, "id"), req.SpecialInstructions)
	h.writeJSON(w, http.StatusOK, store.View())
}

// RemoveCartItem handles DELETE /api/cart/items/{id} requests
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionCart(w, r)
	if !ok {
		return
	}

	store.RemoveItem(r.Context(), chi.URLParam(r, "id"))
	h.writeJSON(w, http.StatusOK, store.View())
}

// ClearCart handles DELETE /api/cart/ requests. The caller must confirm
// with ?confirm=1; without it the cart is left untouched.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionCart(w, r)
	if !ok {
		return
	}

	confirmed := r.URL.Query().Get("confirm") == "1"
	if !store.Clear(r.Context(), confirmed) {
		h.writeError(w, http.StatusBadRequest, "Cart clear requires confirmation")
		return
	}

	h.writeJSON(w, http.StatusOK, store.View())
}

// Checkout handles POST /api/cart/checkout requests
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionCart(w, r)
	if !ok {
		return
	}

	redirect, err := store.Checkout(r.Context())
	if errors.Is(err, cart.ErrEmptyCart) {
		h.writeError(w, http.StatusBadRequest, "Cart is empty")
		return
	}
	if err != nil {
		h.logger.Error("checkout_failed", "Failed to hand off cart for checkout", middleware.GetReqID(r.Context()), err, nil)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"redirect": redirect,
	})
}

// sessionCart resolves the caller's cart from the X-Session-ID header.
func (h *Handler) sessionCart(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	session := r.Header.Get("X-Session-ID")
	if session == "" {
		h.writeError(w, http.StatusBadRequest, "X-Session-ID header is required")
		return nil, false
	}
	return h.carts.Get(r.Context(), session), true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", "", err, nil)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, models.CreateOrderResponse{
		Success: false,
		Message: message,
	})
}

// withLogging logs every request with its duration and status code.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
			})

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, ww.Status()),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
	})
}
