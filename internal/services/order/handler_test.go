package order

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sip-sunshine/internal/cart"
	"sip-sunshine/internal/logger"
	"sip-sunshine/internal/models"
)

func newTestHandler(t *testing.T) (*Handler, *fakeRepository, *fakePublisher) {
	t.Helper()

	repo := newFakeRepository()
	pub := &fakePublisher{}
	log := logger.New("order-service-test")
	svc := newTestService(repo, pub)
	carts := cart.NewManager(cart.NewMemoryStore(), cart.NopNotifier{}, log)

	return NewHandler(svc, carts, log), repo, pub
}

func doJSON(t *testing.T, handler http.Handler, method, path, session string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("X-Session-ID", session)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
}

func TestHandler_CreateOrder(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/orders/create/", "", pickupRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp models.CreateOrderResponse
	decodeResponse(t, rec, &resp)
	if !resp.Success || resp.OrderID == 0 || resp.OrderNumber == "" {
		t.Errorf("response = %+v, want success with order id and number", resp)
	}
}

func TestHandler_CreateOrderValidationFailure(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	req := pickupRequest()
	req.OrderType = "drive_through"

	rec := doJSON(t, routes, http.MethodPost, "/api/orders/create/", "", req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp models.CreateOrderResponse
	decodeResponse(t, rec, &resp)
	if resp.Success || resp.Message != "Invalid order type. Must be one of: seated, pickup, delivery" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandler_CreateOrderRequiresJSONContentType(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	req := httptest.NewRequest(http.MethodPost, "/api/orders/create/", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_CreateOrderRejectsUnknownFields(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/orders/create/", "", map[string]interface{}{
		"order_type": "pickup",
		"surprise":   true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_GetOrder(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	var created models.CreateOrderResponse
	decodeResponse(t, doJSON(t, routes, http.MethodPost, "/api/orders/create/", "", pickupRequest()), &created)

	rec := doJSON(t, routes, http.MethodGet, "/api/orders/"+created.OrderNumber, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var order models.Order
	decodeResponse(t, rec, &order)
	if order.Number != created.OrderNumber || len(order.Items) != 1 {
		t.Errorf("order = %+v, want number %s with 1 item", order, created.OrderNumber)
	}
}

func TestHandler_GetOrderNotFound(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.Routes(), http.MethodGet, "/api/orders/ORD_20260101_001", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_CartRequiresSession(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.Routes(), http.MethodGet, "/api/cart/", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without X-Session-ID", rec.Code)
	}
}

func TestHandler_CartLifecycle(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()
	session := "sess-1"

	item := map[string]interface{}{
		"id": "7", "name": "Burger", "price": 5.00, "quantity": 2,
	}
	rec := doJSON(t, routes, http.MethodPost, "/api/cart/items", session, item)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var view cart.View
	decodeResponse(t, doJSON(t, routes, http.MethodGet, "/api/cart/", session, nil), &view)
	if view.ItemCount != 2 || view.Summary.Subtotal != "10.00" {
		t.Errorf("view = %+v, want 2 items at subtotal 10.00", view)
	}

	rec = doJSON(t, routes, http.MethodPut, "/api/cart/items/7/quantity", session, map[string]int{"quantity": 3})
	decodeResponse(t, rec, &view)
	if view.ItemCount != 3 {
		t.Errorf("item count after update = %d, want 3", view.ItemCount)
	}

	rec = doJSON(t, routes, http.MethodPut, "/api/cart/items/7/instructions", session, map[string]string{"special_instructions": "no onions"})
	decodeResponse(t, rec, &view)
	if view.Lines[0].SpecialInstructions != "no onions" {
		t.Errorf("instructions = %q, want no onions", view.Lines[0].SpecialInstructions)
	}

	rec = doJSON(t, routes, http.MethodDelete, "/api/cart/items/7", session, nil)
	decodeResponse(t, rec, &view)
	if !view.Empty {
		t.Errorf("cart not empty after removal: %+v", view)
	}
}

func TestHandler_CartSessionsAreIsolated(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()

	item := map[string]interface{}{"id": "7", "name": "Burger", "price": 5.00, "quantity": 1}
	doJSON(t, routes, http.MethodPost, "/api/cart/items", "sess-a", item)

	var view cart.View
	decodeResponse(t, doJSON(t, routes, http.MethodGet, "/api/cart/", "sess-b", nil), &view)
	if !view.Empty {
		t.Errorf("session b sees session a's cart: %+v", view)
	}
}

func TestHandler_AddCartItemRejectsInvalid(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.Routes(), http.MethodPost, "/api/cart/items", "sess-1", map[string]interface{}{
		"id": "", "name": "Ghost", "price": 5.00,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp models.CreateOrderResponse
	decodeResponse(t, rec, &resp)
	if resp.Message != "Invalid item data" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestHandler_ClearCartRequiresConfirmation(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()
	session := "sess-1"

	item := map[string]interface{}{"id": "7", "name": "Burger", "price": 5.00, "quantity": 1}
	doJSON(t, routes, http.MethodPost, "/api/cart/items", session, item)

	rec := doJSON(t, routes, http.MethodDelete, "/api/cart/", session, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unconfirmed clear status = %d, want 400", rec.Code)
	}

	var view cart.View
	decodeResponse(t, doJSON(t, routes, http.MethodGet, "/api/cart/", session, nil), &view)
	if view.Empty {
		t.Fatalf("unconfirmed clear emptied the cart")
	}

	rec = doJSON(t, routes, http.MethodDelete, "/api/cart/?confirm=1", session, nil)
	decodeResponse(t, rec, &view)
	if !view.Empty {
		t.Errorf("confirmed clear left items behind: %+v", view)
	}
}

func TestHandler_Checkout(t *testing.T) {
	h, _, _ := newTestHandler(t)
	routes := h.Routes()
	session := "sess-1"

	rec := doJSON(t, routes, http.MethodPost, "/api/cart/checkout", session, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty checkout status = %d, want 400", rec.Code)
	}

	item := map[string]interface{}{"id": "7", "name": "Burger", "price": 5.00, "quantity": 1}
	doJSON(t, routes, http.MethodPost, "/api/cart/items", session, item)

	rec = doJSON(t, routes, http.MethodPost, "/api/cart/checkout", session, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("checkout status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success  bool   `json:"success"`
		Redirect string `json:"redirect"`
	}
	decodeResponse(t, rec, &resp)
	if !resp.Success || resp.Redirect != "/checkout/" {
		t.Errorf("checkout response = %+v, want redirect /checkout/", resp)
	}
}

func TestHandler_HealthCheck(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doJSON(t, h.Routes(), http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]interface{}
	decodeResponse(t, rec, &resp)
	if resp["status"] != "ok" || resp["service"] != "order-service" {
		t.Errorf("health response = %+v", resp)
	}
}
