package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ordersvc "github.com/storefrontlabs/storefront/internal/orders"
	"github.com/storefrontlabs/storefront/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront/pkg/errors"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}

type stubCheckoutService struct {
	order    *ordersvc.OrderDTO
	err      error
	selected [][]uuid.UUID
}

func (s *stubCheckoutService) PlaceOrder(ctx context.Context, userID uuid.UUID) (*ordersvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubCheckoutService) SelectiveCheckout(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*ordersvc.OrderDTO, error) {
	s.selected = append(s.selected, productIDs)
	return s.order, s.err
}

func TestCheckoutPlaceOrderCreated(t *testing.T) {
	order := &ordersvc.OrderDTO{
		ID:          uuid.New(),
		Status:      enums.OrderStatusPending,
		TotalAmount: decimal.RequireFromString("30.00"),
	}
	handler := CheckoutPlaceOrder(&stubCheckoutService{order: order}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", ""))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	var envelope struct {
		Data ordersvc.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != order.ID {
		t.Fatalf("unexpected order id: %s", envelope.Data.ID)
	}
	if envelope.Data.Status != enums.OrderStatusPending {
		t.Fatalf("unexpected status: %s", envelope.Data.Status)
	}
}

func TestCheckoutPlaceOrderEmptyCart(t *testing.T) {
	handler := CheckoutPlaceOrder(&stubCheckoutService{
		err: pkgerrors.New(pkgerrors.CodeCartEmpty, "cart has no items"),
	}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeCartEmpty) {
		t.Fatalf("unexpected error code: %s", envelope.Error.Code)
	}
}

func TestCheckoutPlaceOrderMissingAuthContext(t *testing.T) {
	handler := CheckoutPlaceOrder(&stubCheckoutService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutSelectivePassesProductIDs(t *testing.T) {
	svc := &stubCheckoutService{order: &ordersvc.OrderDTO{ID: uuid.New()}}
	handler := CheckoutSelective(svc, nil)

	first := uuid.New()
	second := uuid.New()
	body := `{"product_ids":["` + first.String() + `","` + second.String() + `"]}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout/selective", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if len(svc.selected) != 1 {
		t.Fatalf("expected one selective call got %d", len(svc.selected))
	}
	if len(svc.selected[0]) != 2 || svc.selected[0][0] != first || svc.selected[0][1] != second {
		t.Fatalf("unexpected product ids: %v", svc.selected[0])
	}
}

func TestCheckoutSelectiveRequiresProductIDs(t *testing.T) {
	svc := &stubCheckoutService{}
	handler := CheckoutSelective(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout/selective", `{"product_ids":[]}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(svc.selected) != 0 {
		t.Fatalf("service should not be called on validation failure")
	}
}
