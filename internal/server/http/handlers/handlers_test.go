package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/peertrade/escrowd/internal/domain/errors"
	"github.com/peertrade/escrowd/internal/domain/model"
	"github.com/peertrade/escrowd/internal/server/http/dto"
	"github.com/peertrade/escrowd/internal/server/http/middleware"
	testhelpers "github.com/peertrade/escrowd/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(t *testing.T, method, pattern, url string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, pattern, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func asParty(partyID string) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.PartyIDContextKey, partyID)
	}
}

func TestCurrentPartyID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentPartyID(c); got != "" {
		t.Fatalf("expected empty when not set, got %q", got)
	}

	c.Set(middleware.PartyIDContextKey, "party-7")
	if got := CurrentPartyID(c); got != "party-7" {
		t.Fatalf("expected party-7, got %q", got)
	}
}

func TestTradeHandlerTake(t *testing.T) {
	takerID := testhelpers.RandomASCIIString(8, 16)
	var gotOrder, gotTaker, gotRole string
	facade := testhelpers.TradeFacadeStub{TakeFn: func(ctx context.Context, orderID, takerID, role string) (*model.Order, error) {
		gotOrder, gotTaker, gotRole = orderID, takerID, role
		return &model.Order{
			ID:       orderID,
			Kind:     model.OrderKindSell,
			Status:   model.OrderStatusInProgress,
			Reason:   model.ReasonWaitingPayment,
			BuyerID:  takerID,
			SellerID: "maker",
		}, nil
	}}

	body, _ := json.Marshal(dto.TakeRequest{Role: "buyer"})
	resp := performRequest(t, http.MethodPost, "/api/orders/:id/take", "/api/orders/order-1/take", NewTradeHandler(facade).Take, asParty(takerID), body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotOrder != "order-1" || gotTaker != takerID || gotRole != "buyer" {
		t.Fatalf("unexpected facade call %q %q %q", gotOrder, gotTaker, gotRole)
	}

	var got dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != "order-1" || got.Status != string(model.OrderStatusInProgress) {
		t.Fatalf("unexpected response %+v", got)
	}
	if got.Reason != string(model.ReasonWaitingPayment) {
		t.Fatalf("expected reason in response, got %q", got.Reason)
	}
}

func TestTradeHandlerTakeBadBody(t *testing.T) {
	resp := performRequest(t, http.MethodPost, "/api/orders/:id/take", "/api/orders/order-1/take", NewTradeHandler(testhelpers.TradeFacadeStub{}).Take, asParty("taker-1"), []byte("{"), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestTradeHandlerTakeFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", domainErrors.ErrNotFound, http.StatusNotFound},
		{"invalid role", domainErrors.ErrInvalidRole, http.StatusUnprocessableEntity},
		{"self trade", domainErrors.ErrSelfTrade, http.StatusForbidden},
		{"taker blocked maker", domainErrors.ErrTakerBlockedMaker, http.StatusForbidden},
		{"maker blocked taker", domainErrors.ErrMakerBlockedTaker, http.StatusForbidden},
		{"banned from community", domainErrors.ErrBannedFromCommunity, http.StatusForbidden},
		{"already taken", domainErrors.ErrOrderTaken, http.StatusConflict},
		{"not takeable", domainErrors.ErrOrderNotTakeable, http.StatusConflict},
		{"terminal", domainErrors.ErrOrderTerminal, http.StatusConflict},
		{"frozen", domainErrors.ErrOrderFrozen, http.StatusConflict},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := testhelpers.TradeFacadeStub{TakeFn: func(ctx context.Context, orderID, takerID, role string) (*model.Order, error) {
				return nil, tt.err
			}}
			body, _ := json.Marshal(dto.TakeRequest{Role: "buyer"})
			resp := performRequest(t, http.MethodPost, "/api/orders/:id/take", "/api/orders/order-1/take", NewTradeHandler(facade).Take, asParty("taker-1"), body, nil)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestTradeHandlerAttachHold(t *testing.T) {
	holdHash := testhelpers.RandomHex(64)
	var gotOrder, gotHash string
	facade := testhelpers.TradeFacadeStub{AttachHoldFn: func(ctx context.Context, orderID, hash string) (*model.Order, error) {
		gotOrder, gotHash = orderID, hash
		return &model.Order{ID: orderID, Hash: &hash, Status: model.OrderStatusInProgress}, nil
	}}

	body, _ := json.Marshal(dto.HoldRequest{Hash: holdHash})
	resp := performRequest(t, http.MethodPost, "/api/orders/:id/hold", "/api/orders/order-1/hold", NewTradeHandler(facade).AttachHold, asParty("maker"), body, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotOrder != "order-1" || gotHash != holdHash {
		t.Fatalf("unexpected facade call %q %q", gotOrder, gotHash)
	}
}

func TestTradeHandlerAttachHoldValidation(t *testing.T) {
	handler := NewTradeHandler(testhelpers.TradeFacadeStub{})

	resp := performRequest(t, http.MethodPost, "/api/orders/:id/hold", "/api/orders/order-1/hold", handler.AttachHold, asParty("maker"), []byte("not json"), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for malformed body, got %d", resp.Code)
	}

	body, _ := json.Marshal(dto.HoldRequest{Hash: "   "})
	resp = performRequest(t, http.MethodPost, "/api/orders/:id/hold", "/api/orders/order-1/hold", handler.AttachHold, asParty("maker"), body, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for blank hash, got %d", resp.Code)
	}
}

func TestTradeHandlerAttachHoldFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", domainErrors.ErrNotFound, http.StatusNotFound},
		{"hold outstanding", domainErrors.ErrHoldOutstanding, http.StatusConflict},
		{"terminal", domainErrors.ErrOrderTerminal, http.StatusConflict},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := testhelpers.TradeFacadeStub{AttachHoldFn: func(ctx context.Context, orderID, hash string) (*model.Order, error) {
				return nil, tt.err
			}}
			body, _ := json.Marshal(dto.HoldRequest{Hash: "abc123"})
			resp := performRequest(t, http.MethodPost, "/api/orders/:id/hold", "/api/orders/order-1/hold", NewTradeHandler(facade).AttachHold, asParty("maker"), body, nil)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestAdminHandlerFreeze(t *testing.T) {
	var gotOrder, gotAdmin string
	facade := testhelpers.TradeFacadeStub{FreezeFn: func(ctx context.Context, orderID, adminID string) (*model.Order, error) {
		gotOrder, gotAdmin = orderID, adminID
		return &model.Order{ID: orderID, Status: model.OrderStatusFrozen, IsFrozen: true}, nil
	}}

	resp := performRequest(t, http.MethodPost, "/api/admin/orders/:id/freeze", "/api/admin/orders/order-1/freeze", NewAdminHandler(facade).Freeze, asParty("admin-1"), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotOrder != "order-1" || gotAdmin != "admin-1" {
		t.Fatalf("unexpected facade call %q %q", gotOrder, gotAdmin)
	}

	var got dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !got.IsFrozen || got.Status != string(model.OrderStatusFrozen) {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestAdminHandlerFreezeFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", domainErrors.ErrNotFound, http.StatusNotFound},
		{"terminal", domainErrors.ErrOrderTerminal, http.StatusConflict},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := testhelpers.TradeFacadeStub{FreezeFn: func(ctx context.Context, orderID, adminID string) (*model.Order, error) {
				return nil, tt.err
			}}
			resp := performRequest(t, http.MethodPost, "/api/admin/orders/:id/freeze", "/api/admin/orders/order-1/freeze", NewAdminHandler(facade).Freeze, asParty("admin-1"), nil, nil)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestQueryHandlerOrder(t *testing.T) {
	facade := testhelpers.TradeFacadeStub{OrderFn: func(ctx context.Context, id string) (*model.Order, error) {
		return &model.Order{ID: id, Kind: model.OrderKindBuy, Status: model.OrderStatusActive, FiatCode: "EUR"}, nil
	}}

	resp := performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/order-1", NewQueryHandler(facade).Order, asParty("party-1"), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var got dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != "order-1" || got.FiatCode != "EUR" {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestQueryHandlerOrderFailures(t *testing.T) {
	facade := testhelpers.TradeFacadeStub{OrderFn: func(ctx context.Context, id string) (*model.Order, error) {
		return nil, domainErrors.ErrNotFound
	}}
	resp := performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/missing", NewQueryHandler(facade).Order, asParty("party-1"), nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}

	facade = testhelpers.TradeFacadeStub{OrderFn: func(ctx context.Context, id string) (*model.Order, error) {
		return nil, errors.New("boom")
	}}
	resp = performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/order-1", NewQueryHandler(facade).Order, asParty("party-1"), nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestQueryHandlerListings(t *testing.T) {
	var gotFiat string
	facade := testhelpers.TradeFacadeStub{ListingsFn: func(ctx context.Context, fiatCode string) ([]model.Order, error) {
		gotFiat = fiatCode
		return []model.Order{
			{ID: "order-1", FiatCode: fiatCode, Status: model.OrderStatusPending},
			{ID: "order-2", FiatCode: fiatCode, Status: model.OrderStatusPending},
		}, nil
	}}

	resp := performRequest(t, http.MethodGet, "/api/listings/:fiat", "/api/listings/eur", NewQueryHandler(facade).Listings, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotFiat != "EUR" {
		t.Fatalf("expected fiat code uppercased, got %q", gotFiat)
	}

	var got []dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(got))
	}
}

func TestQueryHandlerListingsEmpty(t *testing.T) {
	facade := testhelpers.TradeFacadeStub{ListingsFn: func(ctx context.Context, fiatCode string) ([]model.Order, error) {
		return nil, nil
	}}
	resp := performRequest(t, http.MethodGet, "/api/listings/:fiat", "/api/listings/VES", NewQueryHandler(facade).Listings, nil, nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}
}

func TestQueryHandlerListingsError(t *testing.T) {
	facade := testhelpers.TradeFacadeStub{ListingsFn: func(ctx context.Context, fiatCode string) ([]model.Order, error) {
		return nil, errors.New("board down")
	}}
	resp := performRequest(t, http.MethodGet, "/api/listings/:fiat", "/api/listings/EUR", NewQueryHandler(facade).Listings, nil, nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestQueryHandlerHealth(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/api/health", "/api/health", NewQueryHandler(testhelpers.TradeFacadeStub{}).Health, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	facade := testhelpers.TradeFacadeStub{HealthErr: errors.New("db down")}
	resp = performRequest(t, http.MethodGet, "/api/health", "/api/health", NewQueryHandler(facade).Health, nil, nil, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}
