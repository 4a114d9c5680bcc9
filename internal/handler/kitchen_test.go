package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jwg-resto/pos-api/internal/database"
	"github.com/jwg-resto/pos-api/internal/enum"
	"github.com/jwg-resto/pos-api/internal/handler"
	"github.com/jwg-resto/pos-api/internal/middleware"
	"github.com/jwg-resto/pos-api/internal/service"
)

type mockKitchenService struct {
	queueFn  func(ctx context.Context, status string) ([]service.KitchenOrder, error)
	alertsFn func(ctx context.Context) ([]service.KitchenAlert, error)
}

func (m *mockKitchenService) Queue(ctx context.Context, status string) ([]service.KitchenOrder, error) {
	if m.queueFn != nil {
		return m.queueFn(ctx, status)
	}
	return []service.KitchenOrder{}, nil
}

func (m *mockKitchenService) Alerts(ctx context.Context) ([]service.KitchenAlert, error) {
	if m.alertsFn != nil {
		return m.alertsFn(ctx)
	}
	return []service.KitchenAlert{}, nil
}

func setupKitchenRouter(svc *mockKitchenService, items *mockOrderService) *chi.Mux {
	h := handler.NewKitchenHandler(svc, items, testLogger())
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/kitchen", h.RegisterRoutes)
	return r
}

func TestKitchenQueue(t *testing.T) {
	var gotStatus string
	orderID := uuid.New()
	svc := &mockKitchenService{
		queueFn: func(_ context.Context, status string) ([]service.KitchenOrder, error) {
			gotStatus = status
			return []service.KitchenOrder{{
				OrderID:     orderID,
				OrderNumber: "ORD-1",
				TableNumber: "T1",
				CreatedAt:   time.Date(2026, 3, 14, 11, 40, 0, 0, time.UTC),
				WaitTime:    20,
				Items: []database.KitchenItemRow{{
					OrderItem: database.OrderItem{ID: uuid.New(), OrderID: orderID, Quantity: 2, Status: status},
					MenuName:  "Nasi Goreng",
				}},
			}}, nil
		},
	}
	router := setupKitchenRouter(svc, &mockOrderService{})

	rr := doAuthRequest(t, router, http.MethodGet, "/kitchen?action=pending", nil, testClaims(enum.UserRoleKitchen))
	expectStatus(t, rr, http.StatusOK)
	if gotStatus != enum.OrderItemStatusPending {
		t.Errorf("status: %q", gotStatus)
	}

	var body []struct {
		OrderNumber string `json:"order_number"`
		WaitTime    int    `json:"wait_time"`
		Items       []struct {
			MenuName string `json:"menu_name"`
			Quantity int32  `json:"quantity"`
		} `json:"items"`
	}
	decodeData(t, decodeEnvelope(t, rr), &body)
	if len(body) != 1 || body[0].WaitTime != 20 || len(body[0].Items) != 1 || body[0].Items[0].MenuName != "Nasi Goreng" {
		t.Errorf("body: %+v", body)
	}

	rr = doAuthRequest(t, router, http.MethodGet, "/kitchen?action=served", nil, testClaims(enum.UserRoleKitchen))
	expectStatus(t, rr, http.StatusBadRequest)
}

func TestKitchenAlerts(t *testing.T) {
	svc := &mockKitchenService{
		alertsFn: func(context.Context) ([]service.KitchenAlert, error) {
			return []service.KitchenAlert{{Severity: enum.AlertSeverityCritical, MenuName: "Sate", WaitTime: 35, Message: "Sate has been pending for over 30 minutes"}}, nil
		},
	}
	rr := doAuthRequest(t, setupKitchenRouter(svc, &mockOrderService{}), http.MethodGet, "/kitchen?action=alerts", nil, testClaims(enum.UserRoleKitchen))
	expectStatus(t, rr, http.StatusOK)

	var body []struct {
		Severity string `json:"severity"`
		WaitTime int    `json:"wait_time"`
	}
	decodeData(t, decodeEnvelope(t, rr), &body)
	if len(body) != 1 || body[0].Severity != "critical" || body[0].WaitTime != 35 {
		t.Errorf("body: %+v", body)
	}
}

func TestKitchenItemTransitions(t *testing.T) {
	claims := testClaims(enum.UserRoleKitchen)
	itemID := uuid.New()
	var calls []string
	items := &mockOrderService{
		updateItemStatusFn: func(_ context.Context, id uuid.UUID, status string, actor uuid.NullUUID) (*service.ItemStatusResult, error) {
			if id != itemID || actor.UUID != claims.UserID {
				t.Errorf("unexpected call: %s %v", id, actor)
			}
			calls = append(calls, status)
			return &service.ItemStatusResult{
				Item:  database.OrderItem{ID: id, Status: status},
				Order: testOrder(),
			}, nil
		},
	}
	router := setupKitchenRouter(&mockKitchenService{}, items)

	rr := doAuthRequest(t, router, http.MethodPost, "/kitchen?action=start-preparing&id="+itemID.String(), nil, claims)
	expectStatus(t, rr, http.StatusOK)
	rr = doAuthRequest(t, router, http.MethodPost, "/kitchen?action=mark-ready&id="+itemID.String(), nil, claims)
	expectStatus(t, rr, http.StatusOK)

	if len(calls) != 2 || calls[0] != enum.OrderItemStatusPreparing || calls[1] != enum.OrderItemStatusReady {
		t.Errorf("calls: %v", calls)
	}

	rr = doAuthRequest(t, router, http.MethodPost, "/kitchen?action=mark-ready", nil, claims)
	expectStatus(t, rr, http.StatusBadRequest)
}
