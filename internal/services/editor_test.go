package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bdsumon4u/KroyJogot24/internal/config"
	"github.com/bdsumon4u/KroyJogot24/internal/db"
	"github.com/bdsumon4u/KroyJogot24/internal/email"
	"github.com/bdsumon4u/KroyJogot24/internal/models"
	"github.com/bdsumon4u/KroyJogot24/internal/settings"
)

type fakeEditorStore struct {
	orders       map[uuid.UUID]*models.Order
	lastDetails  db.OrderDetails
	lastStamp    bool
	bulkIDs      []uuid.UUID
	bulkStatus   string
	bulkStamp    bool
	bulkAffected int64
}

func newFakeEditorStore(orders ...*models.Order) *fakeEditorStore {
	s := &fakeEditorStore{orders: make(map[uuid.UUID]*models.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeEditorStore) GetByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *order
	return &clone, nil
}

func (s *fakeEditorStore) UpdateDetails(_ context.Context, orderID uuid.UUID, d db.OrderDetails, stampShipped bool) error {
	if _, ok := s.orders[orderID]; !ok {
		return pgx.ErrNoRows
	}
	s.lastDetails = d
	s.lastStamp = stampShipped
	return nil
}

func (s *fakeEditorStore) BulkUpdateStatus(_ context.Context, orderIDs []uuid.UUID, status string, _ time.Time, stampShipped bool) (int64, error) {
	s.bulkIDs = orderIDs
	s.bulkStatus = status
	s.bulkStamp = stampShipped
	if s.bulkAffected > 0 {
		return s.bulkAffected, nil
	}
	return int64(len(orderIDs)), nil
}

type fakeEmailProvider struct {
	sent []email.Message
	err  error
}

func (f *fakeEmailProvider) Send(_ context.Context, msg email.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func editorTestConfig() *config.Config {
	return &config.Config{
		OrderStatuses:        []string{"Pending", "Confirmed", "Processing", "Shipping", "Delivered", "Cancelled"},
		ShippingStatus:       "Shipping",
		ShippingInsideDhaka:  60,
		ShippingOutsideDhaka: 120,
	}
}

func validEditInput() EditOrderInput {
	return EditOrderInput{
		Phone:        "01712345678",
		Name:         "Rahim Uddin",
		Address:      "House 7, Road 3, Dhanmondi",
		Status:       "Confirmed",
		ShippingArea: "Inside Dhaka",
		Discount:     intPtr(0),
		Advanced:     intPtr(0),
	}
}

func newTestEditorService(t *testing.T, store *fakeEditorStore, shopSettings *settings.Settings, emails email.Provider) *EditorService {
	t.Helper()
	svc, err := NewEditorService(store, shopSettings, editorTestConfig(), emails, nil)
	if err != nil {
		t.Fatalf("failed to build editor service: %v", err)
	}
	return svc
}

func intPtr(v int) *int { return &v }

func TestEditorUpdateValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*EditOrderInput)
	}{
		{name: "missing phone", mutate: func(in *EditOrderInput) { in.Phone = "" }},
		{name: "bad phone", mutate: func(in *EditOrderInput) { in.Phone = "+15551234567" }},
		{name: "short local phone", mutate: func(in *EditOrderInput) { in.Phone = "0171234567" }},
		{name: "missing name", mutate: func(in *EditOrderInput) { in.Name = "" }},
		{name: "missing address", mutate: func(in *EditOrderInput) { in.Address = "" }},
		{name: "missing status", mutate: func(in *EditOrderInput) { in.Status = "" }},
		{name: "unknown status", mutate: func(in *EditOrderInput) { in.Status = "Returned" }},
		{name: "missing shipping area", mutate: func(in *EditOrderInput) { in.ShippingArea = "" }},
		{name: "missing discount", mutate: func(in *EditOrderInput) { in.Discount = nil }},
		{name: "missing advance", mutate: func(in *EditOrderInput) { in.Advanced = nil }},
		{name: "negative discount", mutate: func(in *EditOrderInput) { in.Discount = intPtr(-5) }},
		{name: "negative advance", mutate: func(in *EditOrderInput) { in.Advanced = intPtr(-1) }},
		{name: "malformed email", mutate: func(in *EditOrderInput) { in.Email = "not-an-email" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			order := orderWithItems(models.LineItem{ID: 1, Price: 100, Quantity: 2, Total: 200})
			svc := newTestEditorService(t, newFakeEditorStore(order), &settings.Settings{}, nil)

			input := validEditInput()
			tt.mutate(&input)

			if _, err := svc.Update(context.Background(), order.ID, input); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestEditorUpdateOmittedDiscountDoesNotClobber(t *testing.T) {
	t.Parallel()

	order := orderWithItems(models.LineItem{ID: 1, Price: 100, Quantity: 2, Total: 200})
	order.Data.Discount = 75

	store := newFakeEditorStore(order)
	svc := newTestEditorService(t, store, &settings.Settings{}, nil)

	input := validEditInput()
	input.Discount = nil

	if _, err := svc.Update(context.Background(), order.ID, input); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if store.lastDetails.Phone != "" {
		t.Fatalf("store was written despite the rejected edit: %+v", store.lastDetails)
	}
	if order.Data.Discount != 75 {
		t.Fatalf("stored discount = %d, want 75", order.Data.Discount)
	}
}

func TestEditorUpdate(t *testing.T) {
	t.Parallel()

	order := orderWithItems(
		models.LineItem{ID: 1, Price: 100, Quantity: 2, Total: 200},
		models.LineItem{ID: 2, Price: 250, Quantity: 1, Total: 250},
	)
	order.Data.Discount = 999

	store := newFakeEditorStore(order)
	shopSettings := &settings.Settings{DeliveryCharge: settings.DeliveryCharge{
		InsideDhaka:  intPtr(70),
		OutsideDhaka: intPtr(130),
	}}
	svc := newTestEditorService(t, store, shopSettings, nil)

	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	input := validEditInput()
	input.Discount = intPtr(50)
	input.Advanced = intPtr(100)
	input.Email = "rahim@example.com"

	updated, err := svc.Update(context.Background(), order.ID, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Phone != "+8801712345678" {
		t.Fatalf("phone = %q, want normalized international form", updated.Phone)
	}
	if store.lastDetails.StatusAt != fixed {
		t.Fatalf("status_at = %v, want %v", store.lastDetails.StatusAt, fixed)
	}
	if store.lastStamp {
		t.Fatalf("shipped stamp requested for non-shipping status")
	}
	if store.lastDetails.Data.Subtotal != 450 {
		t.Fatalf("subtotal = %d, want 450", store.lastDetails.Data.Subtotal)
	}
	if store.lastDetails.Data.ShippingCost != 70 {
		t.Fatalf("shipping cost = %d, want settings table rate 70", store.lastDetails.Data.ShippingCost)
	}
	if store.lastDetails.Data.ShippingArea != "Inside Dhaka" {
		t.Fatalf("shipping area = %q", store.lastDetails.Data.ShippingArea)
	}
	if store.lastDetails.Data.Discount != 50 || store.lastDetails.Data.Advanced != 100 {
		t.Fatalf("monetary fields = %+v", store.lastDetails.Data)
	}
}

func TestEditorUpdateShippingCostFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		area     string
		settings *settings.Settings
		want     int
	}{
		{name: "settings inside rate", area: "Inside Dhaka", settings: &settings.Settings{DeliveryCharge: settings.DeliveryCharge{InsideDhaka: intPtr(80)}}, want: 80},
		{name: "settings outside rate", area: "Outside Dhaka", settings: &settings.Settings{DeliveryCharge: settings.DeliveryCharge{OutsideDhaka: intPtr(140)}}, want: 140},
		{name: "fallback inside", area: "Inside Dhaka", settings: &settings.Settings{}, want: 60},
		{name: "fallback outside", area: "Outside Dhaka", settings: &settings.Settings{}, want: 120},
		{name: "unknown area uses outside rate", area: "Chittagong", settings: &settings.Settings{}, want: 120},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			order := orderWithItems()
			store := newFakeEditorStore(order)
			svc := newTestEditorService(t, store, tt.settings, nil)

			input := validEditInput()
			input.ShippingArea = tt.area

			if _, err := svc.Update(context.Background(), order.ID, input); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store.lastDetails.Data.ShippingCost != tt.want {
				t.Fatalf("shipping cost = %d, want %d", store.lastDetails.Data.ShippingCost, tt.want)
			}
		})
	}
}

func TestEditorUpdateShippedStamp(t *testing.T) {
	t.Parallel()

	t.Run("first transition stamps and notifies", func(t *testing.T) {
		t.Parallel()

		order := orderWithItems(models.LineItem{ID: 1, Price: 100, Quantity: 2, Total: 200})
		store := newFakeEditorStore(order)
		emails := &fakeEmailProvider{}
		svc := newTestEditorService(t, store, &settings.Settings{}, emails)

		fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return fixed }

		input := validEditInput()
		input.Status = "Shipping"
		input.Email = "rahim@example.com"

		updated, err := svc.Update(context.Background(), order.ID, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !store.lastStamp {
			t.Fatalf("expected shipped stamp")
		}
		if updated.ShippedAt != fixed {
			t.Fatalf("shipped_at = %v, want %v", updated.ShippedAt, fixed)
		}
		if len(emails.sent) != 1 || emails.sent[0].To != "rahim@example.com" {
			t.Fatalf("expected one notification, got %+v", emails.sent)
		}
	})

	t.Run("already shipped order is not re-notified", func(t *testing.T) {
		t.Parallel()

		order := orderWithItems()
		order.Status = "Shipping"
		order.ShippedAt = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
		store := newFakeEditorStore(order)
		emails := &fakeEmailProvider{}
		svc := newTestEditorService(t, store, &settings.Settings{}, emails)

		input := validEditInput()
		input.Status = "Shipping"
		input.Email = "rahim@example.com"

		updated, err := svc.Update(context.Background(), order.ID, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !store.lastStamp {
			t.Fatalf("stamp flag should still be passed; the store keeps the first value")
		}
		if !updated.ShippedAt.Equal(order.ShippedAt) {
			t.Fatalf("shipped_at changed: %v", updated.ShippedAt)
		}
		if len(emails.sent) != 0 {
			t.Fatalf("unexpected notification: %+v", emails.sent)
		}
	})

	t.Run("no email address means no notification", func(t *testing.T) {
		t.Parallel()

		order := orderWithItems()
		emails := &fakeEmailProvider{}
		svc := newTestEditorService(t, newFakeEditorStore(order), &settings.Settings{}, emails)

		input := validEditInput()
		input.Status = "Shipping"

		if _, err := svc.Update(context.Background(), order.ID, input); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(emails.sent) != 0 {
			t.Fatalf("unexpected notification: %+v", emails.sent)
		}
	})

	t.Run("notification failure does not fail the edit", func(t *testing.T) {
		t.Parallel()

		order := orderWithItems()
		emails := &fakeEmailProvider{err: errors.New("smtp down")}
		svc := newTestEditorService(t, newFakeEditorStore(order), &settings.Settings{}, emails)

		input := validEditInput()
		input.Status = "Shipping"
		input.Email = "rahim@example.com"

		if _, err := svc.Update(context.Background(), order.ID, input); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestEditorUpdateOrderNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestEditorService(t, newFakeEditorStore(), &settings.Settings{}, nil)

	if _, err := svc.Update(context.Background(), uuid.New(), validEditInput()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBulkStatusUpdate(t *testing.T) {
	t.Parallel()

	t.Run("unknown status", func(t *testing.T) {
		t.Parallel()

		svc := newTestEditorService(t, newFakeEditorStore(), &settings.Settings{}, nil)
		if _, err := svc.BulkStatusUpdate(context.Background(), []uuid.UUID{uuid.New()}, "Returned"); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("no orders", func(t *testing.T) {
		t.Parallel()

		svc := newTestEditorService(t, newFakeEditorStore(), &settings.Settings{}, nil)
		if _, err := svc.BulkStatusUpdate(context.Background(), nil, "Confirmed"); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("shipping status stamps shipped_at", func(t *testing.T) {
		t.Parallel()

		store := newFakeEditorStore()
		svc := newTestEditorService(t, store, &settings.Settings{}, nil)

		ids := []uuid.UUID{uuid.New(), uuid.New()}
		updated, err := svc.BulkStatusUpdate(context.Background(), ids, "Shipping")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated != 2 {
			t.Fatalf("updated = %d, want 2", updated)
		}
		if !store.bulkStamp {
			t.Fatalf("expected shipped stamp for shipping status")
		}
		if store.bulkStatus != "Shipping" || len(store.bulkIDs) != 2 {
			t.Fatalf("bulk call = %q %v", store.bulkStatus, store.bulkIDs)
		}
	})

	t.Run("other statuses do not stamp", func(t *testing.T) {
		t.Parallel()

		store := newFakeEditorStore()
		svc := newTestEditorService(t, store, &settings.Settings{}, nil)

		if _, err := svc.BulkStatusUpdate(context.Background(), []uuid.UUID{uuid.New()}, "Delivered"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.bulkStamp {
			t.Fatalf("unexpected shipped stamp")
		}
	})
}
