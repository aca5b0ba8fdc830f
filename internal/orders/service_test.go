package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/outbox"
	"github.com/davidquint/raffle-backend/pkg/pagination"
)

type stubOrderRepo struct {
	orders          map[uuid.UUID]*models.Order
	byNumber        map[string]*models.Order
	listRows        []models.Order
	createAttempts  int
	createFailures  int
	createErr       error
	updateStatusErr error
	lastStatus      enums.OrderStatus
	statusUpdates   int
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders:   map[uuid.UUID]*models.Order{},
		byNumber: map[string]*models.Order{},
	}
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrderRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.createAttempts++
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.createAttempts <= s.createFailures {
		return nil, errors.New(`duplicate key value violates unique constraint "ux_orders_order_number"`)
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	s.byNumber[order.OrderNumber] = order
	return order, nil
}

func (s *stubOrderRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	return nil
}

func (s *stubOrderRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	delete(s.orders, id)
	return nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrderRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	order, ok := s.byNumber[orderNumber]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrderRepo) ListByEvent(ctx context.Context, eventID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return s.listRows, nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if s.updateStatusErr != nil {
		return s.updateStatusErr
	}
	s.statusUpdates++
	s.lastStatus = status
	return nil
}

type recordingOutbox struct {
	events []outbox.DomainEvent
	err    error
}

func (r *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func buildOrderService(t *testing.T, repo *stubOrderRepo, emitter *recordingOutbox) Service {
	t.Helper()
	svc, err := NewService(repo, &gorm.DB{}, emitter)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedOrder(repo *stubOrderRepo, status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:          uuid.New(),
		EventID:     uuid.New(),
		OrderNumber: "R-20260901-ABCDEF",
		Status:      status,
	}
	repo.orders[order.ID] = order
	repo.byNumber[order.OrderNumber] = order
	return order
}

func TestFindByOrderNumberRequiresValue(t *testing.T) {
	svc := buildOrderService(t, newStubOrderRepo(), &recordingOutbox{})

	_, err := svc.FindByOrderNumber(context.Background(), "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFindByOrderNumberNotFound(t *testing.T) {
	svc := buildOrderService(t, newStubOrderRepo(), &recordingOutbox{})

	_, err := svc.FindByOrderNumber(context.Background(), "R-20260901-ZZZZZZ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := buildOrderService(t, newStubOrderRepo(), &recordingOutbox{})

	_, err := svc.UpdateStatus(context.Background(), StatusChangeInput{
		OrderID: uuid.New(),
		Status:  enums.OrderStatus("shipped"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	repo := newStubOrderRepo()
	emitter := &recordingOutbox{}
	svc := buildOrderService(t, repo, emitter)
	order := seedOrder(repo, enums.OrderStatusPending)

	got, err := svc.UpdateStatus(context.Background(), StatusChangeInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusPending,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if got.Status != enums.OrderStatusPending {
		t.Fatalf("unexpected status %s", got.Status)
	}
	if repo.statusUpdates != 0 {
		t.Fatal("no write expected for a no-op transition")
	}
	if len(emitter.events) != 0 {
		t.Fatal("no event expected for a no-op transition")
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	repo := newStubOrderRepo()
	svc := buildOrderService(t, repo, &recordingOutbox{})
	order := seedOrder(repo, enums.OrderStatusRefunded)

	_, err := svc.UpdateStatus(context.Background(), StatusChangeInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusPaid,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.statusUpdates != 0 {
		t.Fatal("illegal transitions must not write")
	}
}

func TestUpdateStatusEmitsEventWithActor(t *testing.T) {
	repo := newStubOrderRepo()
	emitter := &recordingOutbox{}
	svc := buildOrderService(t, repo, emitter)
	order := seedOrder(repo, enums.OrderStatusPending)
	actorID := uuid.New()

	got, err := svc.UpdateStatus(context.Background(), StatusChangeInput{
		OrderID:     order.ID,
		Status:      enums.OrderStatusPaid,
		ActorUserID: actorID,
		ActorRole:   "admin",
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if got.Status != enums.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", got.Status)
	}
	if repo.lastStatus != enums.OrderStatusPaid {
		t.Fatalf("repo saw status %s", repo.lastStatus)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(emitter.events))
	}
	event := emitter.events[0]
	if event.EventType != enums.EventOrderStatusChanged {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	if event.Actor == nil || event.Actor.UserID != actorID || event.Actor.Role != "admin" {
		t.Fatalf("expected actor on event, got %+v", event.Actor)
	}
}

func TestCreateWithNumberRetriesOnCollision(t *testing.T) {
	repo := newStubOrderRepo()
	repo.createFailures = 2
	svc := buildOrderService(t, repo, &recordingOutbox{})

	created, err := svc.CreateWithNumber(context.Background(), &models.Order{EventID: uuid.New()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.OrderNumber == "" {
		t.Fatal("expected an order number")
	}
	if repo.createAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", repo.createAttempts)
	}
}

func TestCreateWithNumberGivesUpEventually(t *testing.T) {
	repo := newStubOrderRepo()
	repo.createFailures = 100
	svc := buildOrderService(t, repo, &recordingOutbox{})

	_, err := svc.CreateWithNumber(context.Background(), &models.Order{EventID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error after exhausting retries, got %v", err)
	}
	if repo.createAttempts != orderNumberMaxRetries {
		t.Fatalf("expected %d attempts, got %d", orderNumberMaxRetries, repo.createAttempts)
	}
}

func TestListByEventPaginates(t *testing.T) {
	repo := newStubOrderRepo()
	svc := buildOrderService(t, repo, &recordingOutbox{})

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		repo.listRows = append(repo.listRows, models.Order{
			ID:        uuid.New(),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	result, err := svc.ListByEvent(context.Background(), uuid.New(), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Orders) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Orders))
	}
	if result.NextCursor == nil {
		t.Fatal("expected a next cursor when more rows exist")
	}
	cursor, err := pagination.ParseCursor(*result.NextCursor)
	if err != nil {
		t.Fatalf("cursor should round-trip: %v", err)
	}
	if cursor.ID != result.Orders[1].ID {
		t.Fatal("cursor should point at the last returned row")
	}
}

func TestListByEventNoCursorOnFinalPage(t *testing.T) {
	repo := newStubOrderRepo()
	svc := buildOrderService(t, repo, &recordingOutbox{})
	repo.listRows = []models.Order{{ID: uuid.New(), CreatedAt: time.Now()}}

	result, err := svc.ListByEvent(context.Background(), uuid.New(), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.NextCursor != nil {
		t.Fatal("no cursor expected on the final page")
	}
}
