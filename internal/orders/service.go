package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbpkg "github.com/davidquint/raffle-backend/pkg/db"
	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/outbox"
	"github.com/davidquint/raffle-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const orderNumberMaxRetries = 5

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes order reads and operator status transitions.
type Service interface {
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID, params pagination.Params) (*ListResult, error)
	UpdateStatus(ctx context.Context, input StatusChangeInput) (*models.Order, error)
	CreateWithNumber(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	db     *gorm.DB
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, db *gorm.DB, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		db:     db,
		outbox: outboxSvc,
		now:    time.Now,
	}, nil
}

func (s *service) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) ListByEvent(ctx context.Context, eventID uuid.UUID, params pagination.Params) (*ListResult, error) {
	rows, err := s.repo.ListByEvent(ctx, eventID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &ListResult{Orders: rows}
	if len(rows) > limit {
		result.Orders = rows[:limit]
		last := result.Orders[len(result.Orders)-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		result.NextCursor = &cursor
	}
	return result, nil
}

func (s *service) UpdateStatus(ctx context.Context, input StatusChangeInput) (*models.Order, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", input.Status)
	}

	order, err := s.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if order.Status == input.Status {
		return order, nil
	}
	if !order.Status.CanTransitionTo(input.Status) {
		return nil, pkgerrors.Newf(
			pkgerrors.CodeStateConflict,
			"cannot move order from %s to %s", order.Status, input.Status,
		).WithDetails(map[string]any{
			"from": order.Status,
			"to":   input.Status,
		})
	}

	if err := s.repo.UpdateStatus(ctx, input.OrderID, input.Status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Data: OrderStatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			EventID:     order.EventID,
			From:        order.Status,
			To:          input.Status,
		},
	}
	if input.ActorUserID != uuid.Nil {
		event.Actor = &outbox.ActorRef{UserID: input.ActorUserID, Role: input.ActorRole}
	}
	if err := s.outbox.Emit(ctx, s.db, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emitting status change event")
	}

	order.Status = input.Status
	return order, nil
}

// CreateWithNumber persists the order, generating a unique order number and
// retrying on collision.
func (s *service) CreateWithNumber(ctx context.Context, order *models.Order) (*models.Order, error) {
	for attempt := 0; attempt < orderNumberMaxRetries; attempt++ {
		number, err := GenerateOrderNumber(s.now())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating order number")
		}
		order.OrderNumber = number

		created, err := s.repo.CreateOrder(ctx, order)
		if err == nil {
			return created, nil
		}
		if dbpkg.IsUniqueViolation(err, "ux_orders_order_number") {
			continue
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "exhausted order number attempts")
}

func (s *service) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if err := s.repo.CreateOrderItems(ctx, items); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order items")
	}
	return nil
}

func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting order")
	}
	return nil
}
