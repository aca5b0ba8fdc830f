package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/davidquint/raffle-backend/internal/cart"
	"github.com/davidquint/raffle-backend/internal/catalog"
	"github.com/davidquint/raffle-backend/internal/events"
	"github.com/davidquint/raffle-backend/internal/orders"
	"github.com/davidquint/raffle-backend/pkg/config"
	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/logger"
	"github.com/davidquint/raffle-backend/pkg/outbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service validates buyer details against the live cart and submits orders.
type Service interface {
	Validate(ctx context.Context, cartID uuid.UUID, details BuyerDetails) (map[string]string, error)
	Submit(ctx context.Context, cartID uuid.UUID, details BuyerDetails) (*models.Order, error)
}

type service struct {
	carts    *cart.Store
	catalog  catalog.Service
	events   events.Service
	orders   orders.Service
	outbox   outboxPublisher
	db       *gorm.DB
	logg     *logger.Logger
	homeCtry string
}

// NewService builds a checkout service with the required dependencies.
func NewService(
	carts *cart.Store,
	catalogSvc catalog.Service,
	eventsSvc events.Service,
	ordersSvc orders.Service,
	outboxSvc outboxPublisher,
	db *gorm.DB,
	logg *logger.Logger,
	cfg config.CheckoutConfig,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if eventsSvc == nil {
		return nil, fmt.Errorf("events service required")
	}
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:    carts,
		catalog:  catalogSvc,
		events:   eventsSvc,
		orders:   ordersSvc,
		outbox:   outboxSvc,
		db:       db,
		logg:     logg,
		homeCtry: cfg.HomeCountry,
	}, nil
}

func (s *service) validationContext(ctx context.Context, cartID uuid.UUID) (ValidationContext, *models.RaffleEvent, error) {
	event, err := s.events.Current(ctx)
	if err != nil {
		return ValidationContext{}, nil, err
	}

	vctx := ValidationContext{
		HomeCountry:          s.homeCtry,
		HasAgeRestrictedItem: s.carts.HasAgeRestrictedSelection(cartID),
	}
	if event.Settings != nil {
		vctx.AllowInternational = event.Settings.AllowInternationalOrders
		vctx.RequireAgeConfirmation = event.Settings.RequireAgeConfirmation
	}
	for _, line := range s.carts.Snapshot(cartID).Lines {
		if line.IsLocalPickupOnly {
			vctx.HasLocalPickupOnlyItem = true
			break
		}
	}
	return vctx, event, nil
}

// Validate runs the full rule set and returns every field problem at once.
func (s *service) Validate(ctx context.Context, cartID uuid.UUID, details BuyerDetails) (map[string]string, error) {
	vctx, _, err := s.validationContext(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return Validate(details, vctx), nil
}

// Submit re-validates the details and the cart against fresh item reads, then
// writes the order and its lines. The two writes are sequential; if the lines
// fail, the order row is deleted best-effort so no half-order confirms.
func (s *service) Submit(ctx context.Context, cartID uuid.UUID, details BuyerDetails) (*models.Order, error) {
	vctx, event, err := s.validationContext(ctx, cartID)
	if err != nil {
		return nil, err
	}

	snapshot := s.carts.Snapshot(cartID)
	if len(snapshot.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	if problems := Validate(details, vctx); len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout details are invalid").
			WithDetails(problems)
	}

	fresh, err := s.freshItems(ctx, event.ID, snapshot)
	if err != nil {
		return nil, err
	}

	totalTickets := 0
	totalAmount := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		item := fresh[line.ItemID]
		totalTickets += line.Quantity
		totalAmount = totalAmount.Add(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		orderItems = append(orderItems, models.OrderItem{
			ItemID:     item.ID,
			ItemNumber: item.ItemNumber,
			ItemName:   item.Name,
			Quantity:   line.Quantity,
			Price:      item.Price,
		})
	}

	order := &models.Order{
		EventID:         event.ID,
		FirstName:       strings.TrimSpace(details.FirstName),
		LastName:        strings.TrimSpace(details.LastName),
		Email:           strings.TrimSpace(details.Email),
		Phone:           strings.TrimSpace(details.Phone),
		Address:         strings.TrimSpace(details.Address),
		City:            strings.TrimSpace(details.City),
		Zip:             strings.TrimSpace(details.Zip),
		Country:         strings.TrimSpace(details.Country),
		IsInternational: vctx.IsInternational(details.Country),
		AgeConfirmed:    details.AgeConfirmed,
		TotalAmount:     totalAmount,
		TotalTickets:    totalTickets,
		Status:          enums.OrderStatusPending,
	}
	if state := strings.TrimSpace(details.State); state != "" {
		order.State = &state
	}

	created, err := s.orders.CreateWithNumber(ctx, order)
	if err != nil {
		return nil, err
	}

	for i := range orderItems {
		orderItems[i].OrderID = created.ID
	}
	if err := s.orders.CreateOrderItems(ctx, orderItems); err != nil {
		if delErr := s.orders.DeleteOrder(ctx, created.ID); delErr != nil {
			logCtx := s.logg.WithOrderNumber(ctx, created.OrderNumber)
			s.logg.Error(logCtx, "compensating order delete failed", delErr)
			return nil, multierr.Append(err, delErr)
		}
		return nil, err
	}
	created.Items = orderItems

	s.emitOrderCreated(ctx, created)
	s.carts.Clear(cartID)

	return created, nil
}

// freshItems re-reads every cart line from the catalog and rejects the
// submission when an item vanished, went unavailable, left the current
// event, or changed price.
func (s *service) freshItems(ctx context.Context, eventID uuid.UUID, snapshot cart.Snapshot) (map[uuid.UUID]models.RaffleItem, error) {
	ids := make([]uuid.UUID, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		ids = append(ids, line.ItemID)
	}

	items, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.RaffleItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	problems := map[string]string{}
	for _, line := range snapshot.Lines {
		item, ok := byID[line.ItemID]
		switch {
		case !ok || !item.IsAvailable:
			problems[line.ItemID.String()] = "item is no longer available"
		case item.EventID != eventID:
			problems[line.ItemID.String()] = "item is not part of the current event"
		case !item.Price.Equal(line.Price):
			problems[line.ItemID.String()] = "item price has changed"
		}
	}
	if len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is no longer valid").
			WithDetails(problems)
	}
	return byID, nil
}

// emitOrderCreated queues the outbox event after the order is durable. A
// failed emit is logged, never surfaced to the buyer.
func (s *service) emitOrderCreated(ctx context.Context, order *models.Order) {
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		OccurredAt:    time.Now(),
		Data: OrderCreatedEvent{
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			EventID:      order.EventID,
			Email:        order.Email,
			TotalAmount:  order.TotalAmount,
			TotalTickets: order.TotalTickets,
		},
	}
	if err := s.outbox.Emit(ctx, s.db, event); err != nil {
		logCtx := s.logg.WithOrderNumber(ctx, order.OrderNumber)
		s.logg.Error(logCtx, "queueing order created event failed", err)
	}
}
