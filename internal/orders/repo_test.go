package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
	"github.com/davidquint/raffle-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  order_number TEXT NOT NULL UNIQUE,
  customer_first_name TEXT NOT NULL,
  customer_last_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  customer_address TEXT NOT NULL,
  customer_city TEXT NOT NULL,
  customer_state TEXT,
  customer_zip TEXT NOT NULL,
  customer_country TEXT NOT NULL,
  is_international INTEGER NOT NULL DEFAULT 0,
  age_confirmed INTEGER NOT NULL DEFAULT 0,
  total_amount TEXT NOT NULL,
  total_tickets INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  item_id TEXT NOT NULL,
  item_number TEXT NOT NULL,
  item_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	t.Cleanup(func() {
		db.Exec("DELETE FROM order_items")
		db.Exec("DELETE FROM orders")
	})
	return db
}

func createTestOrder(t *testing.T, db *gorm.DB, eventID uuid.UUID, number string, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:           uuid.New(),
		EventID:      eventID,
		OrderNumber:  number,
		FirstName:    "Dana",
		LastName:     "Quint",
		Email:        "dana@example.com",
		Phone:        "555-0100",
		Address:      "1 Main St",
		City:         "Springfield",
		Zip:          "62701",
		Country:      "US",
		TotalAmount:  decimal.RequireFromString("25.00"),
		TotalTickets: 5,
		Status:       enums.OrderStatusPending,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func createTestOrderItem(t *testing.T, db *gorm.DB, orderID uuid.UUID) *models.OrderItem {
	t.Helper()

	item := &models.OrderItem{
		ID:         uuid.New(),
		OrderID:    orderID,
		ItemID:     uuid.New(),
		ItemNumber: "A-7",
		ItemName:   "Weekend getaway",
		Quantity:   5,
		Price:      decimal.RequireFromString("5.00"),
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestRepoFindByOrderNumberPreloadsItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, db, uuid.New(), "R-20260901-AAAAAA", time.Now())
	createTestOrderItem(t, db, order.ID)

	got, err := repo.FindByOrderNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Weekend getaway", got.Items[0].ItemName)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("25.00")))
}

func TestRepoFindByOrderNumberMissing(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByOrderNumber(context.Background(), "R-20260901-ZZZZZZ")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoCreateOrderRejectsDuplicateNumber(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := createTestOrder(t, db, uuid.New(), "R-20260901-BBBBBB", time.Now())

	dup := &models.Order{
		ID:           uuid.New(),
		EventID:      first.EventID,
		OrderNumber:  first.OrderNumber,
		FirstName:    "Other",
		LastName:     "Buyer",
		Email:        "other@example.com",
		Phone:        "555-0101",
		Address:      "2 Main St",
		City:         "Springfield",
		Zip:          "62701",
		Country:      "US",
		TotalAmount:  decimal.RequireFromString("10.00"),
		TotalTickets: 2,
		Status:       enums.OrderStatusPending,
	}
	_, err := repo.CreateOrder(ctx, dup)
	assert.Error(t, err)
}

func TestRepoDeleteOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, db, uuid.New(), "R-20260901-CCCCCC", time.Now())

	require.NoError(t, repo.DeleteOrder(ctx, order.ID))

	_, err := repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoUpdateStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, db, uuid.New(), "R-20260901-DDDDDD", time.Now())

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPaid))

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, got.Status)
}

func TestRepoListByEventCursorWalk(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	eventID := uuid.New()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	numbers := []string{"R-20260830-EEEEEE", "R-20260830-FFFFFF", "R-20260830-GGGGGG"}
	for i, number := range numbers {
		createTestOrder(t, db, eventID, number, base.Add(time.Duration(i)*time.Minute))
	}
	createTestOrder(t, db, uuid.New(), "R-20260830-HHHHHH", base)

	page, err := repo.ListByEvent(ctx, eventID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "R-20260830-GGGGGG", page[0].OrderNumber)

	cursor := pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: page[1].CreatedAt,
		ID:        page[1].ID,
	})
	rest, err := repo.ListByEvent(ctx, eventID, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "R-20260830-EEEEEE", rest[0].OrderNumber)
}
