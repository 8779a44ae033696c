package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sandp/medstock/internal/models"
	"github.com/sandp/medstock/internal/testutil"
)

func TestDecrementStock_Guard(t *testing.T) {
	gdb := testutil.InitTestDB(t)
	r := New(gdb)
	ctx := context.Background()
	p := testutil.SeedProduct(t, gdb, "Paracetamol", 5, 10)

	require.NoError(t, r.DecrementStock(ctx, p.ID, 3))
	assert.Equal(t, 2, testutil.Stock(t, gdb, p.ID))

	err := r.DecrementStock(ctx, p.ID, 3)
	assert.ErrorIs(t, err, ErrNoRows)
	assert.Equal(t, 2, testutil.Stock(t, gdb, p.ID))

	require.NoError(t, r.DecrementStock(ctx, p.ID, 2))
	assert.Equal(t, 0, testutil.Stock(t, gdb, p.ID))
}

func TestInTx_RollsBack(t *testing.T) {
	gdb := testutil.InitTestDB(t)
	r := New(gdb)
	ctx := context.Background()
	p := testutil.SeedProduct(t, gdb, "Cetirizine", 10, 4)

	boom := errors.New("boom")
	err := r.InTx(ctx, func(tx *GormRepo) error {
		require.NoError(t, tx.DecrementStock(ctx, p.ID, 4))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 10, testutil.Stock(t, gdb, p.ID))
}

func TestNextSequence_Monotonic(t *testing.T) {
	gdb := testutil.InitTestDB(t)
	r := New(gdb)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := r.NextSequence(ctx, "order")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	other, err := r.NextSequence(ctx, "other")
	require.NoError(t, err)
	assert.EqualValues(t, 1, other)
}

func TestSetOrderStatus_CompareAndSet(t *testing.T) {
	gdb := testutil.InitTestDB(t)
	r := New(gdb)
	ctx := context.Background()
	u := testutil.SeedUser(t, gdb, "cas@example.com", models.RoleUser)

	o := &models.Order{
		OrderNumber:     "ORD-00000001",
		InvoiceNumber:   "SANDP/ORD-00000001",
		BookedBy:        u.ID,
		CustomerName:    "A",
		CustomerMobile:  "9999999999",
		CustomerAddress: "Somewhere",
	}
	require.NoError(t, r.CreateOrder(ctx, o))

	require.NoError(t, r.SetOrderStatus(ctx, o.ID, models.OrderPlaced, models.OrderCancelled))
	assert.ErrorIs(t, r.SetOrderStatus(ctx, o.ID, models.OrderPlaced, models.OrderCancelled), ErrNoRows)

	got, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.Status)
}

func TestGetOrder_ItemsInPosition(t *testing.T) {
	gdb := testutil.InitTestDB(t)
	r := New(gdb)
	ctx := context.Background()
	u := testutil.SeedUser(t, gdb, "pos@example.com", models.RoleUser)

	items := []models.OrderItem{
		{Position: 0, ProductID: uuid.New(), ProductName: "first", Quantity: 1, Rate: 1, Amount: 1},
		{Position: 1, ProductID: uuid.New(), ProductName: "second", Quantity: 1, Rate: 1, Amount: 1},
		{Position: 2, ProductID: uuid.New(), ProductName: "third", Quantity: 1, Rate: 1, Amount: 1},
	}
	o := &models.Order{
		OrderNumber: "ORD-1", InvoiceNumber: "X/ORD-1", BookedBy: u.ID,
		CustomerName: "A", CustomerMobile: "1", CustomerAddress: "B",
		Items: items,
	}
	require.NoError(t, r.CreateOrder(ctx, o))

	got, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "first", got.Items[0].ProductName)
	assert.Equal(t, "third", got.Items[2].ProductName)

	_, err = r.GetOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListProducts_ActiveSearchAndOrder(t *testing.T) {
	gdb := testutil.InitTestDB(t)
	r := New(gdb)
	ctx := context.Background()

	testutil.SeedProduct(t, gdb, "Amoxicillin 500", 10, 5)
	time.Sleep(2 * time.Millisecond)
	newest := testutil.SeedProduct(t, gdb, "amoxicillin 250", 10, 3)
	hidden := testutil.SeedProduct(t, gdb, "Amoxicillin Old", 10, 3)
	require.NoError(t, gdb.Model(hidden).Update("status", models.ProductInactive).Error)

	total, items, err := r.ListProducts(ctx, ProductFilter{Search: "AMOX", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, newest.ID, items[0].ID)

	total, _, err = r.ListProducts(ctx, ProductFilter{IDs: []uuid.UUID{newest.ID}, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCounts(t *testing.T) {
	gdb := testutil.InitTestDB(t)
	r := New(gdb)
	ctx := context.Background()
	u := testutil.SeedUser(t, gdb, "counts@example.com", models.RoleUser)

	testutil.SeedProduct(t, gdb, "A", 0, 1)
	testutil.SeedProduct(t, gdb, "B", 50, 1)

	mk := func(n, status string, net float64) {
		o := &models.Order{
			OrderNumber: n, InvoiceNumber: "X/" + n, BookedBy: u.ID,
			CustomerName: "A", CustomerMobile: "1", CustomerAddress: "B",
			NetAmount: net, Status: status,
		}
		require.NoError(t, r.CreateOrder(ctx, o))
	}
	mk("ORD-1", models.OrderPlaced, 100)
	mk("ORD-2", models.OrderCancelled, 40)
	mk("ORD-3", models.OrderDelivered, 5)

	c, err := r.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, c.ActiveProducts)
	assert.EqualValues(t, 1, c.LowStock)
	assert.EqualValues(t, 3, c.Orders)
	assert.InDelta(t, 105, c.SalesAmount, 1e-9)
}

func TestUpdateProductDetails_KeepsStockFromStaleCopy(t *testing.T) {
	gdb := testutil.InitTestDB(t)
	r := New(gdb)
	ctx := context.Background()
	p := testutil.SeedProduct(t, gdb, "Paracetamol", 10, 100)

	stale, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 10, stale.CurrentStock)

	require.NoError(t, r.DecrementStock(ctx, p.ID, 3))

	stale.Name = "Paracetamol 500"
	require.NoError(t, r.UpdateProductDetails(ctx, stale))

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500", got.Name)
	assert.Equal(t, 7, got.CurrentStock)

	missing := *stale
	missing.ID = uuid.New()
	assert.ErrorIs(t, r.UpdateProductDetails(ctx, &missing), gorm.ErrRecordNotFound)
}

func TestSetStock_ReturnsPrevious(t *testing.T) {
	gdb := testutil.InitTestDB(t)
	r := New(gdb)
	ctx := context.Background()
	p := testutil.SeedProduct(t, gdb, "Cetirizine", 4, 20)

	var prev int
	err := r.InTx(ctx, func(tx *GormRepo) error {
		var err error
		prev, err = tx.SetStock(ctx, p.ID, 25)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 4, prev)
	assert.Equal(t, 25, testutil.Stock(t, gdb, p.ID))

	_, err = r.SetStock(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateUserFields_KeepsOtherColumns(t *testing.T) {
	gdb := testutil.InitTestDB(t)
	r := New(gdb)
	ctx := context.Background()
	u := testutil.SeedUser(t, gdb, "user@example.com", models.RoleUser)

	stale, err := r.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, stale.LastLogin)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, r.TouchLastLogin(ctx, u.ID, at))
	require.NoError(t, r.UpdateUserFields(ctx, u.ID, map[string]any{"name": "Renamed"}))

	got, err := r.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, stale.Mobile, got.Mobile)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(got.LastLogin.UTC()))

	assert.NoError(t, r.UpdateUserFields(ctx, u.ID, nil))
	assert.ErrorIs(t, r.UpdateUserFields(ctx, uuid.New(), map[string]any{"name": "x"}), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.UpdateUserFields(ctx, uuid.New(), nil), gorm.ErrRecordNotFound)
}
