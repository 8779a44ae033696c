package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandp/medstock/internal/events"
	"github.com/sandp/medstock/internal/models"
	"github.com/sandp/medstock/internal/testutil"
	"github.com/sandp/medstock/internal/transport"
)

func productRequest() transport.CreateProductRequest {
	return transport.CreateProductRequest{
		Name:              "Dolo 650",
		DosageForm:        "Tablet",
		Category:          "Analgesic",
		HSNCode:           "30049099",
		ManufacturerName:  "Micro Labs",
		Batch:             "DL2401",
		PTR:               22,
		NetMRP:            30,
		MRP:               33.5,
		CurrentStock:      40,
		MinimumStockAlert: 10,
		ShelfLife:         "08/2027",
	}
}

type fakeIndex struct {
	indexed []uuid.UUID
	deleted []uuid.UUID
	hits    []uuid.UUID
	err     error
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) SearchProductIDs(context.Context, string, int) ([]uuid.UUID, error) {
	return f.hits, f.err
}

func TestCreateProduct_DefaultsAndPricing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ix := &fakeIndex{}
	env.Catalog.Index = ix

	p, err := env.Catalog.CreateProduct(ctx, env.Admin, productRequest())
	require.NoError(t, err)
	assert.Equal(t, 5.0, p.GSTPercent)
	assert.Equal(t, 0.0, p.DiscountPercent)
	assert.Equal(t, 30.0, p.TaxableValue)
	assert.InDelta(t, 1.5, p.TotalGSTAmount, 1e-9)
	assert.Equal(t, p.CGST, p.SGST)
	assert.Equal(t, models.ProductActive, p.Status)
	assert.Equal(t, models.StockInStock, p.StockStatus)
	require.NotNil(t, p.CreatedBy)
	assert.Equal(t, env.Admin.UserID, *p.CreatedBy)
	assert.Equal(t, []uuid.UUID{p.ID}, ix.indexed)
	assert.Contains(t, env.Events.types(), events.ProductCreated)

	zero, disc := 0.0, 10.0
	req := productRequest()
	req.GSTPercent = &zero
	req.DiscountPercent = &disc
	p2, err := env.Catalog.CreateProduct(ctx, env.Admin, req)
	require.NoError(t, err)

	stored, err := env.Catalog.GetProduct(ctx, env.User, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored.GSTPercent)
	assert.Equal(t, 27.0, stored.TaxableValue)
	assert.Equal(t, 3.0, stored.DiscountValue)
	assert.Equal(t, 0.0, stored.TotalGSTAmount)
}

func TestCreateProduct_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Catalog.CreateProduct(ctx, env.User, productRequest())
	require.ErrorIs(t, err, ErrForbidden)

	bad := productRequest()
	eighteen := 18.0
	bad.GSTPercent = &eighteen
	bad.ShelfLife = "2027-08"
	bad.NetMRP = 0
	bad.CurrentStock = -1
	bad.DosageForm = "Powder"
	_, err = env.Catalog.CreateProduct(ctx, env.Admin, bad)
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	for _, f := range []string{"gstPercent", "shelfLife", "netMrp", "currentStock", "dosageForm"} {
		assert.Contains(t, fe, f)
	}
}

func TestPatchProduct_SoftRemoveAndRepricing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, err := env.Catalog.CreateProduct(ctx, env.Admin, productRequest())
	require.NoError(t, err)

	net := 50.0
	stock := 5
	p2, err := env.Catalog.PatchProduct(ctx, env.Admin, p.ID, transport.PatchProductRequest{NetMRP: &net, CurrentStock: &stock})
	require.NoError(t, err)
	assert.Equal(t, "Dolo 650", p2.Name)
	assert.Equal(t, 50.0, p2.TaxableValue)
	assert.Equal(t, 2.5, p2.TotalGSTAmount)
	assert.Equal(t, models.StockLow, p2.StockStatus)

	moves, err := env.Repo.ListMovements(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, models.MovementAdjust, moves[0].Kind)
	assert.Equal(t, -35, moves[0].Delta)

	inactive := models.ProductInactive
	_, err = env.Catalog.PatchProduct(ctx, env.Admin, p.ID, transport.PatchProductRequest{Status: &inactive})
	require.NoError(t, err)

	page, err := env.Catalog.ListProducts(ctx, env.User, ProductQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)

	_, err = env.Catalog.PatchProduct(ctx, env.Admin, uuid.New(), transport.PatchProductRequest{NetMRP: &net})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPatchProduct_NameOnlyKeepsSoldStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, env.DB, "Paracetamol", 10, 100)

	_, err := env.Orders.CreateOrder(ctx, env.User, orderRequest(line(p, 3)))
	require.NoError(t, err)

	name := "Paracetamol 500"
	got, err := env.Catalog.PatchProduct(ctx, env.Admin, p.ID, transport.PatchProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, 7, got.CurrentStock)
	assert.Equal(t, 7, testutil.Stock(t, env.DB, p.ID))

	moves, err := env.Repo.ListMovements(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, models.MovementOrder, moves[0].Kind)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ix := &fakeIndex{}
	env.Catalog.Index = ix
	p := testutil.SeedProduct(t, env.DB, "Gone", 1, 1)

	require.ErrorIs(t, env.Catalog.DeleteProduct(ctx, env.User, p.ID), ErrForbidden)
	require.NoError(t, env.Catalog.DeleteProduct(ctx, env.Admin, p.ID))
	assert.Equal(t, []uuid.UUID{p.ID}, ix.deleted)
	require.ErrorIs(t, env.Catalog.DeleteProduct(ctx, env.Admin, p.ID), ErrNotFound)

	_, err := env.Catalog.GetProduct(ctx, env.User, p.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListProducts_FiltersAndIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.SeedProduct(t, env.DB, "Crocin", 10, 10)
	b := testutil.SeedProduct(t, env.DB, "Combiflam", 0, 10)
	require.NoError(t, env.DB.Model(b).Update("category", "Analgesic").Error)

	page, err := env.Catalog.ListProducts(ctx, env.User, ProductQuery{Search: "cro"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, a.ID, page.Data[0].ID)

	page, err = env.Catalog.ListProducts(ctx, env.User, ProductQuery{Category: "Analgesic"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, models.StockOut, page.Data[0].StockStatus)

	env.Catalog.Index = &fakeIndex{hits: []uuid.UUID{b.ID}}
	page, err = env.Catalog.ListProducts(ctx, env.User, ProductQuery{Search: "kombiflam"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, b.ID, page.Data[0].ID)

	env.Catalog.Index = &fakeIndex{err: assert.AnError}
	page, err = env.Catalog.ListProducts(ctx, env.User, ProductQuery{Search: "croc"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.EqualValues(t, 1, page.Meta.Total)
}
