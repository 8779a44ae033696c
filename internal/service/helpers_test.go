package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/sandp/medstock/internal/models"
	"github.com/sandp/medstock/internal/repo"
	"github.com/sandp/medstock/internal/testutil"
	"github.com/sandp/medstock/internal/transport"
	"github.com/sandp/medstock/pkg/session"
)

type published struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, _ := event.(map[string]any)
	p.events = append(p.events, published{Topic: topic, Key: key, Event: m})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type memoryCache struct {
	mu          sync.Mutex
	data        []byte
	invalidated int
}

func (c *memoryCache) Get(_ context.Context, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return false
	}
	return json.Unmarshal(c.data, dest) == nil
}

func (c *memoryCache) Set(_ context.Context, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(v)
	c.data = b
	return err
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	c.invalidated++
	return nil
}

type testEnv struct {
	DB      *gorm.DB
	Repo    *repo.GormRepo
	Events  *recordingPublisher
	Cache   *memoryCache
	Orders  *OrderService
	Catalog *CatalogService
	Reports *ReportService
	Users   *UserService

	Admin     session.Session
	User      session.Session
	OtherUser session.Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := testutil.InitTestDB(t)
	r := repo.New(gdb)
	pub := &recordingPublisher{}
	c := &memoryCache{}

	admin := testutil.SeedUser(t, gdb, "admin@example.com", models.RoleAdmin)
	user := testutil.SeedUser(t, gdb, "user@example.com", models.RoleUser)
	other := testutil.SeedUser(t, gdb, "other@example.com", models.RoleUser)

	return &testEnv{
		DB:     gdb,
		Repo:   r,
		Events: pub,
		Cache:  c,
		Orders: &OrderService{
			Repo: r, Events: pub, Cache: c, InvoicePrefix: "SANDP",
			Seller: transport.Party{Name: "S&P Pharma", GSTIN: "27ABCDE1234F1Z5"},
		},
		Catalog: &CatalogService{Repo: r, Events: pub, Cache: c},
		Reports: &ReportService{Repo: r, Cache: c},
		Users:   &UserService{Repo: r, Events: pub, JWTSecret: []byte("test-secret")},

		Admin:     session.Session{UserID: admin.ID, Role: admin.Role},
		User:      session.Session{UserID: user.ID, Role: user.Role},
		OtherUser: session.Session{UserID: other.ID, Role: other.Role},
	}
}

func orderRequest(items ...transport.OrderItemRequest) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		CustomerName:    "Ravi Kumar",
		CustomerMobile:  "9876543210",
		CustomerAddress: "12 MG Road, Pune",
		Items:           items,
	}
}

func line(p *models.Product, qty int) transport.OrderItemRequest {
	return transport.OrderItemRequest{ProductID: p.ID.String(), Quantity: qty}
}
