package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bazaar/marketplace/internal/db"
	"bazaar/marketplace/internal/model"
)

func openTestDB(t *testing.T) *pgxpool.Pool {
	url := os.Getenv("MARKETPLACE_TEST_DB")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("MARKETPLACE_TEST_DB or DATABASE_URL not set")
		return nil
	}
	pool, err := db.NewPool(context.Background(), url)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	return pool
}

func testSeller(email string) model.Seller {
	now := time.Now().UTC()
	return model.Seller{
		ID:           uuid.NewString(),
		BusinessName: "Integration Test Shop",
		Email:        email,
		PasswordHash: "$2a$10$integrationtesthashvalue0000000000000000000000000000",
		Phone:        "+3310000000",
		Address:      "1 avenue des Tests",
		Description:  "integration fixtures",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSellerLifecycle(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()

	ctx := context.Background()
	store := NewStore(pool)

	email := fmt.Sprintf("lifecycle-%s@test.example", uuid.NewString())
	seller := testSeller(email)
	if err := store.CreateSeller(ctx, seller); err != nil {
		t.Fatalf("create seller: %v", err)
	}
	defer store.DeleteSeller(ctx, seller.ID)

	if err := store.CreateSeller(ctx, testSeller(email)); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("duplicate create error = %v, want ErrDuplicateEmail", err)
	}

	got, err := store.GetSellerByEmail(ctx, email)
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.Verified {
		t.Fatal("fresh seller is verified")
	}

	approved, err := store.SetSellerVerified(ctx, seller.ID, true, time.Now().UTC())
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !approved.Verified || approved.VerificationDate == nil {
		t.Fatalf("approve did not stamp the record: %+v", approved)
	}

	rejected, err := store.SetSellerVerified(ctx, seller.ID, false, time.Now().UTC())
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Verified || rejected.VerificationDate != nil {
		t.Fatalf("reject did not clear the record: %+v", rejected)
	}

	newPhone := "+3320000000"
	updated, err := store.UpdateSellerProfile(ctx, seller.ID, SellerUpdate{Phone: &newPhone})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Phone != newPhone || updated.BusinessName != seller.BusinessName {
		t.Fatalf("partial update wrote wrong fields: %+v", updated)
	}

	deleted, err := store.DeleteSeller(ctx, seller.ID)
	if err != nil || !deleted {
		t.Fatalf("delete seller: deleted=%v err=%v", deleted, err)
	}
	if _, err := store.GetSellerByID(ctx, seller.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("get after delete error = %v, want pgx.ErrNoRows", err)
	}
}

func TestProductSearch(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()

	ctx := context.Background()
	store := NewStore(pool)

	seller := testSeller(fmt.Sprintf("search-%s@test.example", uuid.NewString()))
	if err := store.CreateSeller(ctx, seller); err != nil {
		t.Fatalf("create seller: %v", err)
	}
	defer store.DeleteSeller(ctx, seller.ID)

	marker := uuid.NewString()
	now := time.Now().UTC()
	product := model.Product{
		ID:                 uuid.NewString(),
		Title:              "Searchable Gadget " + marker,
		Price:              19.99,
		Category:           "electronics",
		ImageURL:           "https://img.test.example/gadget.jpg",
		ProductDescription: "A gadget created only so the search test can find it.",
		CompanyDescription: "Integration test vendor.",
		Brand:              "TestBrand",
		CountInStock:       3,
		SellerID:           seller.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := store.CreateProduct(ctx, product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	defer store.DeleteProduct(ctx, product.ID)

	hits, err := store.SearchProducts(ctx, "electronics", marker)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != product.ID {
		t.Fatalf("search hits = %+v, want the marker product", hits)
	}

	hits, err = store.SearchProducts(ctx, "books", marker)
	if err != nil {
		t.Fatalf("search wrong category: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("category filter leaked %d products", len(hits))
	}

	mine, err := store.ListProductsBySeller(ctx, seller.ID)
	if err != nil {
		t.Fatalf("list by seller: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("seller listing = %d products, want 1", len(mine))
	}
}

func TestOrderRoundTrip(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()

	ctx := context.Background()
	store := NewStore(pool)

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         "Order Tester",
		Email:        fmt.Sprintf("orders-%s@test.example", uuid.NewString()),
		PasswordHash: "$2a$10$integrationtesthashvalue0000000000000000000000000000",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	order := model.Order{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		ShippingAddress: "1 avenue des Tests",
		PaymentMethod:   "card",
		TotalPrice:      39.98,
		CreatedAt:       now,
	}
	items := []model.OrderItem{
		{ID: uuid.NewString(), OrderID: order.ID, ProductID: uuid.NewString(), Title: "Gadget", Quantity: 2, Price: 19.99},
	}
	if err := store.CreateOrder(ctx, order, items); err != nil {
		t.Fatalf("create order: %v", err)
	}

	gotOrder, gotItems, err := store.GetOrderByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if gotOrder.TotalPrice != order.TotalPrice || len(gotItems) != 1 {
		t.Fatalf("order round trip mismatch: %+v items=%d", gotOrder, len(gotItems))
	}
	if gotOrder.Paid {
		t.Fatal("fresh order is paid")
	}

	paid, err := store.MarkOrderPaid(ctx, order.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !paid.Paid || paid.PaidAt == nil {
		t.Fatalf("pay did not stamp the order: %+v", paid)
	}

	mine, err := store.ListOrdersByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("user orders = %d, want 1", len(mine))
	}
}
