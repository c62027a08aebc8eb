package http

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"bazaar/marketplace/internal/model"
	"bazaar/marketplace/internal/repository"
)

// memStore is an in-memory Store used by the handler tests. It mirrors the
// repository's contract: pgx.ErrNoRows for misses, ErrDuplicateEmail for
// unique violations, COALESCE semantics on partial updates.
type memStore struct {
	mu         sync.Mutex
	sellers    map[string]model.Seller
	admins     map[string]model.Admin
	users      map[string]model.User
	products   map[string]model.Product
	orders     map[string]model.Order
	orderItems map[string][]model.OrderItem

	failSearch bool
}

func newMemStore() *memStore {
	return &memStore{
		sellers:    map[string]model.Seller{},
		admins:     map[string]model.Admin{},
		users:      map[string]model.User{},
		products:   map[string]model.Product{},
		orders:     map[string]model.Order{},
		orderItems: map[string][]model.OrderItem{},
	}
}

var errStoreDown = errors.New("store unavailable")

func (m *memStore) CreateSeller(_ context.Context, seller model.Seller) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sellers {
		if strings.EqualFold(existing.Email, seller.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	m.sellers[seller.ID] = seller
	return nil
}

func (m *memStore) GetSellerByEmail(_ context.Context, email string) (model.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, seller := range m.sellers {
		if strings.EqualFold(seller.Email, email) {
			return seller, nil
		}
	}
	return model.Seller{}, pgx.ErrNoRows
}

func (m *memStore) GetSellerByID(_ context.Context, sellerID string) (model.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seller, ok := m.sellers[sellerID]
	if !ok {
		return model.Seller{}, pgx.ErrNoRows
	}
	return seller, nil
}

func (m *memStore) UpdateSellerProfile(_ context.Context, sellerID string, update repository.SellerUpdate) (model.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seller, ok := m.sellers[sellerID]
	if !ok {
		return model.Seller{}, pgx.ErrNoRows
	}
	if update.BusinessName != nil {
		seller.BusinessName = *update.BusinessName
	}
	if update.Phone != nil {
		seller.Phone = *update.Phone
	}
	if update.Address != nil {
		seller.Address = *update.Address
	}
	if update.Description != nil {
		seller.Description = *update.Description
	}
	if update.PasswordHash != nil {
		seller.PasswordHash = *update.PasswordHash
	}
	seller.UpdatedAt = time.Now().UTC()
	m.sellers[sellerID] = seller
	return seller, nil
}

func (m *memStore) SetSellerVerified(_ context.Context, sellerID string, verified bool, at time.Time) (model.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seller, ok := m.sellers[sellerID]
	if !ok {
		return model.Seller{}, pgx.ErrNoRows
	}
	seller.Verified = verified
	if verified {
		seller.VerificationDate = &at
	} else {
		seller.VerificationDate = nil
	}
	seller.UpdatedAt = time.Now().UTC()
	m.sellers[sellerID] = seller
	return seller, nil
}

func (m *memStore) ListSellers(_ context.Context) ([]model.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sellers := []model.Seller{}
	for _, seller := range m.sellers {
		sellers = append(sellers, seller)
	}
	sort.Slice(sellers, func(i, j int) bool { return sellers[i].CreatedAt.After(sellers[j].CreatedAt) })
	return sellers, nil
}

func (m *memStore) ListPendingSellers(_ context.Context) ([]model.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sellers := []model.Seller{}
	for _, seller := range m.sellers {
		if !seller.Verified {
			sellers = append(sellers, seller)
		}
	}
	return sellers, nil
}

func (m *memStore) DeleteSeller(_ context.Context, sellerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sellers[sellerID]; !ok {
		return false, nil
	}
	delete(m.sellers, sellerID)
	return true, nil
}

func (m *memStore) CreateAdmin(_ context.Context, admin model.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.admins {
		if strings.EqualFold(existing.Email, admin.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	m.admins[admin.ID] = admin
	return nil
}

func (m *memStore) GetAdminByEmail(_ context.Context, email string) (model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, admin := range m.admins {
		if strings.EqualFold(admin.Email, email) {
			return admin, nil
		}
	}
	return model.Admin{}, pgx.ErrNoRows
}

func (m *memStore) GetAdminByID(_ context.Context, adminID string) (model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	admin, ok := m.admins[adminID]
	if !ok {
		return model.Admin{}, pgx.ErrNoRows
	}
	return admin, nil
}

func (m *memStore) CreateUser(_ context.Context, user model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return model.User{}, pgx.ErrNoRows
}

func (m *memStore) GetUserByID(_ context.Context, userID string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return model.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *memStore) CreateProduct(_ context.Context, product model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product
	return nil
}

func (m *memStore) GetProductByID(_ context.Context, productID string) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[productID]
	if !ok {
		return model.Product{}, pgx.ErrNoRows
	}
	return product, nil
}

func (m *memStore) UpdateProduct(_ context.Context, productID string, update repository.ProductUpdate) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[productID]
	if !ok {
		return model.Product{}, pgx.ErrNoRows
	}
	if update.Title != nil {
		product.Title = *update.Title
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.ImageURL != nil {
		product.ImageURL = *update.ImageURL
	}
	if update.ProductDescription != nil {
		product.ProductDescription = *update.ProductDescription
	}
	if update.CompanyDescription != nil {
		product.CompanyDescription = *update.CompanyDescription
	}
	if update.Brand != nil {
		product.Brand = *update.Brand
	}
	if update.CountInStock != nil {
		product.CountInStock = *update.CountInStock
	}
	product.UpdatedAt = time.Now().UTC()
	m.products[productID] = product
	return product, nil
}

func (m *memStore) DeleteProduct(_ context.Context, productID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[productID]; !ok {
		return false, nil
	}
	delete(m.products, productID)
	return true, nil
}

func (m *memStore) ListProductsBySeller(_ context.Context, sellerID string) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	products := []model.Product{}
	for _, product := range m.products {
		if product.SellerID == sellerID {
			products = append(products, product)
		}
	}
	return products, nil
}

func (m *memStore) SearchProducts(_ context.Context, category, search string) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSearch {
		return nil, errStoreDown
	}
	products := []model.Product{}
	for _, product := range m.products {
		products = append(products, product)
	}
	return filterCatalog(products, category, search), nil
}

func (m *memStore) CreateOrder(_ context.Context, order model.Order, items []model.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	m.orderItems[order.ID] = items
	return nil
}

func (m *memStore) GetOrderByID(_ context.Context, orderID string) (model.Order, []model.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return model.Order{}, nil, pgx.ErrNoRows
	}
	return order, m.orderItems[orderID], nil
}

func (m *memStore) ListOrdersByUser(_ context.Context, userID string) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := []model.Order{}
	for _, order := range m.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (m *memStore) ListOrders(_ context.Context) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := []model.Order{}
	for _, order := range m.orders {
		orders = append(orders, order)
	}
	return orders, nil
}

func (m *memStore) MarkOrderPaid(_ context.Context, orderID string, at time.Time) (model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return model.Order{}, pgx.ErrNoRows
	}
	order.Paid = true
	order.PaidAt = &at
	m.orders[orderID] = order
	return order, nil
}

func (m *memStore) GetStats(_ context.Context) (model.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := model.Stats{
		TotalProducts: int64(len(m.products)),
		TotalUsers:    int64(len(m.users)),
		TotalOrders:   int64(len(m.orders)),
	}
	for _, seller := range m.sellers {
		stats.TotalSellers++
		if seller.Verified {
			stats.VerifiedSellers++
		} else {
			stats.PendingSellers++
		}
	}
	return stats, nil
}
