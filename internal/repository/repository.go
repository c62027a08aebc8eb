package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bazaar/marketplace/internal/model"
)

// ErrDuplicateEmail is returned when an insert trips the unique email index.
var ErrDuplicateEmail = errors.New("email already registered")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- sellers ---

func (s *Store) CreateSeller(ctx context.Context, seller model.Seller) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sellers (id, business_name, email, password_hash, phone, address, description, verified, verification_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, seller.ID, seller.BusinessName, seller.Email, seller.PasswordHash, seller.Phone, seller.Address, seller.Description, seller.Verified, seller.VerificationDate, seller.CreatedAt, seller.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

const sellerColumns = `id, business_name, email, password_hash, phone, address, description, verified, verification_date, created_at, updated_at`

func scanSeller(row pgx.Row) (model.Seller, error) {
	var seller model.Seller
	err := row.Scan(
		&seller.ID,
		&seller.BusinessName,
		&seller.Email,
		&seller.PasswordHash,
		&seller.Phone,
		&seller.Address,
		&seller.Description,
		&seller.Verified,
		&seller.VerificationDate,
		&seller.CreatedAt,
		&seller.UpdatedAt,
	)
	return seller, err
}

func (s *Store) GetSellerByEmail(ctx context.Context, email string) (model.Seller, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+sellerColumns+`
		FROM sellers
		WHERE email = $1
	`, email)
	return scanSeller(row)
}

func (s *Store) GetSellerByID(ctx context.Context, sellerID string) (model.Seller, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+sellerColumns+`
		FROM sellers
		WHERE id = $1
	`, sellerID)
	return scanSeller(row)
}

type SellerUpdate struct {
	BusinessName *string
	Phone        *string
	Address      *string
	Description  *string
	PasswordHash *string
}

func (s *Store) UpdateSellerProfile(ctx context.Context, sellerID string, update SellerUpdate) (model.Seller, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE sellers
		SET business_name = COALESCE($2, business_name),
		    phone = COALESCE($3, phone),
		    address = COALESCE($4, address),
		    description = COALESCE($5, description),
		    password_hash = COALESCE($6, password_hash),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+sellerColumns+`
	`, sellerID, update.BusinessName, update.Phone, update.Address, update.Description, update.PasswordHash)
	return scanSeller(row)
}

// SetSellerVerified flips the moderation flag. Approving stamps the
// verification date; rejecting clears it. Idempotent in both directions.
func (s *Store) SetSellerVerified(ctx context.Context, sellerID string, verified bool, at time.Time) (model.Seller, error) {
	var date *time.Time
	if verified {
		date = &at
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE sellers
		SET verified = $2, verification_date = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+sellerColumns+`
	`, sellerID, verified, date)
	return scanSeller(row)
}

func (s *Store) ListSellers(ctx context.Context) ([]model.Seller, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+sellerColumns+`
		FROM sellers
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSellers(rows)
}

func (s *Store) ListPendingSellers(ctx context.Context) ([]model.Seller, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+sellerColumns+`
		FROM sellers
		WHERE verified = false
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSellers(rows)
}

func collectSellers(rows pgx.Rows) ([]model.Seller, error) {
	sellers := []model.Seller{}
	for rows.Next() {
		seller, err := scanSeller(rows)
		if err != nil {
			return nil, err
		}
		sellers = append(sellers, seller)
	}
	return sellers, rows.Err()
}

// DeleteSeller removes the seller record only. Products keep their seller_id
// and become orphaned; what to do with them is an open product decision.
func (s *Store) DeleteSeller(ctx context.Context, sellerID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sellers WHERE id = $1`, sellerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --- admins ---

func (s *Store) CreateAdmin(ctx context.Context, admin model.Admin) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admins (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, admin.ID, admin.Name, admin.Email, admin.PasswordHash, admin.Role, admin.CreatedAt, admin.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func scanAdmin(row pgx.Row) (model.Admin, error) {
	var admin model.Admin
	err := row.Scan(&admin.ID, &admin.Name, &admin.Email, &admin.PasswordHash, &admin.Role, &admin.CreatedAt, &admin.UpdatedAt)
	return admin, err
}

func (s *Store) GetAdminByEmail(ctx context.Context, email string) (model.Admin, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM admins
		WHERE email = $1
	`, email)
	return scanAdmin(row)
}

func (s *Store) GetAdminByID(ctx context.Context, adminID string) (model.Admin, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM admins
		WHERE id = $1
	`, adminID)
	return scanAdmin(row)
}

// --- users (customers) ---

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID)
	return scanUser(row)
}

// --- products ---

const productColumns = `id, title, price, category, image_url, product_description, company_description, brand, count_in_stock, rating, num_reviews, seller_id, created_at, updated_at`

func scanProduct(row pgx.Row) (model.Product, error) {
	var product model.Product
	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Price,
		&product.Category,
		&product.ImageURL,
		&product.ProductDescription,
		&product.CompanyDescription,
		&product.Brand,
		&product.CountInStock,
		&product.Rating,
		&product.NumReviews,
		&product.SellerID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	return product, err
}

func (s *Store) CreateProduct(ctx context.Context, product model.Product) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (id, title, price, category, image_url, product_description, company_description, brand, count_in_stock, rating, num_reviews, seller_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, product.ID, product.Title, product.Price, product.Category, product.ImageURL, product.ProductDescription, product.CompanyDescription, product.Brand, product.CountInStock, product.Rating, product.NumReviews, product.SellerID, product.CreatedAt, product.UpdatedAt)
	return err
}

func (s *Store) GetProductByID(ctx context.Context, productID string) (model.Product, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, productID)
	return scanProduct(row)
}

type ProductUpdate struct {
	Title              *string
	Price              *float64
	Category           *string
	ImageURL           *string
	ProductDescription *string
	CompanyDescription *string
	Brand              *string
	CountInStock       *int
}

func (s *Store) UpdateProduct(ctx context.Context, productID string, update ProductUpdate) (model.Product, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE products
		SET title = COALESCE($2, title),
		    price = COALESCE($3, price),
		    category = COALESCE($4, category),
		    image_url = COALESCE($5, image_url),
		    product_description = COALESCE($6, product_description),
		    company_description = COALESCE($7, company_description),
		    brand = COALESCE($8, brand),
		    count_in_stock = COALESCE($9, count_in_stock),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns+`
	`, productID, update.Title, update.Price, update.Category, update.ImageURL, update.ProductDescription, update.CompanyDescription, update.Brand, update.CountInStock)
	return scanProduct(row)
}

func (s *Store) DeleteProduct(ctx context.Context, productID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListProductsBySeller derives the seller's inventory from product ownership
// instead of a denormalized list on the seller record, so there is no second
// write to keep in sync.
func (s *Store) ListProductsBySeller(ctx context.Context, sellerID string) ([]model.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *Store) SearchProducts(ctx context.Context, category, search string) ([]model.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR product_description ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
	`, category, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	products := []model.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// --- orders ---

// CreateOrder writes the order row and its item rows in one transaction so a
// crash cannot leave an order without its items.
func (s *Store) CreateOrder(ctx context.Context, order model.Order, items []model.OrderItem) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (id, user_id, shipping_address, payment_method, total_price, paid, paid_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, order.ID, order.UserID, order.ShippingAddress, order.PaymentMethod, order.TotalPrice, order.Paid, order.PaidAt, order.CreatedAt)
		if err != nil {
			return err
		}
		for _, item := range items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (id, order_id, product_id, title, quantity, price)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, item.ID, item.OrderID, item.ProductID, item.Title, item.Quantity, item.Price)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var order model.Order
	err := row.Scan(&order.ID, &order.UserID, &order.ShippingAddress, &order.PaymentMethod, &order.TotalPrice, &order.Paid, &order.PaidAt, &order.CreatedAt)
	return order, err
}

func (s *Store) GetOrderByID(ctx context.Context, orderID string) (model.Order, []model.OrderItem, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, shipping_address, payment_method, total_price, paid, paid_at, created_at
		FROM orders
		WHERE id = $1
	`, orderID)
	order, err := scanOrder(row)
	if err != nil {
		return model.Order{}, nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, product_id, title, quantity, price
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return model.Order{}, nil, err
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Title, &item.Quantity, &item.Price); err != nil {
			return model.Order{}, nil, err
		}
		items = append(items, item)
	}
	return order, items, rows.Err()
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, shipping_address, payment_method, total_price, paid, paid_at, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (s *Store) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, shipping_address, payment_method, total_price, paid, paid_at, created_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (s *Store) MarkOrderPaid(ctx context.Context, orderID string, at time.Time) (model.Order, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE orders
		SET paid = true, paid_at = $2
		WHERE id = $1
		RETURNING id, user_id, shipping_address, payment_method, total_price, paid, paid_at, created_at
	`, orderID, at)
	return scanOrder(row)
}

// --- stats ---

// GetStats counts each collection independently. There is no shared snapshot,
// so concurrent writes can make the counts mutually inconsistent; the
// dashboard treats them as point-in-time approximations.
func (s *Store) GetStats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	if err := s.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE verified),
		       count(*) FILTER (WHERE NOT verified)
		FROM sellers
	`).Scan(&stats.TotalSellers, &stats.VerifiedSellers, &stats.PendingSellers); err != nil {
		return model.Stats{}, err
	}
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&stats.TotalProducts); err != nil {
		return model.Stats{}, err
	}
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return model.Stats{}, err
	}
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&stats.TotalOrders); err != nil {
		return model.Stats{}, err
	}
	return stats, nil
}
