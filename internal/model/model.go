package model

import "time"

type Seller struct {
	ID               string
	BusinessName     string
	Email            string
	PasswordHash     string
	Phone            string
	Address          string
	Description      string
	Verified         bool
	VerificationDate *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Product struct {
	ID                 string
	Title              string
	Price              float64
	Category           string
	ImageURL           string
	ProductDescription string
	CompanyDescription string
	Brand              string
	CountInStock       int
	Rating             float64
	NumReviews         int
	SellerID           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Order struct {
	ID              string
	UserID          string
	ShippingAddress string
	PaymentMethod   string
	TotalPrice      float64
	Paid            bool
	PaidAt          *time.Time
	CreatedAt       time.Time
}

type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Title     string
	Quantity  int
	Price     float64
}

// Stats is the moderation dashboard aggregate. Counts come from independent
// queries with no shared snapshot, so under concurrent writes the numbers may
// be mutually inconsistent.
type Stats struct {
	TotalSellers    int64
	VerifiedSellers int64
	PendingSellers  int64
	TotalProducts   int64
	TotalUsers      int64
	TotalOrders     int64
}
