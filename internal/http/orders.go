package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bazaar/marketplace/internal/auth"
	"bazaar/marketplace/internal/crypto"
	"bazaar/marketplace/internal/model"
	"bazaar/marketplace/internal/repository"
)

type registerUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type userAuthResponse struct {
	Token string      `json:"token"`
	User  userSummary `json:"user"`
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "account already exists with this email")
			return
		}
		s.serverError(w, r, err)
		return
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, user.ID, auth.RoleCustomer)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userAuthResponse{
		Token: token,
		User:  userSummary{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (s *Server) handleLoginUser(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		s.serverError(w, r, err)
		return
	}
	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, user.ID, auth.RoleCustomer)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userAuthResponse{
		Token: token,
		User:  userSummary{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (s *Server) handleGetUserProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, userSummary{ID: user.ID, Name: user.Name, Email: user.Email})
}

type orderItemRequest struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	ShippingAddress string             `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	Items           []orderItemResponse `json:"items,omitempty"`
	ShippingAddress string              `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	TotalPrice      float64             `json:"totalPrice"`
	Paid            bool                `json:"paid"`
	PaidAt          *time.Time          `json:"paidAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

func mapOrder(order model.Order, items []model.OrderItem) orderResponse {
	resp := orderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		TotalPrice:      order.TotalPrice,
		Paid:            order.Paid,
		PaidAt:          order.PaidAt,
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return resp
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "order must contain at least one item")
		return
	}
	if req.ShippingAddress == "" {
		writeError(w, http.StatusBadRequest, "shipping address is required")
		return
	}

	now := time.Now().UTC()
	order := model.Order{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CreatedAt:       now,
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 || item.Price < 0 {
			writeError(w, http.StatusBadRequest, "each item needs a product id, a positive quantity and a non-negative price")
			return
		}
		order.TotalPrice += item.Price * float64(item.Quantity)
		items = append(items, model.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := s.store.CreateOrder(r.Context(), order, items); err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapOrder(order, items))
}

func (s *Server) handleListMyOrders(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	orders, err := s.store.ListOrdersByUser(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, mapOrder(order, nil))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.ListOrders(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, mapOrder(order, nil))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	order, items, err := s.store.GetOrderByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		s.serverError(w, r, err)
		return
	}

	if _, isAdmin := adminFromContext(r.Context()); !isAdmin {
		user, _ := userFromContext(r.Context())
		if order.UserID != user.ID {
			writeError(w, http.StatusForbidden, "not authorized to view this order")
			return
		}
	}

	writeJSON(w, http.StatusOK, mapOrder(order, items))
}

func (s *Server) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	orderID := chi.URLParam(r, "orderID")

	order, _, err := s.store.GetOrderByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		s.serverError(w, r, err)
		return
	}
	if order.UserID != user.ID {
		writeError(w, http.StatusForbidden, "not authorized to pay this order")
		return
	}

	paid, err := s.store.MarkOrderPaid(r.Context(), orderID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrder(paid, nil))
}
