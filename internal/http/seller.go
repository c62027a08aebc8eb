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

type registerSellerRequest struct {
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Description  string `json:"description"`
	// Accepted but ignored: every new seller starts unverified no matter
	// what the client claims.
	Verified bool `json:"verified"`
}

type sellerSummary struct {
	ID               string     `json:"id"`
	BusinessName     string     `json:"businessName"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Address          string     `json:"address"`
	Description      string     `json:"description"`
	Verified         bool       `json:"verified"`
	VerificationDate *time.Time `json:"verificationDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type sellerAuthResponse struct {
	Token  string        `json:"token"`
	Seller sellerSummary `json:"seller"`
}

func mapSellerSummary(seller model.Seller) sellerSummary {
	return sellerSummary{
		ID:               seller.ID,
		BusinessName:     seller.BusinessName,
		Email:            seller.Email,
		Phone:            seller.Phone,
		Address:          seller.Address,
		Description:      seller.Description,
		Verified:         seller.Verified,
		VerificationDate: seller.VerificationDate,
		CreatedAt:        seller.CreatedAt,
	}
}

func (s *Server) handleRegisterSeller(w http.ResponseWriter, r *http.Request) {
	var req registerSellerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.BusinessName == "" || req.Email == "" || req.Password == "" || req.Phone == "" || req.Address == "" {
		writeError(w, http.StatusBadRequest, "businessName, email, password, phone and address are required")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	now := time.Now().UTC()
	seller := model.Seller{
		ID:           uuid.NewString(),
		BusinessName: req.BusinessName,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Address:      req.Address,
		Description:  req.Description,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateSeller(r.Context(), seller); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "seller account already exists with this email")
			return
		}
		s.serverError(w, r, err)
		return
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, seller.ID, auth.RoleSeller)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sellerAuthResponse{
		Token:  token,
		Seller: mapSellerSummary(seller),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLoginSeller(w http.ResponseWriter, r *http.Request) {
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

	seller, err := s.store.GetSellerByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		s.serverError(w, r, err)
		return
	}
	if err := crypto.CheckPassword(seller.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, seller.ID, auth.RoleSeller)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sellerAuthResponse{
		Token:  token,
		Seller: mapSellerSummary(seller),
	})
}

type sellerProfileResponse struct {
	sellerSummary
	Products []productResponse `json:"products"`
}

func (s *Server) handleGetSellerProfile(w http.ResponseWriter, r *http.Request) {
	seller, _ := sellerFromContext(r.Context())

	products, err := s.store.ListProductsBySeller(r.Context(), seller.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sellerProfileResponse{
		sellerSummary: mapSellerSummary(seller),
		Products:      mapProducts(products),
	})
}

type updateSellerProfileRequest struct {
	BusinessName *string `json:"businessName,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	Description  *string `json:"description,omitempty"`
	Password     *string `json:"password,omitempty"`
}

func (s *Server) handleUpdateSellerProfile(w http.ResponseWriter, r *http.Request) {
	seller, _ := sellerFromContext(r.Context())

	var req updateSellerProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := repository.SellerUpdate{}
	if req.BusinessName != nil && strings.TrimSpace(*req.BusinessName) != "" {
		name := strings.TrimSpace(*req.BusinessName)
		update.BusinessName = &name
	}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		phone := strings.TrimSpace(*req.Phone)
		update.Phone = &phone
	}
	if req.Address != nil && strings.TrimSpace(*req.Address) != "" {
		address := strings.TrimSpace(*req.Address)
		update.Address = &address
	}
	if req.Description != nil {
		update.Description = req.Description
	}
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		update.PasswordHash = &hash
	}

	updated, err := s.store.UpdateSellerProfile(r.Context(), seller.ID, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "seller not found")
			return
		}
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSellerSummary(updated))
}

func (s *Server) handleListSellerProducts(w http.ResponseWriter, r *http.Request) {
	seller, _ := sellerFromContext(r.Context())

	products, err := s.store.ListProductsBySeller(r.Context(), seller.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProducts(products))
}

type createProductRequest struct {
	Title              string  `json:"title"`
	Price              float64 `json:"price"`
	Category           string  `json:"category"`
	ImageURL           string  `json:"imageUrl"`
	ProductDescription string  `json:"productDescription"`
	CompanyDescription string  `json:"companyDescription"`
	Brand              string  `json:"brand"`
	CountInStock       int     `json:"countInStock"`
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	seller, _ := sellerFromContext(r.Context())

	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := validateProductInput(req.Title, req.Price, req.Category, req.ImageURL, req.ProductDescription, req.CompanyDescription, req.CountInStock); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	now := time.Now().UTC()
	product := model.Product{
		ID:                 uuid.NewString(),
		Title:              strings.TrimSpace(req.Title),
		Price:              req.Price,
		Category:           req.Category,
		ImageURL:           req.ImageURL,
		ProductDescription: req.ProductDescription,
		CompanyDescription: req.CompanyDescription,
		Brand:              req.Brand,
		CountInStock:       req.CountInStock,
		Rating:             0,
		NumReviews:         0,
		SellerID:           seller.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.CreateProduct(r.Context(), product); err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapProduct(product))
}

type updateProductRequest struct {
	Title              *string  `json:"title,omitempty"`
	Price              *float64 `json:"price,omitempty"`
	Category           *string  `json:"category,omitempty"`
	ImageURL           *string  `json:"imageUrl,omitempty"`
	ProductDescription *string  `json:"productDescription,omitempty"`
	CompanyDescription *string  `json:"companyDescription,omitempty"`
	Brand              *string  `json:"brand,omitempty"`
	CountInStock       *int     `json:"countInStock,omitempty"`
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	seller, _ := sellerFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	product, err := s.store.GetProductByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		s.serverError(w, r, err)
		return
	}

	// Ownership is never waived: every product carries a seller id.
	if product.SellerID != seller.ID {
		writeError(w, http.StatusForbidden, "not authorized to update this product")
		return
	}

	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateProductPatch(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	update := repository.ProductUpdate{
		Title:              req.Title,
		Price:              req.Price,
		Category:           req.Category,
		ImageURL:           req.ImageURL,
		ProductDescription: req.ProductDescription,
		CompanyDescription: req.CompanyDescription,
		Brand:              req.Brand,
		CountInStock:       req.CountInStock,
	}

	updated, err := s.store.UpdateProduct(r.Context(), productID, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapProduct(updated))
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	seller, _ := sellerFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	product, err := s.store.GetProductByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		s.serverError(w, r, err)
		return
	}

	if product.SellerID != seller.ID {
		writeError(w, http.StatusForbidden, "not authorized to delete this product")
		return
	}

	deleted, err := s.store.DeleteProduct(r.Context(), productID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "product removed"})
}
