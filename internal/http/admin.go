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

type registerAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type adminAuthResponse struct {
	Token string       `json:"token"`
	Admin adminSummary `json:"admin"`
}

func mapAdminSummary(admin model.Admin) adminSummary {
	return adminSummary{
		ID:    admin.ID,
		Name:  admin.Name,
		Email: admin.Email,
		Role:  admin.Role,
	}
}

// handleRegisterAdmin creates admin identities. The endpoint is not open:
// callers present either the configured one-time setup token or a credential
// of an existing admin.
func (s *Server) handleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	if !s.adminRegistrationAllowed(r) {
		writeError(w, http.StatusUnauthorized, "admin registration requires a setup token or an existing admin credential")
		return
	}

	var req registerAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	now := time.Now().UTC()
	admin := model.Admin{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         "admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateAdmin(r.Context(), admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "admin already exists with this email")
			return
		}
		s.serverError(w, r, err)
		return
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, admin.ID, auth.RoleAdmin)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, adminAuthResponse{
		Token: token,
		Admin: mapAdminSummary(admin),
	})
}

func (s *Server) adminRegistrationAllowed(r *http.Request) bool {
	if s.cfg.AdminSetupToken != "" && r.Header.Get("X-Setup-Token") == s.cfg.AdminSetupToken {
		return true
	}
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return false
	}
	claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
	if err != nil || claims.Role != auth.RoleAdmin {
		return false
	}
	_, err = s.store.GetAdminByID(r.Context(), claims.UserID)
	return err == nil
}

func (s *Server) handleLoginAdmin(w http.ResponseWriter, r *http.Request) {
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

	admin, err := s.store.GetAdminByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		s.serverError(w, r, err)
		return
	}
	if err := crypto.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, admin.ID, auth.RoleAdmin)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, adminAuthResponse{
		Token: token,
		Admin: mapAdminSummary(admin),
	})
}

func (s *Server) handleGetAdminProfile(w http.ResponseWriter, r *http.Request) {
	admin, _ := adminFromContext(r.Context())
	writeJSON(w, http.StatusOK, mapAdminSummary(admin))
}

func (s *Server) handleListSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := s.store.ListSellers(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSellerSummaries(sellers))
}

func (s *Server) handleListPendingSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := s.store.ListPendingSellers(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSellerSummaries(sellers))
}

func mapSellerSummaries(sellers []model.Seller) []sellerSummary {
	resp := make([]sellerSummary, 0, len(sellers))
	for _, seller := range sellers {
		resp = append(resp, mapSellerSummary(seller))
	}
	return resp
}

type moderationResponse struct {
	Message string        `json:"message"`
	Seller  sellerSummary `json:"seller"`
}

// Approve and reject are idempotent flag writes: approving a verified seller
// or rejecting a pending one is a no-op that still succeeds.

func (s *Server) handleApproveSeller(w http.ResponseWriter, r *http.Request) {
	s.setSellerVerified(w, r, true, "seller approved successfully")
}

func (s *Server) handleRejectSeller(w http.ResponseWriter, r *http.Request) {
	s.setSellerVerified(w, r, false, "seller rejected")
}

func (s *Server) setSellerVerified(w http.ResponseWriter, r *http.Request, verified bool, message string) {
	sellerID := chi.URLParam(r, "sellerID")

	seller, err := s.store.SetSellerVerified(r.Context(), sellerID, verified, time.Now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "seller not found")
			return
		}
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, moderationResponse{
		Message: message,
		Seller:  mapSellerSummary(seller),
	})
}

func (s *Server) handleDeleteSeller(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "sellerID")

	deleted, err := s.store.DeleteSeller(r.Context(), sellerID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "seller not found")
		return
	}

	// Products are not cascaded; they stay listed with a dangling seller id.
	writeJSON(w, http.StatusOK, map[string]string{"message": "seller deleted successfully"})
}

type statsResponse struct {
	TotalSellers    int64 `json:"totalSellers"`
	VerifiedSellers int64 `json:"verifiedSellers"`
	PendingSellers  int64 `json:"pendingSellers"`
	TotalProducts   int64 `json:"totalProducts"`
	TotalUsers      int64 `json:"totalUsers"`
	TotalOrders     int64 `json:"totalOrders"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalSellers:    stats.TotalSellers,
		VerifiedSellers: stats.VerifiedSellers,
		PendingSellers:  stats.PendingSellers,
		TotalProducts:   stats.TotalProducts,
		TotalUsers:      stats.TotalUsers,
		TotalOrders:     stats.TotalOrders,
	})
}
