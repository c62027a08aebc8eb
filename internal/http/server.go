package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bazaar/marketplace/internal/auth"
	"bazaar/marketplace/internal/config"
	"bazaar/marketplace/internal/model"
	"bazaar/marketplace/internal/repository"
)

// Store is the persistence surface the handlers need. *repository.Store is
// the production implementation; tests substitute an in-memory one.
type Store interface {
	CreateSeller(ctx context.Context, seller model.Seller) error
	GetSellerByEmail(ctx context.Context, email string) (model.Seller, error)
	GetSellerByID(ctx context.Context, sellerID string) (model.Seller, error)
	UpdateSellerProfile(ctx context.Context, sellerID string, update repository.SellerUpdate) (model.Seller, error)
	SetSellerVerified(ctx context.Context, sellerID string, verified bool, at time.Time) (model.Seller, error)
	ListSellers(ctx context.Context) ([]model.Seller, error)
	ListPendingSellers(ctx context.Context) ([]model.Seller, error)
	DeleteSeller(ctx context.Context, sellerID string) (bool, error)

	CreateAdmin(ctx context.Context, admin model.Admin) error
	GetAdminByEmail(ctx context.Context, email string) (model.Admin, error)
	GetAdminByID(ctx context.Context, adminID string) (model.Admin, error)

	CreateUser(ctx context.Context, user model.User) error
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, userID string) (model.User, error)

	CreateProduct(ctx context.Context, product model.Product) error
	GetProductByID(ctx context.Context, productID string) (model.Product, error)
	UpdateProduct(ctx context.Context, productID string, update repository.ProductUpdate) (model.Product, error)
	DeleteProduct(ctx context.Context, productID string) (bool, error)
	ListProductsBySeller(ctx context.Context, sellerID string) ([]model.Product, error)
	SearchProducts(ctx context.Context, category, search string) ([]model.Product, error)

	CreateOrder(ctx context.Context, order model.Order, items []model.OrderItem) error
	GetOrderByID(ctx context.Context, orderID string) (model.Order, []model.OrderItem, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	MarkOrderPaid(ctx context.Context, orderID string, at time.Time) (model.Order, error)

	GetStats(ctx context.Context) (model.Stats, error)
}

type Server struct {
	cfg      config.Config
	store    Store
	redis    *redis.Client
	fallback []model.Product
	log      *zap.Logger
}

// NewServer wires the handler dependencies. redisClient may be nil (catalog
// caching is skipped) and fallback may be empty (catalog reads fail hard
// instead of degrading).
func NewServer(cfg config.Config, store Store, redisClient *redis.Client, fallback []model.Product, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		store:    store,
		redis:    redisClient,
		fallback: fallback,
		log:      logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Setup-Token"},
	}))
	r.Use(s.requestLogger)

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/seller", func(r chi.Router) {
		r.Post("/register", s.handleRegisterSeller)
		r.Post("/login", s.handleLoginSeller)

		r.With(s.authSeller).Get("/profile", s.handleGetSellerProfile)
		r.With(s.authSeller).Put("/profile", s.handleUpdateSellerProfile)
		r.With(s.authSeller).Get("/products", s.handleListSellerProducts)

		r.With(s.authSeller, s.requireVerified).Post("/products", s.handleCreateProduct)
		r.With(s.authSeller, s.requireVerified).Put("/products/{productID}", s.handleUpdateProduct)
		r.With(s.authSeller, s.requireVerified).Delete("/products/{productID}", s.handleDeleteProduct)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/register", s.handleRegisterAdmin)
		r.Post("/login", s.handleLoginAdmin)

		r.With(s.authAdmin).Get("/profile", s.handleGetAdminProfile)
		r.With(s.authAdmin).Get("/stats", s.handleGetStats)
		r.With(s.authAdmin).Get("/sellers", s.handleListSellers)
		r.With(s.authAdmin).Get("/sellers/pending", s.handleListPendingSellers)
		r.With(s.authAdmin).Put("/sellers/{sellerID}/approve", s.handleApproveSeller)
		r.With(s.authAdmin).Put("/sellers/{sellerID}/reject", s.handleRejectSeller)
		r.With(s.authAdmin).Delete("/sellers/{sellerID}", s.handleDeleteSeller)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegisterUser)
		r.Post("/login", s.handleLoginUser)
		r.With(s.authCustomer).Get("/profile", s.handleGetUserProfile)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.With(s.authCustomer).Post("/", s.handleCreateOrder)
		r.With(s.authAdmin).Get("/", s.handleListOrders)
		r.With(s.authCustomer).Get("/myorders", s.handleListMyOrders)
		r.With(s.authCustomerOrAdmin).Get("/{orderID}", s.handleGetOrder)
		r.With(s.authCustomer).Put("/{orderID}/pay", s.handlePayOrder)
	})

	r.Get("/api/products", s.handleGetProducts)
	r.Get("/api/products/{productID}", s.handleGetProductByID)

	return r
}

// --- authentication middleware ---
//
// Each guard resolves the bearer token, requires the matching role claim, and
// loads the backing record on every request. A valid token whose record was
// deleted after issuance fails with a distinct "<role> not found" message
// rather than the generic token failure.

type sellerKey struct{}
type adminKey struct{}
type userKey struct{}

func (s *Server) authSeller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.verifyBearer(w, r)
		if !ok {
			return
		}
		if claims.Role != auth.RoleSeller {
			writeError(w, http.StatusUnauthorized, "not authorized as seller")
			return
		}

		seller, err := s.store.GetSellerByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusUnauthorized, "seller not found")
				return
			}
			s.serverError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), sellerKey{}, seller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireVerified re-checks the moderation flag on the freshly loaded seller
// record, never on anything cached inside the token.
func (s *Server) requireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seller, ok := sellerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authorized as seller")
			return
		}
		if !seller.Verified {
			writeError(w, http.StatusForbidden, "your seller account is not verified yet. please wait for admin approval.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.verifyBearer(w, r)
		if !ok {
			return
		}
		if claims.Role != auth.RoleAdmin {
			writeError(w, http.StatusUnauthorized, "not authorized as admin")
			return
		}

		admin, err := s.store.GetAdminByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusUnauthorized, "admin not found")
				return
			}
			s.serverError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), adminKey{}, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) authCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.verifyBearer(w, r)
		if !ok {
			return
		}
		if claims.Role != auth.RoleCustomer {
			writeError(w, http.StatusUnauthorized, "not authorized as customer")
			return
		}

		user, err := s.store.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusUnauthorized, "user not found")
				return
			}
			s.serverError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authCustomerOrAdmin admits either role; handlers decide what the admin may
// see versus the record owner.
func (s *Server) authCustomerOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.verifyBearer(w, r)
		if !ok {
			return
		}

		switch claims.Role {
		case auth.RoleCustomer:
			user, err := s.store.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					writeError(w, http.StatusUnauthorized, "user not found")
					return
				}
				s.serverError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), userKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		case auth.RoleAdmin:
			admin, err := s.store.GetAdminByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					writeError(w, http.StatusUnauthorized, "admin not found")
					return
				}
				s.serverError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), adminKey{}, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		default:
			writeError(w, http.StatusUnauthorized, "not authorized as customer")
		}
	})
}

func (s *Server) verifyBearer(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "not authorized, no token")
		return nil, false
	}
	claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authorized, token failed")
		return nil, false
	}
	return claims, true
}

func sellerFromContext(ctx context.Context) (model.Seller, bool) {
	seller, ok := ctx.Value(sellerKey{}).(model.Seller)
	return seller, ok
}

func adminFromContext(ctx context.Context) (model.Admin, bool) {
	admin, ok := ctx.Value(adminKey{}).(model.Admin)
	return admin, ok
}

func userFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey{}).(model.User)
	return user, ok
}

// --- shared helpers ---

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "server error")
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
