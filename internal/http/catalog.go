package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"bazaar/marketplace/internal/model"
)

type productResponse struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Price              float64   `json:"price"`
	Category           string    `json:"category"`
	ImageURL           string    `json:"imageUrl"`
	ProductDescription string    `json:"productDescription"`
	CompanyDescription string    `json:"companyDescription"`
	Brand              string    `json:"brand"`
	CountInStock       int       `json:"countInStock"`
	Rating             float64   `json:"rating"`
	NumReviews         int       `json:"numReviews"`
	SellerID           string    `json:"sellerId"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func mapProduct(product model.Product) productResponse {
	return productResponse{
		ID:                 product.ID,
		Title:              product.Title,
		Price:              product.Price,
		Category:           product.Category,
		ImageURL:           product.ImageURL,
		ProductDescription: product.ProductDescription,
		CompanyDescription: product.CompanyDescription,
		Brand:              product.Brand,
		CountInStock:       product.CountInStock,
		Rating:             product.Rating,
		NumReviews:         product.NumReviews,
		SellerID:           product.SellerID,
		CreatedAt:          product.CreatedAt,
		UpdatedAt:          product.UpdatedAt,
	}
}

func mapProducts(products []model.Product) []productResponse {
	resp := make([]productResponse, 0, len(products))
	for _, product := range products {
		resp = append(resp, mapProduct(product))
	}
	return resp
}

var validCategories = map[string]bool{
	"electronics": true,
	"fashion":     true,
	"home":        true,
	"books":       true,
	"sports":      true,
	"beauty":      true,
	"toys":        true,
	"automotive":  true,
	"grocery":     true,
	"health":      true,
}

func isValidCategory(category string) bool {
	return validCategories[category]
}

func validateProductInput(title string, price float64, category, imageURL, productDescription, companyDescription string, countInStock int) string {
	if len(strings.TrimSpace(title)) < 3 {
		return "title must be at least 3 characters"
	}
	if price < 0 {
		return "price cannot be negative"
	}
	if !isValidCategory(category) {
		return category + " is not a valid category"
	}
	if imageURL == "" {
		return "product image is required"
	}
	if len(productDescription) < 20 {
		return "product description must be at least 20 characters"
	}
	if len(companyDescription) < 10 {
		return "company description must be at least 10 characters"
	}
	if countInStock < 0 {
		return "stock cannot be negative"
	}
	return ""
}

func validateProductPatch(req updateProductRequest) string {
	if req.Title != nil && len(strings.TrimSpace(*req.Title)) < 3 {
		return "title must be at least 3 characters"
	}
	if req.Price != nil && *req.Price < 0 {
		return "price cannot be negative"
	}
	if req.Category != nil && !isValidCategory(*req.Category) {
		return *req.Category + " is not a valid category"
	}
	if req.ImageURL != nil && *req.ImageURL == "" {
		return "product image is required"
	}
	if req.ProductDescription != nil && len(*req.ProductDescription) < 20 {
		return "product description must be at least 20 characters"
	}
	if req.CompanyDescription != nil && len(*req.CompanyDescription) < 10 {
		return "company description must be at least 10 characters"
	}
	if req.CountInStock != nil && *req.CountInStock < 0 {
		return "stock cannot be negative"
	}
	return ""
}

// handleGetProducts serves the public catalog. The read path degrades rather
// than fails: a storage error or an empty catalog falls back to the demo
// dataset the server was constructed with, with the same filters applied.
func (s *Server) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	search := r.URL.Query().Get("search")

	if cached, ok := s.catalogCacheGet(r, category, search); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	products, err := s.store.SearchProducts(r.Context(), category, search)
	if err != nil {
		s.log.Error("catalog query failed, serving fallback", zap.Error(err))
		writeJSON(w, http.StatusOK, mapProducts(filterCatalog(s.fallback, category, search)))
		return
	}
	if len(products) == 0 {
		writeJSON(w, http.StatusOK, mapProducts(filterCatalog(s.fallback, category, search)))
		return
	}

	resp := mapProducts(products)
	s.catalogCacheSet(r, category, search, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProductByID(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	product, err := s.store.GetProductByID(r.Context(), productID)
	if err == nil {
		writeJSON(w, http.StatusOK, mapProduct(product))
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		s.log.Error("product lookup failed, checking fallback", zap.Error(err))
	}

	for _, fallback := range s.fallback {
		if fallback.ID == productID {
			writeJSON(w, http.StatusOK, mapProduct(fallback))
			return
		}
	}
	writeError(w, http.StatusNotFound, "product not found")
}

func filterCatalog(products []model.Product, category, search string) []model.Product {
	filtered := []model.Product{}
	for _, product := range products {
		if category != "" && product.Category != category {
			continue
		}
		if search != "" {
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(product.Title), needle) &&
				!strings.Contains(strings.ToLower(product.ProductDescription), needle) {
				continue
			}
		}
		filtered = append(filtered, product)
	}
	return filtered
}

// Catalog caching is best effort: a nil or unreachable redis client just means
// every request hits the store. Entries expire by TTL only; mutations are not
// invalidated.

func catalogCacheKey(category, search string) string {
	return "catalog:" + category + ":" + search
}

func (s *Server) catalogCacheGet(r *http.Request, category, search string) ([]byte, bool) {
	if s.redis == nil {
		return nil, false
	}
	cached, err := s.redis.Get(r.Context(), catalogCacheKey(category, search)).Bytes()
	if err != nil {
		return nil, false
	}
	return cached, true
}

func (s *Server) catalogCacheSet(r *http.Request, category, search string, resp []productResponse) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.redis.Set(r.Context(), catalogCacheKey(category, search), payload, s.cfg.CatalogCacheTTL).Err(); err != nil {
		s.log.Warn("catalog cache write failed", zap.Error(err))
	}
}
