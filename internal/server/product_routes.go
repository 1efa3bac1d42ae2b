package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylekart/stylekart-api/internal/models"
)

func (s *Server) RegisterProductRoutes(r *mux.Router) {
	r.HandleFunc("/products", s.GetAllProductsHandler).Methods("GET")
	r.HandleFunc("/products/search", s.SearchProductsHandler).Methods("GET")
	r.HandleFunc("/products/category/{category}", s.GetProductsByCategoryHandler).Methods("GET")
	r.HandleFunc("/products/shop/{slug}", s.GetProductsByShopHandler).Methods("GET")
	r.Handle("/products", s.IsMerchant(s.CreateProductHandler)).Methods("POST")
	r.Handle("/products/{id}", s.IsMerchant(s.UpdateProductHandler)).Methods("PUT")
	r.Handle("/products/{id}", s.IsMerchant(s.DeleteProductHandler)).Methods("DELETE")
	r.HandleFunc("/products/{id}", s.GetProductByIDHandler).Methods("GET")
}

func pageParams(r *http.Request) (int64, int64) {
	page := int64(1)
	limit := int64(10)
	if p, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && l > 0 {
		limit = l
	}
	return page, limit
}

// GetAllProductsHandler returns all active products
func (s *Server) GetAllProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, limit := pageParams(r)

	products, err := s.products.FindPage(ctx, nil, page, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"page":     page,
		"limit":    limit,
	})
}

// SearchProductsHandler searches products by name or description
func (s *Server) SearchProductsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Search query is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	products, err := s.products.Search(ctx, query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetProductsByCategoryHandler returns products by category
func (s *Server) GetProductsByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, limit := pageParams(r)

	products, err := s.products.FindPage(ctx, bson.M{"category": category}, page, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetProductsByShopHandler returns the products assigned to a storefront.
func (s *Server) GetProductsByShopHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	shop, err := s.shops.FindBySlug(ctx, slug)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if shop == nil {
		http.Error(w, "Shop not found", http.StatusNotFound)
		return
	}

	page, limit := pageParams(r)

	products, err := s.products.FindPage(ctx, bson.M{"assignedShops": slug}, page, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"shop":     shop,
		"products": products,
		"page":     page,
		"limit":    limit,
	})
}

// CreateProductHandler creates a new product and assigns it to shops.
func (s *Server) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if product.Name == "" || product.Price <= 0 || product.Stock < 0 {
		http.Error(w, "Name, price, and stock are required fields", http.StatusBadRequest)
		return
	}

	user := currentUser(r)

	product.ID = primitive.NewObjectID()
	product.MerchantID = user.ID
	product.MerchantName = user.Username
	product.IsActive = true
	product.MajorCategory = models.DeriveMajorCategory(&product)
	product.AssignedShops = []string{}
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	if product.DateAdded.IsZero() {
		product.DateAdded = product.CreatedAt
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := s.products.Insert(ctx, &product); err != nil {
		http.Error(w, "Failed to create product", http.StatusInternalServerError)
		return
	}

	// Assignment is a side effect of the write; a failure here must not fail
	// the product creation itself.
	if _, err := s.assigner.AssignProductToShops(ctx, &product); err != nil {
		s.log.Error().Err(err).Str("productId", product.ID.Hex()).Msg("shop assignment failed after create")
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProductHandler updates an existing product and recomputes its shops.
func (s *Server) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	var updateData map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user := currentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	existing, err := s.products.FindByID(ctx, objID)
	if err != nil || existing == nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	// Only allow merchants to update their own products (unless admin)
	if user.Role != "Admin" && existing.MerchantID != user.ID {
		http.Error(w, "Access denied. You can only update your own products.", http.StatusForbidden)
		return
	}

	// Owned-by-core and identity fields are never client-writable.
	delete(updateData, "_id")
	delete(updateData, "merchantId")
	delete(updateData, "merchantName")
	delete(updateData, "createdAt")
	delete(updateData, "assignedShops")
	delete(updateData, "majorCategory")

	updated, err := s.products.Update(ctx, objID, bson.M(updateData))
	if err != nil || updated == nil {
		http.Error(w, "Failed to update product", http.StatusInternalServerError)
		return
	}

	if _, err := s.assigner.AssignProductToShops(ctx, updated); err != nil {
		s.log.Error().Err(err).Str("productId", updated.ID.Hex()).Msg("shop assignment failed after update")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product updated successfully",
		"product": updated,
	})
}

// DeleteProductHandler deletes a product (soft delete)
func (s *Server) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	user := currentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	existing, err := s.products.FindByID(ctx, objID)
	if err != nil || existing == nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	if user.Role != "Admin" && existing.MerchantID != user.ID {
		http.Error(w, "Access denied. You can only delete your own products.", http.StatusForbidden)
		return
	}

	deleted, err := s.products.Update(ctx, objID, bson.M{"isActive": false})
	if err != nil || deleted == nil {
		http.Error(w, "Failed to delete product", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product deleted successfully",
		"product": deleted,
	})
}

// GetProductByIDHandler returns a specific product by ID
func (s *Server) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	product, err := s.products.FindByID(ctx, objID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if product == nil || !product.IsActive {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, product)
}
