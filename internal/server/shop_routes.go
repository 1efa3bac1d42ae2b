package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/stylekart/stylekart-api/internal/assignment"
	"github.com/stylekart/stylekart-api/internal/models"
)

func (s *Server) RegisterShopRoutes(r *mux.Router) {
	r.HandleFunc("/shops", s.GetAllShopsHandler).Methods("GET")
	r.HandleFunc("/shops/{slug}", s.GetShopBySlugHandler).Methods("GET")
	r.Handle("/shops", s.IsAdmin(s.CreateShopHandler)).Methods("POST")
	r.Handle("/shops/{slug}", s.IsAdmin(s.UpdateShopHandler)).Methods("PUT")
	r.Handle("/shops/{slug}", s.IsAdmin(s.DeleteShopHandler)).Methods("DELETE")
}

func (s *Server) GetAllShopsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	shops, err := s.shops.FindAll(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, shops)
}

func (s *Server) GetShopBySlugHandler(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, shop)
}

// CreateShopHandler creates a storefront and recomputes every product's
// assignment against the new rule-set.
func (s *Server) CreateShopHandler(w http.ResponseWriter, r *http.Request) {
	var shop models.Shop
	if err := json.NewDecoder(r.Body).Decode(&shop); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if shop.Slug == "" || shop.Name == "" || shop.MajorCategory == "" || shop.ShopType == "" {
		http.Error(w, "Slug, name, majorCategory and shopType are required", http.StatusBadRequest)
		return
	}
	if shop.MajorCategory != models.MajorCategoryLuxury && shop.MajorCategory != models.MajorCategoryAffordable {
		http.Error(w, "majorCategory must be LUXURY or AFFORDABLE", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := s.shops.Create(ctx, &shop); err != nil {
		if errors.Is(err, assignment.ErrDuplicateSlug) {
			http.Error(w, "A shop with this slug already exists", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to create shop", http.StatusInternalServerError)
		return
	}

	count, err := s.reassignAll()
	if err != nil {
		http.Error(w, "Shop created but product reassignment failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Shop created successfully",
		"shop":       shop,
		"reassigned": count,
	})
}

// UpdateShopHandler updates a storefront; criteria changes force a full
// reassignment sweep.
func (s *Server) UpdateShopHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	var updateData map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	delete(updateData, "_id")
	delete(updateData, "slug")
	delete(updateData, "createdAt")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	shop, err := s.shops.Update(ctx, slug, bson.M(updateData))
	if err != nil {
		http.Error(w, "Failed to update shop", http.StatusInternalServerError)
		return
	}
	if shop == nil {
		http.Error(w, "Shop not found", http.StatusNotFound)
		return
	}

	count, err := s.reassignAll()
	if err != nil {
		http.Error(w, "Shop updated but product reassignment failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Shop updated successfully",
		"shop":       shop,
		"reassigned": count,
	})
}

func (s *Server) DeleteShopHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	shop, err := s.shops.Delete(ctx, slug)
	if err != nil {
		http.Error(w, "Failed to delete shop", http.StatusInternalServerError)
		return
	}
	if shop == nil {
		http.Error(w, "Shop not found", http.StatusNotFound)
		return
	}

	count, err := s.reassignAll()
	if err != nil {
		http.Error(w, "Shop deleted but product reassignment failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Shop deleted successfully",
		"shop":       shop,
		"reassigned": count,
	})
}
