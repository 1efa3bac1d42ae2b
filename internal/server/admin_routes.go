package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Server) RegisterAdminRoutes(r *mux.Router) {
	// User Management
	r.Handle("/admin/users", s.IsAdmin(s.GetAllUsersHandler)).Methods("GET")
	r.Handle("/admin/users/{id}/role", s.IsAdmin(s.ChangeUserRoleHandler)).Methods("PATCH")
	r.Handle("/admin/users/{id}/status", s.IsAdmin(s.ToggleUserStatusHandler)).Methods("PATCH")

	// Product Management
	r.Handle("/admin/products", s.IsAdmin(s.GetAllProductsAdminHandler)).Methods("GET")
	r.Handle("/admin/products/{id}/status", s.IsAdmin(s.ToggleProductStatusHandler)).Methods("PATCH")

	// Assignment engine
	r.Handle("/admin/shops/reassign", s.IsAdmin(s.ReassignAllHandler)).Methods("POST")
	r.Handle("/admin/stats/assignments", s.IsAdmin(s.AssignmentStatsHandler)).Methods("GET")
}

// GetAllUsersHandler returns all users with pagination
func (s *Server) GetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, limit := pageParams(r)
	role := r.URL.Query().Get("role")
	search := r.URL.Query().Get("search")

	users, err := s.users.FindPage(ctx, role, search, page, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"page":  page,
		"limit": limit,
	})
}

func (s *Server) ChangeUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Role != "User" && body.Role != "Merchant" && body.Role != "Admin" {
		http.Error(w, "Role must be User, Merchant or Admin", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	updated, err := s.users.Update(ctx, objID, bson.M{"role": body.Role})
	if err != nil || updated == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User role updated successfully",
		"user":    updated,
	})
}

func (s *Server) ToggleUserStatusHandler(w http.ResponseWriter, r *http.Request) {
	objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var body struct {
		IsActive bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	updated, err := s.users.Update(ctx, objID, bson.M{"isActive": body.IsActive})
	if err != nil || updated == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User status updated successfully",
		"user":    updated,
	})
}

// GetAllProductsAdminHandler lists products including inactive ones.
func (s *Server) GetAllProductsAdminHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, limit := pageParams(r)

	products, err := s.products.FindAllPage(ctx, page, limit)
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

// ToggleProductStatusHandler activates or deactivates a product. Activating
// a product recomputes its shop assignment.
func (s *Server) ToggleProductStatusHandler(w http.ResponseWriter, r *http.Request) {
	objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	var body struct {
		IsActive bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	updated, err := s.products.Update(ctx, objID, bson.M{"isActive": body.IsActive})
	if err != nil || updated == nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	if body.IsActive {
		if _, err := s.assigner.AssignProductToShops(ctx, updated); err != nil {
			s.log.Error().Err(err).Str("productId", updated.ID.Hex()).Msg("shop assignment failed after activation")
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product status updated successfully",
		"product": updated,
	})
}

// ReassignAllHandler runs the bulk reassignment sweep on demand.
func (s *Server) ReassignAllHandler(w http.ResponseWriter, r *http.Request) {
	count, err := s.reassignAll()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Products reassigned successfully",
		"reassigned": count,
	})
}

// AssignmentStatsHandler reports how many products each storefront holds.
func (s *Server) AssignmentStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	counts, err := s.products.AssignmentCounts(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"shops": counts})
}
