package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylekart/stylekart-api/internal/assignment"
	"github.com/stylekart/stylekart-api/internal/models"
)

func (s *Server) RegisterCategoryRoutes(r *mux.Router) {
	r.HandleFunc("/categories", s.GetCategoriesHandler).Methods("GET")
	r.Handle("/categories", s.IsAdmin(s.CreateCategoryHandler)).Methods("POST")
}

func (s *Server) GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	categories, err := s.categories.FindActive(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	category := models.Category{
		ID:        primitive.NewObjectID(),
		Name:      body.Name,
		Slug:      assignment.CategorySlug(body.Name),
		ImageURL:  body.ImageURL,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.categories.Insert(ctx, &category); err != nil {
		http.Error(w, "Failed to create category", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Category created successfully",
		"category": category,
	})
}
