package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylekart/stylekart-api/internal/models"
)

func (s *Server) RegisterReviewRoutes(r *mux.Router) {
	r.Handle("/reviews", s.IsAuthenticated(s.CreateReviewHandler)).Methods("POST")
	r.HandleFunc("/reviews/product/{id}", s.GetReviewsHandler).Methods("GET")
}

// CreateReviewHandler stores a review, refreshes the product's rating stats
// and reassigns the product — rating and review count feed the shop criteria.
func (s *Server) CreateReviewHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string  `json:"productId"`
		Rating    float64 `json:"rating"`
		Comment   string  `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	productID, err := primitive.ObjectIDFromHex(body.ProductID)
	if err != nil {
		http.Error(w, "Invalid productId", http.StatusBadRequest)
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		http.Error(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	user := currentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	review := models.Review{
		ProductID: productID,
		UserID:    user.ID.Hex(),
		Rating:    body.Rating,
		Comment:   body.Comment,
	}
	if err := s.reviews.Add(ctx, &review); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Reassign only this product; its rating stats just changed.
	if err := s.assigner.ReassignProduct(ctx, productID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Review submitted successfully",
		"review":  review,
	})
}

func (s *Server) GetReviewsHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	reviews, err := s.reviews.List(ctx, productID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}
