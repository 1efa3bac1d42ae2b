package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylekart/stylekart-api/internal/models"
)

func (s *Server) RegisterOrderRoutes(r *mux.Router) {
	r.Handle("/orders", s.IsAuthenticated(s.PlaceOrderHandler)).Methods("POST")
	r.Handle("/orders", s.IsAuthenticated(s.GetMyOrdersHandler)).Methods("GET")
}

// PlaceOrderHandler creates an order from the requested items, snapshotting
// the current product names and prices.
func (s *Server) PlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(body.Items) == 0 {
		http.Error(w, "Order must contain at least one item", http.StatusBadRequest)
		return
	}

	user := currentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items := make([]models.OrderItem, 0, len(body.Items))
	total := 0.0
	for _, item := range body.Items {
		if item.Quantity <= 0 {
			http.Error(w, "Item quantity must be positive", http.StatusBadRequest)
			return
		}
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			http.Error(w, "Invalid productId: "+item.ProductID, http.StatusBadRequest)
			return
		}
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if product == nil || !product.IsActive {
			http.Error(w, "Product not found: "+item.ProductID, http.StatusNotFound)
			return
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
		total += product.Price * float64(item.Quantity)
	}

	order := models.Order{
		ID:          primitive.NewObjectID(),
		OrderNumber: newOrderNumber(),
		UserID:      user.ID,
		Items:       items,
		Total:       total,
		Status:      models.OrderStatusPending,
		Address:     body.Address,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.orders.Insert(ctx, &order); err != nil {
		http.Error(w, "Failed to place order", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Order placed successfully",
		"order":   order,
	})
}

func (s *Server) GetMyOrdersHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := s.orders.FindByUser(ctx, user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}
