package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) RegisterUserRoutes(r *mux.Router) {
	r.Handle("/showUser", s.IsAuthenticated(s.ShowMyUserHandler)).Methods("GET")
	r.Handle("/editUser", s.IsAuthenticated(s.EditMyUserHandler)).Methods("PATCH")
}

func (s *Server) ShowMyUserHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) EditMyUserHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	update := bson.M{}
	if body.Username != "" {
		update["username"] = body.Username
	}
	if body.Email != "" {
		update["email"] = body.Email
	}
	if body.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), 10)
		if err != nil {
			http.Error(w, "Error hashing password", http.StatusInternalServerError)
			return
		}
		update["password"] = string(hashed)
	}
	if len(update) == 0 {
		http.Error(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	updated, err := s.users.Update(ctx, user.ID, update)
	if err != nil || updated == nil {
		http.Error(w, "Can't update user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User updated successfully",
		"user":    updated,
	})
}
