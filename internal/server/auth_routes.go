package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/stylekart/stylekart-api/internal/models"
)

func (s *Server) RegisterAuthRoutes(r *mux.Router) {
	r.HandleFunc("/auth/registerUser", s.RegisterHandler("User")).Methods("POST")
	r.HandleFunc("/auth/registerMerchant", s.RegisterHandler("Merchant")).Methods("POST")
	r.HandleFunc("/auth/registerAdmin", s.RegisterHandler("Admin")).Methods("POST")
	r.HandleFunc("/auth/login", s.LoginHandler).Methods("POST")
	r.HandleFunc("/auth/logout", s.LogoutHandler).Methods("POST")
}

func (s *Server) RegisterHandler(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user models.User
		var body struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if body.Username == "" || body.Password == "" {
			http.Error(w, "Username and password are required", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(body.Password), 10)
		if err != nil {
			http.Error(w, "Failed to register", http.StatusInternalServerError)
			return
		}

		user.ID = primitive.NewObjectID()
		user.Username = body.Username
		user.Email = body.Email
		user.Password = string(hashedPassword)
		user.Role = role
		user.IsActive = true
		user.CreatedAt = time.Now()
		user.UpdatedAt = time.Now()

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := s.users.Insert(ctx, &user); err != nil {
			http.Error(w, "Failed to register", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"message": role + " registered successfully"})
	}
}

func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !s.loginLimiter.Allow() {
		http.Error(w, "Too many login attempts", http.StatusTooManyRequests)
		return
	}

	var creds struct {
		Iden     string `json:"iden"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := s.users.FindByIdentifier(ctx, creds.Iden)
	if err != nil || user == nil {
		http.Error(w, "User not found", http.StatusBadRequest)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusBadRequest)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  user.Username,
		"exp": time.Now().Add(3 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		http.Error(w, "Failed to sign token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    tokenString,
		Path:     "/",
		MaxAge:   60 * 60,
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
}

func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
