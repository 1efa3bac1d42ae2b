package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/time/rate"

	"github.com/stylekart/stylekart-api/internal/assignment"
	"github.com/stylekart/stylekart-api/internal/config"
	"github.com/stylekart/stylekart-api/internal/metrics"
	"github.com/stylekart/stylekart-api/internal/models"
	"github.com/stylekart/stylekart-api/internal/review"
	"github.com/stylekart/stylekart-api/internal/store"
)

// ShopStore is the shop surface the handlers need. Satisfied by both the
// plain Mongo store and its Redis-cached wrapper.
type ShopStore interface {
	FindAll(ctx context.Context) ([]models.Shop, error)
	FindBySlug(ctx context.Context, slug string) (*models.Shop, error)
	Create(ctx context.Context, shop *models.Shop) error
	Update(ctx context.Context, slug string, update bson.M) (*models.Shop, error)
	Delete(ctx context.Context, slug string) (*models.Shop, error)
}

type Server struct {
	cfg        *config.Config
	users      *store.UserStore
	products   *store.ProductStore
	shops      ShopStore
	orders     *store.OrderStore
	categories *store.CategoryStore
	reviews    *review.Service
	assigner   *assignment.Service
	log        zerolog.Logger

	loginLimiter *rate.Limiter
}

func New(
	cfg *config.Config,
	users *store.UserStore,
	products *store.ProductStore,
	shops ShopStore,
	orders *store.OrderStore,
	categories *store.CategoryStore,
	reviews *review.Service,
	assigner *assignment.Service,
	log zerolog.Logger,
) *Server {
	return &Server{
		cfg:          cfg,
		users:        users,
		products:     products,
		shops:        shops,
		orders:       orders,
		categories:   categories,
		reviews:      reviews,
		assigner:     assigner,
		log:          log,
		loginLimiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	s.RegisterAuthRoutes(r)
	s.RegisterUserRoutes(r)
	s.RegisterProductRoutes(r)
	s.RegisterShopRoutes(r)
	s.RegisterReviewRoutes(r)
	s.RegisterCategoryRoutes(r)
	s.RegisterOrderRoutes(r)
	s.RegisterAdminRoutes(r)

	return metrics.Middleware(r)
}

// reassignAll runs the bulk sweep detached from the request context so a
// client disconnect cannot abandon the catalog halfway through a rewrite.
func (s *Server) reassignAll() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	return s.assigner.ReassignAllProducts(ctx)
}
