package handlers

import (
	"github.com/fejiro0/gomart/internal/auth"
	"github.com/fejiro0/gomart/internal/cache"
	"github.com/fejiro0/gomart/internal/cart"
	"github.com/fejiro0/gomart/internal/inventory"
	"github.com/fejiro0/gomart/internal/repo"
	"go.uber.org/zap"
)

var (
	productRepo  repo.ProductRepository
	movementRepo repo.MovementRepository
	metricsRepo  repo.MetricsRepository
	categoryRepo repo.CategoryRepository

	productCache cache.ProductCache = cache.Nop{}
	cartService  *cart.Service
	stockService *inventory.Service
	authService  *auth.AuthService

	log = zap.NewNop()
)

func SetProductRepo(r repo.ProductRepository) {
	productRepo = r
}

func SetMovementRepo(r repo.MovementRepository) {
	movementRepo = r
}

func SetMetricsRepo(r repo.MetricsRepository) {
	metricsRepo = r
}

func SetCategoryRepo(r repo.CategoryRepository) {
	categoryRepo = r
}

func SetProductCache(c cache.ProductCache) {
	productCache = c
}

func SetCartService(s *cart.Service) {
	cartService = s
}

func SetStockService(s *inventory.Service) {
	stockService = s
}

func SetAuthService(s *auth.AuthService) {
	authService = s
}

func SetLogger(l *zap.Logger) {
	log = l
}
