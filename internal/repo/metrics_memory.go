package repo

import (
	"context"
)

type InMemoryMetricsRepository struct {
	productRepo     *InMemoryProductRepository
	reservationRepo *InMemoryReservationRepository
	orderRepo       *InMemoryOrderRepository
	movementRepo    *InMemoryMovementRepository
}

func NewInMemoryMetricsRepository() *InMemoryMetricsRepository {
	return &InMemoryMetricsRepository{}
}

func (i *InMemoryMetricsRepository) SetRepositories(
	productRepo *InMemoryProductRepository,
	reservationRepo *InMemoryReservationRepository,
	orderRepo *InMemoryOrderRepository,
	movementRepo *InMemoryMovementRepository,
) {
	i.productRepo = productRepo
	i.reservationRepo = reservationRepo
	i.orderRepo = orderRepo
	i.movementRepo = movementRepo
}

// GetDashboardMetrics implements MetricsRepository.
func (i *InMemoryMetricsRepository) GetDashboardMetrics(_ context.Context, vendorID int64) (Metrics, error) {
	m := Metrics{}

	owned := map[int64]string{}
	for _, p := range i.productRepo.All() {
		if p.VendorID != vendorID {
			continue
		}
		owned[p.ID] = p.Name
		m.TotalProducts++
		m.UnitsInStock += p.StockQuantity
		if p.LowStock() {
			m.LowStockCount++
		}
		m.UnitsReserved += i.reservationRepo.Reserved(p.ID)
	}

	for _, o := range i.orderRepo.All() {
		counted := false
		for _, l := range o.Lines {
			if _, ok := owned[l.ProductID]; !ok {
				continue
			}
			m.UnitsSold += l.Quantity
			if !counted {
				m.OrdersCount++
				counted = true
			}
		}
	}

	perProduct := map[int64]int{}
	for _, mv := range i.movementRepo.All() {
		if _, ok := owned[mv.ProductID]; ok {
			perProduct[mv.ProductID]++
			m.TotalMovements++
		}
	}
	var bestID int64
	for id, count := range perProduct {
		if count > m.MostMovedProduct.MovementCount ||
			(count == m.MostMovedProduct.MovementCount && id < bestID) {
			bestID = id
			m.MostMovedProduct = MostMovedProduct{Name: owned[id], MovementCount: count}
		}
	}

	return m, nil
}
