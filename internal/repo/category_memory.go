package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fejiro0/gomart/internal/models"
)

type InMemoryCategoryRepository struct {
	mu         sync.Mutex
	categories []models.Category
}

func NewInMemoryCategoryRepository() *InMemoryCategoryRepository {
	return &InMemoryCategoryRepository{categories: []models.Category{}}
}

func (r *InMemoryCategoryRepository) GetOrCreate(_ context.Context, name string) (models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.TrimSpace(name)
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}

	c := models.Category{
		ID:        int64(len(r.categories) + 1),
		Name:      name,
		Icon:      models.IconFor(name),
		CreatedAt: time.Now().UTC(),
	}
	r.categories = append(r.categories, c)
	return c, nil
}

func (r *InMemoryCategoryRepository) List(_ context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Category, len(r.categories))
	copy(out, r.categories)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
