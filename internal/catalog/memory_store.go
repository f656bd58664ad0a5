package catalog

import (
	"sync"

	"github.com/taxirent/bookingservice/internal/domain"
)

// CarRepository is the read/write surface the booking service needs.
type CarRepository interface {
	Get(id string) (domain.Car, bool)
	List() []domain.Car
}

// MemoryCarStore is an in-memory implementation of CarRepository.
type MemoryCarStore struct {
	mu    sync.RWMutex
	cars  map[string]domain.Car
	order []string // Maintain insertion order
}

func NewMemoryCarStore() *MemoryCarStore {
	return &MemoryCarStore{
		cars:  make(map[string]domain.Car),
		order: make([]string, 0),
	}
}

func (s *MemoryCarStore) Get(id string) (domain.Car, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cars[id]
	return c, ok
}

func (s *MemoryCarStore) List() []domain.Car {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Car, 0, len(s.cars))
	for _, id := range s.order {
		if c, exists := s.cars[id]; exists {
			out = append(out, c)
		}
	}
	return out
}

func (s *MemoryCarStore) Upsert(car domain.Car) error {
	if err := car.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cars[car.ID]; !exists {
		s.order = append(s.order, car.ID)
	}

	s.cars[car.ID] = car
	return nil
}

func (s *MemoryCarStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cars[id]; !exists {
		return domain.NewNotFoundError("car", id)
	}

	for i, orderID := range s.order {
		if orderID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	delete(s.cars, id)
	return nil
}

func (s *MemoryCarStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cars)
}
