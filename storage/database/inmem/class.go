package inmemdb

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kymani/udahili/core/class"
)

type classRepository struct {
	mu      sync.RWMutex
	classes map[string]class.Class
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository() *classRepository {
	return &classRepository{classes: make(map[string]class.Class)}
}

func (repo *classRepository) CheckNameUniqueness(_ context.Context, name string) error {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	for _, cls := range repo.classes {
		if strings.EqualFold(cls.Name, name) {
			return class.ErrClassExists
		}
	}
	return nil
}

func (repo *classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	if err := repo.CheckNameUniqueness(ctx, cls.Name); err != nil {
		return class.Class{}, err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	cls.ID = uuid.New().String()
	repo.classes[cls.ID] = cls
	return cls, nil
}

func (repo *classRepository) GetClassByName(_ context.Context, name string) (class.Class, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	for _, cls := range repo.classes {
		if strings.EqualFold(cls.Name, name) {
			return cls, nil
		}
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) QueryAllClasses(_ context.Context) ([]class.Class, error) {
	repo.mu.RLock()
	classes := make([]class.Class, 0, len(repo.classes))
	for _, cls := range repo.classes {
		classes = append(classes, cls)
	}
	repo.mu.RUnlock()

	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes, nil
}
