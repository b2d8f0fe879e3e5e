package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// NewRepositories wires all GORM-backed stores over one DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Events:         NewEventRepository(db),
		Projections:    NewProjectionRepository(db),
		DeadLetter:     NewDeadLetterRepository(db),
		Reconciliation: NewReconciliationRepository(db),
	}
}
