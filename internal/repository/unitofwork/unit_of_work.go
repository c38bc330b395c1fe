package unitofwork

import (
	"context"

	"docsearch-be/internal/repository/contract"
)

// UnitOfWork scopes repository access to one logical transaction. A full
// re-sync (delete old chunks + upsert the new set) must commit atomically so
// a concurrent search never observes a half-replaced document.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChunkRepository() contract.ChunkRepository
}

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
