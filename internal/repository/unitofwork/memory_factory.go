package unitofwork

import (
	"context"

	"docsearch-be/internal/repository/contract"
	"docsearch-be/internal/repository/memory"
)

// MemoryFactory backs the unit of work with the in-memory chunk store. Used
// when no database is configured and in tests. Transactions are no-ops: the
// memory store serializes each bulk write under its own lock, which is enough
// for the last-write-wins semantics the pipeline requires.
type MemoryFactory struct {
	repo *memory.ChunkRepository
}

func NewMemoryFactory(dimension int) *MemoryFactory {
	return &MemoryFactory{repo: memory.NewChunkRepository(dimension)}
}

func (f *MemoryFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return &memoryUnitOfWork{repo: f.repo}
}

// Repository exposes the shared store for read paths that bypass the unit of
// work (the retriever).
func (f *MemoryFactory) Repository() contract.ChunkRepository {
	return f.repo
}

type memoryUnitOfWork struct {
	repo *memory.ChunkRepository
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *memoryUnitOfWork) Commit() error                   { return nil }
func (u *memoryUnitOfWork) Rollback() error                 { return nil }

func (u *memoryUnitOfWork) ChunkRepository() contract.ChunkRepository {
	return u.repo
}
