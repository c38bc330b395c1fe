package unitofwork

import (
	"context"
	"fmt"

	"docsearch-be/internal/repository/contract"
	"docsearch-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db        *gorm.DB
	tx        *gorm.DB // The active transaction (or just db if no tx)
	dimension int
}

func NewUnitOfWork(db *gorm.DB, dimension int) UnitOfWork {
	return &UnitOfWorkImpl{
		db:        db,
		dimension: dimension,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) ChunkRepository() contract.ChunkRepository {
	return implementation.NewChunkRepository(u.getDB(), u.dimension)
}
