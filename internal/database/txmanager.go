package database

import (
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionManager runs functions inside a database transaction. The
// transaction travels in the context; repositories pick it up through the
// trmpgx context getter, so a service can span several repositories in one
// transaction without threading a Tx handle around.
type TransactionManager struct {
	manager *manager.Manager
}

// NewTransactionManager creates a TransactionManager over the given pool.
func NewTransactionManager(pool *pgxpool.Pool) (*TransactionManager, error) {
	trManager, err := manager.New(trmpgx.NewDefaultFactory(pool))
	if err != nil {
		return nil, err
	}

	return &TransactionManager{manager: trManager}, nil
}

// Do executes fn inside a transaction, committing on nil and rolling back on error.
func (tm *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return tm.manager.Do(ctx, fn)
}
