package ports

import (
	"context"
	"errors"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Stock     repository.StockRepository
	Sales     repository.SaleRepository
	Movements repository.MovementRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en otro caso.
// Los fallos de Begin/Commit se devuelven como *domain.PersistenceError.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// Atomically ejecuta fn como unidad atómica y devuelve su valor confirmado o un error
// tras el rollback. Los errores de dominio (validación, no encontrado, stock insuficiente)
// se devuelven tal cual; cualquier otro se etiqueta como *domain.PersistenceError.
func Atomically[T any](ctx context.Context, runner TxRunner, op string, fn func(repos TxRepos) (T, error)) (T, error) {
	var committed T
	err := runner.Run(ctx, func(repos TxRepos) error {
		v, err := fn(repos)
		if err != nil {
			return err
		}
		committed = v
		return nil
	})
	if err != nil {
		var zero T
		if domain.IsBusinessError(err) || errors.Is(err, domain.ErrPersistence) {
			return zero, err
		}
		return zero, &domain.PersistenceError{Op: op, Err: err}
	}
	return committed, nil
}
