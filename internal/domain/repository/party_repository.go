package repository

import "context"

// ClientRepository verificación de existencia de clientes (CRUD externo).
type ClientRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// EmployeeRepository verificación de existencia de empleados activos (CRUD externo).
type EmployeeRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}
