package entity

// Client referencia mínima al cliente (CRUD externo).
type Client struct {
	ID   string
	Name string
}

// Roles válidos para Employee.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// Employee referencia mínima al empleado que registra ventas y movimientos.
type Employee struct {
	ID     string
	Name   string
	Role   string
	Active bool
}
