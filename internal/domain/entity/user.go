package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleGerente    = "gerente"
	RoleCaixa      = "caixa"
	RoleEstoquista = "estoquista"
)

// User representa um usuário/funcionário da loja.
// Permissions são concessões individuais que prevalecem sobre as do role
// na cadeia de resolução de permissões (exceto admin, que sempre passa).
type User struct {
	ID           string
	Email        string
	PasswordHash string // hash bcrypt, nunca em claro após persistir
	Name         string
	Role         string // admin, gerente, caixa, estoquista
	Permissions  []string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
