package domain

import "errors"

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound           = errors.New("recurso não encontrado")
	ErrUserNotFound       = errors.New("usuário não encontrado")
	ErrEmailAlreadyExists = errors.New("o email já está cadastrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("não autorizado")
	ErrForbidden          = errors.New("acesso negado")
)

// Erros do motor de razão (estoque e caixa).
var (
	// ErrVersionConflict indica que a versão da conta mudou entre a leitura
	// e a gravação (CAS perdido). Transitório: o motor tenta de novo.
	ErrVersionConflict = errors.New("versão da conta desatualizada")
	// ErrConflict é devolvido ao chamador quando o limite de tentativas
	// do loop otimista se esgota. O chamador pode reenviar a operação.
	ErrConflict = errors.New("conflito de concorrência, tente novamente")

	ErrInvalidMovementKind = errors.New("tipo de movimento inválido")
	ErrInsufficientStock   = errors.New("estoque insuficiente")
)

// Erros do ciclo de vida da sessão de caixa.
var (
	ErrSessionAlreadyOpen    = errors.New("o operador já possui uma sessão de caixa aberta")
	ErrSessionClosed         = errors.New("a sessão de caixa está fechada")
	ErrSangriaExceedsBalance = errors.New("sangria maior que o saldo registrado em caixa")
)
