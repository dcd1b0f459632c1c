package entity

// Actor é a identidade já autenticada que executa uma operação.
// Vem do colaborador de autorização (JWT no transporte); o núcleo nunca
// autentica por conta própria, só registra quem fez o quê.
type Actor struct {
	ID   string
	Name string
	Role string
}
