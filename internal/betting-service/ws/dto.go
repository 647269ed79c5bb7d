package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// SessionID: obrigatório para subscribe/unsubscribe ("*" = feed global de seleções)
type ClientMsg struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// GlobalFeed é o id de assinatura que recebe todas as seleções, de qualquer instância
const GlobalFeed = "*"
