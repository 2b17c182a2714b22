// Package chat contiene DTOs de /chat.
package chat

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []Message `json:"messages"`
}

type ChatResponse struct {
	Message Message `json:"message"`
}
