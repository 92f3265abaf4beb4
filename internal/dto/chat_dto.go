package dto

type ChatResponse struct {
	Id        string    `json:"id"`
	CreatedAt Timestamp `json:"createdAt"`
}

type MessageResponse struct {
	Id        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp Timestamp `json:"timestamp"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}
