package dto

type ConversationResponse struct {
	ID          string  `json:"id"`
	UserInput   string  `json:"user_input"`
	BotResponse string  `json:"bot_response"`
	Timestamp   string  `json:"timestamp"`
	Feedback    *string `json:"feedback,omitempty"`
}

type FeedbackRequest struct {
	Feedback *string `json:"feedback"`
}
