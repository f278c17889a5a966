package dto

type Compatibility struct {
	Score   int      `json:"score"`
	Level   string   `json:"level"`
	Reasons []string `json:"reasons,omitempty"`
}

type FeedCard struct {
	UserID        int64         `json:"user_id"`
	DisplayName   string        `json:"display_name"`
	Age           int           `json:"age"`
	City          string        `json:"city"`
	Bio           string        `json:"bio"`
	Interests     []string      `json:"interests"`
	PhotoURL      string        `json:"photo_url,omitempty"`
	Compatibility Compatibility `json:"compatibility"`
}

type FeedResponse struct {
	Items []FeedCard `json:"items"`
}
