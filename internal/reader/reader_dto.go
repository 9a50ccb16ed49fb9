package reader

type RegisterReaderRequest struct {
	ReaderID string  `json:"reader_id" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Location *string `json:"location"`
}

type ReaderResponse struct {
	ID         string  `json:"id"`
	ReaderID   string  `json:"reader_id"`
	Name       string  `json:"name"`
	Location   *string `json:"location,omitempty"`
	LastSeenAt *string `json:"last_seen_at,omitempty"`
	// APIKey is only populated in the registration response.
	APIKey string `json:"api_key,omitempty"`
}
