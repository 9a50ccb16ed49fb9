package tag

type RegisterTagRequest struct {
	TagID      string  `json:"tag_id" binding:"required"`
	EmployeeID *string `json:"employee_id"`
	Status     string  `json:"status"`
}

type AssignTagRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
}

type UpdateTagStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TagResponse struct {
	ID           string  `json:"id"`
	TagID        string  `json:"tag_id"`
	EmployeeID   *string `json:"employee_id,omitempty"`
	Status       string  `json:"status"`
	LastUsedAt   *string `json:"last_used_at,omitempty"`
	LastReaderID *string `json:"last_reader_id,omitempty"`
}

// ResolvedTag is what the reconciliation path consumes: an active binding
// resolved to its employee.
type ResolvedTag struct {
	TagID      string `json:"tag_id"`
	EmployeeID string `json:"employee_id"`
	Status     string `json:"status"`
}
