package dto

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	WriteSlotsUsed int64  `json:"write_slots_used"`
	WriteSlots     int64  `json:"write_slots"`
}
