package scheduling

// BookingResponse is the scheduling system's reply to a created booking.
// Only the id is logged; nothing is kept locally.
type BookingResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error   *errorBody `json:"error"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
}
