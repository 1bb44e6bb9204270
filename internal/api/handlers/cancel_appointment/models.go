package cancel_appointment

// CancelAppointmentRequest HTTP request model (тело опционально)
type CancelAppointmentRequest struct {
	Reason *string `json:"reason,omitempty"`
}
