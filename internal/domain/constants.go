package domain

// Business validation constants
const (
	MaxCustomerNameLength       = 255
	MaxPhoneLength              = 32
	MaxRemarksLength            = 1000
	MaxCancellationReasonLength = 500
	MaxServicesPerAppointment   = 50
	MaxProductQuantity          = 100
)

// ActiveStatuses статусы, участвующие в поиске пересечений
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}
