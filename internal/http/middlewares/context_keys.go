package middlewares

const (
	CtxRequestID = "request_id"
	CtxBookingID = "booking_id"
)
