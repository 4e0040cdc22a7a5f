package entity

import "fmt"

// RequestError is a typed domain error surfaced to API clients.
// Code ranges: 1xxxx common, 3xxxx booking flow, 4xxxx redeem flow.
type RequestError struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

func NewRequestError(message string, code, statusCode int) *RequestError {
	return &RequestError{Code: code, Message: message, StatusCode: statusCode}
}

var (
	// Common errors
	ErrDatabaseError      = NewRequestError("database error", 10001, 500)
	ErrInvalidRequestBody = NewRequestError("invalid request body", 10002, 400)
	ErrInvalidQueryParam  = NewRequestError("invalid query parameter", 10003, 400)
	ErrNoTokenFound       = NewRequestError("no token found", 10004, 401)
	ErrUnauthorized       = NewRequestError("unauthorized", 10005, 401)
	ErrTooManyRequests    = NewRequestError("too many requests", 10006, 429)
	ErrInternalServer     = NewRequestError("internal server error", 10008, 500)
	ErrAdminOnly          = NewRequestError("only admin is allowed to access this route", 10009, 403)
	ErrUserNotFound       = NewRequestError("user not found", 20007, 404)

	// Booking errors
	ErrDoctorNotFound      = NewRequestError("doctor not found", 30001, 404)
	ErrServiceNotFound     = NewRequestError("service not found", 30002, 404)
	ErrBranchNotFound      = NewRequestError("branch not found", 30003, 404)
	ErrTimeSlotNotFound    = NewRequestError("time slot not found", 30004, 404)
	ErrDoctorNotAssigned   = NewRequestError("doctor is not assigned to this branch on that day", 30005, 400)
	ErrServiceNotOffered   = NewRequestError("service is not offered at this branch", 30006, 400)
	ErrSlotAlreadyBooked   = NewRequestError("time slot is already booked", 30007, 400)
	ErrServiceSlotFull     = NewRequestError("time slot has reached its booking limit", 30008, 400)
	ErrBookingNotFound     = NewRequestError("booking not found", 30009, 404)
	ErrInvalidBookingState = NewRequestError("booking is not in a schedulable state", 30010, 400)
	ErrInvalidBookingDate  = NewRequestError("invalid booking date", 30011, 400)

	// Redeem errors
	ErrInsufficientQPoints  = NewRequestError("insufficient qpoints", 40001, 400)
	ErrServiceNotRedeemable = NewRequestError("service cannot be redeemed", 40002, 400)
)
