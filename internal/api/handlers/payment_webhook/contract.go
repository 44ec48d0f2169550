package payment_webhook

import "context"

type BookingService interface {
	MarkPaymentSucceeded(ctx context.Context, bookingID int64) error
	MarkPaymentFailed(ctx context.Context, bookingID int64) error
	Confirm(ctx context.Context, bookingID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
