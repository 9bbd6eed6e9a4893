// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-discovery/internal/utils/pagination"
	"github.com/oggyb/muzz-discovery/internal/validation"
)

// Map converts domain/repo/infra errors into gRPC-friendly status errors.
// Errors that already carry a status pass through untouched.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		rl *RateLimitError
		ve *validation.Error
	)
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())

	case errors.Is(err, pagination.ErrInvalidToken), errors.Is(err, ErrSelfInteraction):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.As(err, &rl):
		return status.Error(codes.ResourceExhausted, rl.Error())

	case errors.Is(err, ErrRateLimitExceeded):
		return status.Error(codes.ResourceExhausted, err.Error())

	case errors.Is(err, ErrProfileMissing):
		return status.Error(codes.FailedPrecondition, ErrProfileMissing.Error())

	case errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}
