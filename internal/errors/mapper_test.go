package errors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	svcErr "github.com/oggyb/muzz-discovery/internal/errors"
	"github.com/oggyb/muzz-discovery/internal/utils/pagination"
	"github.com/oggyb/muzz-discovery/internal/validation"
)

func TestMap(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"not found", gorm.ErrRecordNotFound, codes.NotFound},
		{"wrapped profile missing", fmt.Errorf("build: %w", svcErr.ErrProfileMissing), codes.FailedPrecondition},
		{"rate limit", &svcErr.RateLimitError{Kind: "like", Limit: 100, Count: 100}, codes.ResourceExhausted},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"canceled", context.Canceled, codes.Canceled},
		{"validation", fmt.Errorf("save: %w", &validation.Error{Fields: []validation.FieldError{{Field: "name", Message: "name is required"}}}), codes.InvalidArgument},
		{"bad token", pagination.ErrInvalidToken, codes.InvalidArgument},
		{"self interaction", svcErr.ErrSelfInteraction, codes.InvalidArgument},
		{"other", errors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, status.Code(svcErr.Map(tc.err)))
		})
	}
	assert.NoError(t, svcErr.Map(nil))
}

func TestMap_PassesThroughStatus(t *testing.T) {
	in := svcErr.InvalidArgument("bad")
	assert.Equal(t, in, svcErr.Map(in))
}

func TestRateLimitError_Is(t *testing.T) {
	err := fmt.Errorf("like: %w", &svcErr.RateLimitError{Kind: "like", Limit: 100, Count: 101})
	assert.ErrorIs(t, err, svcErr.ErrRateLimitExceeded)
	assert.Contains(t, err.Error(), "like 101/100")
}
