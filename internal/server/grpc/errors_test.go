package grpc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    codes.Code
		message string
	}{
		{"duplicate", common.ErrDuplicateIdentity, codes.AlreadyExists, "duplicate_identity"},
		{"credentials", common.ErrInvalidCredentials, codes.Unauthenticated, "invalid_credentials"},
		{"unconfirmed", common.ErrUnconfirmedEmail, codes.FailedPrecondition, "unconfirmed_email"},
		{"code", common.ErrInvalidOrExpiredCode, codes.InvalidArgument, "invalid_or_expired_code"},
		{"forbidden", common.ErrForbidden, codes.PermissionDenied, "forbidden"},
		{"store joined", errors.Join(common.ErrStoreUnavailable, errors.New("pq: connection refused")), codes.Unavailable, "store_unavailable"},
		{"dispatch", common.ErrDispatchFailure, codes.Unavailable, "dispatch_failure"},
		{"input detail", fmt.Errorf("%w: email must be a valid email", common.ErrInvalidInput), codes.InvalidArgument, "invalid_input: email must be a valid email"},
		{"rate detail", fmt.Errorf("%w: retry in 1m30s", common.ErrRateLimited), codes.ResourceExhausted, "rate_limited: retry in 1m30s"},
		{"rate bare", common.ErrRateLimited, codes.ResourceExhausted, "rate_limited"},
		{"raw", errors.New("secret backend detail"), codes.Internal, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, _ := status.FromError(toStatus(tt.err))
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.message, st.Message())
		})
	}
}

func TestToStatus_PassesStatusAndNil(t *testing.T) {
	assert.NoError(t, toStatus(nil))
	in := status.Error(codes.Unauthenticated, "invalid_token")
	assert.Equal(t, in, toStatus(in))
}
