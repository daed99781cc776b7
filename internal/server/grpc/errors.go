package grpc

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var statusCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrDuplicateIdentity, codes.AlreadyExists},
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrRefreshTokenExpired, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrUnconfirmedEmail, codes.FailedPrecondition},
	{common.ErrAlreadyConfirmed, codes.FailedPrecondition},
	{common.ErrRateLimited, codes.ResourceExhausted},
	{common.ErrInvalidOrExpiredCode, codes.InvalidArgument},
	{common.ErrInvalidInput, codes.InvalidArgument},
	{common.ErrForbidden, codes.PermissionDenied},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrStoreUnavailable, codes.Unavailable},
	{common.ErrProvisioningInconsistency, codes.Unavailable},
	{common.ErrDispatchFailure, codes.Unavailable},
}

// toStatus maps err to a gRPC status whose message is the stable wire code,
// optionally followed by ": " and a user-safe detail for input and rate
// limit errors. Raw backend errors never reach the wire.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	for _, m := range statusCodes {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := common.Code(m.err)
		if m.err == common.ErrInvalidInput || m.err == common.ErrRateLimited {
			if detail, ok := strings.CutPrefix(err.Error(), m.err.Error()+": "); ok {
				msg += ": " + detail
			}
		}
		return status.Error(m.code, msg)
	}
	return status.Error(codes.Internal, common.Code(common.ErrorInternal))
}
