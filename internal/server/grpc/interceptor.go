package grpc

import (
	"context"
	"errors"
	"time"

	api "github.com/dmitrijs2005/talentmatch/internal/api/identityv1"
	"github.com/dmitrijs2005/talentmatch/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const IdentityIDKey ctxKey = "identityID"

// publicMethods need no access token. Verification runs before the first
// sign-in, so its methods are public and keyed by email.
var publicMethods = map[string]bool{
	api.MethodRegister:   true,
	api.MethodSignIn:     true,
	api.MethodRefresh:    true,
	api.MethodPing:       true,
	api.MethodVerifyCode: true,
	api.MethodResendCode: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, common.Code(common.ErrInvalidToken))
	}

	identityID, err := s.auth.Authenticate(accessToken)
	if err != nil {
		if !errors.Is(err, common.ErrTokenExpired) {
			err = common.ErrInvalidToken
		}
		return nil, toStatus(err)
	}

	return handler(context.WithValue(ctx, IdentityIDKey, identityID), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	switch code {
	case codes.OK:
		s.logger.Debug(ctx, "rpc", args...)
	case codes.Internal, codes.Unavailable:
		s.logger.Error(ctx, "rpc", append(args, "error", err)...)
	default:
		s.logger.Info(ctx, "rpc", args...)
	}
	return resp, err
}

func callerID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(IdentityIDKey).(string)
	if !ok || id == "" {
		return "", status.Error(codes.Unauthenticated, common.Code(common.ErrInvalidToken))
	}
	return id, nil
}
