package identityv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "talentmatch.identity.v1.IdentityService"

const (
	MethodRegister      = "/" + ServiceName + "/Register"
	MethodSignIn        = "/" + ServiceName + "/SignIn"
	MethodRefresh       = "/" + ServiceName + "/Refresh"
	MethodSignOut       = "/" + ServiceName + "/SignOut"
	MethodVerifyCode    = "/" + ServiceName + "/VerifyCode"
	MethodResendCode    = "/" + ServiceName + "/ResendCode"
	MethodGetProfile    = "/" + ServiceName + "/GetProfile"
	MethodUpdateLogin   = "/" + ServiceName + "/UpdateLogin"
	MethodTestSendEmail = "/" + ServiceName + "/TestSendEmail"
	MethodPing          = "/" + ServiceName + "/Ping"
)

type IdentityServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	SignIn(context.Context, *SignInRequest) (*SessionResponse, error)
	Refresh(context.Context, *RefreshRequest) (*SessionResponse, error)
	SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error)
	VerifyCode(context.Context, *VerifyCodeRequest) (*VerifyCodeResponse, error)
	ResendCode(context.Context, *ResendCodeRequest) (*ResendCodeResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*ProfileResponse, error)
	UpdateLogin(context.Context, *UpdateLoginRequest) (*ProfileResponse, error)
	TestSendEmail(context.Context, *TestSendEmailRequest) (*TestSendEmailResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// UnimplementedIdentityServiceServer answers every method with
// codes.Unimplemented. Embed it to stay forward compatible.
type UnimplementedIdentityServiceServer struct{}

func (UnimplementedIdentityServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedIdentityServiceServer) SignIn(context.Context, *SignInRequest) (*SessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
}
func (UnimplementedIdentityServiceServer) Refresh(context.Context, *RefreshRequest) (*SessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Refresh not implemented")
}
func (UnimplementedIdentityServiceServer) SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
}
func (UnimplementedIdentityServiceServer) VerifyCode(context.Context, *VerifyCodeRequest) (*VerifyCodeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method VerifyCode not implemented")
}
func (UnimplementedIdentityServiceServer) ResendCode(context.Context, *ResendCodeRequest) (*ResendCodeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ResendCode not implemented")
}
func (UnimplementedIdentityServiceServer) GetProfile(context.Context, *GetProfileRequest) (*ProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}
func (UnimplementedIdentityServiceServer) UpdateLogin(context.Context, *UpdateLoginRequest) (*ProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateLogin not implemented")
}
func (UnimplementedIdentityServiceServer) TestSendEmail(context.Context, *TestSendEmailRequest) (*TestSendEmailResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method TestSendEmail not implemented")
}
func (UnimplementedIdentityServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func RegisterIdentityServiceServer(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed method to grpc.MethodHandler, running the server's
// interceptor chain when one is installed.
func unary[Req, Resp any](fullMethod string, call func(IdentityServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(IdentityServiceServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(MethodRegister, IdentityServiceServer.Register)},
		{MethodName: "SignIn", Handler: unary(MethodSignIn, IdentityServiceServer.SignIn)},
		{MethodName: "Refresh", Handler: unary(MethodRefresh, IdentityServiceServer.Refresh)},
		{MethodName: "SignOut", Handler: unary(MethodSignOut, IdentityServiceServer.SignOut)},
		{MethodName: "VerifyCode", Handler: unary(MethodVerifyCode, IdentityServiceServer.VerifyCode)},
		{MethodName: "ResendCode", Handler: unary(MethodResendCode, IdentityServiceServer.ResendCode)},
		{MethodName: "GetProfile", Handler: unary(MethodGetProfile, IdentityServiceServer.GetProfile)},
		{MethodName: "UpdateLogin", Handler: unary(MethodUpdateLogin, IdentityServiceServer.UpdateLogin)},
		{MethodName: "TestSendEmail", Handler: unary(MethodTestSendEmail, IdentityServiceServer.TestSendEmail)},
		{MethodName: "Ping", Handler: unary(MethodPing, IdentityServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "talentmatch/identity/v1",
}
