package grpc

import (
	"context"

	api "github.com/dmitrijs2005/talentmatch/internal/api/identityv1"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/identity/registration"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	res, err := s.accounts.Register(ctx, registration.Request{
		Email:       req.Email,
		Secret:      req.Secret,
		DisplayName: req.DisplayName,
		AccountKind: identity.AccountKind(req.AccountKind),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.RegisterResponse{
		IdentityID:      res.Identity.ID,
		Email:           res.Identity.Email,
		CodeSent:        res.CodeSent,
		ResendInSeconds: int64(res.ResendIn.Seconds()),
	}, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *api.SignInRequest) (*api.SessionResponse, error) {
	sess, err := s.accounts.SignIn(ctx, req.Email, req.Secret)
	if err != nil {
		return nil, toStatus(err)
	}
	return sessionResponse(sess), nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *api.RefreshRequest) (*api.SessionResponse, error) {
	sess, err := s.accounts.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return sessionResponse(sess), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *api.SignOutRequest) (*api.SignOutResponse, error) {
	if err := s.accounts.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, toStatus(err)
	}
	return &api.SignOutResponse{}, nil
}

func (s *GRPCServer) VerifyCode(ctx context.Context, req *api.VerifyCodeRequest) (*api.VerifyCodeResponse, error) {
	if err := s.accounts.VerifyCode(ctx, req.Email, req.Code); err != nil {
		return nil, toStatus(err)
	}
	return &api.VerifyCodeResponse{}, nil
}

func (s *GRPCServer) ResendCode(ctx context.Context, req *api.ResendCodeRequest) (*api.ResendCodeResponse, error) {
	wait, err := s.accounts.ResendCode(ctx, req.Email)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ResendCodeResponse{ResendInSeconds: int64(wait.Seconds())}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *api.GetProfileRequest) (*api.ProfileResponse, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.accounts.GetProfile(ctx, caller, req.IdentityID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ProfileResponse{Profile: p}, nil
}

func (s *GRPCServer) UpdateLogin(ctx context.Context, req *api.UpdateLoginRequest) (*api.ProfileResponse, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.accounts.UpdateLogin(ctx, caller, req.Patch)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ProfileResponse{Profile: p}, nil
}

func (s *GRPCServer) TestSendEmail(ctx context.Context, req *api.TestSendEmailRequest) (*api.TestSendEmailResponse, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.accounts.TestSendEmail(ctx, caller, req.To)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.TestSendEmailResponse{Success: r.Success, MessageID: r.MessageID, ErrorCode: r.ErrorCode, Hint: r.Hint}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func sessionResponse(sess *identity.Session) *api.SessionResponse {
	return &api.SessionResponse{
		Identity:     sess.Identity,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	}
}
