package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	api "github.com/dmitrijs2005/talentmatch/internal/api/identityv1"
	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      api.IdentityServiceClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onRefresh    RefreshFunc
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	accessToken, refreshToken := s.tokens()

	err := invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)
	if err == nil || method == api.MethodRefresh || refreshToken == "" {
		return err
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.Code(common.ErrTokenExpired) {
		return err
	}

	resp, rerr := s.client.Refresh(ctx, &api.RefreshRequest{RefreshToken: refreshToken})
	if rerr != nil {
		return rerr
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	s.mu.Lock()
	fn := s.onRefresh
	s.mu.Unlock()
	if fn != nil {
		fn(ctx, resp.Session())
	}

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

// NewIdentityClient dials endpointURL. Every call is bounded by timeout
// unless the caller's context expires first.
func NewIdentityClient(endpointURL string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewIdentityServiceClient(conn)
	return nil
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// SetSession loads the tokens of a cached session. Nil clears them.
func (s *GRPCClient) SetSession(sess *identity.Session) {
	if sess == nil {
		s.setTokens("", "")
		return
	}
	s.setTokens(sess.AccessToken, sess.RefreshToken)
}

func (s *GRPCClient) OnRefresh(fn RefreshFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = fn
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, email string, secret []byte, displayName string, kind identity.AccountKind) (*api.RegisterResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Register(ctx, &api.RegisterRequest{
		Email:       email,
		Secret:      secret,
		DisplayName: displayName,
		AccountKind: string(kind),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email string, secret []byte) (*identity.Session, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.SignIn(ctx, &api.SignInRequest{Email: email, Secret: secret})
	if err != nil {
		return nil, mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return resp.Session(), nil
}

// SignOut revokes the refresh token on the server and forgets both tokens.
// The local tokens are dropped even when the call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, refreshToken := s.tokens()
	s.setTokens("", "")
	if refreshToken == "" {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.SignOut(ctx, &api.SignOutRequest{RefreshToken: refreshToken}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *GRPCClient) VerifyCode(ctx context.Context, email, code string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.VerifyCode(ctx, &api.VerifyCodeRequest{Email: email, Code: code}); err != nil {
		return mapError(err)
	}
	return nil
}

// ResendCode asks for a fresh code and returns the cool-down before the next
// one may be requested.
func (s *GRPCClient) ResendCode(ctx context.Context, email string) (time.Duration, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ResendCode(ctx, &api.ResendCodeRequest{Email: email})
	if err != nil {
		return 0, mapError(err)
	}
	return time.Duration(resp.ResendInSeconds) * time.Second, nil
}

func (s *GRPCClient) GetProfile(ctx context.Context, identityID string) (*identity.Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetProfile(ctx, &api.GetProfileRequest{IdentityID: identityID})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Profile, nil
}

func (s *GRPCClient) UpdateLogin(ctx context.Context, patch identity.ProfilePatch) (*identity.Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.UpdateLogin(ctx, &api.UpdateLoginRequest{Patch: patch})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Profile, nil
}

func (s *GRPCClient) TestSendEmail(ctx context.Context, to string) (*api.TestSendEmailResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.TestSendEmail(ctx, &api.TestSendEmailRequest{To: to})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// mapError decodes "code[: detail]" status messages into the shared
// sentinels. Transport failures become ErrUnavailable.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}

	code, detail, _ := strings.Cut(st.Message(), ": ")
	if known := common.FromCode(code); known != nil {
		if detail != "" {
			return fmt.Errorf("%w: %s", known, detail)
		}
		return known
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
