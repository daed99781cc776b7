package grpc

import (
	"context"
	"net"
	"time"

	api "github.com/dmitrijs2005/talentmatch/internal/api/identityv1"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/identity/registration"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
	"github.com/dmitrijs2005/talentmatch/internal/server/mail"
	"github.com/dmitrijs2005/talentmatch/internal/server/services"
	"google.golang.org/grpc"
)

// Accounts is the account service the handlers delegate to.
type Accounts interface {
	Register(ctx context.Context, req registration.Request) (*services.RegisterResult, error)
	SignIn(ctx context.Context, email string, secret []byte) (*identity.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	VerifyCode(ctx context.Context, email, code string) error
	ResendCode(ctx context.Context, email string) (time.Duration, error)
	GetProfile(ctx context.Context, callerID, identityID string) (*identity.Profile, error)
	UpdateLogin(ctx context.Context, callerID string, patch identity.ProfilePatch) (*identity.Profile, error)
	TestSendEmail(ctx context.Context, callerID, to string) (*mail.Report, error)
}

// Authenticator resolves an access token to an identity id.
type Authenticator interface {
	Authenticate(accessToken string) (string, error)
}

type GRPCServer struct {
	api.UnimplementedIdentityServiceServer
	address  string
	accounts Accounts
	auth     Authenticator
	logger   logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, accounts Accounts, auth Authenticator) *GRPCServer {
	return &GRPCServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		accounts: accounts,
		auth:     auth,
	}
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	api.RegisterIdentityServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
