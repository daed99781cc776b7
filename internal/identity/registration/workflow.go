// Package registration creates new identities: it validates the request,
// guards against duplicate emails, delegates to the credential store and
// schedules a check that the profile row was provisioned.
//
// The workflow never sends a verification code; callers do that after a
// successful Register.
package registration

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
	"github.com/go-playground/validator/v10"
)

// Credentials is the credential store's sign-up side.
type Credentials interface {
	SignUp(ctx context.Context, email string, secret []byte, meta identity.Metadata) (*identity.Identity, error)
}

// Profiles is the read side of the profile record store.
type Profiles interface {
	FindByEmail(ctx context.Context, email string) (*identity.Profile, error)
	Get(ctx context.Context, identityID string) (*identity.Profile, error)
}

// Request is a sign-up attempt. Secret is wiped by Register once the
// credential store has consumed it.
type Request struct {
	Email       string               `json:"email" validate:"required,email,max=254"`
	Secret      []byte               `json:"secret" validate:"required,min=8,max=72"`
	DisplayName string               `json:"display_name" validate:"required,max=100"`
	AccountKind identity.AccountKind `json:"account_kind" validate:"required,oneof=student company"`
}

type Workflow struct {
	credentials Credentials
	profiles    Profiles
	reconciler  *Reconciler
	validate    *validator.Validate
	logger      logging.Logger
}

// New builds a Workflow. reconciler may be nil, in which case no
// provisioning check is scheduled.
func New(credentials Credentials, profiles Profiles, reconciler *Reconciler, logger logging.Logger) *Workflow {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Workflow{
		credentials: credentials,
		profiles:    profiles,
		reconciler:  reconciler,
		validate:    v,
		logger:      logger.With("module", "registration"),
	}
}

// Register creates the identity described by req.
//
// An existing profile with the same email fails fast with
// common.ErrDuplicateIdentity before the credential store is touched. That
// check races with concurrent sign-ups; the store's unique constraint has
// the final word and is reported the same way.
func (w *Workflow) Register(ctx context.Context, req Request) (*identity.Identity, error) {
	defer common.WipeByteArray(req.Secret)

	req.Email = identity.NormalizeEmail(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	if err := w.check(req); err != nil {
		return nil, err
	}

	existing, err := w.profiles.FindByEmail(ctx, req.Email)
	switch {
	case err == nil && existing != nil:
		w.logger.Info(ctx, "duplicate registration rejected", "email", req.Email)
		return nil, common.ErrDuplicateIdentity
	case err == nil, errors.Is(err, common.ErrorNotFound):
	default:
		w.logger.Error(ctx, "duplicate pre-check failed", "email", req.Email, "error", err)
		return nil, common.Normalize(err, common.ErrStoreUnavailable)
	}

	meta := identity.Metadata{DisplayName: req.DisplayName, AccountKind: req.AccountKind}
	created, err := w.credentials.SignUp(ctx, req.Email, req.Secret, meta)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			err = common.ErrDuplicateIdentity
		}
		err = common.Normalize(err, common.ErrStoreUnavailable)
		w.logger.Warn(ctx, "sign-up failed", "email", req.Email, "error", err)
		return nil, err
	}

	w.logger.Info(ctx, "identity created", "identity_id", created.ID, "account_kind", req.AccountKind)

	if w.reconciler != nil {
		w.reconciler.Enqueue(created.ID)
	}
	return created, nil
}

func (w *Workflow) check(req Request) error {
	err := w.validate.Struct(req)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
