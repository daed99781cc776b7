package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/talentmatch/internal/common"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/identity/access"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// describe is the one line shown to the user for err. Input and rate limit
// errors keep their detail.
func describe(err error) string {
	msg := common.UserMessage(err)
	for _, s := range []error{common.ErrInvalidInput, common.ErrRateLimited} {
		if !errors.Is(err, s) {
			continue
		}
		if _, detail, ok := strings.Cut(err.Error(), s.Error()+": "); ok && detail != "" {
			return msg + " (" + detail + ")"
		}
	}
	return msg
}

func (a *App) report(err error) {
	printlnFn(describe(err))
}

// askEmail prompts for an address, offering the pending one as default.
func (a *App) askEmail() (string, error) {
	prompt := "Enter email"
	p := a.pending()
	if p != "" {
		prompt = fmt.Sprintf("Enter email [%s]", p)
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if email == "" {
		email = p
	}
	return identity.NormalizeEmail(email), nil
}

// Register prompts for the sign-up form and creates the account. The server
// sends the first verification code.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	name, err := getSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}
	kind, err := getSimpleText(a.reader, "Account kind (student|company)", a.out)
	if err != nil {
		return err
	}

	resp, err := a.auth.Register(ctx, email, password, name, identity.AccountKind(strings.ToLower(kind)))
	if err != nil {
		a.report(err)
		return err
	}

	a.setPending(resp.Email)
	if !resp.CodeSent {
		printlnFn("Account created, but the verification email could not be sent. Type 'resend' to try again.")
		return nil
	}

	printlnFn("Account created. A verification code was sent to", resp.Email)
	printlnFn("Type 'verify' to confirm your email.")
	if resp.ResendInSeconds > 0 {
		a.startCountdown(ctx, secondsToDuration(resp.ResendInSeconds))
	}
	return nil
}

// Login authenticates and lets the session Manager record the sign-in. An
// unconfirmed address becomes the pending one for verify and resend.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.auth.SignIn(ctx, email, password); err != nil {
		a.report(err)
		if errors.Is(err, common.ErrUnconfirmedEmail) {
			a.setPending(identity.NormalizeEmail(email))
			printlnFn("Type 'verify' to enter your code or 'resend' to get a new one.")
		}
		return err
	}

	name := identity.NormalizeEmail(email)
	if p := a.manager.Profile(); p != nil && p.DisplayName != "" {
		name = p.DisplayName
	}
	printlnFn("Welcome,", name)
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, fmt.Sprintf("Enter the %d-digit code", common.CodeLength), a.out)
	if err != nil {
		return err
	}

	if err := a.auth.VerifyCode(ctx, email, code); err != nil {
		a.report(err)
		if errors.Is(err, common.ErrAlreadyConfirmed) {
			a.setPending("")
			a.clearCountdown()
		}
		return err
	}

	a.setPending("")
	a.clearCountdown()
	printlnFn("Email confirmed. You can now log in.")
	return nil
}

// Resend requests a new code. While the local countdown runs the request is
// refused without a round trip.
func (a *App) Resend(ctx context.Context) error {
	if left := a.resendRemaining(); left > 0 {
		printlnFn(fmt.Sprintf("Please wait %s before requesting another code.", left))
		return common.ErrRateLimited
	}

	email, err := a.askEmail()
	if err != nil {
		return err
	}

	d, err := a.auth.ResendCode(ctx, email)
	if err != nil {
		a.report(err)
		return err
	}

	a.setPending(email)
	printlnFn("A new code was sent to", email)
	if d > 0 {
		a.startCountdown(ctx, d)
	}
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in.")
		return nil
	}

	st := a.manager.Snapshot()
	printlnFn("Email:", st.Session.Identity.Email)
	if st.Profile == nil {
		printlnFn(common.UserMessage(common.ErrProvisioningInconsistency))
		return nil
	}

	p := st.Profile
	printlnFn("Name:", p.DisplayName)
	printlnFn("Account:", string(p.AccountKind))
	printlnFn("Role:", string(p.Role))
	printlnFn("Logins:", p.LoginCount)
	if p.LastLoginAt != nil {
		printlnFn("Last login:", p.LastLoginAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// Admin shows the admin tools when the access gate allows it.
func (a *App) Admin(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	printlnFn("Admin tools: testmail <address>")
	return nil
}

// TestMail asks the server to send a diagnostic email and prints its report.
func (a *App) TestMail(ctx context.Context, args []string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	var to string
	if len(args) > 0 {
		to = args[0]
	} else {
		var err error
		if to, err = getSimpleText(a.reader, "Send test email to", a.out); err != nil {
			return err
		}
	}

	r, err := a.auth.TestSendEmail(ctx, to)
	if err != nil {
		a.report(err)
		return err
	}

	if r.Success {
		printlnFn("Test email sent, message id:", r.MessageID)
		return nil
	}
	printlnFn("Test email failed:", r.ErrorCode)
	if r.Hint != "" {
		printlnFn("Hint:", r.Hint)
	}
	return nil
}

func (a *App) requireAdmin() error {
	var p *identity.Profile
	if a.manager != nil {
		p = a.manager.Profile()
	}
	if err := access.RequireAdmin(p); err != nil {
		a.report(err)
		return err
	}
	return nil
}

// Logout signs out through the session Manager. Local state is cleared even
// when the server could not be told.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in.")
		return nil
	}

	err := a.manager.SignOut(ctx)
	if err != nil {
		a.report(err)
	}
	printlnFn("Logged out.")
	return err
}
