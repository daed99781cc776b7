package mail

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/identity/verification"
)

const (
	HintInvalidCredential = "mail provider rejected the credential; check the access key"
	HintDomainOrRate      = "sender domain is not verified or the sending rate was exceeded"
	HintUnknown           = "mail provider returned an unexpected error"

	testSubject = "talentmatch test email"
	testBody    = "<p>This is a test message from talentmatch. No action is needed.</p>"
)

// Report is the outcome of a diagnostic send.
type Report struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Hint      string `json:"hint,omitempty"`
}

// Diagnose sends a fixed message to to and classifies the provider's answer.
// Provider failures are reported, not returned.
func Diagnose(ctx context.Context, mailer verification.Mailer, to string) Report {
	d, err := mailer.Send(ctx, identity.Message{To: to, Subject: testSubject, BodyHTML: testBody})
	if err == nil && d.Success {
		return Report{Success: true, MessageID: d.MessageID}
	}

	detail := d.ErrorCode
	if err != nil {
		detail += " " + err.Error()
	}
	return Report{ErrorCode: d.ErrorCode, Hint: Classify(detail)}
}

// Classify maps a provider failure to an operator hint.
func Classify(detail string) string {
	switch {
	case strings.Contains(detail, "401"):
		return HintInvalidCredential
	case strings.Contains(detail, "403"), strings.Contains(detail, "400"):
		return HintDomainOrRate
	default:
		return HintUnknown
	}
}
