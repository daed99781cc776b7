package cli

import (
	"fmt"
	"strings"
)

// getStatus renders the prompt annotation: who is signed in, whether they
// are an admin, connectivity, and the resend countdown.
func (a *App) getStatus() string {
	var parts []string

	if a.manager != nil {
		st := a.manager.Snapshot()
		if st.SignedIn() {
			parts = append(parts, st.Session.Identity.Email)
			if a.manager.IsAdmin() {
				parts = append(parts, "admin")
			}
		}
	}
	if m := a.currentMode(); m != "" {
		parts = append(parts, string(m))
	}
	if left := a.resendRemaining(); left > 0 {
		parts = append(parts, fmt.Sprintf("resend in %s", left))
	}

	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}
