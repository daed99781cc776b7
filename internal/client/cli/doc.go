// Package cli provides the interactive talentmatch command-line client.
//
// It wires configuration, the local session cache, the identity service
// client and a session.Manager, then runs a REPL. The Manager is
// bootstrapped from the cache on start and torn down on exit, so a signed-in
// user stays signed in across restarts until they log out or the refresh
// token expires.
//
// Commands: register, login, verify, resend, whoami, admin, testmail,
// logout, exit. After a code is sent the prompt shows how long until another
// one may be requested.
package cli
