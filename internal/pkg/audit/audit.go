// Package audit emits the security event stream: one structured record per
// terminal authentication outcome and per admin account action. Records
// never carry passwords or password hashes.
package audit

import "go.uber.org/zap"

// Outcome values recorded with each event
const (
	OutcomeSuccess            = "success"
	OutcomeValidationFailed   = "validation_failed"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeDeactivated        = "account_deactivated"
	OutcomeLocked             = "account_locked"
	OutcomeLockedNow          = "account_locked_now"
	OutcomeTokenExpired       = "token_expired"
	OutcomeTokenInvalid       = "token_invalid"
	OutcomeServerError        = "server_error"
)

// Logger writes audit events through a named zap logger
type Logger struct {
	log *zap.Logger
}

// NewLogger wraps the application logger for audit output
func NewLogger(base *zap.Logger) *Logger {
	return &Logger{log: base.Named("audit")}
}

// Nop returns a logger that discards everything. Tests use it.
func Nop() *Logger {
	return &Logger{log: zap.NewNop()}
}

// Login records the terminal outcome of a login attempt
func (l *Logger) Login(email, outcome, sourceIP string) {
	l.log.Info("login",
		zap.String("email", email),
		zap.String("outcome", outcome),
		zap.String("source_ip", sourceIP),
	)
}

// Token records refresh, logout and verify outcomes. Subject is the account
// ID from the token, or empty when none could be read.
func (l *Logger) Token(action, subject, outcome, sourceIP string) {
	l.log.Info(action,
		zap.String("subject", subject),
		zap.String("outcome", outcome),
		zap.String("source_ip", sourceIP),
	)
}

// PasswordChange records a password change attempt for an account
func (l *Logger) PasswordChange(subject, outcome, sourceIP string) {
	l.log.Info("password_change",
		zap.String("subject", subject),
		zap.String("outcome", outcome),
		zap.String("source_ip", sourceIP),
	)
}

// Admin records an administrative account action
func (l *Logger) Admin(actor, action, target, sourceIP string) {
	l.log.Info("admin_action",
		zap.String("actor", actor),
		zap.String("action", action),
		zap.String("target", target),
		zap.String("source_ip", sourceIP),
	)
}

// RateLimited records a request rejected by one of the strict limiter tiers
func (l *Logger) RateLimited(scope, identity, sourceIP string) {
	l.log.Info("rate_limited",
		zap.String("scope", scope),
		zap.String("identity", identity),
		zap.String("source_ip", sourceIP),
	)
}
