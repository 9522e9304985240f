package config

import (
	"fmt"
)

// Redacted returns a map suitable for logging/json with secrets replaced by "***"
func (c Config) Redacted() map[string]any {
	redacted := make(map[string]any)

	// Non-sensitive fields
	redacted["env"] = c.Env
	redacted["port"] = c.Port
	redacted["ticket_max_age"] = c.TicketMaxAge.String()
	redacted["ticket_skew"] = c.TicketSkew.String()
	redacted["cookie_name"] = c.CookieName
	redacted["cookie_domain"] = c.CookieDomain
	redacted["users_file"] = c.UsersFile
	redacted["return_hosts"] = c.ReturnHosts
	redacted["return_params"] = c.ReturnParams
	redacted["login_rate"] = c.LoginRate
	redacted["login_burst"] = c.LoginBurst
	redacted["log_level"] = c.LogLevel
	redacted["enable_hsts"] = c.EnableHSTS

	// Redact sensitive fields
	if len(c.SigningKey) > 0 {
		redacted["signing_key"] = fmt.Sprintf("*** (%d bytes)", len(c.SigningKey))
	}

	return redacted
}
