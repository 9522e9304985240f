package security

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"
)

// ReturnPolicy decides where a browser may be sent after a successful login.
// It combines a host allowlist (exact names and "*.example.com" wildcards)
// with the set of query parameters worth preserving on the way through.
// Everything else in a candidate URL is stripped or rejected.
type ReturnPolicy struct {
	exact map[string]struct{}
	wild  map[string]struct{} // wildcard bases, "*." already removed
	query map[string]struct{}
}

// NewReturnPolicy builds a policy from host patterns and allowed query
// parameter names. Hosts may be exact ("portal.example.com") or wildcard
// ("*.example.com"); empty entries are skipped.
func NewReturnPolicy(hosts, queryParams []string) (*ReturnPolicy, error) {
	p := &ReturnPolicy{
		exact: make(map[string]struct{}),
		wild:  make(map[string]struct{}),
		query: make(map[string]struct{}),
	}

	for _, host := range hosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if host == "" {
			continue
		}
		if err := validateHostPattern(host); err != nil {
			return nil, fmt.Errorf("invalid host %q: %w", host, err)
		}
		if base, ok := strings.CutPrefix(host, "*."); ok {
			if base == "" {
				return nil, fmt.Errorf("invalid wildcard host %q: empty base", host)
			}
			p.wild[base] = struct{}{}
		} else {
			p.exact[host] = struct{}{}
		}
	}

	for _, key := range queryParams {
		p.query[key] = struct{}{}
	}

	return p, nil
}

// HostAllowed reports whether a hostname matches the allowlist. IP literals
// never match; redirect targets are named hosts only.
func (p *ReturnPolicy) HostAllowed(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")

	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return false
	}

	if _, ok := p.exact[host]; ok {
		return true
	}
	for base := range p.wild {
		if host == base || strings.HasSuffix(host, "."+base) {
			return true
		}
	}
	return false
}

// SanitizeReturnURL validates a candidate post-login destination and returns
// the normalized form. Only absolute HTTPS URLs on the default port with an
// allowlisted host survive; the fragment is dropped and the query string is
// reduced to the allowed parameters in sorted order.
func (p *ReturnPolicy) SanitizeReturnURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "https" {
		return "", fmt.Errorf("URL must use HTTPS scheme, got %q", u.Scheme)
	}

	// Hostname/Port handle IPv6 brackets correctly.
	hostname := strings.ToLower(strings.TrimSpace(u.Hostname()))
	if port := u.Port(); port != "" && port != "443" {
		return "", fmt.Errorf("URL must use default HTTPS port (443), got port %q", port)
	}
	hostname = strings.TrimRight(hostname, ".")

	if !p.HostAllowed(hostname) {
		return "", fmt.Errorf("host %q is not allowed", hostname)
	}

	u.User = nil
	u.Host = hostname
	if u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""

	if u.RawQuery != "" {
		values, err := url.ParseQuery(u.RawQuery)
		if err != nil {
			return "", fmt.Errorf("invalid query string: %w", err)
		}

		var allowedKeys []string
		for key := range values {
			if _, allowed := p.query[key]; allowed {
				allowedKeys = append(allowedKeys, key)
			}
		}
		sort.Strings(allowedKeys)

		filtered := url.Values{}
		for _, key := range allowedKeys {
			filtered[key] = values[key]
		}
		u.RawQuery = filtered.Encode()
	}

	return u.String(), nil
}

// validateHostPattern rejects patterns that smuggle in a scheme, port, or
// whitespace.
func validateHostPattern(host string) error {
	if strings.Contains(host, "://") {
		return fmt.Errorf("must not contain scheme")
	}
	if strings.ContainsAny(host, " \t\n") {
		return fmt.Errorf("must not contain whitespace")
	}
	cleaned := strings.TrimPrefix(host, "*.")
	if strings.Contains(cleaned, ":") {
		return fmt.Errorf("must not contain port")
	}
	return nil
}
