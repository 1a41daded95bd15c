// Package directory implements credential verification against an LDAP
// directory server using the service bind, search, re-bind sequence.
package directory

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/go-ldapgate/ldapgate/internal/config"
	"github.com/go-ldapgate/ldapgate/internal/core"
)

const usernamePlaceholder = "{{username}}"

// Conn is the subset of ldap.Client a Session needs. Tests substitute a
// fake implementation.
type Conn interface {
	Bind(username, password string) error
	UnauthenticatedBind(username string) error
	Search(searchRequest *ldap.SearchRequest) (*ldap.SearchResult, error)
	StartTLS(config *tls.Config) error
	SetTimeout(timeout time.Duration)
	Close() error
}

// Ensure the real client satisfies Conn at compile time.
var _ Conn = (*ldap.Conn)(nil)

// DialFunc opens a connection to the directory server.
type DialFunc func(ctx context.Context) (Conn, error)

// Session authenticates credentials against an LDAP directory. A Session is
// safe for concurrent use; every Authenticate call opens its own connection
// and closes it before returning.
type Session struct {
	cfg       *config.Config
	tlsConfig *tls.Config
	metrics   core.Recorder

	// dial is replaced in tests to avoid a real directory server.
	dial DialFunc
}

var _ core.DirectorySession = (*Session)(nil)

// NewSession validates the directory settings and returns a ready Session.
func NewSession(cfg *config.Config, m core.Recorder) (*Session, error) {
	if err := cfg.ValidateLDAP(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	tlsConfig, err := buildTLSConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	s := &Session{cfg: cfg, tlsConfig: tlsConfig, metrics: m}
	s.dial = s.dialDirectory
	return s, nil
}

// Name identifies this backend in logs and audit records.
func (s *Session) Name() string {
	return "ldap"
}

// Authenticate verifies the submitted credentials. It binds with the
// configured service account (or anonymously), searches for exactly one
// entry matching the username, then re-binds as that entry with the
// submitted password. The matched entry is returned on success.
func (s *Session) Authenticate(
	ctx context.Context,
	username, password string,
) (*core.Entry, error) {
	// An empty password would turn the final bind into an unauthenticated
	// bind, which many directory servers accept. Reject it up front.
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.LDAPTimeout)
	defer cancel()

	dialStart := time.Now()
	conn, err := s.dial(ctx)
	s.metrics.RecordDirectoryConnect(err == nil, time.Since(dialStart))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetTimeout(time.Until(deadline))
	}

	if err := s.bindService(conn); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	entry, err := s.searchUser(conn, username)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	// Re-bind as the matched entry. A rejection here is the dominant
	// wrong-password case and must stay distinguishable from transport
	// failures.
	if err := conn.Bind(entry.DN, password); err != nil {
		s.metrics.RecordDirectoryBind("user", false)
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, fmt.Errorf("%w: bind as %q rejected", ErrInvalidCredentials, entry.DN)
		}
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	s.metrics.RecordDirectoryBind("user", true)

	return entryFromLDAP(entry), nil
}

// bindService performs the search-phase bind. Without a configured bind DN
// the search runs over an anonymous bind.
func (s *Session) bindService(conn Conn) error {
	if s.cfg.LDAPBindDN == "" {
		if err := conn.UnauthenticatedBind(""); err != nil {
			s.metrics.RecordDirectoryBind("service", false)
			return fmt.Errorf("%w: anonymous bind failed: %v", ErrConnection, err)
		}
		s.metrics.RecordDirectoryBind("service", true)
		return nil
	}

	if err := conn.Bind(s.cfg.LDAPBindDN, s.cfg.LDAPBindCredentials); err != nil {
		s.metrics.RecordDirectoryBind("service", false)
		// A rejected service bind means the deployment's bind
		// credentials are wrong, not the user's.
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return fmt.Errorf("%w: service bind as %q rejected", ErrConfiguration, s.cfg.LDAPBindDN)
		}
		return fmt.Errorf("%w: service bind failed: %v", ErrConnection, err)
	}
	s.metrics.RecordDirectoryBind("service", true)
	return nil
}

// searchUser resolves the username to exactly one directory entry.
func (s *Session) searchUser(conn Conn, username string) (*ldap.Entry, error) {
	request := ldap.NewSearchRequest(
		s.cfg.LDAPSearchBase,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, 0, false,
		renderFilter(s.cfg.LDAPSearchFilter, username),
		s.cfg.LDAPSearchAttributes,
		nil,
	)

	searchStart := time.Now()
	result, err := conn.Search(request)
	if err != nil {
		s.metrics.RecordDirectorySearch("error", time.Since(searchStart))
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}

	switch len(result.Entries) {
	case 1:
		s.metrics.RecordDirectorySearch("found", time.Since(searchStart))
		return result.Entries[0], nil
	case 0:
		s.metrics.RecordDirectorySearch("not_found", time.Since(searchStart))
		return nil, fmt.Errorf("%w: no entry matched username %q", ErrSearch, username)
	default:
		s.metrics.RecordDirectorySearch("ambiguous", time.Since(searchStart))
		return nil, fmt.Errorf(
			"%w: %d entries matched username %q, expected exactly one",
			ErrSearch, len(result.Entries), username,
		)
	}
}

// renderFilter substitutes the username into the filter template. The value
// is escaped so user input cannot alter the filter structure.
func renderFilter(template, username string) string {
	return strings.ReplaceAll(template, usernamePlaceholder, ldap.EscapeFilter(username))
}

// entryFromLDAP flattens an ldap.Entry into the transport-independent form.
func entryFromLDAP(e *ldap.Entry) *core.Entry {
	attributes := make(map[string][]string, len(e.Attributes))
	for _, attr := range e.Attributes {
		attributes[attr.Name] = attr.Values
	}
	return &core.Entry{
		DN:         e.DN,
		Attributes: attributes,
	}
}

// dialDirectory opens a TCP or TLS connection honoring the context, since
// the ldap client offers no context-aware dialer of its own.
func (s *Session) dialDirectory(ctx context.Context) (Conn, error) {
	u, err := url.Parse(s.cfg.LDAPURL)
	if err != nil {
		return nil, fmt.Errorf("invalid directory URL: %v", err)
	}

	isTLS := u.Scheme == "ldaps"
	addr := net.JoinHostPort(u.Hostname(), portOrDefault(u.Port(), isTLS))

	var netConn net.Conn
	if isTLS {
		dialer := &tls.Dialer{NetDialer: &net.Dialer{}, Config: s.tlsConfig}
		netConn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		dialer := &net.Dialer{}
		netConn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}

	conn := ldap.NewConn(netConn, isTLS)
	conn.Start()

	if s.cfg.LDAPStartTLS {
		if err := conn.StartTLS(s.tlsConfig); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return conn, nil
}

func portOrDefault(port string, isTLS bool) string {
	if port != "" {
		return port
	}
	if isTLS {
		return ldap.DefaultLdapsPort
	}
	return ldap.DefaultLdapPort
}

// buildTLSConfig prepares the TLS settings shared by ldaps and StartTLS
// connections.
func buildTLSConfig(cfg *config.Config) (*tls.Config, error) {
	u, err := url.Parse(cfg.LDAPURL)
	if err != nil {
		return nil, fmt.Errorf("invalid directory URL: %v", err)
	}

	tlsConfig := &tls.Config{
		ServerName:         u.Hostname(),
		InsecureSkipVerify: cfg.LDAPTLSSkipVerify, //nolint:gosec // operator opt-in for test setups
		MinVersion:         tls.VersionTLS12,
	}

	if cfg.LDAPTLSCAFile != "" {
		pem, err := os.ReadFile(cfg.LDAPTLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("cannot read CA file: %v", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates parsed from %s", cfg.LDAPTLSCAFile)
		}
		tlsConfig.RootCAs = pool
	}

	return tlsConfig, nil
}
