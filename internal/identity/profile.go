// Package identity normalizes raw directory entries into the canonical
// account profile persisted alongside local accounts.
package identity

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/go-ldapgate/ldapgate/internal/core"
)

// Provider is the identity provider tag stamped on every profile.
const Provider = "ldap"

// ExternalIDPrefix namespaces directory identifiers so they cannot collide
// with identifiers minted by other providers.
const ExternalIDPrefix = "LDAP-"

// stableIDAttributes is the fixed priority order used to derive the stable
// identifier when no override attribute is configured.
var stableIDAttributes = []string{"uidNumber", "uid", "sAMAccountName"}

// Options control how directory entries are normalized.
type Options struct {
	// UserIDField names an attribute that overrides the default stable
	// identifier priority. Empty means use the default order.
	UserIDField string

	// UsernameField names an attribute that overrides the displayed
	// username. Empty means the username falls back to the stable
	// identifier.
	UsernameField string
}

// Profile is the canonical, provider-independent identity snapshot derived
// from a directory entry. The JSON field names form the stored snapshot
// format and must stay stable.
type Profile struct {
	ExternalID  string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName"`
	Emails      []string `json:"emails"`
	AvatarURL   *string  `json:"avatarUrl"`
	ProfileURL  *string  `json:"profileUrl"`
	Provider    string   `json:"provider"`
}

// Normalize derives the canonical profile from a directory entry.
// Returns ErrMissingStableID when the entry has no usable identifier.
func Normalize(entry *core.Entry, opts Options) (*Profile, error) {
	stableID := stableIdentifier(entry, opts.UserIDField)
	if stableID == "" {
		return nil, fmt.Errorf("%w: entry %q", ErrMissingStableID, entry.DN)
	}

	// The username defaults to the stable identifier, never to the login
	// name the user typed.
	username := stableID
	if opts.UsernameField != "" {
		if v := entry.Value(opts.UsernameField); v != "" {
			username = v
		}
	}

	// Emails are always a list, even when the directory returns a single
	// scalar mail value or none at all.
	emails := []string{}
	emails = append(emails, entry.Values("mail")...)

	return &Profile{
		ExternalID:  ExternalIDPrefix + stableID,
		Username:    username,
		DisplayName: entry.Value("displayName"),
		Emails:      emails,
		Provider:    Provider,
	}, nil
}

// stableIdentifier resolves the stable identifier for an entry. An override
// attribute, when configured and present, wins over the default priority
// order.
func stableIdentifier(entry *core.Entry, overrideField string) string {
	if overrideField != "" {
		if v := entry.Value(overrideField); v != "" {
			return v
		}
	}
	for _, attr := range stableIDAttributes {
		if v := entry.Value(attr); v != "" {
			return v
		}
	}
	return ""
}

// Snapshot serializes the profile to its stored JSON form.
func (p *Profile) Snapshot() (string, error) {
	encoded, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to serialize profile: %w", err)
	}
	return string(encoded), nil
}

// ParseSnapshot decodes a stored profile snapshot. A snapshot written by an
// older version may lack fields; missing fields decode to zero values.
func ParseSnapshot(snapshot string) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal([]byte(snapshot), &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile snapshot: %w", err)
	}
	return &p, nil
}

// Equal reports whether two profiles carry the same identity data.
// Comparison is structural so that snapshots with different JSON key order
// or whitespace still compare equal.
func (p *Profile) Equal(other *Profile) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ExternalID == other.ExternalID &&
		p.Username == other.Username &&
		p.DisplayName == other.DisplayName &&
		slices.Equal(p.Emails, other.Emails) &&
		equalStringPtr(p.AvatarURL, other.AvatarURL) &&
		equalStringPtr(p.ProfileURL, other.ProfileURL) &&
		p.Provider == other.Provider
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
