package util

import (
	"net/url"
	"strings"
)

// IsRedirectSafe reports whether redirectURL may be used as a post-login
// redirect target. Accepted forms are same-site relative paths and absolute
// http(s) URLs whose host matches baseURL. Everything else, including
// protocol-relative URLs and non-http schemes, is rejected.
func IsRedirectSafe(redirectURL, baseURL string) bool {
	// An empty target means "use the default", which is always fine.
	if redirectURL == "" {
		return true
	}

	// CR/LF in the target would allow response header injection.
	if strings.ContainsAny(redirectURL, "\r\n") {
		return false
	}

	if strings.HasPrefix(redirectURL, "/") {
		// "//evil.com" is scheme-relative, not a local path.
		if strings.HasPrefix(redirectURL, "//") {
			return false
		}
		// Browsers treat "/\evil.com" the same way.
		if strings.Contains(redirectURL, "\\") {
			return false
		}
		return true
	}

	parsedRedirect, err := url.Parse(redirectURL)
	if err != nil {
		return false
	}

	// javascript:, data: and friends never pass.
	if parsedRedirect.Scheme != "" && parsedRedirect.Scheme != "http" &&
		parsedRedirect.Scheme != "https" {
		return false
	}

	// An absolute URL must stay on our own host.
	if parsedRedirect.Host != "" {
		parsedBase, err := url.Parse(baseURL)
		if err != nil {
			return false
		}
		if parsedRedirect.Host != parsedBase.Host {
			return false
		}
	}

	return true
}
