// Package security provides URL, path and input size checks for untrusted sources.
package security

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"path/filepath"
	"strings"
	"syscall"
)

// ErrSizeLimit is returned by LimitedReader once its budget is spent.
var ErrSizeLimit = errors.New("size limit exceeded")

// ValidateHTTPURL validates an HTTP(S) URL for safe downloads.
// Only allows HTTPS from non-local hosts.
func ValidateHTTPURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if !strings.EqualFold(parsed.Scheme, "https") {
		return fmt.Errorf("only HTTPS URLs are allowed (got %s)", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	// Block localhost and private IPs to prevent SSRF
	host := strings.ToLower(parsed.Hostname())
	if isLocalOrPrivateHost(host) {
		return fmt.Errorf("URL cannot point to local or private hosts: %s", host)
	}

	return nil
}

// IsHTTPURL reports whether s looks like an http:// or https:// URL.
func IsHTTPURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ValidatePluginPath validates a plugin path to prevent directory traversal.
// Ensures the path stays within the allowed plugin directory.
func ValidatePluginPath(pluginPath, baseDir string) error {
	if pluginPath == "" {
		return fmt.Errorf("empty plugin path")
	}

	absPluginPath, err := filepath.Abs(filepath.Clean(pluginPath))
	if err != nil {
		return fmt.Errorf("invalid plugin path: %w", err)
	}

	absBaseDir, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("invalid base directory: %w", err)
	}

	if !strings.HasPrefix(absPluginPath, absBaseDir+string(filepath.Separator)) {
		return fmt.Errorf("plugin path must be within plugin directory %s", absBaseDir)
	}

	return nil
}

// LimitedReader wraps an io.Reader and fails once more than Remaining bytes
// have been read, instead of silently truncating like io.LimitReader.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining < 0 {
		return 0, ErrSizeLimit
	}
	// Read one byte past the budget so an input of exactly the limit is
	// still accepted.
	if int64(len(p)) > l.Remaining+1 {
		p = p[:l.Remaining+1]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	if l.Remaining < 0 {
		return n, ErrSizeLimit
	}
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes,
	}
}

// PolicyError reports a request target refused by the URL policy, either a
// redirect hop that fails ValidateHTTPURL or a connection to a blocked address.
type PolicyError struct {
	Target string
	Err    error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s refused: %v", e.Target, e.Err)
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}

// DialControl is a net.Dialer Control hook refusing connections to local or
// private addresses. It runs after name resolution, so hostnames that resolve
// to internal addresses are caught too.
func DialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return &PolicyError{Target: address, Err: err}
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return &PolicyError{Target: address, Err: fmt.Errorf("not an IP address")}
	}
	if IsBlockedIP(ip) {
		return &PolicyError{Target: address, Err: fmt.Errorf("cannot connect to local or private address %s", ip)}
	}
	return nil
}

// IsBlockedIP reports whether ip is loopback, private, link-local or
// unspecified.
func IsBlockedIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

// isLocalOrPrivateHost checks if a hostname is localhost or a private,
// loopback or link-local IP.
func isLocalOrPrivateHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	ip := net.ParseIP(strings.Trim(host, "[]"))
	if ip == nil {
		return false
	}
	return IsBlockedIP(ip)
}
