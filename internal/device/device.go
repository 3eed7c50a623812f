// Package device derives stable device identities from User-Agent strings so
// the HTTP layer can supply a fingerprint when a caller does not send one
// explicitly.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// Service computes device fingerprints. When disabled it returns empty
// fingerprints so callers fall back to explicit enrollment data.
type Service struct {
	enabled bool
}

func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ParseUserAgent renders a human-readable device name ("Chrome 120 on Mac OS
// X") for audit detail and enrollment UIs.
func ParseUserAgent(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return "Unknown Device"
	}

	parsed := useragent.New(ua)
	name, version := parsed.Browser()
	if name == "" {
		name = "Unknown Browser"
	}

	os := parsed.OS()
	if os == "" {
		os = parsed.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}

	if major := majorVersion(version); major != "" {
		return strings.TrimSpace(fmt.Sprintf("%s %s on %s", name, major, os))
	}
	return strings.TrimSpace(fmt.Sprintf("%s on %s", name, os))
}

// ComputeFingerprint hashes the browser identity down to its major version so
// routine auto-updates do not rotate the fingerprint while a browser or OS
// switch does. Returns the SHA-256 hex digest, or empty when disabled.
func (s *Service) ComputeFingerprint(ua string) string {
	if !s.enabled {
		return ""
	}

	parsed := useragent.New(ua)
	name, version := parsed.Browser()

	material := strings.Join([]string{
		name,
		majorVersion(version),
		parsed.OS(),
		parsed.Platform(),
	}, "|")

	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}

// CompareFingerprints reports whether two fingerprints match and whether the
// difference counts as drift.
func (s *Service) CompareFingerprints(stored, observed string) (matched, drift bool) {
	matched = stored != "" && stored == observed
	return matched, !matched
}

func majorVersion(version string) string {
	if version == "" {
		return ""
	}
	if i := strings.IndexByte(version, '.'); i >= 0 {
		return version[:i]
	}
	return version
}
