package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/steveyegge/reposage/internal/types"
)

// secretPattern is one named credential signature.
type secretPattern struct {
	name  string
	regex *regexp.Regexp
}

// Patterns are matched case-insensitively against the raw content.
var secretPatterns = []secretPattern{
	{"AWS Access Key", regexp.MustCompile(`(?i)AKIA[0-9A-Z]{16}`)},
	{"Generic API Key", regexp.MustCompile(`(?i)api[_-]?key\s*=\s*['"][A-Za-z0-9_\-]{16,}['"]`)},
	{"JWT Secret", regexp.MustCompile(`(?i)jwt[_-]?secret\s*=\s*['"].+['"]`)},
	{"Password Assignment", regexp.MustCompile(`(?i)password\s*=\s*['"].+['"]`)},
	{"Private Key", regexp.MustCompile(`(?i)-----BEGIN (RSA|EC|DSA)? PRIVATE KEY-----`)},
}

// SecretScanner flags hardcoded credentials, one finding per matching pattern.
type SecretScanner struct{}

// NewSecretScanner creates the secrets detector.
func NewSecretScanner() *SecretScanner { return &SecretScanner{} }

func (d *SecretScanner) Name() string             { return "secrets" }
func (d *SecretScanner) Category() types.Category { return types.CategorySecurity }
func (d *SecretScanner) Description() string {
	return "Hardcoded AWS keys, API keys, JWT secrets, passwords and PEM private keys"
}

// Detect runs every pattern against the unmodified content.
func (d *SecretScanner) Detect(path, content string) []types.Finding {
	var findings []types.Finding
	for _, p := range secretPatterns {
		if p.regex.MatchString(content) {
			findings = append(findings, types.Finding{
				Issue:          "Hardcoded secret detected: " + p.name,
				Severity:       types.SeverityHigh,
				Category:       types.CategorySecurity,
				Detector:       d.Name(),
				Files:          []string{path},
				RecommendedFix: "Move secrets to environment variables or a secure secret manager",
			})
		}
	}
	return findings
}

var authKeywords = []string{"login", "signin", "authenticate", "jwt", "token", "session"}

// AuthHeuristics flags authentication code that never validates and
// password handling that never hashes. Both checks only run in files that
// look auth-related at all.
type AuthHeuristics struct{}

// NewAuthHeuristics creates the auth detector.
func NewAuthHeuristics() *AuthHeuristics { return &AuthHeuristics{} }

func (d *AuthHeuristics) Name() string             { return "auth" }
func (d *AuthHeuristics) Category() types.Category { return types.CategorySecurity }
func (d *AuthHeuristics) Description() string {
	return "Auth flows without verify/validate calls and plaintext password handling"
}

func (d *AuthHeuristics) Detect(path, content string) []types.Finding {
	lowered := strings.ToLower(content)
	if !containsAny(lowered, authKeywords...) {
		return nil
	}

	var findings []types.Finding
	if !containsAny(lowered, "verify", "validate") {
		findings = append(findings, types.Finding{
			Issue:          "Authentication logic without explicit validation checks",
			Severity:       types.SeverityMedium,
			Category:       types.CategorySecurity,
			Detector:       d.Name(),
			Files:          []string{path},
			RecommendedFix: "Ensure tokens and credentials are properly validated",
		})
	}
	if strings.Contains(lowered, "password") && !strings.Contains(lowered, "hash") {
		findings = append(findings, types.Finding{
			Issue:          "Possible plaintext password handling",
			Severity:       types.SeverityHigh,
			Category:       types.CategorySecurity,
			Detector:       d.Name(),
			Files:          []string{path},
			RecommendedFix: "Use strong password hashing (bcrypt, argon2, scrypt)",
		})
	}
	return findings
}

var sensitivePaths = []string{"/admin", "/debug", "/internal", "/test"}

// EndpointHeuristics flags sensitive route fragments in files that never
// mention auth or permissions.
type EndpointHeuristics struct{}

// NewEndpointHeuristics creates the endpoint detector.
func NewEndpointHeuristics() *EndpointHeuristics { return &EndpointHeuristics{} }

func (d *EndpointHeuristics) Name() string             { return "endpoints" }
func (d *EndpointHeuristics) Category() types.Category { return types.CategorySecurity }
func (d *EndpointHeuristics) Description() string {
	return "Admin, debug, internal and test routes in files with no auth or permission checks"
}

func (d *EndpointHeuristics) Detect(path, content string) []types.Finding {
	lowered := strings.ToLower(content)
	if containsAny(lowered, "auth", "permission") {
		return nil
	}

	var findings []types.Finding
	for _, fragment := range sensitivePaths {
		if strings.Contains(lowered, fragment) {
			findings = append(findings, types.Finding{
				Issue:          fmt.Sprintf("Potentially exposed endpoint: %s", fragment),
				Severity:       types.SeverityHigh,
				Category:       types.CategorySecurity,
				Detector:       d.Name(),
				Files:          []string{path},
				RecommendedFix: "Protect the endpoint with authentication and authorization checks",
			})
		}
	}
	return findings
}
