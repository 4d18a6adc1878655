package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	folioerrors "github.com/conneroisu/folio/internal/errors"
	"github.com/conneroisu/folio/internal/logging"
)

// CSPReportPath receives Content-Security-Policy violation reports.
const CSPReportPath = "/csp-report"

// Directive is one named policy entry. Order is preserved in the header.
type Directive struct {
	Name   string
	Values []string
}

// SecurityHeaders holds the response headers applied by Security.
type SecurityHeaders struct {
	CSP                     []Directive
	UpgradeInsecureRequests bool
	ReportURI               string

	// HSTS is only sent on TLS requests. Zero disables it.
	HSTSMaxAge        int
	HSTSSubDomains    bool
	FrameOptions      string
	ReferrerPolicy    string
	PermissionsPolicy []Directive
	NoSniff           bool
}

// DefaultSecurityHeaders returns the policy for a page that loads its own
// script and stylesheet and opens a same-origin websocket.
func DefaultSecurityHeaders(development bool) SecurityHeaders {
	h := SecurityHeaders{
		CSP: []Directive{
			{"default-src", []string{"'self'"}},
			{"script-src", []string{"'self'"}},
			{"style-src", []string{"'self'"}},
			{"img-src", []string{"'self'", "data:", "https:"}},
			{"connect-src", []string{"'self'", "ws:", "wss:"}},
			{"object-src", []string{"'none'"}},
			{"frame-ancestors", []string{"'none'"}},
			{"base-uri", []string{"'self'"}},
			{"form-action", []string{"'self'"}},
		},
		ReportURI:      CSPReportPath,
		HSTSMaxAge:     31536000,
		HSTSSubDomains: true,
		FrameOptions:   "DENY",
		ReferrerPolicy: "strict-origin-when-cross-origin",
		PermissionsPolicy: []Directive{
			{"geolocation", nil},
			{"camera", nil},
			{"microphone", nil},
			{"payment", nil},
			{"fullscreen", []string{"self"}},
		},
		NoSniff: true,
	}

	if development {
		h.HSTSMaxAge = 0
		h.FrameOptions = "SAMEORIGIN"
		h.CSP[6] = Directive{"frame-ancestors", []string{"'self'"}}
	} else {
		h.UpgradeInsecureRequests = true
	}
	return h
}

// Security sets the configured headers on every response.
func Security(headers SecurityHeaders) func(http.Handler) http.Handler {
	csp := buildCSP(headers)
	permissions := buildPermissionsPolicy(headers.PermissionsPolicy)
	hsts := ""
	if headers.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d", headers.HSTSMaxAge)
		if headers.HSTSSubDomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}
			if hsts != "" && r.TLS != nil {
				h.Set("Strict-Transport-Security", hsts)
			}
			if headers.FrameOptions != "" {
				h.Set("X-Frame-Options", headers.FrameOptions)
			}
			if headers.NoSniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			if headers.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", headers.ReferrerPolicy)
			}
			if permissions != "" {
				h.Set("Permissions-Policy", permissions)
			}
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			next.ServeHTTP(w, r)
		})
	}
}

func buildCSP(headers SecurityHeaders) string {
	directives := make([]string, 0, len(headers.CSP)+2)
	for _, d := range headers.CSP {
		if len(d.Values) == 0 {
			continue
		}
		directives = append(directives, d.Name+" "+strings.Join(d.Values, " "))
	}
	if headers.UpgradeInsecureRequests {
		directives = append(directives, "upgrade-insecure-requests")
	}
	if headers.ReportURI != "" {
		directives = append(directives, "report-uri "+headers.ReportURI)
	}
	return strings.Join(directives, "; ")
}

// buildPermissionsPolicy writes an empty allowlist as name=().
func buildPermissionsPolicy(policies []Directive) string {
	parts := make([]string, 0, len(policies))
	for _, p := range policies {
		parts = append(parts, fmt.Sprintf("%s=(%s)", p.Name, strings.Join(p.Values, " ")))
	}
	return strings.Join(parts, ", ")
}

// CSPViolation is the body browsers post to a report-uri.
type CSPViolation struct {
	Report struct {
		DocumentURI       string `json:"document-uri"`
		ViolatedDirective string `json:"violated-directive"`
		BlockedURI        string `json:"blocked-uri"`
		SourceFile        string `json:"source-file"`
		LineNumber        int    `json:"line-number"`
	} `json:"csp-report"`
}

// CSPReportHandler logs violation reports and answers 204.
func CSPReportHandler(logger logging.Logger) http.HandlerFunc {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.WithComponent("csp")

	return func(w http.ResponseWriter, r *http.Request) {
		var report CSPViolation
		body := io.LimitReader(r.Body, 16<<10)
		if err := json.NewDecoder(body).Decode(&report); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		logger.Warn(r.Context(),
			folioerrors.NewValidationError(folioerrors.ErrCodeValidationFailed, "content security policy violation"),
			"Blocked by content security policy",
			"document_uri", report.Report.DocumentURI,
			"violated_directive", report.Report.ViolatedDirective,
			"blocked_uri", report.Report.BlockedURI,
			"source_file", report.Report.SourceFile,
			"line_number", report.Report.LineNumber,
			"ip", clientIP(r))
		w.WriteHeader(http.StatusNoContent)
	}
}
