package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"budgettracker/internal/core"
)

// maxBodyBytes bounds request bodies; a transaction form is a few hundred bytes.
const maxBodyBytes = 64 << 10

const (
	defaultTrendMonths = 12
	maxTrendMonths     = 120
)

var (
	errInvalidID     = errors.New("invalid transaction id")
	errInvalidMonth  = errors.New("invalid month, use YYYY-MM")
	errInvalidMonths = errors.New("invalid months count")
)

// RequestBodyParser reads a JSON or form-encoded body once and exposes its
// fields as sanitized strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of r's body.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when it looks like a JSON object, and as
// form data otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
}

// Get returns the sanitized value of key, or "" when absent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// rawTransaction maps the posted fields onto the validator input. An omitted
// date means today.
func (p *RequestBodyParser) rawTransaction() core.RawTransaction {
	return core.RawTransaction{
		Kind:         p.Get("kind"),
		Amount:       p.Get("amount"),
		Category:     p.Get("category"),
		Description:  p.Get("description"),
		Date:         p.Get("date"),
		DefaultToday: true,
	}
}

// parseID parses a positive transaction id path segment.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, raw)
	}
	return id, nil
}

// parseMonthQuery returns the month filter from query. Empty means all time.
func parseMonthQuery(query url.Values) (string, error) {
	month := strings.TrimSpace(query.Get("month"))
	if month == "" {
		return "", nil
	}
	if _, err := time.Parse(core.MonthLayout, month); err != nil {
		return "", fmt.Errorf("%w: %q", errInvalidMonth, month)
	}
	return month, nil
}

// parseMonthsParam reads the trend length, defaulting to a year.
func parseMonthsParam(query url.Values) (int, error) {
	raw := strings.TrimSpace(query.Get("months"))
	if raw == "" {
		return defaultTrendMonths, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxTrendMonths {
		return 0, fmt.Errorf("%w: %q (1-%d)", errInvalidMonths, raw, maxTrendMonths)
	}
	return n, nil
}

// parseKindQuery returns the kind filter from query. Empty means both kinds.
func parseKindQuery(query url.Values) (core.Kind, error) {
	raw := strings.TrimSpace(query.Get("kind"))
	if raw == "" {
		return "", nil
	}
	return core.ValidateKind(raw)
}
