package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// URLValidationError names the offending setting and value.
type URLValidationError struct {
	Field   string
	Message string
	URL     string
}

func (e URLValidationError) Error() string {
	return fmt.Sprintf("%s: %s (url: %s)", e.Field, e.Message, e.URL)
}

// ValidateURL checks that urlString is an absolute http(s) URL. An empty
// string is accepted; callers decide whether the field is required.
func ValidateURL(urlString, fieldName string, requireHTTPS bool) error {
	if urlString == "" {
		return nil
	}

	parsed, err := url.Parse(urlString)
	if err != nil {
		return URLValidationError{Field: fieldName, Message: "invalid URL format", URL: urlString}
	}
	if parsed.Scheme == "" {
		return URLValidationError{Field: fieldName, Message: "URL must include a scheme (http:// or https://)", URL: urlString}
	}
	if parsed.Host == "" {
		return URLValidationError{Field: fieldName, Message: "URL must include a host", URL: urlString}
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return URLValidationError{Field: fieldName, Message: "URL scheme must be http or https", URL: urlString}
	}
	if requireHTTPS && scheme != "https" {
		return URLValidationError{Field: fieldName, Message: "URL must use HTTPS in production", URL: urlString}
	}
	return nil
}

// ValidateBaseURL is ValidateURL for origins that links are built from:
// no path, query or fragment.
func ValidateBaseURL(urlString, fieldName string, requireHTTPS bool) error {
	if err := ValidateURL(urlString, fieldName, requireHTTPS); err != nil {
		return err
	}
	if urlString == "" {
		return nil
	}

	parsed, _ := url.Parse(urlString)
	switch {
	case parsed.Path != "" && parsed.Path != "/":
		return URLValidationError{Field: fieldName, Message: "base URL must not contain a path", URL: urlString}
	case parsed.RawQuery != "":
		return URLValidationError{Field: fieldName, Message: "base URL must not contain query parameters", URL: urlString}
	case parsed.Fragment != "":
		return URLValidationError{Field: fieldName, Message: "base URL must not contain a fragment", URL: urlString}
	}
	return nil
}

// ValidateOrigins checks every entry of a CORS allow list.
func ValidateOrigins(origins []string, fieldName string) error {
	for _, origin := range origins {
		if origin == "*" {
			continue
		}
		if err := ValidateBaseURL(origin, fieldName, false); err != nil {
			return err
		}
	}
	return nil
}
