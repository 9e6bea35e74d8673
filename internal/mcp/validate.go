package mcp

import (
	"strings"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// Sentinel errors for server validation.
var (
	// ErrInvalidTransport is returned when Transport is not a known value.
	ErrInvalidTransport = errors.New("invalid transport")

	// ErrMissingCommand is returned when a stdio server has no command.
	ErrMissingCommand = errors.New("stdio transport requires command")

	// ErrMissingURL is returned when a remote server has no URL.
	ErrMissingURL = errors.New("remote transport requires url")

	// ErrEmptyKey is returned for an empty env or header name.
	ErrEmptyKey = errors.New("empty key")
)

// Validate checks that s is installable. Every problem is reported; the
// result is marked as a validation error.
func (s *Server) Validate() error {
	if s == nil {
		return errors.Validationf("server is nil")
	}

	var errs []error
	switch t := s.ResolvedTransport(); t {
	case TransportStdio:
		if s.Command == "" {
			errs = append(errs, ErrMissingCommand)
		}
	case TransportSSE, TransportHTTP:
		if s.URL == "" {
			errs = append(errs, ErrMissingURL)
		}
	case "":
		errs = append(errs, errors.New("server must have command (for local) or url (for remote)"))
	default:
		errs = append(errs, errors.Wrapf(ErrInvalidTransport, "%q (valid: stdio, sse, http)", string(t)))
	}

	for k := range s.Env {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, errors.Wrap(ErrEmptyKey, "env"))
			break
		}
	}
	for k := range s.Headers {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, errors.Wrap(ErrEmptyKey, "headers"))
			break
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Mark(errors.Join(errs...), errors.ErrValidation)
}

// ValidateName checks a server name used as a config key.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.Validationf("server name is required")
	case strings.ContainsAny(name, "\x00\n"):
		return errors.Validationf("server name %q contains control characters", name)
	}
	return nil
}
