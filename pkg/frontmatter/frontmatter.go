package frontmatter

import (
	"bytes"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// Sentinel errors.
var (
	// ErrNoFrontmatter means the content does not start with "---".
	ErrNoFrontmatter = errors.New("missing frontmatter")

	// ErrUnterminated means the closing "---" line was not found.
	ErrUnterminated = errors.New("missing closing frontmatter delimiter")

	// ErrInvalidYAML means the frontmatter is not valid YAML.
	ErrInvalidYAML = errors.New("invalid frontmatter YAML")
)

const delimiter = "---"

// Split separates content into its frontmatter and body. The delimiter
// lines belong to neither part.
func Split(content []byte) (matter, body []byte, err error) {
	first, rest, _ := cutLine(content)
	if strings.TrimRight(string(first), "\r") != delimiter {
		return nil, nil, ErrNoFrontmatter
	}

	start := len(content) - len(rest)
	for offset := start; offset < len(content); {
		line, next, _ := cutLine(content[offset:])
		if strings.TrimSpace(string(line)) == delimiter {
			return content[start:offset], next, nil
		}
		offset = len(content) - len(next)
	}
	return nil, nil, ErrUnterminated
}

// cutLine returns the first line of b without its newline and the rest.
func cutLine(b []byte) (line, rest []byte, found bool) {
	return bytes.Cut(b, []byte("\n"))
}

// Parse reads r, decodes the frontmatter into a T, and returns the body.
// Frontmatter is required.
func Parse[T any](r io.Reader) (T, []byte, error) {
	var matter T

	content, err := io.ReadAll(r)
	if err != nil {
		return matter, nil, errors.Wrap(err, "reading content")
	}

	raw, body, err := Split(content)
	if err != nil {
		return matter, nil, err
	}
	if err := yaml.Unmarshal(raw, &matter); err != nil {
		return matter, nil, errors.Mark(errors.Wrap(err, "decoding frontmatter"), ErrInvalidYAML)
	}
	return matter, body, nil
}

// ParseFile is Parse for the file at path.
func ParseFile[T any](path string) (T, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	matter, body, err := Parse[T](f)
	if err != nil {
		return matter, nil, errors.Wrapf(err, "parsing %s", path)
	}
	return matter, body, nil
}

// Format renders matter as YAML frontmatter followed by body.
func Format(matter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(matter); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}

	buf.WriteString(delimiter + "\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}
