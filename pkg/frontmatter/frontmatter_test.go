package frontmatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thoreinstein/agentsync/internal/errors"
)

type skillMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMeta skillMeta
		wantBody string
		wantErr  error
	}{
		{
			name:     "valid frontmatter and body",
			input:    "---\nname: review\ndescription: Reviews code\n---\n# Review\n",
			wantMeta: skillMeta{Name: "review", Description: "Reviews code"},
			wantBody: "# Review\n",
		},
		{
			name:     "crlf line endings",
			input:    "---\r\nname: review\r\n---\r\nbody\r\n",
			wantMeta: skillMeta{Name: "review"},
			wantBody: "body\r\n",
		},
		{
			name:     "empty body",
			input:    "---\nname: review\n---",
			wantMeta: skillMeta{Name: "review"},
			wantBody: "",
		},
		{
			name:     "empty frontmatter",
			input:    "---\n---\nbody",
			wantMeta: skillMeta{},
			wantBody: "body",
		},
		{
			name:    "no frontmatter",
			input:   "# Just markdown\n",
			wantErr: ErrNoFrontmatter,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrNoFrontmatter,
		},
		{
			name:    "unterminated",
			input:   "---\nname: review\n",
			wantErr: ErrUnterminated,
		},
		{
			name:    "invalid yaml",
			input:   "---\nname: [unclosed\n---\n",
			wantErr: ErrInvalidYAML,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := Parse[skillMeta](strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error = %v", err)
			}
			if meta != tt.wantMeta {
				t.Errorf("Parse() meta = %+v, want %+v", meta, tt.wantMeta)
			}
			if string(body) != tt.wantBody {
				t.Errorf("Parse() body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SKILL.md")
	if err := os.WriteFile(path, []byte("---\nname: review\n---\nbody\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	meta, body, err := ParseFile[skillMeta](path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if meta.Name != "review" || string(body) != "body\n" {
		t.Errorf("ParseFile() = %+v, %q", meta, body)
	}

	_, _, err = ParseFile[skillMeta](filepath.Join(dir, "missing.md"))
	if err == nil || !strings.Contains(err.Error(), "missing.md") {
		t.Errorf("ParseFile() missing file error = %v", err)
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	data, err := Format(skillMeta{Name: "review", Description: "Reviews code"}, "Do the review.")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	meta, body, err := Parse[skillMeta](strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if meta.Name != "review" || meta.Description != "Reviews code" {
		t.Errorf("meta = %+v", meta)
	}
	if string(body) != "\nDo the review.\n" {
		t.Errorf("body = %q", body)
	}
}
