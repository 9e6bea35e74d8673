package logging

import (
	"bytes"
	"os"
	"testing"
)

func TestSupportsColor(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		isTTY bool
		want  bool
	}{
		{"NO_COLOR prevents color", map[string]string{"NO_COLOR": "1"}, true, false},
		{"TERM=dumb prevents color", map[string]string{"TERM": "dumb"}, true, false},
		{"non-TTY prevents color", map[string]string{"TERM": "xterm"}, false, false},
		{"TTY with normal TERM", map[string]string{"TERM": "xterm"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TERM", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, ok := tt.env["NO_COLOR"]; !ok {
				unsetForTest(t, "NO_COLOR")
			}
			if got := supportsColor(tt.isTTY); got != tt.want {
				t.Errorf("supportsColor(%v) = %v, want %v", tt.isTTY, got, tt.want)
			}
		})
	}
}

func TestIsTTY_Buffer(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("IsTTY should return false for a bytes.Buffer")
	}
}

func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}
