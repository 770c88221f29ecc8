package gridterm

import (
	"testing"
)

func TestWorkingDirectory(t *testing.T) {
	term := New(WithSize(24, 80))

	if got := term.WorkingDirectory(); got != "" {
		t.Errorf("unset working directory = %q, want empty", got)
	}

	// BEL-terminated OSC 7
	term.WriteString("\x1b]7;file://localhost/home/user\x07")
	if got := term.WorkingDirectory(); got != "file://localhost/home/user" {
		t.Errorf("working directory = %q, want file://localhost/home/user", got)
	}

	// A later OSC 7 replaces the previous value; ST termination works too.
	term.WriteString("\x1b]7;file://myhost/var/log\x1b\\")
	if got := term.WorkingDirectory(); got != "file://myhost/var/log" {
		t.Errorf("working directory = %q, want file://myhost/var/log", got)
	}
}

func TestWorkingDirectoryPath(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"unset", "", ""},
		{"with hostname", "file://localhost/home/user", "/home/user"},
		{"dotted hostname", "file://mycomputer.local/var/log/system", "/var/log/system"},
		{"empty hostname", "file:///home/user", "/home/user"},
		{"percent escapes decoded", "file:///home/user/My%20Documents", "/home/user/My Documents"},
		{"non-file scheme rejected", "https://example.com/foo", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := New(WithSize(24, 80))
			if tt.uri != "" {
				term.WriteString("\x1b]7;" + tt.uri + "\x07")
			}
			if got := term.WorkingDirectoryPath(); got != tt.want {
				t.Errorf("WorkingDirectoryPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorkingDirectoryMiddleware(t *testing.T) {
	var seen string

	term := New(WithSize(24, 80), WithMiddleware(&Middleware{
		SetWorkingDirectory: func(uri string, next func(string)) {
			seen = uri
			next(uri)
		},
	}))

	term.WriteString("\x1b]7;file://localhost/test\x07")

	if seen != "file://localhost/test" {
		t.Errorf("middleware saw %q, want file://localhost/test", seen)
	}
	if got := term.WorkingDirectory(); got != "file://localhost/test" {
		t.Errorf("working directory = %q, want file://localhost/test", got)
	}
}
