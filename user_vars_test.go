package gridterm

import (
	"bytes"
	"sync"
	"testing"
)

func TestUserVarSetAndGet(t *testing.T) {
	term := New()

	term.SetUserVar("SESSION_USER", "alice")

	val, ok := term.GetUserVar("SESSION_USER")
	if !ok || val != "alice" {
		t.Errorf("expected ('alice', true), got (%q, %v)", val, ok)
	}

	if val, ok := term.GetUserVar("NONEXISTENT"); ok {
		t.Errorf("expected unset variable, got %q", val)
	}
}

func TestUserVarEmptyValueIsSet(t *testing.T) {
	term := New()

	term.SetUserVar("VAR1", "")

	// An empty value is distinguishable from an unset variable.
	val, ok := term.GetUserVar("VAR1")
	if !ok || val != "" {
		t.Errorf("expected ('', true), got (%q, %v)", val, ok)
	}
}

func TestUserVarOverwrite(t *testing.T) {
	term := New()

	term.SetUserVar("VAR1", "initial")
	term.SetUserVar("VAR1", "updated")

	if val, _ := term.GetUserVar("VAR1"); val != "updated" {
		t.Errorf("expected 'updated', got %q", val)
	}
}

func TestGetUserVarsReturnsACopy(t *testing.T) {
	term := New()

	term.SetUserVar("VAR1", "value1")
	term.SetUserVar("VAR2", "value2")

	vars := term.GetUserVars()
	if len(vars) != 2 || vars["VAR1"] != "value1" || vars["VAR2"] != "value2" {
		t.Fatalf("unexpected variable map: %v", vars)
	}

	// Mutating the returned map must not leak back into the terminal.
	vars["VAR1"] = "modified"
	vars["NEW_VAR"] = "new_value"

	if val, _ := term.GetUserVar("VAR1"); val != "value1" {
		t.Errorf("expected original value 'value1', got %q", val)
	}
	if _, ok := term.GetUserVar("NEW_VAR"); ok {
		t.Error("expected NEW_VAR to not exist")
	}
}

func TestClearUserVars(t *testing.T) {
	term := New()

	term.SetUserVar("VAR1", "value1")
	term.SetUserVar("VAR2", "value2")

	term.ClearUserVars()

	if vars := term.GetUserVars(); len(vars) != 0 {
		t.Errorf("expected 0 variables after clear, got %d", len(vars))
	}
	if _, ok := term.GetUserVar("VAR1"); ok {
		t.Error("expected VAR1 gone after clear")
	}
}

func TestOSC1337SetUserVar(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		want  string
		set   bool
	}{
		{
			name:  "bel terminated",
			input: "\x1b]1337;SetUserVar=TEST_VAR=dGVzdF92YWx1ZQ==\x07", // "test_value"
			key:   "TEST_VAR",
			want:  "test_value",
			set:   true,
		},
		{
			name:  "st terminated",
			input: "\x1b]1337;SetUserVar=HELLO=aGVsbG8=\x1b\\", // "hello"
			key:   "HELLO",
			want:  "hello",
			set:   true,
		},
		{
			name:  "invalid base64 rejected",
			input: "\x1b]1337;SetUserVar=TEST=!@#$%^\x07",
			key:   "TEST",
			set:   false,
		},
		{
			name:  "empty payload sets empty value",
			input: "\x1b]1337;SetUserVar=EMPTY=\x07",
			key:   "EMPTY",
			want:  "",
			set:   true,
		},
		{
			name:  "control characters survive decoding",
			input: "\x1b]1337;SetUserVar=SPECIAL=aGVsbG8Kd29ybGQJdGFi\x07", // "hello\nworld\ttab"
			key:   "SPECIAL",
			want:  "hello\nworld\ttab",
			set:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := New()
			term.WriteString(tt.input)

			val, ok := term.GetUserVar(tt.key)
			if ok != tt.set {
				t.Fatalf("expected set=%v, got set=%v (value %q)", tt.set, ok, val)
			}
			if ok && val != tt.want {
				t.Errorf("expected %q, got %q", tt.want, val)
			}
		})
	}
}

func TestOSC1337GeneratesNoResponse(t *testing.T) {
	var buf bytes.Buffer
	term := New(WithResponse(&buf))

	term.WriteString("\x1b]1337;SetUserVar=TEST=dGVzdA==\x07")

	if buf.Len() != 0 {
		t.Errorf("expected no response, got %d bytes", buf.Len())
	}
	if val, _ := term.GetUserVar("TEST"); val != "test" {
		t.Errorf("expected 'test', got %q", val)
	}
}

func TestUserVarMiddleware(t *testing.T) {
	var interceptedName, interceptedValue string

	term := New(WithMiddleware(&Middleware{
		SetUserVar: func(name, value string, next func(string, string)) {
			interceptedName = name
			interceptedValue = value
			next("MODIFIED_"+name, "MODIFIED_"+value)
		},
	}))

	term.SetUserVar("VAR1", "value1")

	if interceptedName != "VAR1" || interceptedValue != "value1" {
		t.Errorf("unexpected interception: (%q, %q)", interceptedName, interceptedValue)
	}
	if val, _ := term.GetUserVar("MODIFIED_VAR1"); val != "MODIFIED_value1" {
		t.Errorf("expected 'MODIFIED_value1', got %q", val)
	}
}

func TestUserVarMiddlewareBlocks(t *testing.T) {
	term := New(WithMiddleware(&Middleware{
		SetUserVar: func(name, value string, next func(string, string)) {
			// Swallow the operation.
		},
	}))

	term.SetUserVar("VAR1", "value1")

	if _, ok := term.GetUserVar("VAR1"); ok {
		t.Error("expected variable to be blocked by middleware")
	}
}

func TestMiddlewareMergeSetUserVar(t *testing.T) {
	bellCalled := false
	varCalled := false

	mw1 := &Middleware{
		Bell: func(next func()) {
			bellCalled = true
			next()
		},
	}
	mw2 := &Middleware{
		SetUserVar: func(name, value string, next func(string, string)) {
			varCalled = true
			next(name, value)
		},
	}
	mw1.Merge(mw2)

	term := New(WithMiddleware(mw1))
	term.SetUserVar("TEST", "value")

	if bellCalled {
		t.Error("Bell middleware should not fire for SetUserVar")
	}
	if !varCalled {
		t.Error("SetUserVar middleware should fire after merge")
	}
	if val, _ := term.GetUserVar("TEST"); val != "value" {
		t.Errorf("expected 'value', got %q", val)
	}
}

func TestUserVarConcurrentAccess(t *testing.T) {
	term := New()

	var wg sync.WaitGroup
	const workers = 100

	wg.Add(workers * 2)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			term.SetUserVar("VAR", "value")
		}()
		go func() {
			defer wg.Done()
			_, _ = term.GetUserVar("VAR")
			_ = term.GetUserVars()
		}()
	}
	wg.Wait()

	if val, ok := term.GetUserVar("VAR"); !ok || val != "value" {
		t.Errorf("expected ('value', true), got (%q, %v)", val, ok)
	}
}
