package shared

import (
	"errors"
	"testing"
)

func TestOpenBrowser(t *testing.T) {
	origRuntime, origCommand := getRuntime, browserCommand
	t.Cleanup(func() {
		getRuntime, browserCommand = origRuntime, origCommand
	})

	var gotName string
	var gotArgs []string
	browserCommand = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	t.Run("linux uses xdg-open", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		if err := OpenBrowser("https://auth/redirect"); err != nil {
			t.Fatalf("OpenBrowser() error = %v", err)
		}
		if gotName != "xdg-open" || len(gotArgs) != 1 || gotArgs[0] != "https://auth/redirect" {
			t.Errorf("unexpected command %s %v", gotName, gotArgs)
		}
	})

	t.Run("darwin uses open", func(t *testing.T) {
		getRuntime = func() string { return "darwin" }
		if err := OpenBrowser("http://localhost:8000/login"); err != nil {
			t.Fatalf("OpenBrowser() error = %v", err)
		}
		if gotName != "open" {
			t.Errorf("expected open, got %s", gotName)
		}
	})

	t.Run("rejects non-http urls", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		for _, u := range []string{"file:///etc/passwd", "javascript:alert(1)", "not a url", "/login"} {
			if err := OpenBrowser(u); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("OpenBrowser(%q) error = %v, want ErrInvalidInput", u, err)
			}
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})

	t.Run("command failure", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		browserCommand = func(string, ...string) error { return errors.New("boom") }
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error when command fails")
		}
	})
}
