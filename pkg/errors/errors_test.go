package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"new", New(ErrCodeInvalidGenre, "unknown genre %q", "polka"), `INVALID_GENRE: unknown genre "polka"`},
		{"wrap", Wrap(ErrCodeFileNotFound, fs.ErrNotExist, "open songs.csv"), "FILE_NOT_FOUND: open songs.csv: file does not exist"},
		{"no args", New(ErrCodeUnsupported, "png needs a density chart"), "UNSUPPORTED: png needs a density chart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrCodeNetwork, fs.ErrPermission, "download %s", "https://example.com/songs.csv")

	if err.Code != ErrCodeNetwork || err.Message != "download https://example.com/songs.csv" {
		t.Errorf("got %q %q", err.Code, err.Message)
	}
	if errors.Unwrap(err) != fs.ErrPermission {
		t.Errorf("Unwrap() = %v", errors.Unwrap(err))
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is should see the cause")
	}
}

func TestCodeLookup(t *testing.T) {
	layoutErr := fmt.Errorf("layout: %w", New(ErrCodeInvalidScalar, "jitter step must be positive"))
	rendered := Wrap(ErrCodeInternal, New(ErrCodeInvalidChart, "inner"), "render strip")

	tests := []struct {
		name string
		err  error
		code Code
		is   bool
		get  Code
	}{
		{"direct", New(ErrCodeTabNotFound, "tab 9"), ErrCodeTabNotFound, true, ErrCodeTabNotFound},
		{"other code", New(ErrCodeTabNotFound, "tab 9"), ErrCodeNotFound, false, ErrCodeTabNotFound},
		{"fmt wrapped", layoutErr, ErrCodeInvalidScalar, true, ErrCodeInvalidScalar},
		{"outer code wins", rendered, ErrCodeInvalidChart, false, ErrCodeInternal},
		{"plain", errors.New("boom"), ErrCodeInternal, false, ""},
		{"nil", nil, ErrCodeInternal, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.is {
				t.Errorf("Is(%s) = %v, want %v", tt.code, got, tt.is)
			}
			if got := GetCode(tt.err); got != tt.get {
				t.Errorf("GetCode() = %q, want %q", got, tt.get)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeInvalidFormat, "unknown format %q", "gif"), `unknown format "gif"`},
		{"coded with cause", Wrap(ErrCodeTimeout, errors.New("deadline"), "download timed out"), "download timed out"},
		{"plain", errors.New("disk full"), "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid category", New(ErrCodeInvalidCategory, "x"), 400},
		{"invalid scalar", New(ErrCodeInvalidScalar, "x"), 400},
		{"tab not found", New(ErrCodeTabNotFound, "x"), 404},
		{"network", New(ErrCodeNetwork, "x"), 502},
		{"timeout", New(ErrCodeTimeout, "x"), 504},
		{"wrapped", fmt.Errorf("layout: %w", New(ErrCodeInvalidConfig, "x")), 400},
		{"plain error", errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
