package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "invalid file: %s", "missing.gds")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidInput)
	}
	if !strings.Contains(err.Error(), "missing.gds") {
		t.Errorf("Error() = %q, should contain file name", err.Error())
	}
	if !strings.Contains(err.Error(), string(ErrCodeInvalidInput)) {
		t.Errorf("Error() = %q, should contain code", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := Wrap(ErrCodeParse, cause, "read %s", "broken.gds")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "unexpected EOF") {
		t.Errorf("Error() = %q, should contain cause", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeCellNotFound, "cell missing"), ErrCodeCellNotFound, true},
		{"different code", New(ErrCodeCellNotFound, "cell missing"), ErrCodeInvalidInput, false},
		{"plain error", stderrors.New("plain"), ErrCodeInternal, false},
		{"wrapped coded error", Wrap(ErrCodeMalformedGeometry, stderrors.New("x"), "merge"), ErrCodeMalformedGeometry, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeParse, "bad record")); got != ErrCodeParse {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeParse)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode() = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeCellNotFound, "cell devicegen not found")
	if got := UserMessage(err); got != "cell devicegen not found" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q", got)
	}
}
