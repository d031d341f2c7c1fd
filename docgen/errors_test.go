package docgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	errorslib "github.com/goliatone/go-errors"
)

func TestAsGoError_Categories(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category errorslib.Category
		code     string
	}{
		{"validation", &ValidationError{Msg: MsgProgramRequired}, errorslib.CategoryValidation, "validation"},
		{"render", NewError(KindRender, "render failed", nil), errorslib.CategoryOperation, "render"},
		{"unsupported", NewError(KindUnsupported, MsgImageUnsupported, nil), errorslib.CategoryOperation, "unsupported"},
		{"image", NewError(KindImageDecode, "decode image", errors.New("bad")), errorslib.CategoryOperation, "image_decode"},
		{"not found", NewError(KindNotFound, "missing", nil), errorslib.CategoryNotFound, "not_found"},
		{"timeout", fmt.Errorf("wrap: %w", context.DeadlineExceeded), errorslib.CategoryOperation, "timeout"},
		{"canceled", context.Canceled, errorslib.CategoryOperation, "canceled"},
		{"plain", errors.New("boom"), errorslib.CategoryInternal, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ge := AsGoError(tc.err)
			if ge.Category != tc.category || ge.TextCode != tc.code {
				t.Fatalf("expected %v/%s, got %v/%s", tc.category, tc.code, ge.Category, ge.TextCode)
			}
		})
	}
}

func TestAsGoError_KeepsMessageAndRoundTrips(t *testing.T) {
	if AsGoError(nil) != nil {
		t.Fatalf("nil error must map to nil")
	}
	ge := AsGoError(&ValidationError{Msg: MsgPhotosRequired})
	if !strings.Contains(ge.Error(), MsgPhotosRequired) {
		t.Fatalf("expected user message, got %q", ge.Error())
	}
	if KindFromError(ge) != KindValidation {
		t.Fatalf("expected validation kind after mapping, got %s", KindFromError(ge))
	}
	if !IsUnsupported(AsGoError(NewError(KindUnsupported, "no chrome", nil))) {
		t.Fatalf("unsupported kind must survive mapping")
	}
	if same := AsGoError(ge); same != ge {
		t.Fatalf("go-errors values pass through unchanged")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewError(KindRender, "render", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find cause")
	}
	if err.Error() != "render: cause" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
