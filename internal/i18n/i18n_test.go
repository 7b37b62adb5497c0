package i18n

import (
	"context"
	"testing"
)

func TestInitAndTranslate(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	ctx := WithLocalizer(context.Background(), NewLocalizer("en"))
	got := T(ctx, "ResponseSaved")
	if got != "Your answer has been saved." {
		t.Errorf("unexpected translation: %q", got)
	}

	ctxKo := WithLocalizer(context.Background(), NewLocalizer("ko"))
	gotKo := T(ctxKo, "ResponseSaved")
	if gotKo != "답안이 저장되었습니다." {
		t.Errorf("unexpected ko translation: %q", gotKo)
	}
}

func TestTemplateData(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	ctx := WithLocalizer(context.Background(), NewLocalizer("en"))
	got := Td(ctx, "DatasetLoaded", map[string]any{"Count": 12})
	if got != "Loaded 12 items successfully." {
		t.Errorf("unexpected translation: %q", got)
	}
}

func TestMissingMessageFallsBackToID(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	ctx := WithLocalizer(context.Background(), NewLocalizer("en"))
	if got := T(ctx, "NoSuchMessage"); got != "NoSuchMessage" {
		t.Errorf("expected message ID fallback, got %q", got)
	}
}

func TestNoLocalizerInContext(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// A bare context falls back to the English localizer.
	if got := T(context.Background(), "LoginRequired"); got != "Login required." {
		t.Errorf("unexpected fallback translation: %q", got)
	}
}
