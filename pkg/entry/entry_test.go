package entry

import (
	"encoding/json"
	"testing"
)

func linked(contentType string) Entry {
	return Entry{
		Sys: Sys{
			ID: "e1",
			ContentType: &ContentTypeLink{
				Sys: ContentTypeSys{ID: contentType},
			},
		},
	}
}

func TestContentTypeOf(t *testing.T) {
	tests := []struct {
		name   string
		entry  Entry
		want   string
		wantOK bool
	}{
		{
			name:   "resolved entry",
			entry:  linked("CardTypeA"),
			want:   "CardTypeA",
			wantOK: true,
		},
		{
			name:   "missing content type link",
			entry:  Entry{Sys: Sys{ID: "e2"}},
			wantOK: false,
		},
		{
			name:   "blank content type id",
			entry:  linked(""),
			wantOK: false,
		},
		{
			name:   "zero value entry",
			entry:  Entry{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ContentTypeOf(tt.entry)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if got != tt.want {
				t.Errorf("expected content type %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEntry_DecodesAPIShape(t *testing.T) {
	payload := `{
		"sys": {
			"id": "entry-42",
			"contentType": {"sys": {"id": "CardTypeB"}}
		},
		"fields": {"title": "Hello"}
	}`

	var e Entry
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		t.Fatalf("failed to decode entry: %v", err)
	}

	if e.Sys.ID != "entry-42" {
		t.Errorf("expected id %q, got %q", "entry-42", e.Sys.ID)
	}
	ct, ok := ContentTypeOf(e)
	if !ok || ct != "CardTypeB" {
		t.Errorf("expected content type CardTypeB, got %q (ok=%v)", ct, ok)
	}
	if e.Fields["title"] != "Hello" {
		t.Errorf("expected fields to round-trip, got %v", e.Fields)
	}
}

func TestReference_String(t *testing.T) {
	ref := Reference{Space: "main", Entry: "e1", Field: "cards"}
	if got := ref.String(); got != "main/e1.cards" {
		t.Errorf("unexpected reference string: %q", got)
	}
}
