package record

import (
	"errors"
	"testing"
)

func TestArrayCast_Decode(t *testing.T) {
	r, _ := New(NewAttributes(Attr("meta", `{"views":3,"tags":["a"]}`)), WithCast("meta", "array"))

	meta, err := As[map[string]any](r, "meta")
	if err != nil {
		t.Fatalf("As() error: %v", err)
	}
	if meta["views"] != float64(3) {
		t.Errorf("views = %v, want 3", meta["views"])
	}
	if tags, ok := meta["tags"].([]any); !ok || len(tags) != 1 {
		t.Errorf("tags = %v", meta["tags"])
	}
}

func TestArrayCast_MutateInPlace(t *testing.T) {
	r, _ := New(NewAttributes(Attr("meta", `{"views":3}`)), WithCast("meta", "array"))

	meta, _ := As[map[string]any](r, "meta")
	meta["views"] = 4

	attrs, err := r.GetAttributes()
	if err != nil {
		t.Fatalf("GetAttributes() error: %v", err)
	}
	if v, _ := attrs.Get("meta"); v != `{"views":4}` {
		t.Errorf("raw meta = %v", v)
	}
}

func TestArrayCast_NonText(t *testing.T) {
	r, _ := New(NewAttributes(Attr("meta", 7)), WithCast("meta", "array"))
	if v, _ := r.GetAttribute("meta"); v != 7 {
		t.Errorf("GetAttribute() = %v, want raw 7", v)
	}
}

func TestArrayCast_DecodeError(t *testing.T) {
	r, _ := New(NewAttributes(Attr("meta", "{broken")), WithCast("meta", "array"))
	if _, err := r.GetAttribute("meta"); !errors.Is(err, ErrUnmarshal) {
		t.Errorf("GetAttribute() error = %v, want ErrUnmarshal", err)
	}
}
