package patterns

import (
	"reflect"
	"testing"
)

func TestExtract_Mixed(t *testing.T) {
	t.Parallel()
	text := "Contact bob@test.org or alice@example.com (again: bob@test.org). " +
		"Call +1 555-123-4567 today. See https://example.com/page and http://foo.bar/x?y=1."
	m := Extract(text)

	if want := []string{"alice@example.com", "bob@test.org"}; !reflect.DeepEqual(m.Emails, want) {
		t.Fatalf("emails: got %v want %v", m.Emails, want)
	}
	if want := []string{"+1 555-123-4567"}; !reflect.DeepEqual(m.Phones, want) {
		t.Fatalf("phones: got %v want %v", m.Phones, want)
	}
	if want := []string{"http://foo.bar/x?y=1", "https://example.com/page"}; !reflect.DeepEqual(m.URLs, want) {
		t.Fatalf("urls: got %v want %v", m.URLs, want)
	}
}

func TestPhones_IgnoresShortNumbers(t *testing.T) {
	t.Parallel()
	got := Phones("Founded in 1998, page 42, costs 12.50")
	if len(got) != 0 {
		t.Fatalf("expected no phones, got %v", got)
	}
}

func TestExtract_EmptyTextGivesEmptyLists(t *testing.T) {
	t.Parallel()
	m := Extract("")
	if m.Emails == nil || m.Phones == nil || m.URLs == nil {
		t.Fatalf("expected non-nil slices: %+v", m)
	}
	if len(m.Emails)+len(m.Phones)+len(m.URLs) != 0 {
		t.Fatalf("expected no matches: %+v", m)
	}
}

func TestURLs_Deduplicated(t *testing.T) {
	t.Parallel()
	got := URLs("https://a.example/x, https://a.example/x and 'https://a.example/x'")
	if len(got) != 1 || got[0] != "https://a.example/x" {
		t.Fatalf("unexpected urls: %v", got)
	}
}
