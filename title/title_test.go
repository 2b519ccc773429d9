package title

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	pairs := []struct {
		doc, page string
	}{
		{"16344", "67799"},
		{"1", "1"},
		{"doc with spaces", "page/with/slashes"},
		{"ünïcødé-δφ", "页面"},
		{"a?&=#%+", "[brackets]{braces}"},
		{strings.Repeat("x", 50), strings.Repeat("y", 50)},
		{"", "7"}, // empty halves still round-trip
	}
	for _, p := range pairs {
		encoded, err := Encode(p.doc, p.page)
		if err != nil {
			t.Fatalf("Encode(%q, %q) failed: %v", p.doc, p.page, err)
		}
		doc, page, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", encoded, err)
		}
		if doc != p.doc || page != p.page {
			t.Errorf("round trip (%q, %q) -> %q -> (%q, %q)", p.doc, p.page, encoded, doc, page)
		}
	}
}

func TestEncodeGoldenVector(t *testing.T) {
	got, err := Encode("16344", "67799")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := ".MTYzNDQ.Njc3OTk"
	if got != want {
		t.Errorf("Encode(16344, 67799) = %q, want %q", got, want)
	}

	doc, page, err := Decode(want)
	if err != nil {
		t.Fatalf("Decode(%q) failed: %v", want, err)
	}
	if doc != "16344" || page != "67799" {
		t.Errorf("Decode(%q) = (%q, %q), want (16344, 67799)", want, doc, page)
	}
}

func TestEncodeInjective(t *testing.T) {
	pairs := [][2]string{
		{"1", "23"},
		{"12", "3"},
		{"123", ""},
		{"", "123"},
		{"1.2", "3"},
		{"1", "2.3"},
	}
	seen := make(map[string][2]string)
	for _, p := range pairs {
		encoded, err := Encode(p[0], p[1])
		if err != nil {
			t.Fatalf("Encode(%q, %q) failed: %v", p[0], p[1], err)
		}
		if prev, ok := seen[encoded]; ok {
			t.Errorf("collision: (%q, %q) and (%q, %q) both encode to %q", prev[0], prev[1], p[0], p[1], encoded)
		}
		seen[encoded] = p
	}
}

func TestEncodeTooLong(t *testing.T) {
	doc := strings.Repeat("d", 200)
	page := strings.Repeat("p", 200)
	_, err := Encode(doc, page)
	if err == nil {
		t.Fatal("expected error for oversized identifiers")
	}
	var tooLong *TooLongError
	if !errors.As(err, &tooLong) {
		t.Fatalf("expected *TooLongError, got %T: %v", err, err)
	}
	if tooLong.Length <= ByteLimit {
		t.Errorf("reported length %d should exceed limit %d", tooLong.Length, ByteLimit)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name  string
		title string
	}{
		{"no prefix", "MTYzNDQ.Njc3OTk"},
		{"no delimiter", ".MTYzNDQNjc3OTk"},
		{"invalid base64 in document half", ".???.Njc3OTk"},
		{"invalid base64 in page half", ".MTYzNDQ.???"},
		{"empty string", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.title)
			if err == nil {
				t.Fatalf("Decode(%q) should fail", tc.title)
			}
			var malformed *MalformedError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected *MalformedError, got %T: %v", err, err)
			}
		})
	}
}

func TestHasPrefix(t *testing.T) {
	if !HasPrefix(".MTYzNDQ.Njc3OTk") {
		t.Error("encoded title should have the document prefix")
	}
	if HasPrefix("Main Page") {
		t.Error("ordinary titles should not have the document prefix")
	}
}

func TestTalk(t *testing.T) {
	if got := Talk(".MTYzNDQ.Njc3OTk"); got != "Talk:.MTYzNDQ.Njc3OTk" {
		t.Errorf("Talk() = %q", got)
	}
}

func TestTrimNamespace(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Talk:.MTYzNDQ.Njc3OTk", ".MTYzNDQ.Njc3OTk"},
		{".MTYzNDQ.Njc3OTk", ".MTYzNDQ.Njc3OTk"},
		{"Main Page", "Main Page"},
	}
	for _, tc := range cases {
		if got := TrimNamespace(tc.in); got != tc.want {
			t.Errorf("TrimNamespace(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
