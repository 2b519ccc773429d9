// Package title encodes external document and page identifiers into
// MediaWiki-legal page titles and decodes them back. The encoding is
// reversible for arbitrary identifier strings, including characters that
// MediaWiki titles and URL syntax would otherwise reject.
package title

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// Prefix keeps MediaWiki from capitalizing the first character of the
	// encoded payload.
	Prefix = "."

	// Delimiter separates the encoded document ID from the encoded page ID.
	// URL-safe Base64 output never contains this character, so the split
	// on the first occurrence is unambiguous.
	Delimiter = "."

	// ByteLimit is the maximum bytes MediaWiki allows for a page title.
	ByteLimit = 256

	// TalkNamespace addresses the discussion counterpart of a base title.
	TalkNamespace = "Talk:"
)

// TooLongError is returned when the encoded title would exceed ByteLimit.
type TooLongError struct {
	DocumentID string
	PageID     string
	Length     int
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("encoded title for document %q page %q is %d bytes, exceeds the %d byte title limit",
		e.DocumentID, e.PageID, e.Length, ByteLimit)
}

// MalformedError is returned when a title cannot be decoded back into a
// document and page ID pair.
type MalformedError struct {
	Title  string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed base title %q: %s", e.Title, e.Reason)
}

// Encode builds the base MediaWiki title for a document page. The result
// is deterministic and injective: distinct (documentID, pageID) pairs
// always produce distinct titles.
func Encode(documentID, pageID string) (string, error) {
	encoded := Prefix + base64URLEncode(documentID) + Delimiter + base64URLEncode(pageID)
	if len(encoded) > ByteLimit {
		return "", &TooLongError{DocumentID: documentID, PageID: pageID, Length: len(encoded)}
	}
	return encoded, nil
}

// Decode recovers the document and page IDs from a base title produced by
// Encode. Base64 padding is tolerated as absent.
func Decode(baseTitle string) (documentID, pageID string, err error) {
	if !strings.HasPrefix(baseTitle, Prefix) {
		return "", "", &MalformedError{Title: baseTitle, Reason: "missing title prefix"}
	}
	parts := strings.SplitN(baseTitle[len(Prefix):], Delimiter, 2)
	if len(parts) != 2 {
		return "", "", &MalformedError{Title: baseTitle, Reason: "missing document/page delimiter"}
	}
	documentID, err = base64URLDecode(parts[0])
	if err != nil {
		return "", "", &MalformedError{Title: baseTitle, Reason: "document ID is not valid base64url"}
	}
	pageID, err = base64URLDecode(parts[1])
	if err != nil {
		return "", "", &MalformedError{Title: baseTitle, Reason: "page ID is not valid base64url"}
	}
	return documentID, pageID, nil
}

// HasPrefix reports whether a title carries the document title prefix.
// It is a cheap classification test; a true result does not guarantee
// that Decode will succeed.
func HasPrefix(t string) bool {
	return strings.HasPrefix(t, Prefix)
}

// Talk returns the discussion-namespace counterpart of a base title.
func Talk(baseTitle string) string {
	return TalkNamespace + baseTitle
}

// TrimNamespace strips a leading namespace qualifier, if any, so listing
// rows from talk pages classify the same as their subject pages.
func TrimNamespace(t string) string {
	if i := strings.Index(t, ":"); i >= 0 {
		return t[i+1:]
	}
	return t
}

func base64URLEncode(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func base64URLDecode(s string) (string, error) {
	// Padding is stripped on encode; accept it anyway if present.
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
