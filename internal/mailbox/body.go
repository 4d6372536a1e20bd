package mailbox

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// MaxBodyRunes bounds the text handed to the extractor.
const MaxBodyRunes = 5000

const (
	mimePlain = "text/plain"
	mimeHTML  = "text/html"
)

// Part is one node of a MIME tree as returned by the Gmail API.
type Part struct {
	MimeType string   `json:"mimeType"`
	Headers  []Header `json:"headers,omitempty"`
	Body     PartBody `json:"body"`
	Parts    []Part   `json:"parts,omitempty"`
}

// PartBody carries the base64url payload of a leaf part.
type PartBody struct {
	Size int    `json:"size,omitempty"`
	Data string `json:"data,omitempty"`
}

// Header is a single RFC 5322 header.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// header returns the first header matching name case-insensitively.
func (p Part) header(name string) (string, bool) {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// ExtractBody returns the best text body of a MIME tree: the first
// text/plain leaf wins, text/html is the fallback, and nested multiparts are
// searched depth first. Undecodable content yields "".
func ExtractBody(p Part) string {
	return TruncateBody(findBody(p))
}

func findBody(p Part) string {
	if len(p.Parts) == 0 {
		text, _ := decodeData(p.Body.Data)
		return text
	}

	var body string
	for _, part := range p.Parts {
		switch {
		case part.MimeType == mimePlain && part.Body.Data != "":
			if text, ok := decodeData(part.Body.Data); ok {
				return text
			}
		case part.MimeType == mimeHTML && body == "" && part.Body.Data != "":
			if text, ok := decodeData(part.Body.Data); ok {
				body = text
			}
		case len(part.Parts) > 0:
			if nested := findBody(part); nested != "" {
				return nested
			}
		}
	}
	return body
}

// decodeData accepts padded and unpadded base64url and drops invalid UTF-8.
func decodeData(data string) (string, bool) {
	if data == "" {
		return "", false
	}
	raw, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return "", false
		}
	}
	return strings.ToValidUTF8(string(raw), ""), true
}

// TruncateBody cuts body to at most MaxBodyRunes runes. Every path that hands
// a body to the extractor goes through it.
func TruncateBody(body string) string {
	if utf8.RuneCountInString(body) <= MaxBodyRunes {
		return body
	}
	return string([]rune(body)[:MaxBodyRunes])
}
