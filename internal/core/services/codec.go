package services

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

// Base64DecodeUnicode decodes a base64 payload whose bytes are UTF-8 text.
// Whitespace inside the payload is ignored and padding is optional.
//
// Percent-escaping every byte and URI-decoding the result accepts exactly
// the well-formed UTF-8 byte sequences, so the second step is a strict
// UTF-8 validation: invalid sequences and encoded surrogates are errors.
func Base64DecodeUnicode(payload string) (string, error) {
	raw, err := decodeBase64(payload)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: payload is not valid UTF-8", domain.ErrDecodeFailed)
	}
	return string(raw), nil
}

// Base64DecodeRaw decodes a base64 payload and maps each byte to the
// character with the same code point, without interpreting the bytes as
// Unicode. A leading byte order mark switches to UTF-16 (or UTF-8) and is
// dropped from the result.
func Base64DecodeRaw(payload string) (string, error) {
	raw, err := decodeBase64(payload)
	if err != nil {
		return "", err
	}
	text, _, err := transform.Bytes(unicode.BOMOverride(charmap.ISO8859_1.NewDecoder()), raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecodeFailed, err)
	}
	return string(text), nil
}

// Base64EncodeUnicode is the inverse of Base64DecodeUnicode.
func Base64EncodeUnicode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// decodeBase64 removes ASCII whitespace, then decodes. Padding is optional
// but, when present, must complete the final quantum.
func decodeBase64(payload string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			return -1
		}
		return r
	}, payload)

	enc := base64.RawStdEncoding
	if len(cleaned)%4 == 0 {
		enc = base64.StdEncoding
	}
	raw, err := enc.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecodeFailed, err)
	}
	return raw, nil
}
