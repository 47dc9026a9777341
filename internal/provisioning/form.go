package provisioning

import (
	"sort"
	"strings"

	"github.com/muurk/wifiprov/internal/credentials"
)

// Form maps decoded field names to decoded values
type Form map[string]string

// Get returns the value of a field and whether it was submitted
func (f Form) Get(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

// DecodeComponent percent-decodes one form-urlencoded name or value.
//
// '+' becomes a space. "%XX" with two hex digits becomes the code point with
// that byte value. A '%' not followed by two hex digits is kept literally.
// Every other byte passes through unchanged.
func DecodeComponent(s string) string {
	s = strings.ReplaceAll(s, "+", " ")

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] == '%' && i+2 < len(s) {
			hi, okHi := unhex(s[i+1])
			lo, okLo := unhex(s[i+2])
			if okHi && okLo {
				b.WriteRune(rune(hi<<4 | lo))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}

	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// ParseForm splits a form-urlencoded body into decoded fields.
// A token is split at its first '=', so later '=' bytes stay in the value.
// A token without '=' is a field with an empty value; a repeated
// field keeps its last value.
func ParseForm(body string) Form {
	form := Form{}
	if body == "" {
		return form
	}

	for _, token := range strings.Split(body, "&") {
		if token == "" {
			continue
		}
		name, value, _ := strings.Cut(token, "=")
		form[DecodeComponent(name)] = DecodeComponent(value)
	}

	return form
}

const upperhex = "0123456789ABCDEF"

func shouldEscape(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return false
	case c == '-' || c == '_' || c == '.' || c == '~':
		return false
	}
	return true
}

// EncodeComponent form-urlencodes s so that DecodeComponent restores it.
func EncodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case shouldEscape(c):
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// EncodeForm encodes fields sorted by name
func EncodeForm(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, EncodeComponent(name)+"="+EncodeComponent(fields[name]))
	}

	return strings.Join(parts, "&")
}

// EncodeCredentials encodes a submission for the portal form
func EncodeCredentials(c *credentials.Credentials) string {
	return "ssid=" + EncodeComponent(c.SSID) + "&password=" + EncodeComponent(c.Password)
}

// CredentialsFromForm validates a submitted body. Checks run in a fixed
// order and the first failure is returned as a *RequestError.
func CredentialsFromForm(body string) (*credentials.Credentials, error) {
	if body == "" {
		return nil, &RequestError{Kind: KindEmptyBody, Message: MsgEmptySubmission}
	}

	form := ParseForm(body)

	password, okPassword := form.Get("password")
	ssid, okSSID := form.Get("ssid")
	if !okPassword || !okSSID {
		return nil, &RequestError{Kind: KindMissingField, Message: MsgMissingField}
	}
	if password == "" {
		return nil, &RequestError{Kind: KindEmptyPassword, Message: MsgEmptyPassword}
	}
	if ssid == "" {
		return nil, &RequestError{Kind: KindEmptySSID, Message: MsgEmptySSID}
	}

	creds, err := credentials.New(ssid, password)
	if err != nil {
		return nil, &RequestError{Kind: KindMissingField, Message: MsgMissingField, Err: err}
	}

	return creds, nil
}
