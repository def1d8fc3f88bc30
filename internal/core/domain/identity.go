package domain

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// NeutralCulture is the display name of the invariant culture.
const NeutralCulture = "neutral"

// publicKeyTokenSize is the length in bytes of a public key token.
const publicKeyTokenSize = 8

// undefinedPart marks a version component that was not written.
const undefinedPart = -1

// Version is a four-part assembly version.
// Components that were not specified are undefined, so 1.0 and 1.0.0.0 are different versions.
type Version struct {
	Major    int32
	Minor    int32
	Build    int32
	Revision int32
}

// NewVersion returns a fully specified version.
func NewVersion(major, minor, build, revision uint16) Version {
	return Version{
		Major:    int32(major),
		Minor:    int32(minor),
		Build:    int32(build),
		Revision: int32(revision),
	}
}

// ParseVersion parses a dotted version with two to four numeric components.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 4 {
		return Version{}, zerr.With(zerr.New("version must have two to four components"), "version", s)
	}

	v := Version{Build: undefinedPart, Revision: undefinedPart}
	fields := []*int32{&v.Major, &v.Minor, &v.Build, &v.Revision}
	for i, part := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 16)
		if err != nil {
			return Version{}, zerr.With(zerr.New("version component is not a number in 0-65535"), "version", s)
		}
		*fields[i] = int32(n)
	}
	return v, nil
}

// String renders the version with its defined components only.
func (v Version) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(v.Major)))
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(int(v.Minor)))
	if v.Build == undefinedPart {
		return b.String()
	}
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(int(v.Build)))
	if v.Revision == undefinedPart {
		return b.String()
	}
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(int(v.Revision)))
	return b.String()
}

// PublicKeyToken is the 8-byte token derived from an assembly's public key.
// A non-nil empty token stands for an explicit "null" (unsigned assembly).
type PublicKeyToken []byte

// ParsePublicKeyToken parses a 16 digit hex token or the literal "null".
func ParsePublicKeyToken(s string) (PublicKeyToken, error) {
	if strings.EqualFold(s, "null") {
		return PublicKeyToken{}, nil
	}
	if len(s) != 2*publicKeyTokenSize {
		return nil, zerr.With(zerr.New("public key token must be 16 hex digits or null"), "token", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, zerr.With(zerr.New("public key token must be 16 hex digits or null"), "token", s)
	}
	return PublicKeyToken(b), nil
}

// Equal reports whether both tokens hold the same bytes.
func (t PublicKeyToken) Equal(other PublicKeyToken) bool {
	return bytes.Equal(t, other)
}

// String returns the lowercase hex form, or "null" for an empty token.
func (t PublicKeyToken) String() string {
	if len(t) == 0 {
		return "null"
	}
	return hex.EncodeToString(t)
}

// RequestedIdentity is a possibly partial identity parsed from a reference string.
// A nil Version or a nil Token means the field was not given and acts as a wildcard.
type RequestedIdentity struct {
	Name    string
	Version *Version
	Token   PublicKeyToken
	// Culture is informational only and never compared.
	Culture string
}

// HasToken reports whether the request constrains the public key token.
func (r RequestedIdentity) HasToken() bool {
	return r.Token != nil
}

// String renders the request in display form with only the fields that were given.
func (r RequestedIdentity) String() string {
	parts := []string{r.Name}
	if r.Version != nil {
		parts = append(parts, "Version="+r.Version.String())
	}
	if r.Culture != "" {
		parts = append(parts, "Culture="+r.Culture)
	}
	if r.HasToken() {
		parts = append(parts, "PublicKeyToken="+r.Token.String())
	}
	return strings.Join(parts, ", ")
}

// FoundIdentity is the identity read from a binary on disk. Every field is populated.
type FoundIdentity struct {
	Name    string
	Version Version
	Token   PublicKeyToken
	Culture string
}

// String renders the full display name of the binary.
func (f FoundIdentity) String() string {
	culture := f.Culture
	if culture == "" {
		culture = NeutralCulture
	}
	return f.Name +
		", Version=" + f.Version.String() +
		", Culture=" + culture +
		", PublicKeyToken=" + f.Token.String()
}

// ParseIdentity parses "Name[, Version=a.b.c.d][, Culture=x][, PublicKeyToken=hex|null]".
// Keys are case-insensitive, values may be quoted and unknown keys are ignored.
func ParseIdentity(s string) (RequestedIdentity, error) {
	segments := strings.Split(s, ",")

	name := strings.TrimSpace(segments[0])
	if name == "" {
		return RequestedIdentity{}, malformed(s, zerr.New("simple name is empty"))
	}
	if strings.ContainsAny(name, "=\"'") {
		return RequestedIdentity{}, malformed(s, zerr.New("simple name contains a reserved character"))
	}

	id := RequestedIdentity{Name: name}
	seen := make(map[string]bool)

	for _, segment := range segments[1:] {
		key, value, ok := strings.Cut(segment, "=")
		if !ok {
			return RequestedIdentity{}, malformed(s, zerr.With(zerr.New("expected key=value"), "field", strings.TrimSpace(segment)))
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = unquote(strings.TrimSpace(value))
		if key == "" {
			return RequestedIdentity{}, malformed(s, zerr.New("field name is empty"))
		}
		if seen[key] {
			return RequestedIdentity{}, malformed(s, zerr.With(zerr.New("duplicate field"), "field", key))
		}
		seen[key] = true

		switch key {
		case "version":
			v, err := ParseVersion(value)
			if err != nil {
				return RequestedIdentity{}, malformed(s, err)
			}
			id.Version = &v
		case "publickeytoken":
			t, err := ParsePublicKeyToken(value)
			if err != nil {
				return RequestedIdentity{}, malformed(s, err)
			}
			id.Token = t
		case "culture":
			if strings.EqualFold(value, NeutralCulture) {
				value = NeutralCulture
			}
			id.Culture = value
		}
	}

	return id, nil
}

// IsCompatible reports whether a found binary satisfies a request.
// Names match exactly. Version and token are compared only when the request carries them.
func IsCompatible(found FoundIdentity, requested RequestedIdentity) bool {
	if found.Name != requested.Name {
		return false
	}
	if requested.Version != nil && *requested.Version != found.Version {
		return false
	}
	if requested.HasToken() && !requested.Token.Equal(found.Token) {
		return false
	}
	return true
}

func malformed(identity string, cause error) error {
	return errors.Join(ErrMalformedIdentity, zerr.With(zerr.Wrap(cause, "cannot parse identity"), "identity", identity))
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
