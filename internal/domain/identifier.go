package domain

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Identifier names one anime on one meta data provider.
// It is serialized as a URI whose host is the provider, e.g.
// https://myanimelist.net/anime/57. The zero value means "no link".
type Identifier struct {
	uri  string
	host string
}

// NewIdentifier builds the canonical identifier for a provider-local id.
func NewIdentifier(host, localID string) Identifier {
	host = strings.ToLower(strings.TrimSpace(host))
	localID = strings.TrimSpace(localID)
	if host == "" || localID == "" {
		return Identifier{}
	}
	return Identifier{
		uri:  "https://" + host + "/anime/" + localID,
		host: host,
	}
}

// ParseIdentifier parses an absolute URI into an Identifier.
// An empty string yields the zero Identifier without error.
func ParseIdentifier(raw string) (Identifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identifier{}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Identifier{}, fmt.Errorf("invalid identifier %q: %w", raw, err)
	}
	if !u.IsAbs() || u.Hostname() == "" {
		return Identifier{}, fmt.Errorf("invalid identifier %q: missing scheme or host", raw)
	}

	return Identifier{uri: raw, host: strings.ToLower(u.Hostname())}, nil
}

// MustParseIdentifier is ParseIdentifier for literals known to be valid.
func MustParseIdentifier(raw string) Identifier {
	id, err := ParseIdentifier(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// Host returns the meta data provider the identifier belongs to.
func (i Identifier) Host() string { return i.host }

// LocalID returns the provider-local part (last path segment).
func (i Identifier) LocalID() string {
	if i.uri == "" {
		return ""
	}
	u, err := url.Parse(i.uri)
	if err != nil {
		return ""
	}
	return path.Base(strings.TrimRight(u.Path, "/"))
}

func (i Identifier) String() string { return i.uri }

// IsZero reports whether the identifier is unset.
func (i Identifier) IsZero() bool { return i.uri == "" }

// MarshalText implements encoding.TextMarshaler.
func (i Identifier) MarshalText() ([]byte, error) {
	return []byte(i.uri), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Identifier) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentifier(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// FilterByHost returns the identifiers that belong to host, preserving order.
func FilterByHost(ids []Identifier, host string) []Identifier {
	var out []Identifier
	for _, id := range ids {
		if id.host == host {
			out = append(out, id)
		}
	}
	return out
}
