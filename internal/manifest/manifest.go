// Package manifest reads and rewrites the mod's info.json.
//
// Only the "version" field is ever changed. Every other key keeps its value
// and its position, so a bump produces a one-line diff.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ariel-frischer/modkit/internal/fileutil"
	"github.com/ariel-frischer/modkit/internal/version"
)

const versionKey = "version"

type field struct {
	key string
	raw json.RawMessage
}

// Manifest is an info.json document with its key order preserved.
type Manifest struct {
	fields          []field
	trailingNewline bool
}

// Load reads the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a top-level JSON object, keeping its keys in document order.
func Parse(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object at top level")
	}

	m := &Manifest{trailingNewline: bytes.HasSuffix(data, []byte("\n"))}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding value of %q: %w", key, err)
		}
		m.fields = append(m.fields, field{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

// Keys returns the top-level keys in document order.
func (m *Manifest) Keys() []string {
	keys := make([]string, len(m.fields))
	for i, f := range m.fields {
		keys[i] = f.key
	}
	return keys
}

// String returns the string value stored under key, or "" if the key is
// absent or not a string.
func (m *Manifest) String(key string) string {
	raw, ok := m.lookup(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Name returns the mod's internal name.
func (m *Manifest) Name() string {
	return m.String("name")
}

// Version parses the "version" field.
func (m *Manifest) Version() (version.Version, error) {
	raw, ok := m.lookup(versionKey)
	if !ok {
		return version.Version{}, &version.ParseError{Reason: "manifest has no version field"}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return version.Version{}, &version.ParseError{Input: string(raw), Reason: "version field is not a string"}
	}
	return version.Parse(s)
}

// SetVersion replaces the "version" field, appending it if absent.
func (m *Manifest) SetVersion(v version.Version) {
	raw, _ := json.Marshal(v.String())
	for i := range m.fields {
		if m.fields[i].key == versionKey {
			m.fields[i].raw = raw
			return
		}
	}
	m.fields = append(m.fields, field{key: versionKey, raw: raw})
}

// Marshal renders the manifest with 4-space indentation.
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, f := range m.fields {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n    ")

		key, err := marshalNoEscape(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(": ")
		if err := json.Indent(&buf, f.raw, "    ", "    "); err != nil {
			return nil, fmt.Errorf("formatting %q: %w", f.key, err)
		}
	}
	if len(m.fields) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}")
	if m.trailingNewline {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Save writes the manifest to path atomically.
func (m *Manifest) Save(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

func (m *Manifest) lookup(key string) (json.RawMessage, bool) {
	for _, f := range m.fields {
		if f.key == key {
			return f.raw, true
		}
	}
	return nil, false
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ReadVersion loads the manifest at path and returns its version.
func ReadVersion(path string) (version.Version, error) {
	m, err := Load(path)
	if err != nil {
		return version.Version{}, err
	}
	return m.Version()
}

// BumpVersion increments the final component of the manifest version,
// writes it back and returns the new version. It fails with a
// *version.ParseError when the version field is missing or non-numeric;
// the file is left untouched in that case.
func BumpVersion(path string) (version.Version, error) {
	m, err := Load(path)
	if err != nil {
		return version.Version{}, err
	}

	current, err := m.Version()
	if err != nil {
		return version.Version{}, fmt.Errorf("reading version from %s: %w", path, err)
	}

	next := current.Bump()
	m.SetVersion(next)
	if err := m.Save(path); err != nil {
		return version.Version{}, err
	}
	return next, nil
}
