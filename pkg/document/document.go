// Package document loads and saves schema layouts as XML, YAML or
// MessagePack documents.
//
// Decoding never validates the layout. A decoded schema that breaks an
// invariant fails when it is rendered, with the schema package's own error.
package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/mizuchilabs/sqlite-layout/pkg/schema"
)

// ErrFormat is returned for unreadable documents and unknown formats.
var ErrFormat = errors.New("document: invalid layout document")

// Format names a document encoding.
type Format string

const (
	XML     Format = "xml"
	YAML    Format = "yaml"
	Msgpack Format = "msgpack"
)

// Formats returns every supported format.
func Formats() []Format { return []Format{XML, YAML, Msgpack} }

// ParseFormat returns the format with the given name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case XML, YAML, Msgpack:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", ErrFormat, name)
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return XML, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".msgpack", ".mpk":
		return Msgpack, nil
	}
	return "", fmt.Errorf("%w: cannot tell format of %s", ErrFormat, path)
}

// Marshal encodes s in the given format.
func Marshal(f Format, s schema.Schema) ([]byte, error) {
	doc, err := fromSchema(s)
	if err != nil {
		return nil, err
	}

	switch f {
	case XML:
		return encodeXML(doc)
	case YAML:
		return encodeYAML(doc)
	case Msgpack:
		return msgpack.Marshal(doc)
	}
	return nil, fmt.Errorf("%w: unknown format %q", ErrFormat, f)
}

// Unmarshal decodes a document in the given format.
func Unmarshal(f Format, data []byte) (schema.Schema, error) {
	var doc schemaDoc
	var err error
	switch f {
	case XML:
		err = xml.Unmarshal(data, &doc)
	case YAML:
		err = decodeYAML(data, &doc)
	case Msgpack:
		err = msgpack.Unmarshal(data, &doc)
	default:
		return schema.Schema{}, fmt.Errorf("%w: unknown format %q", ErrFormat, f)
	}
	if err != nil {
		return schema.Schema{}, fmt.Errorf("%w: decode %s: %w", ErrFormat, f, err)
	}
	return doc.toSchema()
}

// Load reads a layout document, choosing the format from the extension.
func Load(path string) (schema.Schema, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return schema.Schema{}, err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return schema.Schema{}, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Unmarshal(f, data)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path, choosing the format from the extension.
func Save(path string, s schema.Schema) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(f, s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func encodeXML(doc *schemaDoc) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeYAML(doc *schemaDoc) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeYAML(data []byte, doc *schemaDoc) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(doc)
}
