// Package markup converts between the headless XML documents the journal
// service stores and serves, and the typed records of each collection.
//
// Records are plain structs whose string fields carry `xml:"name"` tags. The
// struct field order is the element order on the wire. Decoding is tolerant:
// an element that is missing from a record leaves the field as "", and a
// document without the expected root or items decodes to an empty slice.
package markup

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// DecodeError reports a document that is not well-formed XML.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("markup: invalid XML: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err (or anything it wraps) is a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// DecodeCollection parses a document of the form
//
//	<collectionTag><itemTag>…</itemTag>…</collectionTag>
//
// into records of type T, preserving document order. Elements that are not
// itemTag are skipped. An empty document, or one whose root is not
// collectionTag, yields an empty slice. Field text is kept verbatim.
func DecodeCollection[T any](doc []byte, collectionTag, itemTag string) ([]T, error) {
	items := make([]T, 0)

	dec := xml.NewDecoder(bytes.NewReader(doc))
	root, err := rootElement(dec)
	if errors.Is(err, io.EOF) {
		return items, nil
	}
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if root.Name.Local != collectionTag {
		if err := dec.Skip(); err != nil {
			return nil, &DecodeError{Err: err}
		}
		if err := trailer(dec); err != nil {
			return nil, err
		}
		return items, nil
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != itemTag {
				if err := dec.Skip(); err != nil {
					return nil, &DecodeError{Err: err}
				}
				continue
			}
			var item T
			if err := dec.DecodeElement(&item, &t); err != nil {
				return nil, &DecodeError{Err: err}
			}
			items = append(items, item)
		case xml.EndElement:
			if err := trailer(dec); err != nil {
				return nil, err
			}
			return items, nil
		}
	}
}

// EncodeCollection renders items as a headless document rooted at
// collectionTag with one itemTag element per record. The output is indented
// with two spaces; an empty collection renders as <collectionTag></collectionTag>.
//
// String values must be valid XML character data; control characters other
// than tab, newline and carriage return are replaced by U+FFFD.
func EncodeCollection[T any](items []T, collectionTag, itemTag string) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	start := xml.StartElement{Name: xml.Name{Local: collectionTag}}
	if err := enc.EncodeToken(start); err != nil {
		return nil, fmt.Errorf("markup: encode %s: %w", collectionTag, err)
	}
	item := xml.StartElement{Name: xml.Name{Local: itemTag}}
	for i := range items {
		if err := enc.EncodeElement(items[i], item); err != nil {
			return nil, fmt.Errorf("markup: encode %s[%d]: %w", itemTag, i, err)
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return nil, fmt.Errorf("markup: encode %s: %w", collectionTag, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("markup: flush: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSingle parses a request body holding one record rooted at itemTag.
// An empty body or a different root yields the zero record so that field
// validation reports what is missing. Leading and trailing whitespace is
// trimmed from every string field.
func DecodeSingle[T any](doc []byte, itemTag string) (T, error) {
	var item T

	dec := xml.NewDecoder(bytes.NewReader(doc))
	root, err := rootElement(dec)
	if errors.Is(err, io.EOF) {
		return item, nil
	}
	if err != nil {
		return item, &DecodeError{Err: err}
	}
	if root.Name.Local != itemTag {
		if err := dec.Skip(); err != nil {
			return item, &DecodeError{Err: err}
		}
	} else if err := dec.DecodeElement(&item, &root); err != nil {
		var zero T
		return zero, &DecodeError{Err: err}
	}
	if err := trailer(dec); err != nil {
		var zero T
		return zero, err
	}

	trimStrings(reflect.ValueOf(&item).Elem())
	return item, nil
}

// rootElement advances dec to the first start element. Only the prolog,
// comments, directives and whitespace may precede it.
func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return xml.StartElement{}, fmt.Errorf("text %q before root element", truncate(string(t)))
			}
		}
	}
}

// trailer consumes whatever follows the root element and fails on a second
// root or stray text.
func trailer(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &DecodeError{Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return &DecodeError{Err: fmt.Errorf("unexpected second root element <%s>", t.Name.Local)}
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return &DecodeError{Err: fmt.Errorf("text %q after root element", truncate(string(t)))}
			}
		}
	}
}

func trimStrings(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 32 {
		return s[:32] + "…"
	}
	return s
}
