// Package serializer renders arbitrary data structures to an output
// destination in one of the supported formats.
package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Format identifies an output rendering.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// IsUnknown reports whether the format is not one of the supported formats.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	}
	return true
}

// SupportedFormats returns the names of all supported formats, for help text
// and flag validation.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatTable)}
}

// Serializer renders one data structure to the configured destination.
type Serializer interface {
	Serialize(ctx context.Context, data any) error
}

// Closer is implemented by serializers holding a releasable destination,
// such as an open file. Close is safe to call more than once.
type Closer interface {
	Close() error
}

// Writer serializes data to an io.Writer in a fixed format.
type Writer struct {
	format Format
	out    io.Writer
	closer io.Closer
	closed bool
}

// NewWriter returns a Writer rendering in the given format. An unknown
// format falls back to JSON rather than failing, so output is always
// produced.
func NewWriter(format Format, out io.Writer) *Writer {
	if format.IsUnknown() {
		format = FormatJSON
	}
	if out == nil {
		out = os.Stdout
	}
	return &Writer{format: format, out: out}
}

// NewStdoutWriter returns a Writer targeting stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout returns a Serializer writing to the given file path,
// or to stdout when the path is empty, whitespace, or StdoutURI. The caller
// should Close the returned serializer when it implements Closer.
func NewFileWriterOrStdout(format Format, path string) (Serializer, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == StdoutURI {
		return NewStdoutWriter(format), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %q: %w", path, err)
	}

	w := NewWriter(format, f)
	w.closer = f
	return w, nil
}

// Serialize renders the data in the writer's format.
func (w *Writer) Serialize(ctx context.Context, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch w.format {
	case FormatYAML:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to serialize to yaml: %w", err)
		}
		return enc.Close()
	case FormatTable:
		return w.serializeTable(data)
	default:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to serialize to json: %w", err)
		}
		return nil
	}
}

// Close releases the underlying destination, if any. Safe to call multiple
// times and on writers without a closable destination.
func (w *Writer) Close() error {
	if w.closed || w.closer == nil {
		return nil
	}
	w.closed = true
	return w.closer.Close()
}

var headingCaser = cases.Upper(language.English)

// serializeTable flattens the data into FIELD/VALUE rows. Nested structs and
// maps flatten with dotted keys, slices with [i] indexes.
func (w *Writer) serializeTable(data any) error {
	rows := flatten("", reflect.ValueOf(data))

	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", headingCaser.String("field"), headingCaser.String("value"))

	if len(rows) == 0 {
		fmt.Fprintf(tw, "%s\t\n", "<empty>")
		return tw.Flush()
	}

	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%v\n", row.key, row.value)
	}
	return tw.Flush()
}

type tableRow struct {
	key   string
	value any
}

func flatten(prefix string, v reflect.Value) []tableRow {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			if prefix == "" {
				return nil
			}
			return []tableRow{{key: prefix, value: "<nil>"}}
		}
		return flatten(prefix, v.Elem())

	case reflect.Struct:
		var rows []tableRow
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			rows = append(rows, flatten(joinKey(prefix, field.Name), v.Field(i))...)
		}
		return rows

	case reflect.Map:
		keys := make([]string, 0, v.Len())
		byKey := make(map[string]reflect.Value, v.Len())
		for _, k := range v.MapKeys() {
			key := fmt.Sprintf("%v", k.Interface())
			keys = append(keys, key)
			byKey[key] = v.MapIndex(k)
		}
		sort.Strings(keys)

		var rows []tableRow
		for _, key := range keys {
			rows = append(rows, flatten(joinKey(prefix, key), byKey[key])...)
		}
		return rows

	case reflect.Slice, reflect.Array:
		var rows []tableRow
		for i := 0; i < v.Len(); i++ {
			rows = append(rows, flatten(fmt.Sprintf("%s[%d]", prefix, i), v.Index(i))...)
		}
		return rows

	default:
		return []tableRow{{key: prefix, value: v.Interface()}}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
