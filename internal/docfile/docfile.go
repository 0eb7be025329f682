// Package docfile reads the small YAML-like header a document file may
// carry, without parsing the markup body itself. That body belongs to
// the markup layer; this package only recovers the handful of keys the
// build engine needs to decide what to build (targets, template,
// include) and hands back everything else verbatim for the markup
// layer to interpret.
package docfile

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTemplate is used when a document's header omits "template".
const DefaultTemplate = "default/template"

// Ext is the file extension recognized as a document entry point.
const Ext = ".dm"

// Header holds the recognized keys of a document's "---"-delimited
// header block.
type Header struct {
	// Targets lists the document output kinds requested (e.g. "html",
	// "pdf"), normalized to lowercase with any leading dot stripped.
	Targets []string
	// Template is the dotted path to the template this document renders
	// against, e.g. "default/template".
	Template string
	// Include lists sub-document paths, relative to the document's own
	// directory, that this document pulls into its tree.
	Include []string
	// Extra carries every header key the core does not interpret,
	// stringified, for the markup layer to consume.
	Extra map[string]string
}

// ParseHeader splits data into its header and body. A document with no
// "---" header returns a zero-value Header (Template defaulted) and the
// whole of data as the body.
func ParseHeader(data []byte) (Header, []byte, error) {
	h := Header{Template: DefaultTemplate, Extra: map[string]string{}}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("---")) {
		return h, data, nil
	}

	rest := trimmed[len("---"):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return Header{}, nil, fmt.Errorf("docfile: unterminated header")
	}
	raw := rest[:end]
	body := rest[end+len("\n---"):]
	body = bytes.TrimLeft(body, "\r\n")

	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return Header{}, nil, fmt.Errorf("docfile: parse header: %w", err)
	}

	for key, val := range fields {
		switch key {
		case "targets":
			for _, t := range stringList(val, ",") {
				h.Targets = append(h.Targets, strings.ToLower(strings.TrimPrefix(t, ".")))
			}
		case "template":
			if s := fmt.Sprint(val); s != "" {
				h.Template = s
			}
		case "include":
			h.Include = append(h.Include, stringList(val, "\n")...)
		default:
			h.Extra[key] = fmt.Sprint(val)
		}
	}

	return h, body, nil
}

// stringList normalizes a header value that may have been written as a
// YAML sequence or as a single delimited string into a trimmed,
// non-empty list of items.
func stringList(val any, sep string) []string {
	var raw []string
	switch v := val.(type) {
	case []any:
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
	case nil:
		return nil
	default:
		raw = strings.Split(fmt.Sprint(v), sep)
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
