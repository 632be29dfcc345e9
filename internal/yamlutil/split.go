// Package yamlutil provides shared multi-document YAML stream helpers.
package yamlutil

import (
	"bytes"
	"regexp"
	"strings"
)

// Separator is the document boundary marker written between consecutive
// documents of a multi-document stream.
const Separator = "---\n"

// docSeparator matches YAML document separators: a line containing only "---"
// optionally followed by whitespace.
var docSeparator = regexp.MustCompile(`(?m)^---\s*$`)

// SplitDocuments splits a multi-document YAML byte slice into individual
// documents, filtering out empty ones. Each returned slice is a raw YAML
// document without the leading "---" separator.
func SplitDocuments(data []byte) [][]byte {
	parts := docSeparator.Split(string(data), -1)

	var docs [][]byte

	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			docs = append(docs, []byte(part))
		}
	}

	return docs
}

// JoinDocuments concatenates serialized documents into one stream, placing a
// Separator between consecutive documents and none after the last. Each
// document is terminated by a newline.
func JoinDocuments(docs [][]byte) []byte {
	var buf bytes.Buffer

	for i, doc := range docs {
		if i > 0 {
			buf.WriteString(Separator)
		}

		buf.Write(doc)

		if len(doc) > 0 && doc[len(doc)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}

	return buf.Bytes()
}

// AppendDocuments appends a stream to an existing stream, inserting a
// Separator when both are non-empty.
func AppendDocuments(stream, more []byte) []byte {
	if len(stream) == 0 {
		return append([]byte(nil), more...)
	}

	if len(more) == 0 {
		return stream
	}

	out := make([]byte, 0, len(stream)+len(Separator)+len(more)+1)
	out = append(out, stream...)

	if out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}

	out = append(out, Separator...)

	return append(out, more...)
}
