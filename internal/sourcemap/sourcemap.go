// Package sourcemap builds Source Map revision 3 documents for
// generated JavaScript.
//
// A Builder collects generated-to-original position pairs while code
// is emitted and assembles them into the standard JSON form: one
// mappings group per generated line, segments delta-encoded as
// base64 VLQ. Only the generated column delta resets per line; the
// source line and column deltas run across the whole document.
package sourcemap

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/cappuccino/objj-compiler/internal/token"
)

// Map is a Source Map revision 3 document.
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// JSON returns the document in its standard JSON encoding.
func (m *Map) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// mapping ties a generated position to an original position.
// All fields are zero-based.
type mapping struct {
	genLine int
	genCol  int
	srcLine int
	srcCol  int
}

// Builder accumulates position mappings for one generated file with
// a single original source.
type Builder struct {
	file       string
	source     string
	content    string
	hasContent bool
	mappings   []mapping
}

// NewBuilder creates a builder. file names the generated output and
// source the original input, as they should appear in the document.
func NewBuilder(file, source string) *Builder {
	return &Builder{file: file, source: source}
}

// SetContent embeds the original source text in the document.
func (b *Builder) SetContent(text string) {
	b.content = text
	b.hasContent = true
}

// Add records that the generated position (genLine, genCol), both
// zero-based, originates from src. Invalid source positions are
// ignored.
func (b *Builder) Add(genLine, genCol int, src token.Position) {
	if !src.IsValid() {
		return
	}
	b.mappings = append(b.mappings, mapping{
		genLine: genLine,
		genCol:  genCol,
		srcLine: src.Line - 1,
		srcCol:  src.Column - 1,
	})
}

// Len returns the number of recorded mappings.
func (b *Builder) Len() int {
	return len(b.mappings)
}

// Build assembles the final document.
func (b *Builder) Build() *Map {
	m := &Map{
		Version:  3,
		File:     b.file,
		Sources:  []string{b.source},
		Names:    []string{},
		Mappings: b.encode(),
	}
	if b.hasContent {
		m.SourcesContent = []string{b.content}
	}
	return m
}

// encode produces the mappings string. Segments are ordered by
// generated position regardless of insertion order.
func (b *Builder) encode() string {
	sorted := make([]mapping, len(b.mappings))
	copy(sorted, b.mappings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].genLine != sorted[j].genLine {
			return sorted[i].genLine < sorted[j].genLine
		}
		return sorted[i].genCol < sorted[j].genCol
	})

	var sb strings.Builder
	line := 0
	prevGenCol := 0
	prevSrcLine := 0
	prevSrcCol := 0
	first := true
	for _, m := range sorted {
		for line < m.genLine {
			sb.WriteByte(';')
			line++
			prevGenCol = 0
			first = true
		}
		if !first {
			sb.WriteByte(',')
		}
		first = false
		encodeVLQ(&sb, m.genCol-prevGenCol)
		encodeVLQ(&sb, 0) // single source file
		encodeVLQ(&sb, m.srcLine-prevSrcLine)
		encodeVLQ(&sb, m.srcCol-prevSrcCol)
		prevGenCol = m.genCol
		prevSrcLine = m.srcLine
		prevSrcCol = m.srcCol
	}
	return sb.String()
}

// base64Chars is the digit alphabet of the VLQ encoding.
const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const (
	vlqShift    = 5
	vlqBase     = 1 << vlqShift // 32
	vlqMask     = vlqBase - 1
	vlqContinue = vlqBase // continuation bit
)

// encodeVLQ appends the base64 VLQ digits of n. The sign lives in
// the lowest bit of the first digit.
func encodeVLQ(sb *strings.Builder, n int) {
	u := n << 1
	if n < 0 {
		u = (-n << 1) | 1
	}
	for {
		digit := u & vlqMask
		u >>= vlqShift
		if u > 0 {
			digit |= vlqContinue
		}
		sb.WriteByte(base64Chars[digit])
		if u == 0 {
			return
		}
	}
}
