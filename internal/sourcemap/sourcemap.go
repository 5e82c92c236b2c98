// Package sourcemap builds version-3 source maps for emitted binaries.
// The generated position of an instruction is its byte offset in the
// code stream, recorded as a column on a single generated line.
package sourcemap

import (
	"encoding/json"
	"strings"
)

// Map is the version-3 source map document.
type Map struct {
	Version  int      `json:"version"`
	File     string   `json:"file,omitempty"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// MarshalJSON renders the document with its fields in declaration order.
func (m Map) MarshalJSON() ([]byte, error) {
	type plain Map
	return json.Marshal(plain(m))
}

type segment struct {
	col  int // generated column, a byte offset
	src  int // source index
	line int // zero-based source line
}

// Builder accumulates instruction extents during binary emission. It
// implements the emitter's instruction recorder.
type Builder struct {
	file      string
	sources   []string
	sourceIdx map[string]int
	curSource int
	curLine   int
	offset    int
	segments  []segment
}

// NewBuilder returns a builder for a map describing file.
func NewBuilder(file string) *Builder {
	return &Builder{file: file, sourceIdx: map[string]int{}, curSource: -1}
}

// SetFile selects the source subsequent instructions belong to. Sources
// are numbered in first-seen order.
func (b *Builder) SetFile(name string) {
	if idx, ok := b.sourceIdx[name]; ok {
		b.curSource = idx
		return
	}
	idx := len(b.sources)
	b.sources = append(b.sources, name)
	b.sourceIdx[name] = idx
	b.curSource = idx
}

// SetLine selects the one-based source line subsequent instructions
// belong to.
func (b *Builder) SetLine(line int) {
	b.curLine = line
}

// AddInstruction records that the next size bytes of output map to the
// current source position.
func (b *Builder) AddInstruction(size int) {
	if size <= 0 {
		return
	}
	if b.curSource >= 0 {
		b.segments = append(b.segments, segment{col: b.offset, src: b.curSource, line: b.curLine - 1})
	}
	b.offset += size
}

// Finish produces the map. The builder may be reused afterwards; further
// instructions extend the same mapping.
func (b *Builder) Finish() Map {
	var sb strings.Builder
	prevCol, prevSrc, prevLine := 0, 0, 0
	for i, s := range b.segments {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeVLQ(&sb, s.col-prevCol)
		writeVLQ(&sb, s.src-prevSrc)
		writeVLQ(&sb, s.line-prevLine)
		writeVLQ(&sb, 0) // source column
		prevCol, prevSrc, prevLine = s.col, s.src, s.line
	}
	sources := b.sources
	if sources == nil {
		sources = []string{}
	}
	return Map{
		Version:  3,
		File:     b.file,
		Sources:  sources,
		Names:    []string{},
		Mappings: sb.String(),
	}
}

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// writeVLQ appends the base64 VLQ encoding of v: sign in the low bit,
// five value bits per character, 0x20 as the continuation bit.
func writeVLQ(sb *strings.Builder, v int) {
	u := uint32(v) << 1
	if v < 0 {
		u = uint32(-v)<<1 | 1
	}
	for {
		digit := u & 0x1F
		u >>= 5
		if u != 0 {
			digit |= 0x20
		}
		sb.WriteByte(base64Chars[digit])
		if u == 0 {
			return
		}
	}
}
