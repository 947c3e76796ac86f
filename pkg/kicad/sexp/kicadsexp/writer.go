package kicadsexp

import (
	"bufio"
	"io"
	"strings"
)

// maxInlineWidth is the longest list that is still written on a single line
const maxInlineWidth = 72

// Write serializes s using the indented layout pcbnew produces: short lists
// stay on one line, longer ones put every child list on its own line.
func Write(w io.Writer, s Sexp) error {
	bw := bufio.NewWriter(w)
	writeNode(bw, s, 0)
	bw.WriteByte('\n')
	return bw.Flush()
}

// Format returns the serialized form of s (see Write)
func Format(s Sexp) string {
	var sb strings.Builder
	_ = Write(&sb, s)
	return sb.String()
}

func writeNode(w *bufio.Writer, s Sexp, depth int) {
	list, ok := s.(*List)
	if !ok {
		w.WriteString(s.String())
		return
	}

	flat := list.String()
	if depth > 0 && (len(flat) <= maxInlineWidth || !hasSubList(list)) {
		w.WriteString(flat)
		return
	}

	w.WriteByte('(')
	i := 0
	// leading atoms stay on the opening line: (footprint "R_0603" (layer ...
	for ; i < len(list.elements); i++ {
		if !list.elements[i].IsLeaf() {
			break
		}
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(list.elements[i].String())
	}
	for ; i < len(list.elements); i++ {
		w.WriteByte('\n')
		indent(w, depth+1)
		writeNode(w, list.elements[i], depth+1)
	}
	w.WriteByte('\n')
	indent(w, depth)
	w.WriteByte(')')
}

func hasSubList(l *List) bool {
	for _, elem := range l.elements {
		if !elem.IsLeaf() {
			return true
		}
	}
	return false
}

func indent(w *bufio.Writer, depth int) {
	for i := 0; i < depth; i++ {
		w.WriteString("  ")
	}
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}
