package host

import (
	"bytes"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/valyala/quicktemplate"
)

var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// WriteHTML serializes n and its descendants. Text and attribute values are
// escaped, comments are written as-is apart from "--" sequences.
func (n *Node) WriteHTML(w io.Writer) error {
	var buf bytes.Buffer
	qw := quicktemplate.AcquireWriter(&buf)
	n.streamHTML(qw)
	quicktemplate.ReleaseWriter(qw)
	_, err := w.Write(buf.Bytes())
	return err
}

func (n *Node) streamHTML(qw *quicktemplate.Writer) {
	switch n.kind {
	case TextNode:
		qw.E().S(n.data)
	case CommentNode:
		qw.N().S("<!--")
		qw.N().S(strings.ReplaceAll(n.data, "--", "- -"))
		qw.N().S("-->")
	case ElementNode:
		qw.N().S("<")
		qw.N().S(n.tag)
		for _, a := range n.attrs {
			qw.N().S(" ")
			qw.N().S(a.Name)
			qw.N().S(`="`)
			qw.E().S(a.Value)
			qw.N().S(`"`)
		}
		qw.N().S(">")
		if voidElements[n.tag] {
			return
		}
		for _, c := range n.children {
			c.streamHTML(qw)
		}
		qw.N().S("</")
		qw.N().S(n.tag)
		qw.N().S(">")
	}
}

func (n *Node) HTML() string {
	var sb strings.Builder
	_ = n.WriteHTML(&sb)
	return sb.String()
}

func (n *Node) String() string {
	return n.HTML()
}

// Fingerprint hashes the serialized subtree; equal markup gives equal
// fingerprints regardless of node identity.
func (n *Node) Fingerprint() uint64 {
	d := xxhash.New()
	_ = n.WriteHTML(d)
	return d.Sum64()
}
