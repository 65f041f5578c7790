package cleaner

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
)

// XML returns a cleaner that parses the document and removes processing
// instructions, directives, comments and namespaced attributes (including
// xmlns:* declarations) before serializing it again. Unlike Default it fails
// on malformed documents.
func XML() Cleaner {
	return Func(func(_ context.Context, raw string) (string, error) {
		doc := etree.NewDocument()
		if err := doc.ReadFromString(raw); err != nil {
			return "", fmt.Errorf("failed to parse svg: %w", err)
		}

		pruneElement(&doc.Element, true)

		out, err := doc.WriteToString()
		if err != nil {
			return "", fmt.Errorf("failed to serialize svg: %w", err)
		}
		return out, nil
	})
}

// pruneElement removes unwanted tokens below e. At document level whitespace
// between top-level tokens is dropped as well.
func pruneElement(e *etree.Element, topLevel bool) {
	kept := e.Attr[:0]
	for _, a := range e.Attr {
		if a.Space == "" {
			kept = append(kept, a)
		}
	}
	e.Attr = kept

	// Iterate over a copy: RemoveChild reslices e.Child.
	children := append([]etree.Token(nil), e.Child...)
	for _, child := range children {
		switch c := child.(type) {
		case *etree.Comment, *etree.Directive, *etree.ProcInst:
			e.RemoveChild(c)
		case *etree.CharData:
			if topLevel && c.IsWhitespace() {
				e.RemoveChild(c)
			}
		case *etree.Element:
			pruneElement(c, false)
		}
	}
}
