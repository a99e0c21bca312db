package jsfmt

import (
	"golang.org/x/net/html/atom"
)

// IsVoidElement reports whether tag is an HTML element that never has
// content and is written without a closing tag. Matching is case
// sensitive so that custom components such as Input are not void.
func IsVoidElement(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}
