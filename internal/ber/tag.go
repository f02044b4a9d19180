// Package ber implements the subset of ASN.1 Basic Encoding Rules used by
// LDAP v3 (X.690, as restricted by RFC 4511): definite-length BOOLEAN,
// INTEGER, OCTET STRING, NULL, ENUMERATED and OBJECT IDENTIFIER primitives,
// and SEQUENCE/SET/application/context-specific constructed values. The
// tag/length/value walk itself is delegated to go-asn1-ber/asn1-ber
// (see decode.go, encode.go); this package keeps its own Packet/Tag
// shape on top so the rest of the module never touches that library's
// types directly.
package ber

import "fmt"

// Class is the top two bits of an identifier octet.
type Class byte

const (
	ClassUniversal       Class = 0x00
	ClassApplication     Class = 0x40
	ClassContextSpecific Class = 0x80
	ClassPrivate         Class = 0xC0
)

func (c Class) String() string {
	switch c {
	case ClassUniversal:
		return "universal"
	case ClassApplication:
		return "application"
	case ClassContextSpecific:
		return "context"
	case ClassPrivate:
		return "private"
	default:
		return "unknown-class"
	}
}

// Universal tag numbers used by LDAP.
const (
	TagBoolean     = 0x01
	TagInteger     = 0x02
	TagOctetString = 0x04
	TagNull        = 0x05
	TagObjectID    = 0x06
	TagEnumerated  = 0x0A
	TagSequence    = 0x10
	TagSet         = 0x11
)

// Tag identifies a BER identifier octet(s): class, constructed bit and
// tag number. Tag numbers above 30 use the high-tag-number form on the
// wire; Tag itself just stores the logical number.
type Tag struct {
	Class       Class
	Constructed bool
	Number      uint64
}

func (t Tag) String() string {
	cons := "primitive"
	if t.Constructed {
		cons = "constructed"
	}
	return fmt.Sprintf("%s/%s/%d", t.Class, cons, t.Number)
}

func (t Tag) Equal(o Tag) bool {
	return t.Class == o.Class && t.Constructed == o.Constructed && t.Number == o.Number
}

// Universal convenience tags, always primitive except the constructed ones.
var (
	TagBooleanPrimitive     = Tag{ClassUniversal, false, TagBoolean}
	TagIntegerPrimitive     = Tag{ClassUniversal, false, TagInteger}
	TagOctetStringPrimitive = Tag{ClassUniversal, false, TagOctetString}
	TagNullPrimitive        = Tag{ClassUniversal, false, TagNull}
	TagObjectIDPrimitive    = Tag{ClassUniversal, false, TagObjectID}
	TagEnumeratedPrimitive  = Tag{ClassUniversal, false, TagEnumerated}
	TagSequenceConstructed  = Tag{ClassUniversal, true, TagSequence}
	TagSetConstructed       = Tag{ClassUniversal, true, TagSet}
)

// Application builds an application-class tag, constructed or not.
func Application(number uint64, constructed bool) Tag {
	return Tag{ClassApplication, constructed, number}
}

// ContextSpecific builds a context-specific tag, constructed or not.
func ContextSpecific(number uint64, constructed bool) Tag {
	return Tag{ClassContextSpecific, constructed, number}
}
