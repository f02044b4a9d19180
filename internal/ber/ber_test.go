package ber

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, p *Packet) *Packet {
	encoded := Encode(p)
	decoded, rest, err := Decode(encoded)
	require.NoError(t, err)
	require.Empty(t, rest)
	return decoded
}

func TestEncodeDecodeBoolean(t *testing.T) {
	for _, v := range []bool{true, false} {
		p := NewBoolean(TagBooleanPrimitive, v, "typesOnly")
		got := roundTrip(t, p)
		b, err := got.Bool()
		require.NoError(t, err)
		require.Equal(t, v, b)
	}
}

func TestEncodeDecodeInteger(t *testing.T) {
	values := []int64{0, 1, -1, 127, 128, -128, -129, 1 << 20, -(1 << 20), 1<<62 - 1, -(1 << 62)}
	for _, v := range values {
		p := NewInteger(TagIntegerPrimitive, v, "messageID")
		got := roundTrip(t, p)
		i, err := got.Int()
		require.NoError(t, err)
		require.Equal(t, v, i)
	}
}

func TestEncodeIntegerIsMinimal(t *testing.T) {
	require.Equal(t, []byte{0x00}, encodeInteger(0))
	require.Equal(t, []byte{0x7F}, encodeInteger(127))
	require.Equal(t, []byte{0x00, 0x80}, encodeInteger(128))
	require.Equal(t, []byte{0xFF}, encodeInteger(-1))
	require.Equal(t, []byte{0x80}, encodeInteger(-128))
	require.Equal(t, []byte{0xFF, 0x7F}, encodeInteger(-129))
}

func TestEncodeDecodeOctetString(t *testing.T) {
	for _, v := range []string{"", "dc=example,dc=org", "\x00\x01binary"} {
		p := NewString(TagOctetStringPrimitive, v, "name")
		got := roundTrip(t, p)
		require.Equal(t, v, got.String())
	}
}

func TestDecodeNonCanonicalBooleanRejected(t *testing.T) {
	_, _, err := Decode([]byte{0x01, 0x01, 0x12})
	require.Error(t, err)
	require.IsType(t, &MalformedBERError{}, err)
}

func TestDecodeNeedMoreBytes(t *testing.T) {
	full := Encode(NewString(TagOctetStringPrimitive, "dc=example,dc=org", "name"))
	for n := 0; n < len(full); n++ {
		_, _, err := Decode(full[:n])
		require.Error(t, err)
		require.IsType(t, &NeedMoreBytesError{}, err)
	}

	p, rest, err := Decode(full)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, "dc=example,dc=org", p.String())
}

func TestDecodeLengthExceedsBuffer(t *testing.T) {
	_, _, err := Decode([]byte{0x04, 0x7F, 0x01})
	require.Error(t, err)
	require.IsType(t, &NeedMoreBytesError{}, err)
}

func TestDecodeIntegerOverflow(t *testing.T) {
	content := make([]byte, 9)
	data := append([]byte{0x02, 0x09}, content...)
	_, _, err := Decode(data)
	require.Error(t, err)
	require.IsType(t, &IntegerOverflowError{}, err)
}

func TestEmptySequenceRoundTrips(t *testing.T) {
	p := NewSequence("empty")
	got := roundTrip(t, p)
	require.Empty(t, got.Children)
}

func TestZeroLengthOctetStringDistinctFromAbsent(t *testing.T) {
	p := NewString(TagOctetStringPrimitive, "", "blank")
	encoded := Encode(p)
	require.Equal(t, []byte{TagOctetString, 0x00}, encoded)

	got := roundTrip(t, p)
	require.Equal(t, "", got.String())
	require.NotNil(t, got.Content)
}

func TestNestedSequenceRoundTrips(t *testing.T) {
	inner := NewSequence("rdn")
	inner.AppendChild(NewString(TagOctetStringPrimitive, "cn", "attr"))
	inner.AppendChild(NewString(TagOctetStringPrimitive, "foo", "val"))

	outer := NewSequence("dn")
	outer.AppendChild(inner)
	outer.AppendChild(NewInteger(TagIntegerPrimitive, 3, "depth"))

	got := roundTrip(t, outer)
	require.Len(t, got.Children, 2)
	require.Len(t, got.Children[0].Children, 2)
	require.Equal(t, "cn", got.Children[0].Children[0].String())
	require.Equal(t, int64(3), got.Children[1].Value)
}

func TestApplicationAndContextSpecificTags(t *testing.T) {
	p := NewConstructed(Application(3, true), "searchRequest")
	p.AppendChild(NewString(ContextSpecific(0, false), "simple", "bindChoice"))

	got := roundTrip(t, p)
	require.Equal(t, ClassApplication, got.Tag.Class)
	require.True(t, got.Tag.Constructed)
	require.Equal(t, uint64(3), got.Tag.Number)
	require.Equal(t, "simple", got.Children[0].String())
}

func TestHighTagNumberRoundTrips(t *testing.T) {
	p := NewString(ContextSpecific(200, false), "v", "bigtag")
	got := roundTrip(t, p)
	require.Equal(t, uint64(200), got.Tag.Number)
}

func TestIndefiniteLengthConstructedAccepted(t *testing.T) {
	child := Encode(NewString(TagOctetStringPrimitive, "x", "c"))
	data := append([]byte{0x30, 0x80}, child...)
	data = append(data, 0x00, 0x00)

	p, rest, err := Decode(data)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Len(t, p.Children, 1)
	require.Equal(t, "x", p.Children[0].String())
}
