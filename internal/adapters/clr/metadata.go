package clr

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // public key tokens are defined over SHA-1
	"encoding/binary"
	"math/bits"

	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	metadataSignature = 0x424A5342
	assemblyTable     = 0x20
	maxTables         = 64

	heapStringsWide = 0x01
	heapGUIDWide    = 0x02
	heapBlobWide    = 0x04
	heapExtraData   = 0x40
)

// layout holds what is needed to size rows of the tables stream.
type layout struct {
	rows       [maxTables]uint32
	stringSize int
	guidSize   int
	blobSize   int
}

// column returns the width in bytes of one column for a given layout.
type column func(l *layout) int

func fixed(n int) column { return func(*layout) int { return n } }

func str(l *layout) int { return l.stringSize }
func guid(l *layout) int { return l.guidSize }
func blob(l *layout) int { return l.blobSize }

func index(table int) column {
	return func(l *layout) int {
		if l.rows[table] < 1<<16 {
			return 2
		}
		return 4
	}
}

func coded(tagBits int, tables ...int) column {
	return func(l *layout) int {
		var most uint32
		for _, t := range tables {
			most = max(most, l.rows[t])
		}
		if most < 1<<(16-tagBits) {
			return 2
		}
		return 4
	}
}

var (
	u16 = fixed(2)
	u32 = fixed(4)

	typeDefOrRef    = coded(2, 0x02, 0x01, 0x1B)
	hasConstant     = coded(2, 0x04, 0x08, 0x17)
	hasCustomAttr   = coded(5, 0x06, 0x04, 0x01, 0x02, 0x08, 0x09, 0x0A, 0x00, 0x0E, 0x17, 0x14, 0x11, 0x1A, 0x1B, 0x20, 0x23, 0x26, 0x27, 0x28, 0x2A, 0x2C, 0x2B)
	hasFieldMarshal = coded(1, 0x04, 0x08)
	hasDeclSecurity = coded(2, 0x02, 0x06, 0x20)
	memberRefParent = coded(3, 0x02, 0x01, 0x1A, 0x06, 0x1B)
	hasSemantics    = coded(1, 0x14, 0x17)
	methodDefOrRef  = coded(1, 0x06, 0x0A)
	memberForwarded = coded(1, 0x04, 0x06)
	customAttrType  = coded(3, 0x06, 0x0A)
	resolutionScope = coded(2, 0x00, 0x1A, 0x23, 0x01)
	fieldIndex      = index(0x04)
	methodIndex     = index(0x06)
	paramIndex      = index(0x08)
	typeDefIndex    = index(0x02)
	eventIndex      = index(0x14)
	propertyIndex   = index(0x17)
	moduleRefIndex  = index(0x1A)
)

// schemas lists the columns of every table stored before the Assembly table.
var schemas = [assemblyTable][]column{
	0x00: {u16, str, guid, guid, guid},                           // Module
	0x01: {resolutionScope, str, str},                            // TypeRef
	0x02: {u32, str, str, typeDefOrRef, fieldIndex, methodIndex}, // TypeDef
	0x03: {fieldIndex},                                           // FieldPtr
	0x04: {u16, str, blob},                                       // Field
	0x05: {methodIndex},                                          // MethodPtr
	0x06: {u32, u16, u16, str, blob, paramIndex},                 // MethodDef
	0x07: {paramIndex},                                           // ParamPtr
	0x08: {u16, u16, str},                                        // Param
	0x09: {typeDefIndex, typeDefOrRef},                           // InterfaceImpl
	0x0A: {memberRefParent, str, blob},                           // MemberRef
	0x0B: {u16, hasConstant, blob},                               // Constant
	0x0C: {hasCustomAttr, customAttrType, blob},                  // CustomAttribute
	0x0D: {hasFieldMarshal, blob},                                // FieldMarshal
	0x0E: {u16, hasDeclSecurity, blob},                           // DeclSecurity
	0x0F: {u16, u32, typeDefIndex},                               // ClassLayout
	0x10: {u32, fieldIndex},                                      // FieldLayout
	0x11: {blob},                                                 // StandAloneSig
	0x12: {typeDefIndex, eventIndex},                             // EventMap
	0x13: {eventIndex},                                           // EventPtr
	0x14: {u16, str, typeDefOrRef},                               // Event
	0x15: {typeDefIndex, propertyIndex},                          // PropertyMap
	0x16: {propertyIndex},                                        // PropertyPtr
	0x17: {u16, str, blob},                                       // Property
	0x18: {u16, methodIndex, hasSemantics},                       // MethodSemantics
	0x19: {typeDefIndex, methodDefOrRef, methodDefOrRef},         // MethodImpl
	0x1A: {str},                                                  // ModuleRef
	0x1B: {blob},                                                 // TypeSpec
	0x1C: {u16, memberForwarded, str, moduleRefIndex},            // ImplMap
	0x1D: {u32, fieldIndex},                                      // FieldRVA
	0x1E: {u32, u32},                                             // EncLog
	0x1F: {u32},                                                  // EncMap
}

func (l *layout) rowSize(table int) int {
	n := 0
	for _, col := range schemas[table] {
		n += col(l)
	}
	return n
}

// cursor reads little-endian values from a byte slice, remembering the first overrun.
type cursor struct {
	buf []byte
	off int
	err error
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.off+n > len(c.buf) {
		c.err = zerr.With(zerr.New("metadata is truncated"), "offset", c.off)
		return nil
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b
}

func (c *cursor) u8() uint8 {
	if b := c.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (c *cursor) u16() uint16 {
	if b := c.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (c *cursor) u32() uint32 {
	if b := c.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (c *cursor) u64() uint64 {
	if b := c.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

// heapIndex reads a 2 or 4 byte heap or table index.
func (c *cursor) heapIndex(size int) uint32 {
	if size == 4 {
		return c.u32()
	}
	return uint32(c.u16())
}

type streams struct {
	tables  []byte
	strings []byte
	blobs   []byte
}

// parseMetadata decodes the Assembly row from a metadata block.
func parseMetadata(md []byte) (domain.FoundIdentity, error) {
	s, err := readStreams(md)
	if err != nil {
		return domain.FoundIdentity{}, err
	}

	l, c, err := readTablesHeader(s.tables)
	if err != nil {
		return domain.FoundIdentity{}, err
	}
	if l.rows[assemblyTable] == 0 {
		return domain.FoundIdentity{}, zerr.New("image has no assembly manifest")
	}

	skip := 0
	for t := range assemblyTable {
		skip += int(l.rows[t]) * l.rowSize(t)
	}
	c.take(skip)

	c.u32() // HashAlgId
	version := domain.NewVersion(c.u16(), c.u16(), c.u16(), c.u16())
	c.u32() // Flags
	keyIdx := c.heapIndex(l.blobSize)
	nameIdx := c.heapIndex(l.stringSize)
	cultureIdx := c.heapIndex(l.stringSize)
	if c.err != nil {
		return domain.FoundIdentity{}, zerr.Wrap(c.err, "cannot read assembly row")
	}

	name, err := heapString(s.strings, nameIdx)
	if err != nil {
		return domain.FoundIdentity{}, err
	}
	if name == "" {
		return domain.FoundIdentity{}, zerr.New("assembly name is empty")
	}
	culture, err := heapString(s.strings, cultureIdx)
	if err != nil {
		return domain.FoundIdentity{}, err
	}
	if culture == "" {
		culture = domain.NeutralCulture
	}
	key, err := heapBlob(s.blobs, keyIdx)
	if err != nil {
		return domain.FoundIdentity{}, err
	}

	return domain.FoundIdentity{
		Name:    name,
		Version: version,
		Token:   TokenFromKey(key),
		Culture: culture,
	}, nil
}

func readStreams(md []byte) (streams, error) {
	c := &cursor{buf: md}
	if c.u32() != metadataSignature {
		return streams{}, zerr.New("bad metadata signature")
	}
	c.take(8) // major, minor, reserved
	versionLen := int(c.u32())
	c.take(align4(versionLen))
	c.u16() // flags
	count := int(c.u16())

	var s streams
	for range count {
		off := int(c.u32())
		size := int(c.u32())
		name := c.cstring()
		if c.err != nil {
			return streams{}, zerr.Wrap(c.err, "cannot read stream headers")
		}
		if off < 0 || size < 0 || off+size > len(md) {
			return streams{}, zerr.With(zerr.New("stream exceeds metadata"), "stream", name)
		}
		data := md[off : off+size]
		switch name {
		case "#~", "#-":
			s.tables = data
		case "#Strings":
			s.strings = data
		case "#Blob":
			s.blobs = data
		}
	}
	if c.err != nil {
		return streams{}, zerr.Wrap(c.err, "cannot read metadata root")
	}
	if s.tables == nil {
		return streams{}, zerr.New("metadata has no tables stream")
	}
	return s, nil
}

// cstring reads a null-terminated name padded to a four byte boundary.
func (c *cursor) cstring() string {
	if c.err != nil {
		return ""
	}
	end := bytes.IndexByte(c.buf[c.off:], 0)
	if end < 0 {
		c.err = zerr.New("stream name is not terminated")
		return ""
	}
	name := string(c.buf[c.off : c.off+end])
	c.take(align4(end + 1))
	return name
}

func readTablesHeader(tables []byte) (*layout, *cursor, error) {
	c := &cursor{buf: tables}
	c.u32() // reserved
	c.u8()  // major
	c.u8()  // minor
	heapSizes := c.u8()
	c.u8() // reserved
	valid := c.u64()
	c.u64() // sorted

	l := &layout{stringSize: 2, guidSize: 2, blobSize: 2}
	if heapSizes&heapStringsWide != 0 {
		l.stringSize = 4
	}
	if heapSizes&heapGUIDWide != 0 {
		l.guidSize = 4
	}
	if heapSizes&heapBlobWide != 0 {
		l.blobSize = 4
	}

	for valid != 0 {
		t := bits.TrailingZeros64(valid)
		l.rows[t] = c.u32()
		valid &^= 1 << t
	}
	if heapSizes&heapExtraData != 0 {
		c.take(4)
	}
	if c.err != nil {
		return nil, nil, zerr.Wrap(c.err, "cannot read tables header")
	}
	return l, c, nil
}

func heapString(heap []byte, idx uint32) (string, error) {
	if int(idx) >= len(heap) {
		if idx == 0 {
			return "", nil
		}
		return "", zerr.With(zerr.New("string index out of range"), "index", idx)
	}
	rest := heap[idx:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", zerr.With(zerr.New("string is not terminated"), "index", idx)
	}
	return string(rest[:end]), nil
}

func heapBlob(heap []byte, idx uint32) ([]byte, error) {
	if idx == 0 {
		return nil, nil
	}
	if int(idx) >= len(heap) {
		return nil, zerr.With(zerr.New("blob index out of range"), "index", idx)
	}
	rest := heap[idx:]
	n, width, ok := compressedLength(rest)
	if !ok || width+n > len(rest) {
		return nil, zerr.With(zerr.New("blob is truncated"), "index", idx)
	}
	return rest[width : width+n], nil
}

// compressedLength decodes the ECMA-335 compressed unsigned integer prefix of a blob.
func compressedLength(b []byte) (n, width int, ok bool) {
	if len(b) == 0 {
		return 0, 0, false
	}
	switch {
	case b[0]&0x80 == 0:
		return int(b[0]), 1, true
	case b[0]&0xC0 == 0x80:
		if len(b) < 2 {
			return 0, 0, false
		}
		return int(b[0]&0x3F)<<8 | int(b[1]), 2, true
	case b[0]&0xE0 == 0xC0:
		if len(b) < 4 {
			return 0, 0, false
		}
		return int(b[0]&0x1F)<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3]), 4, true
	default:
		return 0, 0, false
	}
}

// TokenFromKey derives a public key token: the last eight bytes of the key's SHA-1, reversed.
// An empty key yields the empty token of an unsigned assembly.
func TokenFromKey(key []byte) domain.PublicKeyToken {
	if len(key) == 0 {
		return domain.PublicKeyToken{}
	}
	//nolint:gosec // public key tokens are defined over SHA-1
	sum := sha1.Sum(key)
	token := make(domain.PublicKeyToken, 8)
	for i := range token {
		token[i] = sum[len(sum)-1-i]
	}
	return token
}

func align4(n int) int {
	return (n + 3) &^ 3
}
