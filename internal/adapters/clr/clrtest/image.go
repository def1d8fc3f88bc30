// Package clrtest builds minimal managed PE images for tests.
package clrtest

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	textRVA       = 0x2000
	textOffset    = 0x200
	fileAlignment = 0x200
	cliHeaderSize = 72
	peOffset      = 0x80
)

// Assembly describes the manifest written into an image.
type Assembly struct {
	Name      string
	Version   [4]uint16
	Culture   string
	PublicKey []byte
	// Types adds empty TypeDef rows ahead of the manifest.
	Types int
	// NoManifest omits the Assembly table, as in a netmodule.
	NoManifest bool
	// Native leaves out the CLI header entirely.
	Native bool
}

// Write stores the image of a at path, creating parent directories.
func Write(tb testing.TB, path string, a Assembly) string {
	tb.Helper()
	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(tb, os.WriteFile(path, a.Image(), 0o600))
	return path
}

// Image returns the bytes of a PE32 DLL carrying the manifest of a.
func (a Assembly) Image() []byte {
	var text []byte
	if !a.Native {
		md := a.metadata()
		cli := le(
			uint32(cliHeaderSize), uint16(2), uint16(5),
			uint32(textRVA+cliHeaderSize), uint32(len(md)),
			uint32(1), // ILONLY
		)
		text = append(pad(cli, cliHeaderSize), md...)
	} else {
		text = []byte{0xC3}
	}
	raw := pad(text, align(len(text), fileAlignment))

	var buf bytes.Buffer
	dos := make([]byte, peOffset)
	copy(dos, "MZ")
	binary.LittleEndian.PutUint32(dos[0x3C:], peOffset)
	buf.Write(dos)
	buf.WriteString("PE\x00\x00")

	write(&buf, pe.FileHeader{
		Machine:              pe.IMAGE_FILE_MACHINE_I386,
		NumberOfSections:     1,
		SizeOfOptionalHeader: 224,
		Characteristics:      pe.IMAGE_FILE_EXECUTABLE_IMAGE | pe.IMAGE_FILE_32BIT_MACHINE | pe.IMAGE_FILE_DLL,
	})

	oh := pe.OptionalHeader32{
		Magic:                 0x10B,
		SizeOfCode:            uint32(len(raw)),
		BaseOfCode:            textRVA,
		ImageBase:             0x10000000,
		SectionAlignment:      textRVA,
		FileAlignment:         fileAlignment,
		MajorSubsystemVersion: 4,
		SizeOfImage:           textRVA + uint32(align(len(text), textRVA)),
		SizeOfHeaders:         textOffset,
		Subsystem:             pe.IMAGE_SUBSYSTEM_WINDOWS_CUI,
		NumberOfRvaAndSizes:   16,
	}
	if !a.Native {
		oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR] = pe.DataDirectory{
			VirtualAddress: textRVA,
			Size:           cliHeaderSize,
		}
	}
	write(&buf, oh)

	sh := pe.SectionHeader32{
		VirtualSize:      uint32(len(text)),
		VirtualAddress:   textRVA,
		SizeOfRawData:    uint32(len(raw)),
		PointerToRawData: textOffset,
		Characteristics:  pe.IMAGE_SCN_CNT_CODE | pe.IMAGE_SCN_MEM_EXECUTE | pe.IMAGE_SCN_MEM_READ,
	}
	copy(sh.Name[:], ".text")
	write(&buf, sh)

	out := pad(buf.Bytes(), textOffset)
	return append(out, raw...)
}

// metadata lays out the metadata root followed by the #~, #Strings and #Blob streams.
func (a Assembly) metadata() []byte {
	strs := []byte{0}
	addString := func(s string) uint16 {
		if s == "" {
			return 0
		}
		idx := uint16(len(strs))
		strs = append(append(strs, s...), 0)
		return idx
	}
	blobs := []byte{0}
	addBlob := func(b []byte) uint16 {
		if len(b) == 0 {
			return 0
		}
		idx := uint16(len(blobs))
		blobs = append(append(blobs, compressed(len(b))...), b...)
		return idx
	}

	moduleName := addString(a.Name + ".dll")
	nameIdx := addString(a.Name)
	cultureIdx := addString(a.Culture)
	keyIdx := addBlob(a.PublicKey)

	valid := uint64(1) // Module
	counts := []uint32{1}
	if a.Types > 0 {
		valid |= 1 << 0x02
		counts = append(counts, uint32(a.Types))
	}
	if !a.NoManifest {
		valid |= 1 << 0x20
		counts = append(counts, 1)
	}

	tables := le(uint32(0), uint8(2), uint8(0), uint8(0), uint8(1), valid, uint64(0))
	for _, n := range counts {
		tables = append(tables, le(n)...)
	}
	tables = append(tables, le(uint16(0), moduleName, uint16(0), uint16(0), uint16(0))...)
	tables = append(tables, make([]byte, a.Types*14)...)
	if !a.NoManifest {
		var flags uint32
		if len(a.PublicKey) > 0 {
			flags = 1
		}
		tables = append(tables, le(
			uint32(0x8004),
			a.Version[0], a.Version[1], a.Version[2], a.Version[3],
			flags, keyIdx, nameIdx, cultureIdx,
		)...)
	}

	type stream struct {
		name string
		data []byte
	}
	streams := []stream{
		{"#~", pad(tables, align(len(tables), 4))},
		{"#Strings", pad(strs, align(len(strs), 4))},
		{"#Blob", pad(blobs, align(len(blobs), 4))},
	}

	version := pad([]byte("v4.0.30319"), 12)
	headerSize := 16 + len(version) + 4
	for _, s := range streams {
		headerSize += 8 + align(len(s.name)+1, 4)
	}

	root := le(uint32(0x424A5342), uint16(1), uint16(1), uint32(0), uint32(len(version)))
	root = append(root, version...)
	root = append(root, le(uint16(0), uint16(len(streams)))...)
	offset := headerSize
	for _, s := range streams {
		root = append(root, le(uint32(offset), uint32(len(s.data)))...)
		root = append(root, pad([]byte(s.name), align(len(s.name)+1, 4))...)
		offset += len(s.data)
	}
	for _, s := range streams {
		root = append(root, s.data...)
	}
	return root
}

func compressed(n int) []byte {
	switch {
	case n < 0x80:
		return []byte{byte(n)}
	case n < 0x4000:
		return []byte{byte(n>>8) | 0x80, byte(n)}
	default:
		return []byte{byte(n>>24) | 0xC0, byte(n >> 16), byte(n >> 8), byte(n)}
	}
}

func le(values ...any) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		write(&buf, v)
	}
	return buf.Bytes()
}

func write(buf *bytes.Buffer, v any) {
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		panic(err)
	}
}

func pad(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	return append(b, make([]byte, size-len(b))...)
}

func align(n, to int) int {
	return (n + to - 1) / to * to
}
