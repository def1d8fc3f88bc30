// Package clr reads assembly identities from the metadata of managed PE images.
package clr

import (
	"debug/pe"
	"encoding/binary"
	"errors"
	"os"

	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.IdentityReader = (*Reader)(nil)

// comDescriptorIndex is the data directory entry of the CLI header.
const comDescriptorIndex = 14

// cliHeaderSize is the size of the CLI header up to and including the metadata directory.
const cliHeaderSize = 16

// Reader implements ports.IdentityReader for ECMA-335 assemblies.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadIdentity returns the identity declared in the Assembly table of the image at path.
func (r *Reader) ReadIdentity(path string) (domain.FoundIdentity, error) {
	//nolint:gosec // path comes from the directory walk
	f, err := os.Open(path)
	if err != nil {
		return domain.FoundIdentity{}, unreadable(path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	img, err := pe.NewFile(f)
	if err != nil {
		return domain.FoundIdentity{}, unreadable(path, zerr.Wrap(err, "not a PE image"))
	}
	defer func() {
		_ = img.Close()
	}()

	metadata, err := readMetadata(img)
	if err != nil {
		return domain.FoundIdentity{}, unreadable(path, err)
	}

	id, err := parseMetadata(metadata)
	if err != nil {
		return domain.FoundIdentity{}, unreadable(path, err)
	}
	return id, nil
}

// readMetadata locates the CLI header and returns the raw metadata block.
func readMetadata(img *pe.File) ([]byte, error) {
	var dirs []pe.DataDirectory
	switch oh := img.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		dirs = oh.DataDirectory[:min(oh.NumberOfRvaAndSizes, uint32(len(oh.DataDirectory)))]
	case *pe.OptionalHeader64:
		dirs = oh.DataDirectory[:min(oh.NumberOfRvaAndSizes, uint32(len(oh.DataDirectory)))]
	default:
		return nil, zerr.New("image has no optional header")
	}
	if len(dirs) <= comDescriptorIndex || dirs[comDescriptorIndex].VirtualAddress == 0 {
		return nil, zerr.New("image is not a managed assembly")
	}

	header, err := readRVA(img, dirs[comDescriptorIndex].VirtualAddress, cliHeaderSize)
	if err != nil {
		return nil, zerr.Wrap(err, "cannot read CLI header")
	}
	mdRVA := binary.LittleEndian.Uint32(header[8:])
	mdSize := binary.LittleEndian.Uint32(header[12:])
	if mdRVA == 0 || mdSize == 0 {
		return nil, zerr.New("CLI header has no metadata")
	}

	metadata, err := readRVA(img, mdRVA, mdSize)
	if err != nil {
		return nil, zerr.Wrap(err, "cannot read metadata")
	}
	return metadata, nil
}

// readRVA reads size bytes at a relative virtual address.
func readRVA(img *pe.File, rva, size uint32) ([]byte, error) {
	for _, s := range img.Sections {
		extent := max(s.VirtualSize, s.Size)
		if rva < s.VirtualAddress || rva-s.VirtualAddress >= extent {
			continue
		}
		off := rva - s.VirtualAddress
		if uint64(off)+uint64(size) > uint64(s.Size) {
			return nil, zerr.With(zerr.New("range exceeds section data"), "section", s.Name)
		}
		buf := make([]byte, size)
		if _, err := s.ReadAt(buf, int64(off)); err != nil {
			return nil, err
		}
		return buf, nil
	}
	return nil, zerr.With(zerr.New("address is not mapped by any section"), "rva", rva)
}

func unreadable(path string, cause error) error {
	return errors.Join(domain.ErrUnreadableBinary, zerr.With(cause, "path", path))
}
