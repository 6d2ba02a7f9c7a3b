// Package archive implements the engine's PKZIP local-file-header locator: it finds
// the first encrypted entry, extracts its 12-byte ZipCrypto encryption header and
// reference check byte, and rejects archives this engine cannot attack.
package archive

import (
	"encoding/binary"
	"fmt"

	"zipcrack/internal/zcerr"
)

const (
	localFileHeaderSignature = 0x04034B50
	localFileHeaderMinSize   = 30

	flagEncrypted        = 1 << 0
	flagDataDescriptor   = 1 << 3
	flagStrongEncryption = 1 << 6

	// aesExtraFieldID is the WinZip-AES extra-field header ID (APPNOTE §4.5.2 / the
	// AE-x extension registered by the AES spec addendum).
	aesExtraFieldID = 0x9901

	// CompressionStored and CompressionDeflate are the only methods C4 must support.
	CompressionStored  = 0
	CompressionDeflate = 8
)

// CheckByteSource records which local-header field the reference check byte was
// derived from: the stored CRC-32's high byte normally, or the modification time's
// high byte when the general-purpose data-descriptor bit is set (streamed entries
// written with the CRC left zero in the local header).
type CheckByteSource int

const (
	FromCRCHighByte CheckByteSource = iota
	FromModTimeHighByte
)

// Header is the reference header produced by Locate: the 12-byte ZipCrypto
// encryption preamble plus everything C3/C4 need to validate candidates against the
// first encrypted entry.
type Header struct {
	// Name is the entry's stored filename, used to look the same entry back up in a
	// full zip-reading library for C4 (see internal/ziparchive).
	Name string

	// EncryptionHeader is the 12-byte ZipCrypto preamble read from immediately after
	// the local-file-header record.
	EncryptionHeader [12]byte

	// CheckByte is the reference byte the fast validator compares the final
	// decrypted header byte against.
	CheckByte byte
	// CheckByteSource records which field CheckByte was derived from.
	CheckByteSource CheckByteSource

	// Method is the entry's stored compression method (0=stored, 8=deflate, or
	// anything else, which is rejected before any candidate is tried).
	Method uint16
	// CRC32 is the entry's stored (expected) CRC-32 of the decompressed plaintext.
	CRC32 uint32
	// CompressedSize / UncompressedSize are the local header's stated sizes. When the
	// general-purpose data-descriptor bit is set these may be zero; C4 does not rely
	// on them for correctness since it re-opens the entry through a full zip reader
	// that consults the central directory.
	CompressedSize   uint32
	UncompressedSize uint32

	// CiphertextOffset is the archive-relative byte offset of the ciphertext (i.e.
	// immediately after EncryptionHeader).
	CiphertextOffset int64
}

// Locate scans archive for the first local-file-header record this engine can
// attack, applying these acceptance rules in order: the entry must be encrypted,
// must not be AES/strong-encryption, and must have at least a 12-byte payload.
// Returns zcerr.ErrNoEncryptedEntry if no encrypted entry is found at all.
func Locate(data []byte) (*Header, error) {
	for offset := 0; offset+localFileHeaderMinSize <= len(data); {
		sig := binary.LittleEndian.Uint32(data[offset:])
		if sig != localFileHeaderSignature {
			offset++
			continue
		}

		rec, next, err := parseLocalHeader(data, offset)
		if err != nil {
			// Malformed record at this offset; keep scanning rather than aborting,
			// since byte sequences that merely look like the signature can occur
			// inside compressed payload data.
			offset++
			continue
		}

		if rec.flag&flagEncrypted == 0 {
			offset = next
			continue
		}

		if rec.flag&flagStrongEncryption != 0 || hasAESExtraField(rec.extra) {
			return nil, fmt.Errorf("entry %q: %w", rec.name, zcerr.ErrUnsupportedEncryption)
		}

		if rec.payloadStart+12 > len(data) {
			return nil, fmt.Errorf("entry %q: %w", rec.name, zcerr.ErrTruncatedArchive)
		}

		var hdr [12]byte
		copy(hdr[:], data[rec.payloadStart:rec.payloadStart+12])

		var checkByte byte
		var source CheckByteSource
		if rec.flag&flagDataDescriptor != 0 {
			checkByte = byte(rec.modTime >> 8)
			source = FromModTimeHighByte
		} else {
			checkByte = byte(rec.crc32 >> 24)
			source = FromCRCHighByte
		}

		return &Header{
			Name:             rec.name,
			EncryptionHeader: hdr,
			CheckByte:        checkByte,
			CheckByteSource:  source,
			Method:           rec.method,
			CRC32:            rec.crc32,
			CompressedSize:   rec.compressedSize,
			UncompressedSize: rec.uncompressedSize,
			CiphertextOffset: int64(rec.payloadStart + 12),
		}, nil
	}

	return nil, zcerr.ErrNoEncryptedEntry
}

type localHeaderRecord struct {
	flag             uint16
	method           uint16
	modTime          uint16
	crc32            uint32
	compressedSize   uint32
	uncompressedSize uint32
	name             string
	extra            []byte
	payloadStart     int
}

// parseLocalHeader parses the fixed fields of the local-file-header at offset, plus
// the filename and extra field needed to reach the payload. Returns the byte offset
// of the next record to try scanning from: the payload start plus the stated
// compressed size, or the payload start itself when that size runs past the data.
// Entries using a data descriptor may not encode an exact compressed size, so
// callers must not assume this always lands exactly on the next header.
func parseLocalHeader(data []byte, offset int) (localHeaderRecord, int, error) {
	if offset+localFileHeaderMinSize > len(data) {
		return localHeaderRecord{}, 0, zcerr.ErrTruncatedArchive
	}

	flag := binary.LittleEndian.Uint16(data[offset+6:])
	method := binary.LittleEndian.Uint16(data[offset+8:])
	modTime := binary.LittleEndian.Uint16(data[offset+10:])
	crc32 := binary.LittleEndian.Uint32(data[offset+14:])
	compressedSize := binary.LittleEndian.Uint32(data[offset+18:])
	uncompressedSize := binary.LittleEndian.Uint32(data[offset+22:])
	nameLen := int(binary.LittleEndian.Uint16(data[offset+26:]))
	extraLen := int(binary.LittleEndian.Uint16(data[offset+28:]))

	nameStart := offset + localFileHeaderMinSize
	nameEnd := nameStart + nameLen
	extraEnd := nameEnd + extraLen
	if extraEnd > len(data) {
		return localHeaderRecord{}, 0, zcerr.ErrTruncatedArchive
	}

	rec := localHeaderRecord{
		flag:             flag,
		method:           method,
		modTime:          modTime,
		crc32:            crc32,
		compressedSize:   compressedSize,
		uncompressedSize: uncompressedSize,
		name:             string(data[nameStart:nameEnd]),
		extra:            data[nameEnd:extraEnd],
		payloadStart:     extraEnd,
	}

	next := extraEnd + int(compressedSize)
	if next <= offset || next > len(data) {
		next = extraEnd
	}
	return rec, next, nil
}

// hasAESExtraField reports whether the extra field block contains a WinZip-AES
// (0x9901) record, the other signal (besides general-purpose bit 6) that an entry
// is AES-encrypted rather than traditional ZipCrypto.
func hasAESExtraField(extra []byte) bool {
	for i := 0; i+4 <= len(extra); {
		id := binary.LittleEndian.Uint16(extra[i:])
		size := int(binary.LittleEndian.Uint16(extra[i+2:]))
		if id == aesExtraFieldID {
			return true
		}
		i += 4 + size
	}
	return false
}
