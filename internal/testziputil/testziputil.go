// Package testziputil builds minimal, valid PKZIP archives with a single
// ZipCrypto-encrypted entry, byte-for-byte, for use by tests. The standard library's
// archive/zip cannot write traditional PKWARE encryption, so fixtures must be
// hand-assembled per APPNOTE.TXT.
package testziputil

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"hash/crc32"

	"zipcrack/internal/zipcrypto"
)

const (
	localFileHeaderSignature  = 0x04034B50
	centralDirHeaderSignature = 0x02014B50
	endOfCentralDirSignature  = 0x06054B50
)

// Options controls how Build assembles the fixture archive.
type Options struct {
	Name              string // entry filename, defaults to "secret.txt"
	Password          string
	Plaintext         []byte
	Method            uint16 // archive.CompressionStored or archive.CompressionDeflate
	UseDataDescriptor bool   // sets general-purpose bit 3; check byte derives from mod time
	ModTime           uint16
	ModDate           uint16
	// HeaderPrefix, if non-nil, must be exactly 11 bytes and is used verbatim as the
	// first 11 (random) bytes of the ZipCrypto encryption header, for deterministic
	// fixtures. A nil value uses a fixed deterministic pattern (tests never need
	// cryptographic randomness here).
	HeaderPrefix []byte
}

// Build returns a complete single-entry ZIP archive (local header + central
// directory + end-of-central-directory) with Plaintext encrypted under Password
// using traditional PKWARE (ZipCrypto) encryption.
func Build(opt Options) []byte {
	name := opt.Name
	if name == "" {
		name = "secret.txt"
	}

	crc := crc32.ChecksumIEEE(opt.Plaintext)

	var compressed []byte
	switch opt.Method {
	case 8:
		var buf bytes.Buffer
		fw, _ := flate.NewWriter(&buf, flate.BestSpeed)
		_, _ = fw.Write(opt.Plaintext)
		_ = fw.Close()
		compressed = buf.Bytes()
	default:
		compressed = append([]byte(nil), opt.Plaintext...)
	}

	prefix := opt.HeaderPrefix
	if len(prefix) != 11 {
		prefix = make([]byte, 11)
		for i := range prefix {
			prefix[i] = byte(0xA5 ^ i*37)
		}
	}

	var checkByte byte
	var flag uint16 = 1 // encrypted
	if opt.UseDataDescriptor {
		flag |= 1 << 3
		checkByte = byte(opt.ModTime >> 8)
	} else {
		checkByte = byte(crc >> 24)
	}

	header := make([]byte, 12)
	copy(header, prefix)
	header[11] = checkByte

	ks := zipcrypto.New()
	ks.UpdateBytes([]byte(opt.Password))

	encHeader := make([]byte, 12)
	for i, p := range header {
		encHeader[i] = ks.Encrypt(p)
	}
	encBody := make([]byte, len(compressed))
	for i, p := range compressed {
		encBody[i] = ks.Encrypt(p)
	}

	ciphertext := append(encHeader, encBody...)

	var out bytes.Buffer

	localOffset := out.Len()
	writeUint32(&out, localFileHeaderSignature)
	writeUint16(&out, 20) // version needed
	writeUint16(&out, flag)
	writeUint16(&out, opt.Method)
	writeUint16(&out, opt.ModTime)
	writeUint16(&out, opt.ModDate)
	writeUint32(&out, crc)
	writeUint32(&out, uint32(len(ciphertext)))
	writeUint32(&out, uint32(len(opt.Plaintext)))
	writeUint16(&out, uint16(len(name)))
	writeUint16(&out, 0) // extra len
	out.WriteString(name)
	out.Write(ciphertext)

	cdOffset := out.Len()
	writeUint32(&out, centralDirHeaderSignature)
	writeUint16(&out, 20) // version made by
	writeUint16(&out, 20) // version needed
	writeUint16(&out, flag)
	writeUint16(&out, opt.Method)
	writeUint16(&out, opt.ModTime)
	writeUint16(&out, opt.ModDate)
	writeUint32(&out, crc)
	writeUint32(&out, uint32(len(ciphertext)))
	writeUint32(&out, uint32(len(opt.Plaintext)))
	writeUint16(&out, uint16(len(name)))
	writeUint16(&out, 0) // extra len
	writeUint16(&out, 0) // comment len
	writeUint16(&out, 0) // disk number start
	writeUint16(&out, 0) // internal attrs
	writeUint32(&out, 0) // external attrs
	writeUint32(&out, uint32(localOffset))
	out.WriteString(name)

	cdSize := out.Len() - cdOffset

	writeUint32(&out, endOfCentralDirSignature)
	writeUint16(&out, 0) // disk number
	writeUint16(&out, 0) // disk with cd
	writeUint16(&out, 1) // entries this disk
	writeUint16(&out, 1) // total entries
	writeUint32(&out, uint32(cdSize))
	writeUint32(&out, uint32(cdOffset))
	writeUint16(&out, 0) // comment len

	return out.Bytes()
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
