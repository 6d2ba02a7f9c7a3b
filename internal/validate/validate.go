// Package validate implements the engine's two-phase password validator: the cheap
// keystream pre-check and the authoritative decrypt-decompress-CRC check.
package validate

import (
	"zipcrack/internal/archive"
	"zipcrack/internal/ziparchive"
	"zipcrack/internal/zipcrypto"
)

// Fast decides whether candidate could be the archive's password by checking the
// final keystream byte against the reference header's check byte. No allocation;
// candidate's bytes and hdr are read only. False-positive rate is approximately
// 1/256 for a wrong password.
func Fast(candidate []byte, hdr *archive.Header) bool {
	ks := zipcrypto.New()
	ks.UpdateBytes(candidate)
	for i := 0; i < 11; i++ {
		ks.Decrypt(hdr.EncryptionHeader[i])
	}
	decryptedLast := hdr.EncryptionHeader[11] ^ ks.KeystreamByte()
	return decryptedLast == hdr.CheckByte
}

// Full runs the authoritative check for a candidate that has already passed Fast:
// decrypt and decompress the target entry through w and confirm the stream reads to
// EOF with a matching CRC-32. Invoked rarely (only on a Fast hit), so it is
// permitted to allocate.
func Full(w *ziparchive.Worker, candidate []byte) bool {
	return w.Verify(string(candidate))
}
