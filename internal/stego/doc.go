// Package stego hides one 8-bit grayscale raster inside another by 4-bit
// least-significant-bit substitution, and recovers an approximation of it.
//
// # Embedding
//
// For every sample i:
//
//	stego[i] = (cover[i] & 0xF0) | (secret[i] >> 4)
//
// The cover keeps its high nibble; its low nibble is replaced by the secret's
// high nibble. The secret's low nibble is discarded.
//
// # Extraction
//
//	recovered[i] = (stego[i] & 0x0F) << 4
//
// The recovered raster equals the secret with its low nibble zeroed. Full
// 8-bit fidelity is never recoverable.
//
// This is not a security mechanism: the payload is visible to anyone who
// masks the low nibble.
package stego
