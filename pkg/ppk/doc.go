// Package ppk encodes and decodes RSA keys in the PuTTY private key file
// format, versions 2 and 3.
//
// Features:
//   - SSH wire encoding of the public blob and PuTTY's private blob (D, P, Q, InverseQ)
//   - Passphrase protection with AES-256-CBC
//   - v2 key derivation (double SHA-1, zero IV) and HMAC-SHA1 integrity MAC
//   - v3 key derivation (Argon2id) supplying cipher key, IV and HMAC-SHA-256 MAC key
//   - MACs over the padded plaintext, so output is byte-compatible with PuTTYgen
//   - Decoding with MAC verification, for round trips and file checks
//
// Usage:
//
//	km, err := ppk.FromRSA(priv)
//	if err != nil { ... }
//	text, err := ppk.Encode(km, ppk.Options{Passphrase: "secret", Comment: "me@host", Version: ppk.V3})
//
// v2 files have no IV field, so encrypted v2 output always uses a zero IV
// and the same passphrase always yields the same key. That is a property of
// the format and is kept for compatibility; prefer V3 for new files.
//
// All functions are safe for concurrent use. The only randomness is the v3
// salt, drawn from Options.Rand.
package ppk
