package ppk

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
)

const macKeyPrefix = "putty-private-key-file-mac-key"

// macInput is the byte string both versions authenticate. private is the
// padded plaintext, also for encrypted files.
func macInput(keyType, encryption, comment string, public, private []byte) []byte {
	buf := make([]byte, 0, 5*prefixSize+len(keyType)+len(encryption)+len(comment)+len(public)+len(private))
	buf = AppendString(buf, []byte(keyType))
	buf = AppendString(buf, []byte(encryption))
	buf = AppendString(buf, []byte(comment))
	buf = AppendString(buf, public)
	buf = AppendString(buf, private)
	return buf
}

// macV2 is HMAC-SHA1 keyed with SHA1(prefix || passphrase).
func macV2(passphrase string, input []byte) []byte {
	h := sha1.New()
	h.Write([]byte(macKeyPrefix))
	h.Write([]byte(passphrase))

	m := hmac.New(sha1.New, h.Sum(nil))
	m.Write(input)
	return m.Sum(nil)
}

// macV3 is HMAC-SHA-256 keyed with the Argon2 output, or with an empty key
// for unencrypted files.
func macV3(key, input []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(input)
	return m.Sum(nil)
}

func computeMAC(v FormatVersion, passphrase string, k keys, input []byte) string {
	if v == V3 {
		return hex.EncodeToString(macV3(k.macKey, input))
	}
	return hex.EncodeToString(macV2(passphrase, input))
}
