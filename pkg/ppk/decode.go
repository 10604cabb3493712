package ppk

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Key is a decoded and verified PPK file.
type Key struct {
	Version    FormatVersion
	Comment    string
	Encryption string
	KDF        *Argon2Params
	Material   RSAKeyMaterial
}

// Encrypted reports whether the file was passphrase protected.
func (k *Key) Encrypted() bool {
	return k.Encryption != encryptionNone
}

// Decode parses a v2 or v3 PPK file, decrypts the private part with
// passphrase and verifies its MAC.
//
// Both "\n" and "\r\n" line endings are accepted. Argon2 parameters are
// bounded before any key derivation runs.
//
// Args:
//
//	text:       The whole file.
//	passphrase: Passphrase for encrypted files; ignored otherwise.
//
// Returns:
//
//	The decoded key, or ErrMalformed, ErrInvalidFormatVersion,
//	ErrUnsupportedKeyType, ErrUnsupportedEncryption, ErrUnsupportedKDF,
//	ErrMACMismatch or ErrWrongPassphrase.
func Decode(text, passphrase string) (*Key, error) {
	s := &headerScanner{lines: strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")}

	name, keyType, err := s.next()
	if err != nil {
		return nil, err
	}
	var v FormatVersion
	switch name {
	case "PuTTY-User-Key-File-2":
		v = V2
	case "PuTTY-User-Key-File-3":
		v = V3
	default:
		if strings.HasPrefix(name, "PuTTY-User-Key-File-") {
			return nil, errors.Wrap(ErrInvalidFormatVersion, name)
		}
		return nil, errors.Wrapf(ErrMalformed, "unexpected header %q", name)
	}
	if keyType != KeyType {
		return nil, errors.Wrap(ErrUnsupportedKeyType, keyType)
	}

	encryption, err := s.expect("Encryption")
	if err != nil {
		return nil, err
	}
	if encryption != encryptionNone && encryption != encryptionAES256 {
		return nil, errors.Wrap(ErrUnsupportedEncryption, encryption)
	}

	comment, err := s.expect("Comment")
	if err != nil {
		return nil, err
	}

	public, err := s.blob("Public-Lines")
	if err != nil {
		return nil, err
	}

	k := &Key{Version: v, Comment: comment, Encryption: encryption}

	if v == V3 && encryption != encryptionNone {
		if k.KDF, err = s.argon2(); err != nil {
			return nil, err
		}
	}

	private, err := s.blob("Private-Lines")
	if err != nil {
		return nil, err
	}

	wantMAC, err := s.expect("Private-MAC")
	if err != nil {
		return nil, err
	}
	mac, err := hex.DecodeString(wantMAC)
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, "Private-MAC is not hex")
	}

	var ks keys
	if k.Encrypted() {
		switch v {
		case V2:
			ks = deriveV2(passphrase)
		case V3:
			ks = deriveV3(passphrase, *k.KDF)
		}
		if err := decryptCBC(ks.cipherKey, ks.iv, private); err != nil {
			return nil, err
		}
	} else {
		passphrase = ""
	}

	input := macInput(keyType, encryption, comment, public, private)
	var got []byte
	if v == V3 {
		got = macV3(ks.macKey, input)
	} else {
		got = macV2(passphrase, input)
	}
	if !hmac.Equal(got, mac) {
		if k.Encrypted() {
			return nil, ErrWrongPassphrase
		}
		return nil, ErrMACMismatch
	}

	if k.Material.PublicExponent, k.Material.Modulus, err = parsePublicBlob(public); err != nil {
		return nil, err
	}
	if err := parsePrivateBlob(private, &k.Material); err != nil {
		return nil, err
	}
	return k, nil
}

// headerScanner reads "Name: value" lines in a fixed order.
type headerScanner struct {
	lines []string
	pos   int
}

func (s *headerScanner) next() (string, string, error) {
	if s.pos >= len(s.lines) {
		return "", "", errors.Wrap(ErrMalformed, "unexpected end of file")
	}
	l := s.lines[s.pos]
	s.pos++
	name, value, ok := strings.Cut(l, ": ")
	if !ok {
		return "", "", errors.Wrapf(ErrMalformed, "line %d: expected header", s.pos)
	}
	return name, value, nil
}

func (s *headerScanner) expect(want string) (string, error) {
	name, value, err := s.next()
	if err != nil {
		return "", err
	}
	if name != want {
		return "", errors.Wrapf(ErrMalformed, "line %d: expected %s, got %s", s.pos, want, name)
	}
	return value, nil
}

func (s *headerScanner) count(want string) (int, error) {
	v, err := s.expect(want)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.Wrapf(ErrMalformed, "%s: bad count %q", want, v)
	}
	return n, nil
}

func (s *headerScanner) blob(want string) ([]byte, error) {
	n, err := s.count(want)
	if err != nil {
		return nil, err
	}
	if s.pos+n > len(s.lines) {
		return nil, errors.Wrapf(ErrMalformed, "%s: file ends early", want)
	}
	b, err := base64.StdEncoding.DecodeString(strings.Join(s.lines[s.pos:s.pos+n], ""))
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%s: %v", want, err)
	}
	s.pos += n
	return b, nil
}

func (s *headerScanner) argon2() (*Argon2Params, error) {
	kdf, err := s.expect("Key-Derivation")
	if err != nil {
		return nil, err
	}
	if kdf != kdfArgon2id {
		return nil, errors.Wrap(ErrUnsupportedKDF, kdf)
	}

	var p Argon2Params
	for _, f := range []struct {
		name string
		max  uint64
		dst  func(uint64)
	}{
		{"Argon2-Memory", maxArgon2Memory, func(n uint64) { p.Memory = uint32(n) }},
		{"Argon2-Passes", maxArgon2Passes, func(n uint64) { p.Passes = uint32(n) }},
		{"Argon2-Parallelism", 1<<8 - 1, func(n uint64) { p.Parallelism = uint8(n) }},
	} {
		v, err := s.expect(f.name)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return nil, errors.Wrapf(ErrMalformed, "%s: %q", f.name, v)
		}
		if n > f.max {
			return nil, errors.Wrapf(ErrMalformed, "%s: %d exceeds the limit of %d", f.name, n, f.max)
		}
		f.dst(n)
	}

	v, err := s.expect("Argon2-Salt")
	if err != nil {
		return nil, err
	}
	if p.Salt, err = hex.DecodeString(v); err != nil || len(p.Salt) == 0 || len(p.Salt) > maxSaltSize {
		return nil, errors.Wrap(ErrMalformed, "Argon2-Salt is not hex")
	}
	return &p, nil
}
