package ppk

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FormatVersion selects the PPK generation.
type FormatVersion int

const (
	V2 FormatVersion = 2
	V3 FormatVersion = 3
)

// Validate reports ErrInvalidFormatVersion for anything other than V2 or V3.
func (v FormatVersion) Validate() error {
	switch v {
	case V2, V3:
		return nil
	}
	return errors.Wrapf(ErrInvalidFormatVersion, "%d", int(v))
}

func (v FormatVersion) String() string {
	return strconv.Itoa(int(v))
}

// ParseFormatVersion accepts "2", "3", "v2" or "v3".
func ParseFormatVersion(s string) (FormatVersion, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "v"))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidFormatVersion, "%q", s)
	}
	v := FormatVersion(n)
	return v, v.Validate()
}

const (
	// DefaultComment is used when Options.Comment is empty.
	DefaultComment = "key"

	// LineLength is the base64 wrap width.
	LineLength = 64

	encryptionNone   = "none"
	encryptionAES256 = "aes256-cbc"
)

// Options control a single encoding.
type Options struct {
	// Passphrase encrypts the private blob when non-empty.
	Passphrase string
	Comment    string
	Version    FormatVersion

	// Rand supplies the v3 salt. Defaults to crypto/rand.Reader.
	Rand io.Reader

	// Argon2 overrides the v3 cost parameters. Zero fields take the
	// defaults; Salt is ignored and always drawn from Rand.
	Argon2 Argon2Params
}

// Document is the in-memory form of one PPK file.
type Document struct {
	Version       FormatVersion
	KeyType       string
	Encryption    string
	Comment       string
	PublicBlob    []byte
	PrivatePlain  []byte
	PrivatePadded []byte
	PrivateBlob   []byte // ciphertext, or PrivatePadded when unencrypted
	MAC           string

	// KDF is set only for encrypted v3 documents.
	KDF *Argon2Params
}

// Encode renders k as PPK text.
//
// The private blob is padded and, when opts.Passphrase is set, encrypted with
// AES-256-CBC under a key derived for opts.Version. The MAC covers the padded
// plaintext. Unencrypted output is deterministic; encrypted v3 output varies
// with the salt drawn from opts.Rand.
//
// Args:
//
//	k:    RSA key material; all six components must be present.
//	opts: Passphrase, comment, format version and v3 Argon2 parameters.
//
// Returns:
//
//	The complete file text ending in a newline, or ErrInvalidFormatVersion,
//	ErrMissingKeyComponent or ErrRandomSource. No partial output is returned.
func Encode(k RSAKeyMaterial, opts Options) (string, error) {
	doc, err := Build(k, opts)
	if err != nil {
		return "", err
	}
	b, err := doc.MarshalText()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Build runs the full pipeline and returns the document before rendering.
func Build(k RSAKeyMaterial, opts Options) (*Document, error) {
	if err := opts.Version.Validate(); err != nil {
		return nil, err
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}

	comment := opts.Comment
	if comment == "" {
		comment = DefaultComment
	}

	public, err := PublicBlob(k)
	if err != nil {
		return nil, err
	}
	plain, err := PrivateBlob(k)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Version:      opts.Version,
		KeyType:      KeyType,
		Encryption:   encryptionNone,
		Comment:      comment,
		PublicBlob:   public,
		PrivatePlain: plain,
	}

	encrypted := opts.Passphrase != ""
	blockSize := 1
	if encrypted {
		doc.Encryption = encryptionAES256
		blockSize = cipherBlockSize
	}
	doc.PrivatePadded = Pad(plain, blockSize)

	var ks keys
	if encrypted {
		switch opts.Version {
		case V2:
			ks = deriveV2(opts.Passphrase)
		case V3:
			rnd := opts.Rand
			if rnd == nil {
				rnd = rand.Reader
			}
			params := opts.Argon2.withDefaults()
			if params.Salt, err = newSalt(rnd); err != nil {
				return nil, err
			}
			doc.KDF = &params
			ks = deriveV3(opts.Passphrase, params)
		}

		doc.PrivateBlob = append([]byte(nil), doc.PrivatePadded...)
		if err := encryptCBC(ks.cipherKey, ks.iv, doc.PrivateBlob); err != nil {
			return nil, err
		}
	} else {
		doc.PrivateBlob = doc.PrivatePadded
	}

	input := macInput(doc.KeyType, doc.Encryption, doc.Comment, doc.PublicBlob, doc.PrivatePadded)
	doc.MAC = computeMAC(doc.Version, opts.Passphrase, ks, input)

	return doc, nil
}

// MarshalText renders the document in the field order of its version.
func (d *Document) MarshalText() ([]byte, error) {
	if err := d.Version.Validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}

	line("PuTTY-User-Key-File-%d: %s", int(d.Version), d.KeyType)
	line("Encryption: %s", d.Encryption)
	line("Comment: %s", d.Comment)

	public := Wrap(base64.StdEncoding.EncodeToString(d.PublicBlob), LineLength)
	line("Public-Lines: %d", len(public))
	for _, l := range public {
		line("%s", l)
	}

	if d.Version == V3 && d.KDF != nil {
		line("Key-Derivation: %s", kdfArgon2id)
		line("Argon2-Memory: %d", d.KDF.Memory)
		line("Argon2-Passes: %d", d.KDF.Passes)
		line("Argon2-Parallelism: %d", d.KDF.Parallelism)
		line("Argon2-Salt: %s", hex.EncodeToString(d.KDF.Salt))
	}

	private := Wrap(base64.StdEncoding.EncodeToString(d.PrivateBlob), LineLength)
	line("Private-Lines: %d", len(private))
	for _, l := range private {
		line("%s", l)
	}

	line("Private-MAC: %s", d.MAC)

	return []byte(sb.String()), nil
}

// Wrap splits s into width-sized chunks; the last one may be shorter.
func Wrap(s string, width int) []string {
	if width <= 0 || len(s) <= width {
		if s == "" {
			return nil
		}
		return []string{s}
	}

	lines := make([]string, 0, (len(s)+width-1)/width)
	for len(s) > width {
		lines = append(lines, s[:width])
		s = s[width:]
	}
	return append(lines, s)
}
