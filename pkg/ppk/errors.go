package ppk

import "github.com/pkg/errors"

var (
	// ErrMissingKeyComponent is returned when one of the six RSA fields is
	// absent or empty.
	ErrMissingKeyComponent = errors.New("ppk: missing key component")

	// ErrInvalidFormatVersion is returned for a format version other than 2 or 3.
	ErrInvalidFormatVersion = errors.New("ppk: invalid format version")

	// ErrRandomSource is returned when the salt cannot be drawn.
	ErrRandomSource = errors.New("ppk: random source failure")

	// ErrMalformed is returned by Decode when a header line, count, blob or
	// Argon2 parameter cannot be parsed or is out of range.
	ErrMalformed = errors.New("ppk: malformed key file")

	// ErrUnsupportedKeyType is returned for any algorithm other than ssh-rsa.
	ErrUnsupportedKeyType = errors.New("ppk: unsupported key type")

	// ErrUnsupportedEncryption is returned for ciphers other than none and
	// aes256-cbc.
	ErrUnsupportedEncryption = errors.New("ppk: unsupported encryption")

	// ErrUnsupportedKDF is returned for a v3 Key-Derivation other than
	// Argon2id.
	ErrUnsupportedKDF = errors.New("ppk: unsupported key derivation")

	// ErrMACMismatch is returned when an unencrypted file fails its MAC check.
	ErrMACMismatch = errors.New("ppk: MAC mismatch")

	// ErrWrongPassphrase is returned when an encrypted file fails its MAC
	// check. A corrupted file cannot be told apart from a wrong passphrase.
	ErrWrongPassphrase = errors.New("ppk: wrong passphrase")
)
