package ppk

import (
	"crypto/sha1"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

// Argon2id defaults written into v3 files.
const (
	DefaultArgon2Memory      = 8192 // KiB
	DefaultArgon2Passes      = 21
	DefaultArgon2Parallelism = 1

	saltSize   = 16
	macKeySize = 32
)

// Limits on Argon2 parameters read from a file. Memory is capped at 1 GiB.
const (
	maxArgon2Memory = 1 << 20 // KiB
	maxArgon2Passes = 1 << 10
	maxSaltSize     = 64
)

const kdfArgon2id = "Argon2id"

// Argon2Params are the cost parameters and salt recorded in a v3 header.
type Argon2Params struct {
	Memory      uint32
	Passes      uint32
	Parallelism uint8
	Salt        []byte
}

func (p Argon2Params) withDefaults() Argon2Params {
	if p.Memory == 0 {
		p.Memory = DefaultArgon2Memory
	}
	if p.Passes == 0 {
		p.Passes = DefaultArgon2Passes
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultArgon2Parallelism
	}
	return p
}

// keys is the symmetric material derived from a passphrase.
type keys struct {
	cipherKey []byte
	iv        []byte
	macKey    []byte // v3 only
}

// deriveV2 is PuTTY's legacy scheme: SHA1(0x00000000 || pw) followed by
// SHA1(0x00000001 || pw), truncated to 32 bytes. v2 files carry no IV, so
// CBC always starts from a zero IV.
func deriveV2(passphrase string) keys {
	buf := make([]byte, 0, 2*sha1.Size)
	for seq := uint32(0); seq < 2; seq++ {
		h := sha1.New()
		var ctr [4]byte
		binary.BigEndian.PutUint32(ctr[:], seq)
		h.Write(ctr[:])
		h.Write([]byte(passphrase))
		buf = h.Sum(buf)
	}
	return keys{
		cipherKey: buf[:cipherKeySize],
		iv:        make([]byte, cipherBlockSize),
	}
}

// deriveV3 runs Argon2id and splits the output into cipher key, IV and MAC
// key, in that order.
func deriveV3(passphrase string, p Argon2Params) keys {
	out := argon2.IDKey([]byte(passphrase), p.Salt, p.Passes, p.Memory, p.Parallelism,
		cipherKeySize+cipherBlockSize+macKeySize)
	return keys{
		cipherKey: out[:cipherKeySize],
		iv:        out[cipherKeySize : cipherKeySize+cipherBlockSize],
		macKey:    out[cipherKeySize+cipherBlockSize:],
	}
}

func newSalt(rand io.Reader) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand, salt); err != nil {
		return nil, errors.Wrap(ErrRandomSource, err.Error())
	}
	return salt, nil
}
