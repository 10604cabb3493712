package ppk

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"

	"github.com/pkg/errors"
)

const (
	cipherBlockSize = aes.BlockSize
	cipherKeySize   = 32
)

// Pad rounds plain up to a multiple of blockSize. The tail is filled with
// the leading bytes of SHA1(plain), which is what PuTTY writes for v2 files.
// A blockSize of 1 returns a copy of plain.
func Pad(plain []byte, blockSize int) []byte {
	if blockSize < 1 {
		blockSize = 1
	}

	rounded := (len(plain) + blockSize - 1) / blockSize * blockSize
	out := make([]byte, rounded)
	n := copy(out, plain)

	if rounded > n {
		// blockSize is at most 16, so the tail always fits in one digest.
		sum := sha1.Sum(plain)
		copy(out[n:], sum[:rounded-n])
	}
	return out
}

// encryptCBC encrypts buf in place with AES-256-CBC. buf must already be
// block aligned.
func encryptCBC(key, iv, buf []byte) error {
	block, err := newBlock(key, iv, buf)
	if err != nil {
		return err
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(buf, buf)
	return nil
}

func decryptCBC(key, iv, buf []byte) error {
	block, err := newBlock(key, iv, buf)
	if err != nil {
		return err
	}
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(buf, buf)
	return nil
}

func newBlock(key, iv, buf []byte) (cipher.Block, error) {
	if len(key) != cipherKeySize {
		return nil, errors.Errorf("ppk: AES-256 key must be %d bytes, got %d", cipherKeySize, len(key))
	}
	if len(iv) != cipherBlockSize {
		return nil, errors.Errorf("ppk: IV must be %d bytes, got %d", cipherBlockSize, len(iv))
	}
	if len(buf)%cipherBlockSize != 0 {
		return nil, errors.Wrapf(ErrMalformed, "private blob length %d is not a multiple of %d", len(buf), cipherBlockSize)
	}
	return aes.NewCipher(key)
}
