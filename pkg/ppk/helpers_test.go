package ppk

import (
	"crypto/rand"
	"crypto/rsa"
	"strconv"
	"strings"
	"sync"
	"testing"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
	testKeyErr  error
)

// generatedKey returns a 2048-bit key shared by the package tests.
func generatedKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		testKey, testKeyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if testKeyErr != nil {
		t.Fatal(testKeyErr)
	}
	return testKey
}

// fixtureMaterial is not a valid RSA key, but the encoder only needs the
// byte layout. The modulus deliberately starts below 0x80 and the primes
// above it.
func fixtureMaterial() RSAKeyMaterial {
	return RSAKeyMaterial{
		Modulus:         []byte{0x5c, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18, 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f, 0x20},
		PublicExponent:  []byte{0x01, 0x00, 0x01},
		PrivateExponent: []byte{0x3a, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c},
		PrimeP:          []byte{0xe3, 0x10, 0x20, 0x30, 0x40, 0x50, 0x60, 0x70},
		PrimeQ:          []byte{0xc1, 0x0f, 0x1f, 0x2f, 0x3f, 0x4f, 0x5f},
		CRTCoefficient:  []byte{0x42, 0x24, 0x42},
	}
}

// parsed is a PPK file split into header values and blob lines.
type parsed struct {
	headers map[string]string
	order   []string
	public  []string
	private []string
}

func parsePPK(t *testing.T, text string) parsed {
	t.Helper()

	if !strings.HasSuffix(text, "\n") {
		t.Fatal("output does not end with a newline")
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	p := parsed{headers: map[string]string{}}
	for i := 0; i < len(lines); i++ {
		name, value, ok := strings.Cut(lines[i], ": ")
		if !ok {
			t.Fatalf("line %d: %q is not a header", i+1, lines[i])
		}
		p.headers[name] = value
		p.order = append(p.order, name)

		if name == "Public-Lines" || name == "Private-Lines" {
			n, err := strconv.Atoi(value)
			if err != nil {
				t.Fatal(err)
			}
			block := lines[i+1 : i+1+n]
			if name == "Public-Lines" {
				p.public = block
			} else {
				p.private = block
			}
			i += n
		}
	}
	return p
}
