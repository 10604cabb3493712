package ppk

import (
	"crypto/rsa"
	"math/big"

	"github.com/pkg/errors"
)

// RSAKeyMaterial holds the RSA components as big-endian unsigned magnitudes.
type RSAKeyMaterial struct {
	Modulus         []byte
	PublicExponent  []byte
	PrivateExponent []byte
	PrimeP          []byte
	PrimeQ          []byte
	CRTCoefficient  []byte // inverse of Q mod P
}

// Validate reports ErrMissingKeyComponent, naming the first empty field.
func (k RSAKeyMaterial) Validate() error {
	fields := []struct {
		name string
		b    []byte
	}{
		{"modulus", k.Modulus},
		{"public exponent", k.PublicExponent},
		{"private exponent", k.PrivateExponent},
		{"prime P", k.PrimeP},
		{"prime Q", k.PrimeQ},
		{"CRT coefficient", k.CRTCoefficient},
	}
	for _, f := range fields {
		if len(f.b) == 0 {
			return errors.Wrap(ErrMissingKeyComponent, f.name)
		}
	}
	return nil
}

// FromRSA extracts key material from a two-prime RSA key.
//
// P and Q are taken in the key's prime order. The CRT coefficient is the
// precomputed Qinv when present and computed as Q^-1 mod P otherwise.
//
// Returns:
//
//	The key material, or an error for a nil key or one with other than two primes.
func FromRSA(key *rsa.PrivateKey) (RSAKeyMaterial, error) {
	if key == nil {
		return RSAKeyMaterial{}, errors.Wrap(ErrMissingKeyComponent, "nil private key")
	}
	if len(key.Primes) != 2 {
		return RSAKeyMaterial{}, errors.Errorf("ppk: expected 2 primes, got %d", len(key.Primes))
	}

	p, q := key.Primes[0], key.Primes[1]
	qinv := key.Precomputed.Qinv
	if qinv == nil {
		qinv = new(big.Int).ModInverse(q, p)
		if qinv == nil {
			return RSAKeyMaterial{}, errors.New("ppk: primes are not coprime")
		}
	}

	k := RSAKeyMaterial{
		Modulus:         key.N.Bytes(),
		PublicExponent:  big.NewInt(int64(key.E)).Bytes(),
		PrivateExponent: key.D.Bytes(),
		PrimeP:          p.Bytes(),
		PrimeQ:          q.Bytes(),
		CRTCoefficient:  qinv.Bytes(),
	}
	return k, k.Validate()
}

// RSA rebuilds a validated Go private key from the material.
func (k RSAKeyMaterial) RSA() (*rsa.PrivateKey, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}

	e := new(big.Int).SetBytes(k.PublicExponent)
	if !e.IsInt64() || e.Int64() > 1<<31-1 {
		return nil, errors.New("ppk: public exponent too large")
	}

	key := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{
			N: new(big.Int).SetBytes(k.Modulus),
			E: int(e.Int64()),
		},
		D: new(big.Int).SetBytes(k.PrivateExponent),
		Primes: []*big.Int{
			new(big.Int).SetBytes(k.PrimeP),
			new(big.Int).SetBytes(k.PrimeQ),
		},
	}
	if err := key.Validate(); err != nil {
		return nil, errors.Wrap(err, "ppk: invalid RSA key")
	}
	key.Precompute()

	if key.Precomputed.Qinv.Cmp(new(big.Int).SetBytes(k.CRTCoefficient)) != 0 {
		return nil, errors.New("ppk: CRT coefficient does not match primes")
	}
	return key, nil
}
