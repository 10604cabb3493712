package ppk

import "github.com/pkg/errors"

// KeyType is the only algorithm this package writes.
const KeyType = "ssh-rsa"

// PublicBlob builds the SSH wire public key: string "ssh-rsa", mpint e,
// mpint n.
func PublicBlob(k RSAKeyMaterial) ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}

	blob := make([]byte, 0, 3*prefixSize+len(KeyType)+len(k.PublicExponent)+len(k.Modulus)+2)
	blob = AppendString(blob, []byte(KeyType))

	var err error
	if blob, err = AppendMPInt(blob, k.PublicExponent); err != nil {
		return nil, errors.Wrap(err, "public exponent")
	}
	if blob, err = AppendMPInt(blob, k.Modulus); err != nil {
		return nil, errors.Wrap(err, "modulus")
	}
	return blob, nil
}

// PrivateBlob builds the PPK private part in PuTTY's order: D, P, Q,
// InverseQ. This is not the OpenSSH wire order.
func PrivateBlob(k RSAKeyMaterial) ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}

	parts := []struct {
		name string
		b    []byte
	}{
		{"private exponent", k.PrivateExponent},
		{"prime P", k.PrimeP},
		{"prime Q", k.PrimeQ},
		{"CRT coefficient", k.CRTCoefficient},
	}

	size := 0
	for _, p := range parts {
		size += prefixSize + 1 + len(p.b)
	}

	blob := make([]byte, 0, size)
	for _, p := range parts {
		var err error
		if blob, err = AppendMPInt(blob, p.b); err != nil {
			return nil, errors.Wrap(err, p.name)
		}
	}
	return blob, nil
}

// parsePublicBlob is the inverse of PublicBlob.
func parsePublicBlob(blob []byte) (e, n []byte, err error) {
	r := &reader{buf: blob}
	typ, err := r.string()
	if err != nil {
		return nil, nil, err
	}
	if string(typ) != KeyType {
		return nil, nil, errors.Wrapf(ErrUnsupportedKeyType, "public blob type %q", typ)
	}
	if e, err = r.mpint(); err != nil {
		return nil, nil, errors.Wrap(err, "public exponent")
	}
	if n, err = r.mpint(); err != nil {
		return nil, nil, errors.Wrap(err, "modulus")
	}
	if len(r.buf) != 0 {
		return nil, nil, errors.Wrap(ErrMalformed, "trailing data after public key")
	}
	return e, n, nil
}

// parsePrivateBlob reads D, P, Q, InverseQ and ignores the trailing cipher
// padding.
func parsePrivateBlob(blob []byte, k *RSAKeyMaterial) error {
	r := &reader{buf: blob}
	dst := []*[]byte{&k.PrivateExponent, &k.PrimeP, &k.PrimeQ, &k.CRTCoefficient}
	for _, d := range dst {
		b, err := r.mpint()
		if err != nil {
			return errors.Wrap(err, "private blob")
		}
		*d = b
	}
	return nil
}
