// Package keystore loads RSA keys and certificates from PEM or PKCS#12 (PFX)
// files and hands them to the encoders as ppk.RSAKeyMaterial.
package keystore

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"software.sslmate.com/src/go-pkcs12"

	"certknife/pkg/ppk"
)

// ErrNoPrivateKey is returned by KeyMaterial for certificate-only input.
var ErrNoPrivateKey = errors.New("certificate does not have private key")

// Entry is what a key file yielded. Either field may be nil.
type Entry struct {
	Certificate *x509.Certificate
	PrivateKey  *rsa.PrivateKey
}

// Load reads path and parses it with Parse.
func Load(log *logrus.Entry, path, password string) (*Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	e, err := Parse(log, b, password)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return e, nil
}

// Parse accepts PEM data (RSA PRIVATE KEY, PRIVATE KEY, CERTIFICATE blocks)
// or a DER PKCS#12 archive. password only applies to PKCS#12.
func Parse(log *logrus.Entry, data []byte, password string) (*Entry, error) {
	if bytes.Contains(data, []byte("-----BEGIN ")) {
		log.Debug("input looks like PEM")
		return parsePEM(log, data)
	}

	log.Debug("input looks like PKCS#12")
	return parsePKCS12(log, data, password)
}

func parsePKCS12(log *logrus.Entry, data []byte, password string) (*Entry, error) {
	key, cert, chain, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load certificate")
	}
	if len(chain) > 0 {
		log.Debugf("ignoring %d chain certificates", len(chain))
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.Errorf("found %T in PKCS#12 archive, only RSA keys are supported", key)
	}

	e := &Entry{Certificate: cert, PrivateKey: rsaKey}
	if err := e.checkPair(); err != nil {
		return nil, err
	}
	return e, nil
}

func parsePEM(log *logrus.Entry, data []byte) (*Entry, error) {
	e := &Entry{}
	for block, rest := pem.Decode(data); block != nil; block, rest = pem.Decode(rest) {
		switch block.Type {
		case "RSA PRIVATE KEY", "PRIVATE KEY":
			if e.PrivateKey != nil {
				log.Warnf("ignoring extra %s block", block.Type)
				continue
			}
			key, err := parsePrivateKey(block)
			if err != nil {
				return nil, err
			}
			e.PrivateKey = key
		case "CERTIFICATE":
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, errors.Wrap(err, "parse certificate")
			}
			// the first certificate is the leaf; chains follow it
			if e.Certificate == nil {
				e.Certificate = cert
			}
		default:
			log.Debugf("skipping %s block", block.Type)
		}
	}

	if e.Certificate == nil && e.PrivateKey == nil {
		return nil, errors.New("no certificate or private key found")
	}

	if err := e.checkPair(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Entry) checkPair() error {
	if e.Certificate == nil || e.PrivateKey == nil {
		return nil
	}
	pub, ok := e.Certificate.PublicKey.(*rsa.PublicKey)
	if !ok || !pub.Equal(&e.PrivateKey.PublicKey) {
		return errors.New("private key does not match certificate")
	}
	return nil
}

func parsePrivateKey(block *pem.Block) (*rsa.PrivateKey, error) {
	if x509.IsEncryptedPEMBlock(block) {
		return nil, errors.New("encrypted PEM private keys are not supported")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, errors.Wrap(err, "parse PKCS#1 private key")
		}
		return key, nil
	default:
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			// some exporters label PKCS#1 bytes as "PRIVATE KEY"
			if rsaKey, err1 := x509.ParsePKCS1PrivateKey(block.Bytes); err1 == nil {
				return rsaKey, nil
			}
			return nil, errors.Wrap(err, "parse PKCS#8 private key")
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.Errorf("found %T in PKCS#8 wrapping, only RSA keys are supported", key)
		}
		return rsaKey, nil
	}
}

// KeyMaterial converts the private key for the PPK and SSH encoders.
func (e *Entry) KeyMaterial() (ppk.RSAKeyMaterial, error) {
	if e.PrivateKey == nil {
		return ppk.RSAKeyMaterial{}, ErrNoPrivateKey
	}
	return ppk.FromRSA(e.PrivateKey)
}

// PublicKey returns the RSA public key from the private key or certificate.
func (e *Entry) PublicKey() (*rsa.PublicKey, error) {
	if e.PrivateKey != nil {
		return &e.PrivateKey.PublicKey, nil
	}
	pub, ok := e.Certificate.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.Errorf("certificate holds a %T, only RSA keys are supported", e.Certificate.PublicKey)
	}
	return pub, nil
}

// Subject is the certificate subject, or "" for a bare key.
func (e *Entry) Subject() string {
	if e.Certificate == nil {
		return ""
	}
	return e.Certificate.Subject.String()
}
