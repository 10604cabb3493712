// Package certgen provides utilities for generating self-signed X.509 certificates and RSA private keys.
//
// The resulting key pair is the usual input for the PPK and SSH converters. It can be written to disk
// as PEM (certificate and PKCS#1 key) or as a password-protected PKCS#12 (PFX) archive.
//
// Typical usage:
//
//	cert, key, err := certgen.Generate(certgen.Request{CommonName: "alice"})
//	if err != nil {
//	    log.Fatalf("Failed to generate cert: %v", err)
//	}
//	err = certgen.WritePFX("alice.pfx", cert, key, "secret")
package certgen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"software.sslmate.com/src/go-pkcs12"
)

// Defaults for Request.
const (
	DefaultKeySize       = 2048
	DefaultExpiresInDays = 365
)

var (
	oidBusinessCategory         = asn1.ObjectIdentifier{2, 5, 4, 15}
	oidJurisdictionCountryName  = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 60, 2, 1, 3}
	errGovEntityRequiresCountry = errors.New("country is required when requesting gov certificate")
)

// Request describes the subject and lifetime of a new certificate.
type Request struct {
	CommonName         string
	OrganizationalUnit string
	Country            string

	// GovEntity marks the subject as a government entity; Country is then
	// mandatory and recorded as the jurisdiction.
	GovEntity bool

	ExpiresInDays int
	KeySize       int
}

// Name builds the distinguished name for the request.
//
// The country is upper-cased. For a government entity the business category
// and jurisdiction attributes are added as well.
//
// Returns:
//
//	The subject name, or an error if GovEntity is set without a Country.
func (r Request) Name() (pkix.Name, error) {
	name := pkix.Name{CommonName: r.CommonName}
	if r.OrganizationalUnit != "" {
		name.OrganizationalUnit = []string{r.OrganizationalUnit}
	}

	country := strings.ToUpper(r.Country)
	if country != "" {
		name.Country = []string{country}
	}

	if r.GovEntity {
		if country == "" {
			return pkix.Name{}, errGovEntityRequiresCountry
		}
		name.ExtraNames = append(name.ExtraNames,
			pkix.AttributeTypeAndValue{Type: oidBusinessCategory, Value: "Gov Entity"},
			pkix.AttributeTypeAndValue{Type: oidJurisdictionCountryName, Value: country},
		)
	}
	return name, nil
}

// Generate creates an RSA private key and a self-signed X.509 certificate for it.
//
// The certificate is valid from today (UTC midnight) for ExpiresInDays days and allows
// digital signature, key encipherment and data encipherment.
//
// Args:
//
//	r: Subject and lifetime. KeySize and ExpiresInDays take the defaults when zero.
//
// Returns:
//
//	The parsed certificate and its private key, or an error if the request is invalid
//	or key or certificate generation fails.
func Generate(r Request) (*x509.Certificate, *rsa.PrivateKey, error) {
	if r.CommonName == "" {
		return nil, nil, errors.New("common name is required")
	}
	if r.KeySize == 0 {
		r.KeySize = DefaultKeySize
	}
	if r.KeySize != 2048 && r.KeySize != 4096 {
		return nil, nil, errors.Errorf("key size must be 2048 or 4096, got %d", r.KeySize)
	}
	if r.ExpiresInDays == 0 {
		r.ExpiresInDays = DefaultExpiresInDays
	}
	if r.ExpiresInDays < 0 {
		return nil, nil, errors.Errorf("invalid expiry of %d days", r.ExpiresInDays)
	}

	name, err := r.Name()
	if err != nil {
		return nil, nil, err
	}

	// Generate private key
	priv, err := rsa.GenerateKey(rand.Reader, r.KeySize)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to generate private key")
	}

	// Generate serial number
	serialNumber, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to generate serial number")
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	tmpl := x509.Certificate{
		SerialNumber:          serialNumber,
		Subject:               name,
		NotBefore:             today,
		NotAfter:              today.AddDate(0, 0, r.ExpiresInDays),
		KeyUsage:              x509.KeyUsageDataEncipherment | x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create certificate")
	}

	cert, err := x509.ParseCertificate(derBytes)
	if err != nil {
		return nil, nil, err
	}
	return cert, priv, nil
}

// WriteFiles writes the certificate and its private key to disk in PEM format.
//
// The certificate is written with mode 0644 and the PKCS#1 key with mode 0600.
// An empty keyFile appends the key to certFile instead, and that file is then written 0600.
//
// Args:
//
//	certFile: Path to the certificate file to create.
//	keyFile:  Path to the private key file to create, or "" for a combined file.
//
// Returns:
//
//	An error if writing to disk fails.
func WriteFiles(certFile, keyFile string, cert *x509.Certificate, key *rsa.PrivateKey) error {
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	if keyFile == "" {
		return errors.Wrap(os.WriteFile(certFile, append(certPEM, keyPEM...), 0600), "failed to write certificate")
	}

	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		return errors.Wrap(err, "failed to write certificate")
	}
	if err := os.WriteFile(keyFile, keyPEM, 0600); err != nil {
		return errors.Wrap(err, "failed to write private key")
	}
	return nil
}

// WritePFX writes the certificate and its private key to path as a PKCS#12 archive.
//
// The archive is encrypted with AES-256 and protected by a SHA-256 MAC, and is written with mode 0600.
// An empty password still produces an encrypted archive that opens with "".
//
// Args:
//
//	path:     Path to the PFX file to create.
//	password: Password protecting the archive.
//
// Returns:
//
//	An error if encoding or writing to disk fails.
func WritePFX(path string, cert *x509.Certificate, key *rsa.PrivateKey, password string) error {
	pfx, err := pkcs12.Modern.Encode(key, cert, nil, password)
	if err != nil {
		return errors.Wrap(err, "failed to encode PFX")
	}
	return errors.Wrap(os.WriteFile(path, pfx, 0600), "failed to write PFX")
}
