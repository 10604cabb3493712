// Package sshpub renders RSA key material as an OpenSSH authorized_keys line.
package sshpub

import (
	"crypto/rsa"
	"encoding/base64"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"certknife/pkg/ppk"
)

// Line returns "ssh-rsa <base64 blob> <comment>" with no trailing newline.
// An empty comment becomes ppk.DefaultComment.
func Line(k ppk.RSAKeyMaterial, comment string) (string, error) {
	blob, err := ppk.PublicBlob(k)
	if err != nil {
		return "", err
	}
	if comment == "" {
		comment = ppk.DefaultComment
	}
	return ppk.KeyType + " " + base64.StdEncoding.EncodeToString(blob) + " " + comment, nil
}

// PublicKey parses the blob back through x/crypto/ssh.
func PublicKey(k ppk.RSAKeyMaterial) (ssh.PublicKey, error) {
	blob, err := ppk.PublicBlob(k)
	if err != nil {
		return nil, err
	}
	pub, err := ssh.ParsePublicKey(blob)
	if err != nil {
		return nil, errors.Wrap(err, "sshpub: invalid public key blob")
	}
	return pub, nil
}

// Fingerprint returns the OpenSSH SHA256 fingerprint, e.g. "SHA256:...".
func Fingerprint(k ppk.RSAKeyMaterial) (string, error) {
	pub, err := PublicKey(k)
	if err != nil {
		return "", err
	}
	return ssh.FingerprintSHA256(pub), nil
}

// FingerprintRSA fingerprints a bare public key, for certificates that come
// without their private half.
func FingerprintRSA(pub *rsa.PublicKey) (string, error) {
	k, err := ssh.NewPublicKey(pub)
	if err != nil {
		return "", errors.Wrap(err, "sshpub")
	}
	return ssh.FingerprintSHA256(k), nil
}
