// Package inspect summarises a certificate for the console.
package inspect

import (
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

// Format selects how a Summary is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json or yaml in any case; "" means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	}
	return "", errors.Errorf("unknown output format %q", s)
}

// Summary is the subset of certificate fields the inspect command prints.
type Summary struct {
	Subject       string    `json:"subject"`
	NotBefore     time.Time `json:"notBefore"`
	NotAfter      time.Time `json:"notAfter"`
	HasPrivateKey bool      `json:"hasPrivateKey"`
	Thumbprint    string    `json:"thumbprint"`
	Fingerprint   string    `json:"fingerprint,omitempty"`
}

// From builds a summary. The thumbprint is the lowercase SHA-1 of the DER
// encoding.
func From(cert *x509.Certificate, hasPrivateKey bool) Summary {
	sum := sha1.Sum(cert.Raw)
	return Summary{
		Subject:       cert.Subject.String(),
		NotBefore:     cert.NotBefore,
		NotAfter:      cert.NotAfter,
		HasPrivateKey: hasPrivateKey,
		Thumbprint:    hex.EncodeToString(sum[:]),
	}
}

// Write renders s to w.
func Write(w io.Writer, s Summary, f Format) error {
	switch f {
	case FormatJSON:
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err

	case FormatYAML:
		b, err := yaml.Marshal(s)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err

	default:
		lines := []struct {
			k string
			v interface{}
		}{
			{"subject", s.Subject},
			{"valid from/to", fmt.Sprintf("%s - %s", s.NotBefore.Format(time.RFC3339), s.NotAfter.Format(time.RFC3339))},
			{"private key", s.HasPrivateKey},
			{"thumbprint", s.Thumbprint},
		}
		if s.Fingerprint != "" {
			lines = append(lines, struct {
				k string
				v interface{}
			}{"ssh fingerprint", s.Fingerprint})
		}
		for _, l := range lines {
			if _, err := fmt.Fprintf(w, "%15s = %v\n", l.k, l.v); err != nil {
				return err
			}
		}
		return nil
	}
}
