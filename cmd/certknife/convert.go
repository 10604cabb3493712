package main

import (
	"bytes"
	"encoding/pem"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"certknife/internal/keystore"
	"certknife/pkg/ppk"
	"certknife/pkg/sshpub"
)

func (a *app) convertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Converts a PFX or PEM key to another format (see sub-commands)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(a.convertPPKCommand())
	cmd.AddCommand(a.convertSSHCommand())
	cmd.AddCommand(a.convertCerCommand())
	return cmd
}

// loadKey reads the input and resolves the comment: flag, then certificate
// subject, then configured default.
func (a *app) loadKey(path, password, comment string) (ppk.RSAKeyMaterial, string, error) {
	e, err := keystore.Load(a.log, path, password)
	if err != nil {
		return ppk.RSAKeyMaterial{}, "", err
	}
	km, err := e.KeyMaterial()
	if err != nil {
		return ppk.RSAKeyMaterial{}, "", errors.Wrap(err, path)
	}

	if comment == "" {
		comment = e.Subject()
	}
	if comment == "" {
		comment = a.cfg.Comment
	}
	return km, comment, nil
}

func (a *app) convertPPKCommand() *cobra.Command {
	var password, passphrase, comment, version, output string

	cmd := &cobra.Command{
		Use:   "ppk <input>",
		Short: "Converts to PPK (putty key file) format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := ppk.FormatVersion(a.cfg.FormatVersion)
			if cmd.Flags().Changed("format-version") {
				var err error
				if v, err = ppk.ParseFormatVersion(version); err != nil {
					return err
				}
			}
			if err := v.Validate(); err != nil {
				return err
			}

			km, comment, err := a.loadKey(args[0], password, comment)
			if err != nil {
				return err
			}

			if passphrase != "" && v == ppk.V2 {
				a.log.Warn("PPK v2 encryption uses a fixed IV and a weak key derivation, prefer --format-version 3")
			}
			a.log.Debugf("encoding PPK v%d with comment %q", v, comment)

			text, err := ppk.Encode(km, ppk.Options{
				Passphrase: passphrase,
				Comment:    comment,
				Version:    v,
			})
			if err != nil {
				return err
			}
			return a.writeOutput(output, []byte(text), true)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password protecting PFX file.")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Passphrase to encrypt the PPK file with (empty for none).")
	cmd.Flags().StringVar(&comment, "comment", "", "Comment for PPK file (default: certificate subject)")
	cmd.Flags().StringVar(&version, "format-version", "", "PPK format version, 2 or 3")
	cmd.Flags().StringVarP(&output, "output", "o", "out.ppk", "Name of output PPK file.")
	return cmd
}

func (a *app) convertSSHCommand() *cobra.Command {
	var password, comment, output string

	cmd := &cobra.Command{
		Use:   "ssh <input>",
		Short: "Converts to SSH public key format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			km, comment, err := a.loadKey(args[0], password, comment)
			if err != nil {
				return err
			}

			line, err := sshpub.Line(km, comment)
			if err != nil {
				return err
			}
			fp, err := sshpub.Fingerprint(km)
			if err != nil {
				return err
			}
			a.log.Infof("key fingerprint %s", fp)

			return a.writeOutput(output, []byte(line+"\n"), false)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password protecting PFX file.")
	cmd.Flags().StringVar(&comment, "comment", "", "Comment for SSH key line (default: certificate subject)")
	cmd.Flags().StringVarP(&output, "output", "o", "out.pub", "Name of output PUB file.")
	return cmd
}

func (a *app) convertCerCommand() *cobra.Command {
	var password, output string

	cmd := &cobra.Command{
		Use:   "cer <input>",
		Short: "Converts to a PEM encoded .cer file, containing public key only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := keystore.Load(a.log, args[0], password)
			if err != nil {
				return err
			}
			if e.Certificate == nil {
				return errors.Errorf("%s: no certificate found", args[0])
			}

			var buf bytes.Buffer
			if err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: e.Certificate.Raw}); err != nil {
				return err
			}
			return a.writeOutput(output, buf.Bytes(), false)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password protecting PFX file.")
	cmd.Flags().StringVarP(&output, "output", "o", "out.cer", "Name of output CER file.")
	return cmd
}
