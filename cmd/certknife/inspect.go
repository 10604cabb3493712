package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"certknife/internal/inspect"
	"certknife/internal/keystore"
	"certknife/pkg/sshpub"
)

func (a *app) inspectCommand() *cobra.Command {
	var password, format string

	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "Prints a summary of a certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := inspect.ParseFormat(format)
			if err != nil {
				return err
			}

			e, err := keystore.Load(a.log, args[0], password)
			if err != nil {
				return err
			}
			if e.Certificate == nil {
				return errors.Errorf("%s: no certificate found", args[0])
			}

			s := inspect.From(e.Certificate, e.PrivateKey != nil)

			pub, err := e.PublicKey()
			if err == nil {
				s.Fingerprint, err = sshpub.FingerprintRSA(pub)
			}
			if err != nil {
				a.log.Debugf("no ssh fingerprint: %v", err)
			}

			return inspect.Write(cmd.OutOrStdout(), s, f)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password protecting PFX file.")
	cmd.Flags().StringVar(&format, "format", "text", "Format of console output: text, json or yaml")
	return cmd
}
