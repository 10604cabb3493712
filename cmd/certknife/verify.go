package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"certknife/pkg/ppk"
	"certknife/pkg/sshpub"
)

func (a *app) verifyCommand() *cobra.Command {
	var passphrase string

	cmd := &cobra.Command{
		Use:   "verify <input.ppk>",
		Short: "Checks the MAC of a PPK file and prints its public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			k, err := ppk.Decode(string(b), passphrase)
			if err != nil {
				return errors.Wrap(err, args[0])
			}
			if _, err := k.Material.RSA(); err != nil {
				return errors.Wrap(err, args[0])
			}

			fp, err := sshpub.Fingerprint(k.Material)
			if err != nil {
				return err
			}
			line, err := sshpub.Line(k.Material, k.Comment)
			if err != nil {
				return err
			}

			a.log.Infof("%s: PPK v%d, encryption %s, MAC ok", args[0], k.Version, k.Encryption)
			if k.KDF != nil {
				a.log.Debugf("argon2id memory=%d passes=%d parallelism=%d", k.KDF.Memory, k.KDF.Passes, k.KDF.Parallelism)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, fp)
			fmt.Fprintln(out, line)
			return nil
		},
	}

	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Passphrase the PPK file is encrypted with.")
	return cmd
}
