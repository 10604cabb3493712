package main

import (
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"certknife/pkg/certgen"
)

func (a *app) createCommand() *cobra.Command {
	var (
		req                       certgen.Request
		output, keyFile, password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Creates a new self-signed X509 certificate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.CommonName == "" {
				if u, err := user.Current(); err == nil {
					req.CommonName = u.Username
				}
			}
			if !cmd.Flags().Changed("key-size") {
				req.KeySize = a.cfg.KeySize
			}
			if !cmd.Flags().Changed("expires-in") {
				req.ExpiresInDays = a.cfg.ExpiresInDays
			}

			pfx := isPFX(output)
			if pfx && keyFile != "" {
				return errors.New("--key-out only applies to PEM output")
			}

			name, err := req.Name()
			if err != nil {
				return err
			}
			a.log.Infof("with dn: %s", name)

			cert, key, err := certgen.Generate(req)
			if err != nil {
				return err
			}

			if pfx {
				if password == "" {
					a.log.Warn("writing PFX with an empty password")
				}
				err = certgen.WritePFX(output, cert, key, password)
			} else {
				err = certgen.WriteFiles(output, keyFile, cert, key)
			}
			if err != nil {
				return err
			}

			a.log.Infof("wrote %s", output)
			if keyFile != "" {
				a.log.Infof("wrote %s", keyFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.CommonName, "common-name", "", "DN: Common name (default: current user)")
	cmd.Flags().StringVar(&req.OrganizationalUnit, "ou", "", "DN: Organizational Unit Name")
	cmd.Flags().StringVar(&req.Country, "country", "", "DN: Country")
	cmd.Flags().BoolVar(&req.GovEntity, "gov", false, "DN: If specified, indicates government entity")
	cmd.Flags().IntVar(&req.ExpiresInDays, "expires-in", certgen.DefaultExpiresInDays, "Number of days, after which the certificate will expire.")
	cmd.Flags().IntVar(&req.KeySize, "key-size", certgen.DefaultKeySize, "Key size: 2048 or 4096")
	cmd.Flags().StringVar(&password, "password", "", "Password protecting PFX file.")
	cmd.Flags().StringVarP(&output, "output", "o", "out.pfx", "Name of output file; .pfx or .p12 writes PKCS#12, anything else PEM.")
	cmd.Flags().StringVar(&keyFile, "key-out", "", "Name of output PEM key file (default: appended to the certificate file)")
	return cmd
}

func isPFX(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pfx", ".p12":
		return true
	}
	return false
}
