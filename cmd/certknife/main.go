// Package main is the entry point for certknife.
//
// certknife converts RSA keys held in PFX or PEM files into PuTTY private
// key files (v2 or v3) and OpenSSH public key lines, creates self-signed
// certificates and prints certificate summaries.
//
// Usage:
//
//	certknife create --common-name alice -o alice.pem --key-out alice.key
//	certknife convert ppk alice.key --passphrase hunter2 -o alice.ppk
//	certknife convert ssh alice.key --comment alice@host -o alice.pub
//	certknife verify alice.ppk --passphrase hunter2
//	certknife inspect alice.pem --format json
package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"certknife/internal/config"
	"certknife/internal/log"
)

var gitCommit = "unknown"

// app carries state shared by all subcommands.
type app struct {
	out io.Writer
	err io.Writer

	logLevel   string
	configFile string

	cfg *config.Config
	log *logrus.Entry
}

func main() {
	a := &app{out: os.Stdout, err: os.Stderr}
	if err := a.rootCommand().Execute(); err != nil {
		if a.log == nil {
			a.log = log.New(a.err, "Info")
		}
		a.log.Fatal(err)
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "certknife",
		Long:          "Certificate and key conversion toolkit",
		Version:       gitCommit,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.err)

	root.PersistentFlags().StringVar(&a.logLevel, "loglevel", "", "valid values are Debug, Info, Warning, Error")
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "defaults file (default $XDG_CONFIG_HOME/certknife/"+config.FileName+")")

	root.AddCommand(a.convertCommand())
	root.AddCommand(a.createCommand())
	root.AddCommand(a.inspectCommand())
	root.AddCommand(a.verifyCommand())

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	lvl := cfg.LogLevel
	if cmd.Flags().Changed("loglevel") {
		lvl = a.logLevel
	}
	a.log = log.New(a.err, lvl)
	a.log.Debugf("certknife starting, git commit %s", gitCommit)
	return nil
}

// writeOutput writes b to path; private material is kept to the owner.
func (a *app) writeOutput(path string, b []byte, private bool) error {
	perm := os.FileMode(0644)
	if private {
		perm = 0600
	}
	if err := os.WriteFile(path, b, perm); err != nil {
		return err
	}
	a.log.Infof("wrote %s", path)
	return nil
}
