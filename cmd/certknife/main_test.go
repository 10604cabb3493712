package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"certknife/pkg/ppk"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{out: &out, err: io.Discard}
	cmd := a.rootCommand()
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()

	pfx := filepath.Join(dir, "alice.pfx")
	if _, err := run(t, "create", "--common-name", "alice", "--password", "pfxpw", "-o", pfx); err != nil {
		t.Fatal(err)
	}

	ppkFile := filepath.Join(dir, "alice.ppk")
	if _, err := run(t, "convert", "ppk", pfx, "--password", "pfxpw", "--passphrase", "hunter2", "--format-version", "3", "-o", ppkFile); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(ppkFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "PuTTY-User-Key-File-3: ssh-rsa\nEncryption: aes256-cbc\nComment: CN=alice\n") {
		t.Errorf("unexpected header:\n%s", b)
	}
	st, err := os.Stat(ppkFile)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0600 {
		t.Errorf("ppk mode %v", st.Mode().Perm())
	}

	out, err := run(t, "verify", ppkFile, "--passphrase", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "SHA256:") || !strings.Contains(out, "\nssh-rsa ") {
		t.Errorf("verify output:\n%s", out)
	}

	if _, err := run(t, "verify", ppkFile, "--passphrase", "wrong"); !errors.Is(err, ppk.ErrWrongPassphrase) {
		t.Errorf("got %v, want ErrWrongPassphrase", err)
	}

	pubFile := filepath.Join(dir, "alice.pub")
	if _, err := run(t, "convert", "ssh", pfx, "--password", "pfxpw", "--comment", "me@host", "-o", pubFile); err != nil {
		t.Fatal(err)
	}
	pub, err := os.ReadFile(pubFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(pub), "ssh-rsa ") || !strings.HasSuffix(string(pub), " me@host\n") {
		t.Errorf("unexpected public key line %q", pub)
	}
	// the public line from verify matches the one from convert, apart from the comment
	if fields := strings.Fields(string(pub)); !strings.Contains(out, fields[1]) {
		t.Error("verify and convert ssh disagree on the public blob")
	}

	out, err = run(t, "inspect", pfx, "--password", "pfxpw", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var summary map[string]interface{}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("%v:\n%s", err, out)
	}
	if summary["subject"] != "CN=alice" || summary["hasPrivateKey"] != true {
		t.Errorf("unexpected summary %v", summary)
	}

	cerFile := filepath.Join(dir, "alice.cer")
	if _, err := run(t, "convert", "cer", pfx, "--password", "pfxpw", "-o", cerFile); err != nil {
		t.Fatal(err)
	}
	cer, err := os.ReadFile(cerFile)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(cer), "PRIVATE KEY") {
		t.Error("cer output contains the private key")
	}

	if _, err := run(t, "convert", "ppk", pfx, "--password", "nope", "-o", filepath.Join(dir, "x.ppk")); err == nil {
		t.Error("expected an error for a wrong PFX password")
	}
}

func TestCreatePEM(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()

	combined := filepath.Join(dir, "dave.pem")
	if _, err := run(t, "create", "--common-name", "dave", "-o", combined); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(combined)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "BEGIN CERTIFICATE") || !strings.Contains(string(b), "BEGIN RSA PRIVATE KEY") {
		t.Errorf("unexpected PEM output:\n%s", b)
	}

	if _, err := run(t, "create", "--common-name", "dave", "-o", filepath.Join(dir, "dave.p12"), "--key-out", filepath.Join(dir, "dave.key")); err == nil {
		t.Error("expected an error for --key-out with PFX output")
	}
}

func TestConvertPPKDefaultsFromConfig(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgDir)
	if err := os.MkdirAll(filepath.Join(cfgDir, "certknife"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "certknife", "certknife.yaml"), []byte("comment: from-config\nformatVersion: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	cert, key := filepath.Join(dir, "bob.pem"), filepath.Join(dir, "bob.key")
	if _, err := run(t, "create", "--common-name", "bob", "-o", cert, "--key-out", key); err != nil {
		t.Fatal(err)
	}

	ppkFile := filepath.Join(dir, "bob.ppk")
	if _, err := run(t, "convert", "ppk", key, "-o", ppkFile); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(ppkFile)
	if err != nil {
		t.Fatal(err)
	}

	k, err := ppk.Decode(string(b), "")
	if err != nil {
		t.Fatal(err)
	}
	if k.Version != ppk.V2 || k.Comment != "from-config" || k.Encrypted() {
		t.Errorf("got v%d %q encrypted=%v", k.Version, k.Comment, k.Encrypted())
	}
}

func TestConvertPPKErrors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()

	cert, key := filepath.Join(dir, "c.pem"), filepath.Join(dir, "c.key")
	if _, err := run(t, "create", "--common-name", "c", "-o", cert, "--key-out", key); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "c.ppk")
	if _, err := run(t, "convert", "ppk", key, "--format-version", "4", "-o", out); !errors.Is(err, ppk.ErrInvalidFormatVersion) {
		t.Errorf("got %v, want ErrInvalidFormatVersion", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output written despite the error")
	}

	// certificate without key
	if _, err := run(t, "convert", "ppk", cert, "-o", out); err == nil {
		t.Error("expected an error for a certificate without private key")
	}
}
