// vaultctl is the host-side companion tool for .vault files: it creates,
// opens and re-encrypts vaults with the same engine the device runs, and
// manages the backup files the atomic store leaves behind.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/hrootzel/Password-Manager/internal/config"
	"github.com/hrootzel/Password-Manager/internal/crypto"
	"github.com/hrootzel/Password-Manager/internal/secret"
	"github.com/hrootzel/Password-Manager/internal/storage"
	"github.com/hrootzel/Password-Manager/internal/vault"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
	}

	params := config.Default()
	if err := params.Validate(); err != nil {
		log.Fatal(err)
	}
	engine := crypto.New(params)

	// Each command runs in its own function so that the wipe and Destroy
	// defers inside it fire before the process exits on error.
	var err error
	switch os.Args[1] {
	case "create":
		err = runCreate(params, engine, os.Args[2:])
	case "open":
		err = runOpen(params, engine, os.Args[2:])
	case "save":
		err = runSave(params, engine, os.Args[2:])
	case "gen":
		err = runGen(engine, os.Args[2:])
	case "backups":
		err = runBackups(os.Args[2:])
	case "restore":
		err = runRestore(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vaultctl <create|open|save|gen|backups|restore> [flags]")
	os.Exit(2)
}

func runCreate(params config.Params, engine *crypto.Engine, args []string) error {
	cmd := flag.NewFlagSet("create", flag.ExitOnError)
	dir := cmd.String("dir", "./vaults", "store directory")
	name := cmd.String("name", "", "vault name")
	pass := cmd.String("pass", "", "master password (prompted if omitted)")
	in := cmd.String("in", "", "plaintext payload file (default: empty JSON object)")
	cmd.Parse(args)

	if err := requireName(*name); err != nil {
		return err
	}
	sess, err := newSession(params, engine, *dir)
	if err != nil {
		return err
	}
	payload, err := readPayload(*in, []byte("{}"))
	if err != nil {
		return err
	}
	defer secret.Wipe(payload)
	pw, err := passphrase(*pass, true)
	if err != nil {
		return err
	}
	defer pw.Destroy()
	if err := sess.Create(*name, pw.Bytes(), payload); err != nil {
		return err
	}
	fmt.Printf("created %s.vault\n", *name)
	return nil
}

func runOpen(params config.Params, engine *crypto.Engine, args []string) error {
	cmd := flag.NewFlagSet("open", flag.ExitOnError)
	dir := cmd.String("dir", "./vaults", "store directory")
	name := cmd.String("name", "", "vault name")
	pass := cmd.String("pass", "", "master password (prompted if omitted)")
	out := cmd.String("out", "", "write payload to file instead of stdout")
	cmd.Parse(args)

	if err := requireName(*name); err != nil {
		return err
	}
	sess, err := newSession(params, engine, *dir)
	if err != nil {
		return err
	}
	pw, err := passphrase(*pass, false)
	if err != nil {
		return err
	}
	defer pw.Destroy()
	payload, err := sess.Open(*name, pw.Bytes())
	if err != nil {
		return err
	}
	defer secret.Wipe(payload)
	return writePayload(*out, payload)
}

func runSave(params config.Params, engine *crypto.Engine, args []string) error {
	cmd := flag.NewFlagSet("save", flag.ExitOnError)
	dir := cmd.String("dir", "./vaults", "store directory")
	name := cmd.String("name", "", "vault name")
	pass := cmd.String("pass", "", "master password (prompted if omitted)")
	in := cmd.String("in", "", "plaintext payload file (stdin if omitted)")
	cmd.Parse(args)

	if err := requireName(*name); err != nil {
		return err
	}
	sess, err := newSession(params, engine, *dir)
	if err != nil {
		return err
	}
	payload, err := readPayload(*in, nil)
	if err != nil {
		return err
	}
	defer secret.Wipe(payload)
	pw, err := passphrase(*pass, false)
	if err != nil {
		return err
	}
	defer pw.Destroy()
	if err := sess.Save(*name, pw.Bytes(), payload); err != nil {
		return err
	}
	fmt.Printf("saved %s.vault\n", *name)
	return nil
}

func runGen(engine *crypto.Engine, args []string) error {
	cmd := flag.NewFlagSet("gen", flag.ExitOnError)
	length := cmd.Int("n", 20, "password length")
	cmd.Parse(args)

	pw, err := engine.GeneratePassword(*length)
	if err != nil {
		return err
	}
	fmt.Println(pw)
	return nil
}

func runBackups(args []string) error {
	cmd := flag.NewFlagSet("backups", flag.ExitOnError)
	dir := cmd.String("dir", "./vaults", "store directory")
	cmd.Parse(args)

	store, err := newStore(*dir)
	if err != nil {
		return err
	}
	names, err := store.ListBackups()
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func runRestore(args []string) error {
	cmd := flag.NewFlagSet("restore", flag.ExitOnError)
	dir := cmd.String("dir", "./vaults", "store directory")
	name := cmd.String("name", "", "vault name")
	cmd.Parse(args)

	if err := requireName(*name); err != nil {
		return err
	}
	store, err := newStore(*dir)
	if err != nil {
		return err
	}
	if err := store.RestoreBackup(*name); err != nil {
		return err
	}
	fmt.Printf("restored %s.vault from backup\n", *name)
	return nil
}

func requireName(name string) error {
	if name == "" {
		return errors.New("missing -name")
	}
	return nil
}

func newStore(dir string) (*storage.Store, error) {
	medium, err := storage.NewOSMedium(dir)
	if err != nil {
		return nil, err
	}
	return storage.NewStore(medium, ""), nil
}

func newSession(params config.Params, engine *crypto.Engine, dir string) (*vault.Session, error) {
	store, err := newStore(dir)
	if err != nil {
		return nil, err
	}
	return vault.NewSession(params, engine, store), nil
}

// passphrase resolves the master password: the -pass flag for scripting, or a
// no-echo terminal prompt, repeated for confirmation when creating.
func passphrase(flagValue string, confirm bool) (*secret.Buffer, error) {
	if flagValue != "" {
		return secret.FromString(flagValue), nil
	}
	first, err := promptPassword("Master password: ")
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, errors.New("password is required")
	}
	if confirm {
		second, err := promptPassword("Repeat master password: ")
		if err != nil {
			secret.Wipe(first)
			return nil, err
		}
		match := bytes.Equal(first, second)
		secret.Wipe(second)
		if !match {
			secret.Wipe(first)
			return nil, errors.New("passwords do not match")
		}
	}
	return secret.From(first), nil
}

func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func readPayload(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		if fallback != nil {
			return append([]byte(nil), fallback...), nil
		}
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writePayload(path string, payload []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(payload)
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}
