// shardtx CLI - transaction hashing, signing and address derivation
//
// Transactions and parcels are read as JSON from a file, or from stdin
// when the file argument is "-".
//
// Example usage:
//
//	# Hash a transaction
//	shardtx hash mint.json
//
//	# Signing hash of input 0, not committing to outputs
//	shardtx sighash transfer.json '{"input":"single","output":[],"index":0}'
//
//	# Sign a parcel and recover its signer
//	shardtx sign parcel.json <secret> > signed.json
//	shardtx recover signed.json
//
//	# Index a transaction and look up one of its addresses
//	shardtx -config shardtx.ini index mint.json
//	shardtx -config shardtx.ini lookup 0x5300...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suffix-labs/shardtx/pkg/address"
	"github.com/suffix-labs/shardtx/pkg/api"
	"github.com/suffix-labs/shardtx/pkg/config"
	"github.com/suffix-labs/shardtx/pkg/crypto"
	"github.com/suffix-labs/shardtx/pkg/logging"
	"github.com/suffix-labs/shardtx/pkg/store"
	"github.com/suffix-labs/shardtx/pkg/types"
)

const version = "v0.1.0"

// signTimeout bounds a single signer call.
const signTimeout = 10 * time.Second

func main() {
	fs := flag.NewFlagSet("shardtx", flag.ExitOnError)
	fs.Usage = printUsage
	configPath := fs.String("config", "shardtx.ini", "INI configuration file")
	_ = fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, os.Stderr)

	command, rest := args[0], args[1:]

	switch command {
	case "hash":
		err = cmdHash(rest)
	case "sighash":
		err = cmdSighash(rest)
	case "address":
		err = cmdAddress(rest)
	case "encode":
		err = cmdEncode(rest)
	case "sign":
		err = cmdSign(rest)
	case "recover":
		err = cmdRecover(rest)
	case "account":
		err = cmdAccount(cfg, rest)
	case "index":
		err = cmdIndex(cfg, log, rest)
	case "lookup":
		err = cmdLookup(cfg, log, rest)
	case "version":
		cmdVersion(cfg)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.WithField("command", command).Debug("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`shardtx - asset transaction hashing, signing and address derivation

Usage:
  shardtx [-config file.ini] <command> [arguments]

Commands:
  hash <tx.json>                   Print the transaction hash
  sighash <tx.json> [tag.json]     Print the partial signing hash (default tag: all inputs, all outputs)
  address <tx.json>                Print the asset scheme and asset addresses created
  encode <tx.json>                 Print the canonical encoding as hex
  sign <parcel.json> <secret>      Sign a parcel with a hex or WIF secret
  recover <signed.json>            Print the platform address that signed a parcel
  account <secret>                 Print the platform address of a secret on the configured network
  index <tx.json>                  Record a transaction and its addresses in the local store
  lookup <address>                 Resolve an indexed asset or asset scheme address
  version                          Show version information
  help                             Show this help message

Use "-" as the file name to read from stdin.

Configuration (INI):
  [network] id     default network id ("cc")
  [store] path     index database path ("shardtx.db")
  [log] level      log level ("warning")`)
}

func cmdVersion(cfg *config.Config) {
	fmt.Printf("shardtx %s\n", version)
	fmt.Printf("Default network: %s\n", cfg.NetworkID)
}

func cmdHash(args []string) error {
	b, err := readInput(args, "hash <tx.json>")
	if err != nil {
		return err
	}
	hash, err := api.TransactionHash(b)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func cmdSighash(args []string) error {
	b, err := readInput(args, "sighash <tx.json> [tag.json]")
	if err != nil {
		return err
	}
	var tag []byte
	if len(args) > 1 {
		tag = []byte(args[1])
	}
	hash, err := api.SigningHash(b, tag)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func cmdAddress(args []string) error {
	b, err := readInput(args, "address <tx.json>")
	if err != nil {
		return err
	}
	addrs, err := api.DeriveAddresses(b)
	if err != nil {
		return err
	}
	return printJSON(addrs)
}

func cmdEncode(args []string) error {
	b, err := readInput(args, "encode <tx.json>")
	if err != nil {
		return err
	}
	encoded, err := api.EncodeTransaction(b)
	if err != nil {
		return err
	}
	fmt.Println(encoded)
	return nil
}

func cmdSign(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: shardtx sign <parcel.json> <secret>")
	}
	b, err := readInput(args, "sign <parcel.json> <secret>")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), signTimeout)
	defer cancel()

	signed, err := api.SignParcel(ctx, b, args[1])
	if err != nil {
		return err
	}
	fmt.Println(string(signed))
	return nil
}

func cmdRecover(args []string) error {
	b, err := readInput(args, "recover <signed.json>")
	if err != nil {
		return err
	}
	addr, err := api.RecoverSigner(b)
	if err != nil {
		return err
	}
	fmt.Println(addr)
	return nil
}

func cmdAccount(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: shardtx account <secret>")
	}
	key, err := crypto.ParsePrivateKey(args[0])
	if err != nil {
		return err
	}
	addr := address.FromPublicKey(cfg.NetworkID, key.PublicKey())
	fmt.Printf("Address:    %s\n", addr)
	fmt.Printf("Account ID: %s\n", addr.AccountID)
	return nil
}

func cmdIndex(cfg *config.Config, log *logrus.Logger, args []string) error {
	b, err := readInput(args, "index <tx.json>")
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.StorePath, log.WithField("component", "store"))
	if err != nil {
		return err
	}
	defer db.Close()

	addrs, err := api.IndexTransaction(db, b)
	if err != nil {
		return err
	}
	return printJSON(addrs)
}

func cmdLookup(cfg *config.Config, log *logrus.Logger, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: shardtx lookup <address>")
	}
	addr, err := types.ParseH256(args[0])
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.StorePath, log.WithField("component", "store"))
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := api.LookupAddress(db, addr)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// readInput reads the file named by args[0], or stdin for "-".
func readInput(args []string, usage string) ([]byte, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: shardtx %s", usage)
	}
	if args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return b, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
