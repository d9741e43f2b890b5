package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/zeebo/blake3"

	"github.com/tuneinsight/ntru/ntru"
	"github.com/tuneinsight/ntru/utils/sampling"
)

const (
	outFlag   = "out"
	inFlag    = "in"
	seedFlag  = "seed"
	countFlag = "count"
	pubFlag   = "pub"
	privFlag  = "priv"

	privateKeyExt = ".priv"
	publicKeyExt  = ".pub"

	privateKeyPerm = 0600
	publicKeyPerm  = 0644
)

func keygenCommand() *cli.Command {
	return &cli.Command{
		Name:      "keygen",
		Action:    keygen,
		Usage:     "Generates a key pair",
		ArgsUsage: " ",
		Description: `Generates a private key and one or more public keys of the selected
parameter set, and writes them to <out>.priv and <out>.pub (or <out>-<i>.pub
with --count). A seed makes the generation deterministic.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     outFlag,
				Aliases:  []string{"o"},
				Usage:    "Path prefix of the key files.",
				Required: true,
			},
			&cli.StringFlag{
				Name:  seedFlag,
				Usage: "Derives the keys from this seed instead of the system entropy. For tests only.",
			},
			&cli.IntFlag{
				Name:  countFlag,
				Value: 1,
				Usage: "Number of public keys to generate for the private key.",
			},
		},
	}
}

func keygen(c *cli.Context) error {

	log := getLogger(c)

	params, err := parametersFromContext(c)
	if err != nil {
		return err
	}

	var prng sampling.PRNG
	if seed := c.String(seedFlag); seed != "" {
		if prng, err = sampling.NewXOFPRNG([]byte(seed)); err != nil {
			return errors.Wrap(err, "cannot create the seeded PRNG")
		}
		log.Warn().Msg("Generating keys from a seed, do not use them outside of tests")
	}

	count := c.Int(countFlag)
	if count < 1 {
		return errors.Errorf("--%s=%d must be positive", countFlag, count)
	}

	sk, pks, err := ntru.NewKeyGenerator(params, prng).GenMultipleKeyPairsNew(count)
	if err != nil {
		return errors.Wrapf(err, "cannot generate keys for %s", params)
	}
	defer sk.Zero()

	prefix := c.String(outFlag)

	skData, err := sk.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "cannot serialize the private key")
	}
	defer clear(skData)

	if err = os.WriteFile(prefix+privateKeyExt, skData, privateKeyPerm); err != nil {
		return errors.Wrap(err, "cannot write the private key")
	}

	for i, pk := range pks {

		pkData, err := pk.MarshalBinary()
		if err != nil {
			return errors.Wrap(err, "cannot serialize the public key")
		}

		path := prefix + publicKeyExt
		if count > 1 {
			path = fmt.Sprintf("%s-%d%s", prefix, i, publicKeyExt)
		}

		if err = os.WriteFile(path, pkData, publicKeyPerm); err != nil {
			return errors.Wrap(err, "cannot write the public key")
		}

		log.Info().
			Str("params", params.String()).
			Str("file", path).
			Str("fingerprint", fingerprint(pkData)).
			Msg("Generated public key")
	}

	return nil
}

func fingerprintCommand() *cli.Command {
	return &cli.Command{
		Name:      "fingerprint",
		Action:    printFingerprint,
		Usage:     "Prints the fingerprint of a public key",
		ArgsUsage: "<file>",
	}
}

func printFingerprint(c *cli.Context) error {

	if c.NArg() != 1 {
		return errors.New("expected the path of a public key")
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return errors.Wrap(err, "cannot read the public key")
	}

	pk, err := readPublicKey(data, nil)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(c.App.Writer, "%s %s\n", pk.Parameters(), fingerprint(data))
	return err
}

// fingerprint returns the first 16 bytes of the BLAKE3 hash of a serialized public key, in hex.
func fingerprint(pkData []byte) string {
	sum := blake3.Sum256(pkData)
	return hex.EncodeToString(sum[:16])
}

// readPublicKey decodes a public key. Without params, the parameter set is
// looked up from the key header, which fails for sets sharing N and Q.
func readPublicKey(data []byte, params *ntru.Parameters) (*ntru.PublicKey, error) {

	pk := new(ntru.PublicKey)
	if params != nil {
		pk = ntru.NewPublicKey(*params)
	}

	if err := pk.UnmarshalBinary(data); err != nil {
		return nil, errors.Wrap(err, "cannot decode the public key")
	}

	return pk, nil
}

func readPrivateKey(path string) (*ntru.PrivateKey, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read the private key")
	}
	defer clear(data)

	sk := new(ntru.PrivateKey)
	if err = sk.UnmarshalBinary(data); err != nil {
		return nil, errors.Wrap(err, "cannot decode the private key")
	}

	return sk, nil
}

// readInput reads the file named by the flag, or the standard input if it is empty or "-".
func readInput(c *cli.Context, flag string) ([]byte, error) {

	path := c.String(flag)
	if path == "" || path == "-" {
		data, err := io.ReadAll(c.App.Reader)
		return data, errors.Wrap(err, "cannot read the standard input")
	}

	data, err := os.ReadFile(path)
	return data, errors.Wrapf(err, "cannot read %s", path)
}

// writeOutput writes the file named by the flag, or the standard output if it is empty or "-".
func writeOutput(c *cli.Context, flag string, data []byte) error {

	path := c.String(flag)
	if path == "" || path == "-" {
		_, err := c.App.Writer.Write(data)
		return errors.Wrap(err, "cannot write the standard output")
	}

	return errors.Wrapf(os.WriteFile(path, data, privateKeyPerm), "cannot write %s", path)
}
