package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/tuneinsight/ntru/ntru"
)

func encryptCommand() *cli.Command {
	return &cli.Command{
		Name:      "encrypt",
		Action:    encrypt,
		Usage:     "Encrypts a message under a public key",
		ArgsUsage: " ",
		Description: `Reads a message of at most MaxMsgLen bytes (see the params command) and
writes its ciphertext. The parameter set is read from the key header; name it
with --params for sets that share their degree and modulus.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     pubFlag,
				Usage:    "Public key file.",
				Required: true,
			},
			&cli.StringFlag{
				Name:  inFlag,
				Usage: "Message file, or - for the standard input.",
			},
			&cli.StringFlag{
				Name:    outFlag,
				Aliases: []string{"o"},
				Usage:   "Ciphertext file, or - for the standard output.",
			},
		},
	}
}

func encrypt(c *cli.Context) error {

	log := getLogger(c)

	pkData, err := os.ReadFile(c.String(pubFlag))
	if err != nil {
		return errors.Wrap(err, "cannot read the public key")
	}

	var params *ntru.Parameters
	if c.IsSet(paramsFlag) || c.IsSet(paramsJSONFlag) {
		p, err := parametersFromContext(c)
		if err != nil {
			return err
		}
		params = &p
	}

	pk, err := readPublicKey(pkData, params)
	if err != nil {
		return err
	}

	msg, err := readInput(c, inFlag)
	if err != nil {
		return err
	}

	ct, err := ntru.Encrypt(pk, msg, nil)
	if err != nil {
		return errors.Wrapf(err, "cannot encrypt %d bytes with %s", len(msg), pk.Parameters())
	}

	log.Debug().
		Str("params", pk.Parameters().String()).
		Str("fingerprint", fingerprint(pkData)).
		Int("size", len(ct)).
		Msg("Encrypted message")

	return writeOutput(c, outFlag, ct)
}

func decryptCommand() *cli.Command {
	return &cli.Command{
		Name:      "decrypt",
		Action:    decrypt,
		Usage:     "Decrypts a ciphertext with a key pair",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     privFlag,
				Usage:    "Private key file.",
				Required: true,
			},
			&cli.StringFlag{
				Name:     pubFlag,
				Usage:    "Public key file matching the private key.",
				Required: true,
			},
			&cli.StringFlag{
				Name:  inFlag,
				Usage: "Ciphertext file, or - for the standard input.",
			},
			&cli.StringFlag{
				Name:    outFlag,
				Aliases: []string{"o"},
				Usage:   "Message file, or - for the standard output.",
			},
		},
	}
}

func decrypt(c *cli.Context) error {

	log := getLogger(c)

	sk, err := readPrivateKey(c.String(privFlag))
	if err != nil {
		return err
	}
	defer sk.Zero()

	params := sk.Parameters()

	pkData, err := os.ReadFile(c.String(pubFlag))
	if err != nil {
		return errors.Wrap(err, "cannot read the public key")
	}

	pk, err := readPublicKey(pkData, &params)
	if err != nil {
		return err
	}

	ct, err := readInput(c, inFlag)
	if err != nil {
		return err
	}

	msg, err := ntru.Decrypt(&ntru.KeyPair{Private: sk, Public: pk}, ct)
	if err != nil {
		return errors.Wrapf(err, "cannot decrypt with %s", params)
	}
	defer clear(msg)

	log.Debug().
		Str("params", params.String()).
		Str("fingerprint", fingerprint(pkData)).
		Int("size", len(msg)).
		Msg("Decrypted message")

	return writeOutput(c, outFlag, msg)
}
