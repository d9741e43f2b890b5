package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/tuneinsight/ntru/ntru"
)

const jsonFlag = "json"

func paramsCommand() *cli.Command {
	return &cli.Command{
		Name:      "params",
		Action:    listParams,
		Usage:     "Lists the parameter sets, or prints one of them",
		ArgsUsage: "[name]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  jsonFlag,
				Usage: "Prints the parameters as a JSON literal, usable with --params-json.",
			},
		},
	}
}

func listParams(c *cli.Context) error {

	var sets []ntru.Parameters
	if c.NArg() > 0 {
		for _, name := range c.Args().Slice() {
			p, err := ntru.ParametersByName(name)
			if err != nil {
				return errors.WithStack(err)
			}
			sets = append(sets, p)
		}
	} else {
		sets = ntru.Catalog()
	}

	if c.Bool(jsonFlag) {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		for _, p := range sets {
			if err := enc.Encode(p); err != nil {
				return errors.Wrap(err, "cannot encode parameters")
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSECURITY\tN\tQ\tFORM\tMAX MSG\tPUBLIC KEY\tPRIVATE KEY\tCIPHERTEXT\t")

	for _, p := range sets {

		form := "ternary"
		if p.ProductForm() {
			form = "product"
		}
		if p.Deprecated() {
			form += " (deprecated)"
		}

		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%d\t%d\t%d\t%d\t\n",
			p.Name(), p.Security(), p.N(), p.Q(), form, p.MaxMsgLen(), p.PublicKeyLen(), p.PrivateKeyLen(), p.EncLen())
	}

	return w.Flush()
}
