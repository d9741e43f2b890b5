package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tuneinsight/ntru/ntru"
	"github.com/tuneinsight/ntru/utils/sampling"
)

const (
	workersFlag    = "workers"
	iterationsFlag = "iterations"
	msgLenFlag     = "msglen"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:      "bench",
		Action:    bench,
		Usage:     "Measures key generation, encryption and decryption",
		ArgsUsage: " ",
		Description: `Runs the operations of the selected parameter set on concurrent workers
and prints the mean, median, standard deviation and 99th percentile of
their latency. Defaults are read from the bench section of the configuration file.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    workersFlag,
				Aliases: []string{"w"},
				Usage:   "Number of concurrent workers.",
			},
			&cli.IntFlag{
				Name:    iterationsFlag,
				Aliases: []string{"n"},
				Usage:   "Number of operations per worker.",
			},
			&cli.IntFlag{
				Name:  msgLenFlag,
				Usage: "Length of the encrypted messages, capped to the maximum of the parameter set.",
			},
		},
	}
}

// benchResult holds the latencies of one operation, in microseconds.
type benchResult struct {
	name    string
	samples stats.Float64Data
}

func (r *benchResult) record(start time.Time) {
	r.samples = append(r.samples, float64(time.Since(start).Microseconds()))
}

func bench(c *cli.Context) error {

	log := getLogger(c)
	cfg := getConfig(c).Bench

	if c.IsSet(workersFlag) {
		cfg.Workers = c.Int(workersFlag)
	}
	if c.IsSet(iterationsFlag) {
		cfg.Iterations = c.Int(iterationsFlag)
	}
	if c.IsSet(msgLenFlag) {
		cfg.MessageLen = c.Int(msgLenFlag)
	}

	if cfg.Workers < 1 || cfg.Iterations < 1 {
		return errors.Errorf("workers=%d and iterations=%d must be positive", cfg.Workers, cfg.Iterations)
	}

	params, err := parametersFromContext(c)
	if err != nil {
		return err
	}

	msgLen := min(max(cfg.MessageLen, 0), params.MaxMsgLen())

	log.Info().
		Str("params", params.String()).
		Int("workers", cfg.Workers).
		Int("iterations", cfg.Iterations).
		Int("msglen", msgLen).
		Msg("Starting benchmark")

	kp, err := ntru.GenerateKeyPair(params, nil)
	if err != nil {
		return errors.Wrap(err, "cannot generate the benchmark keys")
	}
	defer kp.Zero()

	kgen := ntru.NewKeyGenerator(params, nil)
	enc := ntru.NewEncryptor(params, kp.Public, nil)
	dec := ntru.NewDecryptor(params, kp.Private, kp.Public)

	results := make([][3]benchResult, cfg.Workers)

	g, ctx := errgroup.WithContext(c.Context)

	for i := range results {

		res := &results[i]
		kgen, enc, dec := kgen.ShallowCopy(), enc.ShallowCopy(), dec.ShallowCopy()

		g.Go(func() error {
			return benchWorker(ctx, kgen, enc, dec, msgLen, cfg.Iterations, res)
		})
	}

	if err = g.Wait(); err != nil {
		return err
	}

	merged := [3]benchResult{{name: "keygen"}, {name: "encrypt"}, {name: "decrypt"}}
	for _, res := range results {
		for j := range merged {
			merged[j].samples = append(merged[j].samples, res[j].samples...)
		}
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "OPERATION\tCOUNT\tMEAN (us)\tMEDIAN (us)\tSTDDEV (us)\tP99 (us)\t")

	for _, res := range merged {

		summary, err := summarize(res.samples)
		if err != nil {
			return errors.Wrapf(err, "cannot summarize %s", res.name)
		}

		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%.1f\t%.1f\t\n", res.name, len(res.samples), summary[0], summary[1], summary[2], summary[3])

		log.Debug().
			Str("operation", res.name).
			Float64("mean", summary[0]).
			Float64("median", summary[1]).
			Msg("Benchmark result")
	}

	return w.Flush()
}

func benchWorker(ctx context.Context, kgen *ntru.KeyGenerator, enc *ntru.Encryptor, dec *ntru.Decryptor, msgLen, iterations int, res *[3]benchResult) error {

	prng, err := sampling.NewPRNG()
	if err != nil {
		return errors.Wrap(err, "cannot create the message PRNG")
	}
	src := sampling.NewSource(prng)

	for i := 0; i < iterations; i++ {

		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		kp, err := kgen.GenKeyPairNew()
		if err != nil {
			return errors.Wrap(err, "keygen")
		}
		res[0].record(start)
		kp.Zero()

		msg, err := src.Bytes(msgLen)
		if err != nil {
			return errors.Wrap(err, "message")
		}

		start = time.Now()
		ct, err := enc.EncryptNew(msg)
		if err != nil {
			return errors.Wrap(err, "encrypt")
		}
		res[1].record(start)

		start = time.Now()
		if _, err = dec.DecryptNew(ct); err != nil {
			return errors.Wrap(err, "decrypt")
		}
		res[2].record(start)
	}

	return nil
}

// summarize returns the mean, median, standard deviation and 99th percentile of samples.
func summarize(samples stats.Float64Data) (summary [4]float64, err error) {

	if summary[0], err = stats.Mean(samples); err != nil {
		return
	}
	if summary[1], err = stats.Median(samples); err != nil {
		return
	}
	if summary[2], err = stats.StandardDeviation(samples); err != nil {
		return
	}
	summary[3], err = stats.Percentile(samples, 99)
	return
}
