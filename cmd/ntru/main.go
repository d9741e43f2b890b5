// Command ntru generates NTRUEncrypt keys and encrypts and decrypts short messages.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/tuneinsight/ntru/internal/config"
	"github.com/tuneinsight/ntru/internal/logger"
	"github.com/tuneinsight/ntru/ntru"
)

const (
	configFlag     = "config"
	paramsFlag     = "params"
	paramsJSONFlag = "params-json"
	securityFlag   = "security"

	metaLogger = "logger"
	metaConfig = "config"
)

var (
	Version   = "DEV"
	BuildTime = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Create(nil).Error().Msg(err.Error())
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := &cli.App{}
	app.Name = "ntru"
	app.Usage = "NTRUEncrypt key generation, encryption and decryption"
	app.UsageText = "ntru [global options] command [command options] [arguments...]"
	app.Version = fmt.Sprintf("%s (built %s)", Version, BuildTime)
	app.Flags = flags()
	app.Before = before
	app.Commands = commands()
	app.Metadata = map[string]interface{}{}
	return app
}

func commands() []*cli.Command {
	return []*cli.Command{
		paramsCommand(),
		keygenCommand(),
		fingerprintCommand(),
		encryptCommand(),
		decryptCommand(),
		benchCommand(),
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Usage:   "Specifies a YAML configuration file. Defaults to ~/.ntru/config.yml if it exists.",
			EnvVars: []string{"NTRU_CONFIG"},
		},
		&cli.StringFlag{
			Name:    paramsFlag,
			Aliases: []string{"p"},
			Usage:   "Name of the parameter set of the catalog, see the params command.",
			EnvVars: []string{"NTRU_PARAMS"},
		},
		&cli.StringFlag{
			Name:  paramsJSONFlag,
			Usage: "Reads a custom parameter set from a JSON file. Takes precedence over --params.",
		},
		&cli.IntFlag{
			Name:  securityFlag,
			Usage: "Uses the default parameter set of this security level (112, 128, 192 or 256 bits) when no set is named.",
		},
		&cli.StringFlag{
			Name:    logger.LogLevelFlag,
			Value:   "info",
			Usage:   "Application logging level {trace, debug, info, warn, error}.",
			EnvVars: []string{"NTRU_LOGLEVEL"},
		},
		&cli.StringFlag{
			Name:    logger.LogFileFlag,
			Usage:   "Also saves the application log to this rolling file.",
			EnvVars: []string{"NTRU_LOGFILE"},
		},
		&cli.BoolFlag{
			Name:  logger.LogJSONFlag,
			Usage: "Logs JSON events on the terminal.",
		},
	}
}

// before reads the configuration file and creates the logger. Flags set
// on the command line override the configuration file.
func before(c *cli.Context) error {

	log := logger.CreateFromContext(c)

	cfg, err := config.ReadConfigFile(c.String(configFlag), log)
	if err != nil {
		return err
	}

	level := c.String(logger.LogLevelFlag)
	if !c.IsSet(logger.LogLevelFlag) && cfg.LogLevel != "" {
		level = cfg.LogLevel
	}

	file := c.String(logger.LogFileFlag)
	if !c.IsSet(logger.LogFileFlag) {
		file = cfg.LogFile
	}

	log = logger.Create(logger.CreateConfig(level, c.Bool(logger.LogJSONFlag), file))

	c.App.Metadata[metaLogger] = log
	c.App.Metadata[metaConfig] = cfg

	return nil
}

func getLogger(c *cli.Context) *zerolog.Logger {
	if log, ok := c.App.Metadata[metaLogger].(*zerolog.Logger); ok {
		return log
	}
	return logger.Create(nil)
}

func getConfig(c *cli.Context) *config.Configuration {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.Configuration); ok {
		return cfg
	}
	return config.Default()
}

// parametersFromContext returns the parameter set selected by, in order
// of precedence, --params-json, --params, --security, and the configuration file.
func parametersFromContext(c *cli.Context) (params ntru.Parameters, err error) {

	if path := c.String(paramsJSONFlag); path != "" {

		data, err := os.ReadFile(path)
		if err != nil {
			return params, errors.Wrap(err, "cannot read parameters")
		}

		if err = params.UnmarshalJSON(data); err != nil {
			return params, errors.Wrapf(err, "cannot parse parameters from %s", path)
		}

		return params, nil
	}

	cfg := getConfig(c)

	name := cfg.Params
	if c.IsSet(paramsFlag) {
		name = c.String(paramsFlag)
	}

	security := cfg.Security
	if c.IsSet(securityFlag) {
		security = c.Int(securityFlag)
		if !c.IsSet(paramsFlag) {
			name = ""
		}
	}

	if name != "" {
		params, err = ntru.ParametersByName(name)
	} else {
		params, err = ntru.DefaultParameters(security)
	}

	return params, errors.Wrap(err, "cannot select parameters")
}
