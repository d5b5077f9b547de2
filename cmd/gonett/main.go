package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"natlab/internal/config"
	"natlab/internal/emulator"
	"natlab/internal/registry"
	"natlab/internal/topos"
)

const usage = `network emulator for declarative host/switch topologies`

// driver carries everything the commands share. It is built once in main.
type driver struct {
	cfg      *config.Config
	registry *registry.Registry
	fabric   emulator.Fabric
	options  []emulator.Option
}

// registerTopologies is the single place descriptors are published.
func registerTopologies(reg *registry.Registry) error {
	return reg.Register(topos.Name, topos.NatTopo)
}

func (d *driver) emulator() (*emulator.Emulator, error) {
	store, err := emulator.NewStore(d.cfg.StateDir)
	if err != nil {
		return nil, err
	}
	return emulator.New(d.fabric, store, d.options...), nil
}

func newApp(d *driver) *cli.App {
	app := cli.NewApp()
	app.Name = "gonett"
	app.Usage = usage

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "state-dir",
			Value:  config.DefaultStateDir,
			Usage:  "directory holding running network records",
			EnvVar: "GONETT_STATE_DIR",
		},
		cli.StringFlag{
			Name:   "log-level",
			Value:  config.DefaultLogLevel,
			Usage:  "log level (trace, debug, info, warn, error)",
			EnvVar: "GONETT_LOG_LEVEL",
		},
		cli.StringFlag{
			Name:   "log-format",
			Value:  config.DefaultLogFormat,
			Usage:  "log format (text, json)",
			EnvVar: "GONETT_LOG_FORMAT",
		},
	}

	app.Before = func(c *cli.Context) error {
		cfg := config.Default()
		if v := c.String("state-dir"); v != "" {
			cfg.StateDir = v
		}
		if v := c.String("log-level"); v != "" {
			cfg.LogLevel = v
		}
		if v := c.String("log-format"); v != "" {
			cfg.LogFormat = v
		}
		d.cfg = cfg
		if err := d.cfg.Validate(); err != nil {
			return err
		}
		return d.cfg.ConfigureLogging()
	}

	app.Commands = []cli.Command{
		toposCommand(d),
		showCommand(d),
		upCommand(d),
		listCommand(d),
		execCommand(d),
		attachCommand(d),
		downCommand(d),
		cleanupCommand(d),
	}

	return app
}

func main() {
	reg := registry.New()
	if err := registerTopologies(reg); err != nil {
		log.Fatal(err)
	}

	d := &driver{
		registry: reg,
		fabric:   emulator.NewNetlinkFabric(),
	}

	if err := newApp(d).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
