package main

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func downCommand(d *driver) cli.Command {
	return cli.Command{
		Name:      "down",
		Aliases:   []string{"rm"},
		Usage:     "stop a running network",
		ArgsUsage: "<network-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: gonett down <network-id>")
			}

			emu, err := d.emulator()
			if err != nil {
				return err
			}

			n, err := emu.Store().Find(c.Args().First())
			if err != nil {
				return err
			}

			if err := emu.Stop(n); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "✓ Network %s stopped\n", n.ShortID())
			return nil
		},
	}
}

func cleanupCommand(d *driver) cli.Command {
	return cli.Command{
		Name:  "cleanup",
		Usage: "stop every running network",
		Action: func(c *cli.Context) error {
			emu, err := d.emulator()
			if err != nil {
				return err
			}

			networks, err := emu.Store().List()
			if err != nil {
				return fmt.Errorf("list networks: %w", err)
			}
			if len(networks) == 0 {
				fmt.Fprintln(c.App.Writer, "No networks to stop")
				return nil
			}

			var errs []error
			for _, n := range networks {
				if err := emu.Stop(n); err != nil {
					log.WithError(err).WithField("network", n.ShortID()).Error("stop failed")
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(c.App.Writer, "✓ Network %s stopped\n", n.ShortID())
			}
			return errors.Join(errs...)
		},
	}
}
