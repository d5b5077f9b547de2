package main

import (
	"fmt"

	"github.com/urfave/cli"
)

func upCommand(d *driver) cli.Command {
	return cli.Command{
		Name:      "up",
		Usage:     "start an emulated network from a registered topology",
		ArgsUsage: "<topology>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: gonett up <topology>")
			}

			name := c.Args().First()
			topo, err := d.registry.Build(name)
			if err != nil {
				return err
			}

			emu, err := d.emulator()
			if err != nil {
				return err
			}

			n, err := emu.Start(name, topo)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "✓ Network %s started (%d nodes, %d links)\n", n.ShortID(), len(n.Nodes), len(n.Links))
			return nil
		},
	}
}
