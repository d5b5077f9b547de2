package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli"
)

func listCommand(d *driver) cli.Command {
	return cli.Command{
		Name:    "ls",
		Aliases: []string{"list"},
		Usage:   "list running networks",
		Action: func(c *cli.Context) error {
			emu, err := d.emulator()
			if err != nil {
				return err
			}

			networks, err := emu.Store().List()
			if err != nil {
				return fmt.Errorf("list networks: %w", err)
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NETWORK ID\tTOPOLOGY\tNODES\tLINKS\tCREATED")
			for _, n := range networks {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", n.ShortID(), n.Topology, len(n.Nodes), len(n.Links), n.CreatedAt)
			}
			return w.Flush()
		},
	}
}
