package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli"

	"natlab/internal/topology"
)

func toposCommand(d *driver) cli.Command {
	return cli.Command{
		Name:  "topos",
		Usage: "list registered topologies",
		Action: func(c *cli.Context) error {
			for _, name := range d.registry.Names() {
				fmt.Fprintln(c.App.Writer, name)
			}
			return nil
		},
	}
}

func showCommand(d *driver) cli.Command {
	return cli.Command{
		Name:      "show",
		Usage:     "print the hosts, switches and links of a topology",
		ArgsUsage: "<topology>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: gonett show <topology>")
			}

			name := c.Args().First()
			topo, err := d.registry.Build(name)
			if err != nil {
				return err
			}
			return printTopology(c.App.Writer, name, topo)
		},
	}
}

func printTopology(out io.Writer, name string, topo *topology.Topology) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "topology %s: %d hosts, %d switches, %d links\n\n",
		name, len(topo.Hosts()), len(topo.Switches()), len(topo.Links))

	fmt.Fprintln(w, "HOST\tADDRESS\tDEGREE")
	for _, h := range topo.Hosts() {
		fmt.Fprintf(w, "%s\t%s\t%d\n", h.Name, h.IP, topo.Degree(h.Name))
	}

	fmt.Fprintln(w, "\nSWITCH\tDEGREE")
	for _, s := range topo.Switches() {
		fmt.Fprintf(w, "%s\t%d\n", s.Name, topo.Degree(s.Name))
	}

	fmt.Fprintln(w, "\nLINKS")
	for _, l := range topo.Links {
		fmt.Fprintf(w, "%s <--> %s\n", l.NodeA, l.NodeB)
	}

	return w.Flush()
}
