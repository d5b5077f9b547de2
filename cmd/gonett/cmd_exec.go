package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"natlab/internal/emulator"
)

func execCommand(d *driver) cli.Command {
	return cli.Command{
		Name:            "exec",
		Usage:           "run a command inside a node of a running network",
		ArgsUsage:       "<network-id> <node> <command> [args...]",
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			if c.NArg() < 3 {
				return fmt.Errorf("usage: gonett exec <network-id> <node> <command> [args...]")
			}

			emu, err := d.emulator()
			if err != nil {
				return err
			}

			n, err := emu.Store().Find(c.Args().Get(0))
			if err != nil {
				return err
			}

			return emu.Exec(n, c.Args().Get(1), c.Args()[2:], emulator.Stdio{
				In:  os.Stdin,
				Out: os.Stdout,
				Err: os.Stderr,
			})
		},
	}
}

func attachCommand(d *driver) cli.Command {
	return cli.Command{
		Name:      "attach",
		Usage:     "open a shell inside a node of a running network",
		ArgsUsage: "<network-id> <node>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("usage: gonett attach <network-id> <node>")
			}

			emu, err := d.emulator()
			if err != nil {
				return err
			}

			n, err := emu.Store().Find(c.Args().Get(0))
			if err != nil {
				return err
			}

			node := c.Args().Get(1)
			os.Setenv("PS1", fmt.Sprintf("gonett@%s:\\w $ ", node))

			return emu.Exec(n, node, []string{"/bin/bash", "--noprofile", "--norc"}, emulator.Stdio{
				In:  os.Stdin,
				Out: os.Stdout,
				Err: os.Stderr,
			})
		},
	}
}
