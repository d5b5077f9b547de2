// Package topos holds the topology descriptors this repository ships.
// Descriptors only construct graphs; registering them under a lookup name
// is left to the application that owns the registry.
package topos

import (
	"fmt"

	"natlab/internal/topology"
)

// Name is the lookup name NatTopo is published under.
const Name = "mytopo"

const (
	localSwitch        = "s1"
	natSwitch          = "s2"
	remoteRootSwitch   = "s3"
	remoteTopSwitch    = "s4"
	remoteBottomSwitch = "s5"
)

// NatTopo builds a local network behind a NAT switch, connected to a
// remote network that fans out from a root switch:
//
//	h1,h2,h3 - s1 - s2 - s3 -+- s4 - h4
//	                         +- h5
//	                         +- s5 - h6
func NatTopo() (*topology.Topology, error) {
	topo := topology.NewTopology()

	// local hosts, before NAT
	var local []string
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("h%d", i)
		if err := topo.AddHost(name, fmt.Sprintf("10.0.0.%d/16", i)); err != nil {
			return nil, fmt.Errorf("local hosts: %w", err)
		}
		local = append(local, name)
	}

	// remote hosts, after NAT
	var remote []string
	for i := 4; i <= 6; i++ {
		name := fmt.Sprintf("h%d", i)
		if err := topo.AddHost(name, fmt.Sprintf("10.1.0.%d/16", i-3)); err != nil {
			return nil, fmt.Errorf("remote hosts: %w", err)
		}
		remote = append(remote, name)
	}

	for _, s := range []string{localSwitch, natSwitch, remoteRootSwitch, remoteTopSwitch, remoteBottomSwitch} {
		if err := topo.AddSwitch(s); err != nil {
			return nil, fmt.Errorf("switches: %w", err)
		}
	}

	links := make([][2]string, 0, 10)
	for _, h := range local {
		links = append(links, [2]string{h, localSwitch})
	}
	links = append(links,
		[2]string{localSwitch, natSwitch},
		[2]string{natSwitch, remoteRootSwitch},
		[2]string{remoteRootSwitch, remoteTopSwitch},
		[2]string{remoteTopSwitch, remote[0]},
		[2]string{remoteRootSwitch, remote[1]},
		[2]string{remoteRootSwitch, remoteBottomSwitch},
		[2]string{remoteBottomSwitch, remote[2]},
	)
	for _, l := range links {
		if err := topo.AddLink(l[0], l[1]); err != nil {
			return nil, fmt.Errorf("links: %w", err)
		}
	}

	return topo, nil
}
