// Package emulator turns a topology into a running network: one network
// namespace per node, one Linux bridge per switch and one veth pair per
// link. Host ends of links receive the host's declared address.
package emulator

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"

	"natlab/internal/topology"
)

// maxIfNameLen is IFNAMSIZ without the trailing NUL.
const maxIfNameLen = 15

var (
	ErrNilTopology     = errors.New("nil topology")
	ErrInvalidAddress  = errors.New("invalid host address")
	ErrInterfaceName   = errors.New("interface name too long")
	ErrUnknownNodeName = errors.New("node not in network")
)

type Emulator struct {
	fabric Fabric
	store  *Store

	now   func() time.Time
	newID func() string
}

type Option func(*Emulator)

// WithClock replaces time.Now for network creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Emulator) { e.now = now }
}

// WithIDs replaces the uuid generator used for network IDs.
func WithIDs(newID func() string) Option {
	return func(e *Emulator) { e.newID = newID }
}

func New(fabric Fabric, store *Store, opts ...Option) *Emulator {
	e := &Emulator{
		fabric: fabric,
		store:  store,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func bridgeName(node string) string {
	return node + "-br0"
}

func portName(node string, index int) string {
	return fmt.Sprintf("%s-eth%d", node, index)
}

// plan lays out namespaces, bridges and interface names without touching
// the kernel, so every naming or address problem is reported before
// anything is created.
func (e *Emulator) plan(name string, topo *topology.Topology) (*Network, error) {
	if topo == nil {
		return nil, ErrNilTopology
	}

	n := &Network{
		ID:        e.newID(),
		Topology:  name,
		CreatedAt: e.now().Format(time.RFC3339),
	}

	ips := map[string]string{}
	for _, node := range topo.SortedNodes() {
		state := NodeState{
			Name:      node.Name,
			Type:      node.Type,
			Namespace: fmt.Sprintf("%s-%s", n.ShortID(), node.Name),
		}

		switch node.Type {
		case topology.NodeHost:
			addr, err := netlink.ParseAddr(node.IP)
			if err != nil {
				return nil, fmt.Errorf("host %s: %w: %q: %v", node.Name, ErrInvalidAddress, node.IP, err)
			}
			ip := addr.IP.String()
			if owner, dup := ips[ip]; dup {
				return nil, fmt.Errorf("host %s: %w: %s already used by %s", node.Name, topology.ErrDuplicateAddress, ip, owner)
			}
			ips[ip] = node.Name
			state.IP = node.IP
		case topology.NodeSwitch:
			state.Bridge = bridgeName(node.Name)
			if len(state.Bridge) > maxIfNameLen {
				return nil, fmt.Errorf("switch %s: %w: %s", node.Name, ErrInterfaceName, state.Bridge)
			}
		default:
			return nil, fmt.Errorf("unknown node type: %s", node.Type)
		}

		n.Nodes = append(n.Nodes, state)
	}

	ports := map[string]int{}
	for _, l := range topo.Links {
		ls := LinkState{
			NodeA: l.NodeA,
			IfA:   portName(l.NodeA, ports[l.NodeA]),
			NodeB: l.NodeB,
			IfB:   portName(l.NodeB, ports[l.NodeB]),
		}
		ports[l.NodeA]++
		ports[l.NodeB]++

		for _, ifName := range []string{ls.IfA, ls.IfB} {
			if len(ifName) > maxIfNameLen {
				return nil, fmt.Errorf("link %s-%s: %w: %s", l.NodeA, l.NodeB, ErrInterfaceName, ifName)
			}
		}
		n.Links = append(n.Links, ls)
	}

	return n, nil
}

// Start materialises topo and records it under a fresh network ID. On
// failure everything created so far is removed again.
func (e *Emulator) Start(name string, topo *topology.Topology) (*Network, error) {
	n, err := e.plan(name, topo)
	if err != nil {
		return nil, fmt.Errorf("plan network: %w", err)
	}

	logger := log.WithFields(log.Fields{"network": n.ShortID(), "topology": name})
	logger.Info("starting network")

	var created []string
	rollback := func() {
		for _, ns := range created {
			if err := e.fabric.DeleteNamespace(ns); err != nil {
				logger.WithError(err).WithField("namespace", ns).Warn("rollback failed")
			}
		}
	}

	for _, node := range n.Nodes {
		if err := e.startNode(logger, node); err != nil {
			rollback()
			return nil, fmt.Errorf("build node %s: %w", node.Name, err)
		}
		created = append(created, node.Namespace)
		logger.WithFields(log.Fields{"node": node.Name, "type": node.Type}).Debug("node created")
	}

	for i, l := range n.Links {
		if err := e.startLink(logger, n, i, l); err != nil {
			rollback()
			return nil, fmt.Errorf("build link %s-%s: %w", l.NodeA, l.NodeB, err)
		}
		logger.WithField("link", fmt.Sprintf("%s:%s <--> %s:%s", l.NodeA, l.IfA, l.NodeB, l.IfB)).Debug("link created")
	}

	if err := e.store.Save(n); err != nil {
		rollback()
		return nil, fmt.Errorf("save network: %w", err)
	}

	logger.WithFields(log.Fields{"nodes": len(n.Nodes), "links": len(n.Links)}).Info("network started")
	return n, nil
}

func (e *Emulator) startNode(logger *log.Entry, node NodeState) error {
	if err := e.fabric.CreateNamespace(node.Namespace); err != nil {
		return err
	}

	err := e.fabric.SetUp(node.Namespace, "lo")
	if err == nil && node.Bridge != "" {
		err = e.fabric.CreateBridge(node.Namespace, node.Bridge)
	}
	if err != nil {
		if delErr := e.fabric.DeleteNamespace(node.Namespace); delErr != nil {
			logger.WithError(delErr).WithField("namespace", node.Namespace).Warn("cleanup failed")
		}
		return err
	}
	return nil
}

func (e *Emulator) startLink(logger *log.Entry, n *Network, index int, l LinkState) error {
	tmpA := fmt.Sprintf("v%s%da", n.ShortID(), index)
	tmpB := fmt.Sprintf("v%s%db", n.ShortID(), index)

	if err := e.fabric.CreateVeth(tmpA, tmpB); err != nil {
		return err
	}

	ends := []struct {
		tmp, node, ifName string
	}{
		{tmpA, l.NodeA, l.IfA},
		{tmpB, l.NodeB, l.IfB},
	}

	for i, end := range ends {
		node, _ := n.Node(end.node)
		if err := e.fabric.MoveToNamespace(end.tmp, node.Namespace, end.ifName); err != nil {
			// whatever is still in the init namespace would outlive the rollback
			for _, rest := range ends[i:] {
				if delErr := e.fabric.DeleteLink(rest.tmp); delErr != nil {
					logger.WithError(delErr).WithField("link", rest.tmp).Warn("cleanup failed")
				}
			}
			return err
		}
	}

	for _, end := range ends {
		node, _ := n.Node(end.node)
		if node.Bridge != "" {
			if err := e.fabric.AttachToBridge(node.Namespace, end.ifName, node.Bridge); err != nil {
				return err
			}
		}
		// the address lives on the host's first port only
		if node.IP != "" && end.ifName == portName(node.Name, 0) {
			if err := e.fabric.AssignAddress(node.Namespace, end.ifName, node.IP); err != nil {
				return err
			}
		}
		if err := e.fabric.SetUp(node.Namespace, end.ifName); err != nil {
			return err
		}
	}
	return nil
}

// Stop removes every namespace of n, which also destroys its bridges and
// veth pairs, and forgets the network. All namespaces are attempted even
// when some fail; the record then keeps only the nodes still present so a
// later Stop can retry them.
func (e *Emulator) Stop(n *Network) error {
	logger := log.WithFields(log.Fields{"network": n.ShortID(), "topology": n.Topology})

	var errs []error
	var remaining []NodeState
	for _, node := range n.Nodes {
		if err := e.fabric.DeleteNamespace(node.Namespace); err != nil {
			logger.WithError(err).WithField("node", node.Name).Warn("failed to delete namespace")
			errs = append(errs, fmt.Errorf("node %s: %w", node.Name, err))
			remaining = append(remaining, node)
		}
	}

	if len(errs) > 0 {
		n.Nodes = remaining
		if err := e.store.Save(n); err != nil {
			errs = append(errs, fmt.Errorf("save record: %w", err))
		}
		return errors.Join(errs...)
	}

	if err := e.store.Delete(n.ID); err != nil && !errors.Is(err, ErrNetworkNotFound) {
		return fmt.Errorf("delete record: %w", err)
	}
	logger.Info("network stopped")
	return nil
}

// Exec runs argv inside the namespace of node.
func (e *Emulator) Exec(n *Network, node string, argv []string, stdio Stdio) error {
	state, ok := n.Node(node)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNodeName, node)
	}

	log.WithFields(log.Fields{"network": n.ShortID(), "node": node}).Debugf("exec %v", argv)
	if err := e.fabric.RunIn(state.Namespace, argv, stdio); err != nil {
		return fmt.Errorf("exec in %s: %w", node, err)
	}
	return nil
}

// Store returns the record store backing the emulator.
func (e *Emulator) Store() *Store {
	return e.store
}
