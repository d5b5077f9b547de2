package topology

import (
	"errors"
	"fmt"
	"sort"
)

type NodeType string

const (
	NodeHost   NodeType = "host"
	NodeSwitch NodeType = "switch"
)

var (
	ErrEmptyName        = errors.New("empty node name")
	ErrDuplicateNode    = errors.New("duplicate node")
	ErrDuplicateAddress = errors.New("duplicate host address")
	ErrUnknownNode      = errors.New("unknown node")
	ErrSelfLink         = errors.New("link endpoints are the same node")
)

// Node is a host or a switch. IP is only set for hosts and is kept as the
// declared CIDR string; parsing happens when the network is started.
type Node struct {
	Name string   `json:"name"`
	Type NodeType `json:"type"`
	IP   string   `json:"ip,omitempty"`
}

// Link is an undirected connection between two nodes.
type Link struct {
	NodeA string `json:"node_a"`
	NodeB string `json:"node_b"`
}

// Key returns the same value for {a,b} and {b,a}.
func (l Link) Key() string {
	a, b := l.NodeA, l.NodeB
	if b < a {
		a, b = b, a
	}
	return a + "--" + b
}

// Other returns the endpoint opposite to name.
func (l Link) Other(name string) string {
	if l.NodeA == name {
		return l.NodeB
	}
	return l.NodeA
}

type Topology struct {
	Nodes map[string]Node
	Links []Link
}

func NewTopology() *Topology {
	return &Topology{
		Nodes: map[string]Node{},
		Links: []Link{},
	}
}

func (t *Topology) AddHost(name, ip string) error {
	if err := t.checkName(name); err != nil {
		return err
	}
	for _, n := range t.Nodes {
		if n.Type == NodeHost && n.IP == ip {
			return fmt.Errorf("add host %s: %w: %s already used by %s", name, ErrDuplicateAddress, ip, n.Name)
		}
	}

	t.Nodes[name] = Node{
		Name: name,
		Type: NodeHost,
		IP:   ip,
	}
	return nil
}

func (t *Topology) AddSwitch(name string) error {
	if err := t.checkName(name); err != nil {
		return err
	}

	t.Nodes[name] = Node{
		Name: name,
		Type: NodeSwitch,
	}
	return nil
}

// AddLink connects two nodes that are already part of the topology.
func (t *Topology) AddLink(a, b string) error {
	for _, name := range []string{a, b} {
		if _, ok := t.Nodes[name]; !ok {
			return fmt.Errorf("add link %s-%s: %w: %q", a, b, ErrUnknownNode, name)
		}
	}
	if a == b {
		return fmt.Errorf("add link %s-%s: %w", a, b, ErrSelfLink)
	}

	t.Links = append(t.Links, Link{
		NodeA: a,
		NodeB: b,
	})
	return nil
}

func (t *Topology) checkName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if existing, ok := t.Nodes[name]; ok {
		return fmt.Errorf("add %s: %w: already declared as %s", name, ErrDuplicateNode, existing.Type)
	}
	return nil
}

// Node looks up a node by name.
func (t *Topology) Node(name string) (Node, bool) {
	n, ok := t.Nodes[name]
	return n, ok
}

// Hosts returns all hosts sorted by name.
func (t *Topology) Hosts() []Node {
	return t.nodesOfType(NodeHost)
}

// Switches returns all switches sorted by name.
func (t *Topology) Switches() []Node {
	return t.nodesOfType(NodeSwitch)
}

// SortedNodes returns every node sorted by name.
func (t *Topology) SortedNodes() []Node {
	nodes := make([]Node, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes
}

func (t *Topology) nodesOfType(typ NodeType) []Node {
	var nodes []Node
	for _, n := range t.SortedNodes() {
		if n.Type == typ {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
