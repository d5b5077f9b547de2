package emulator

import "natlab/internal/topology"

// Network is a started instance of a topology, as persisted in the Store.
type Network struct {
	ID        string      `json:"id"`
	Topology  string      `json:"topology"`
	CreatedAt string      `json:"created_at"`
	Nodes     []NodeState `json:"nodes"`
	Links     []LinkState `json:"links"`
}

type NodeState struct {
	Name      string            `json:"name"`
	Type      topology.NodeType `json:"type"`
	Namespace string            `json:"namespace"`
	Bridge    string            `json:"bridge,omitempty"`
	IP        string            `json:"ip,omitempty"`
}

// LinkState records the interface each endpoint got inside its namespace.
type LinkState struct {
	NodeA string `json:"node_a"`
	IfA   string `json:"if_a"`
	NodeB string `json:"node_b"`
	IfB   string `json:"if_b"`
}

// ShortID is the ID prefix used in namespace names and listings.
func (n *Network) ShortID() string {
	if len(n.ID) > 8 {
		return n.ID[:8]
	}
	return n.ID
}

func (n *Network) Node(name string) (NodeState, bool) {
	for _, ns := range n.Nodes {
		if ns.Name == name {
			return ns, true
		}
	}
	return NodeState{}, false
}
