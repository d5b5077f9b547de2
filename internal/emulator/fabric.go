package emulator

import "io"

// Fabric is the set of kernel operations needed to materialise a
// topology. Namespaces are addressed by name; interface arguments are
// looked up inside the given namespace unless stated otherwise.
type Fabric interface {
	CreateNamespace(ns string) error
	DeleteNamespace(ns string) error
	CreateBridge(ns, bridge string) error
	// CreateVeth creates a veth pair in the init namespace.
	CreateVeth(name, peer string) error
	// DeleteLink removes an interface left in the init namespace.
	DeleteLink(name string) error
	// MoveToNamespace moves an init-namespace interface into ns and
	// renames it to newName there.
	MoveToNamespace(ifName, ns, newName string) error
	AttachToBridge(ns, ifName, bridge string) error
	AssignAddress(ns, ifName, cidr string) error
	SetUp(ns, ifName string) error
	RunIn(ns string, argv []string, stdio Stdio) error
}

type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}
