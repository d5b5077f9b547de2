// Package emulatortest provides an in-memory Fabric that records every
// kernel operation instead of performing it.
package emulatortest

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"natlab/internal/emulator"
)

var ErrInjected = errors.New("injected failure")

// Fabric tracks which namespaces and init-namespace interfaces exist.
// Any call whose recorded form starts with FailOn returns ErrInjected.
type Fabric struct {
	FailOn string

	mu         sync.Mutex
	calls      []string
	namespaces map[string]bool
	initLinks  map[string]bool
}

var _ emulator.Fabric = (*Fabric)(nil)

func NewFabric() *Fabric {
	return &Fabric{
		namespaces: map[string]bool{},
		initLinks:  map[string]bool{},
	}
}

func (f *Fabric) record(format string, args ...any) error {
	call := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, call)
	if f.FailOn != "" && strings.HasPrefix(call, f.FailOn) {
		return ErrInjected
	}
	return nil
}

func (f *Fabric) CreateNamespace(ns string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("netns add %s", ns); err != nil {
		return err
	}
	f.namespaces[ns] = true
	return nil
}

func (f *Fabric) DeleteNamespace(ns string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("netns del %s", ns); err != nil {
		return err
	}
	delete(f.namespaces, ns)
	return nil
}

func (f *Fabric) CreateBridge(ns, bridge string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("bridge add %s %s", ns, bridge)
}

func (f *Fabric) CreateVeth(name, peer string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("veth add %s %s", name, peer); err != nil {
		return err
	}
	f.initLinks[name] = true
	f.initLinks[peer] = true
	return nil
}

func (f *Fabric) DeleteLink(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("link del %s", name); err != nil {
		return err
	}
	delete(f.initLinks, name)
	return nil
}

func (f *Fabric) MoveToNamespace(ifName, ns, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("link move %s %s %s", ifName, ns, newName); err != nil {
		return err
	}
	delete(f.initLinks, ifName)
	return nil
}

func (f *Fabric) AttachToBridge(ns, ifName, bridge string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("bridge attach %s %s %s", ns, ifName, bridge)
}

func (f *Fabric) AssignAddress(ns, ifName, cidr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("addr add %s %s %s", ns, ifName, cidr)
}

func (f *Fabric) SetUp(ns, ifName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("link up %s %s", ns, ifName)
}

func (f *Fabric) RunIn(ns string, argv []string, stdio emulator.Stdio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("exec %s %s", ns, strings.Join(argv, " "))
}

// Calls returns every recorded operation in order.
func (f *Fabric) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fabric) Has(call string) bool {
	for _, c := range f.Calls() {
		if c == call {
			return true
		}
	}
	return false
}

// Count returns how many recorded calls start with prefix.
func (f *Fabric) Count(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Namespaces returns the namespaces that currently exist.
func (f *Fabric) Namespaces() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.namespaces))
	for ns := range f.namespaces {
		out[ns] = true
	}
	return out
}

// InitLinks returns the interfaces still in the init namespace.
func (f *Fabric) InitLinks() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.initLinks))
	for l := range f.initLinks {
		out[l] = true
	}
	return out
}
