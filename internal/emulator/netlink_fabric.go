package emulator

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"
	"golang.org/x/sys/unix"
)

// NetlinkFabric drives the host kernel through rtnetlink. It needs
// CAP_NET_ADMIN and CAP_SYS_ADMIN.
type NetlinkFabric struct{}

func NewNetlinkFabric() *NetlinkFabric {
	return &NetlinkFabric{}
}

// onLockedThread runs fn on a goroutine locked to its own OS thread. fn
// reports whether it put the thread back in its original namespace; if not,
// the thread stays locked and the runtime destroys it when the goroutine
// exits, so no goroutine is ever scheduled on it again.
func onLockedThread(fn func() (restored bool, err error)) error {
	errCh := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		restored, err := fn()
		if restored {
			runtime.UnlockOSThread()
		}
		errCh <- err
	}()
	return <-errCh
}

// inNamespace runs fn with the thread switched into ns.
func inNamespace(ns string, fn func() error) error {
	return onLockedThread(func() (bool, error) {
		origNS, err := netns.Get()
		if err != nil {
			return true, fmt.Errorf("get current netns: %w", err)
		}
		defer origNS.Close()

		targetNS, err := netns.GetFromName(ns)
		if err != nil {
			return true, fmt.Errorf("open netns %s: %w", ns, err)
		}
		defer targetNS.Close()

		if err := netns.Set(targetNS); err != nil {
			return true, fmt.Errorf("setns %s: %w", ns, err)
		}

		fnErr := fn()

		if err := netns.Set(origNS); err != nil {
			return false, fmt.Errorf("setns back: %w", err)
		}
		return true, fnErr
	})
}

func (f *NetlinkFabric) CreateNamespace(ns string) error {
	return onLockedThread(func() (bool, error) {
		origNS, err := netns.Get()
		if err != nil {
			return true, fmt.Errorf("get current netns: %w", err)
		}
		defer origNS.Close()

		// NewNamed leaves the thread inside the new namespace
		handle, err := netns.NewNamed(ns)
		if err != nil {
			return netns.Set(origNS) == nil, fmt.Errorf("create netns %s: %w", ns, err)
		}
		handle.Close()

		if err := netns.Set(origNS); err != nil {
			return false, fmt.Errorf("setns back: %w", err)
		}
		return true, nil
	})
}

func (f *NetlinkFabric) DeleteNamespace(ns string) error {
	if err := netns.DeleteNamed(ns); err != nil {
		return fmt.Errorf("delete netns %s: %w", ns, err)
	}
	return nil
}

func (f *NetlinkFabric) CreateBridge(ns, bridge string) error {
	return inNamespace(ns, func() error {
		br := &netlink.Bridge{
			LinkAttrs: netlink.LinkAttrs{Name: bridge},
		}
		if err := netlink.LinkAdd(br); err != nil {
			return fmt.Errorf("bridge add %s: %w", bridge, err)
		}

		link, err := netlink.LinkByName(bridge)
		if err != nil {
			return fmt.Errorf("lookup bridge %s: %w", bridge, err)
		}
		if err := netlink.LinkSetUp(link); err != nil {
			return fmt.Errorf("bridge up %s: %w", bridge, err)
		}
		return nil
	})
}

func (f *NetlinkFabric) CreateVeth(name, peer string) error {
	v := &netlink.Veth{
		LinkAttrs: netlink.LinkAttrs{Name: name},
		PeerName:  peer,
	}
	if err := netlink.LinkAdd(v); err != nil {
		return fmt.Errorf("create veth %s<->%s: %w", name, peer, err)
	}
	return nil
}

func (f *NetlinkFabric) DeleteLink(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", name, err)
	}
	if err := netlink.LinkDel(link); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func (f *NetlinkFabric) MoveToNamespace(ifName, ns, newName string) error {
	link, err := netlink.LinkByName(ifName)
	if err != nil {
		return fmt.Errorf("find interface %s: %w", ifName, err)
	}

	target, err := netns.GetFromName(ns)
	if err != nil {
		return fmt.Errorf("open netns %s: %w", ns, err)
	}
	defer target.Close()

	if err := netlink.LinkSetNsFd(link, int(target)); err != nil {
		return fmt.Errorf("set netns for %s: %w", ifName, err)
	}

	if newName == ifName {
		return nil
	}
	return inNamespace(ns, func() error {
		moved, err := netlink.LinkByName(ifName)
		if err != nil {
			return fmt.Errorf("find moved interface %s: %w", ifName, err)
		}
		if err := netlink.LinkSetName(moved, newName); err != nil {
			return fmt.Errorf("rename %s to %s: %w", ifName, newName, err)
		}
		return nil
	})
}

func (f *NetlinkFabric) AttachToBridge(ns, ifName, bridge string) error {
	return inNamespace(ns, func() error {
		br, err := netlink.LinkByName(bridge)
		if err != nil {
			return fmt.Errorf("lookup bridge %s: %w", bridge, err)
		}
		link, err := netlink.LinkByName(ifName)
		if err != nil {
			return fmt.Errorf("lookup interface %s: %w", ifName, err)
		}
		if err := netlink.LinkSetMasterByIndex(link, br.Attrs().Index); err != nil {
			return fmt.Errorf("set master of %s: %w", ifName, err)
		}
		return nil
	})
}

func (f *NetlinkFabric) AssignAddress(ns, ifName, cidr string) error {
	addr, err := netlink.ParseAddr(cidr)
	if err != nil {
		return fmt.Errorf("parse addr %s: %w", cidr, err)
	}

	return inNamespace(ns, func() error {
		link, err := netlink.LinkByName(ifName)
		if err != nil {
			return fmt.Errorf("get link %s: %w", ifName, err)
		}
		if err := netlink.AddrAdd(link, addr); err != nil {
			return fmt.Errorf("add addr %s to %s: %w", cidr, ifName, err)
		}
		return nil
	})
}

func (f *NetlinkFabric) SetUp(ns, ifName string) error {
	return inNamespace(ns, func() error {
		link, err := netlink.LinkByName(ifName)
		if err != nil {
			return fmt.Errorf("get link %s: %w", ifName, err)
		}
		if err := netlink.LinkSetUp(link); err != nil {
			return fmt.Errorf("set up %s: %w", ifName, err)
		}
		return nil
	})
}

// RunIn starts argv on a thread that has joined ns. The child inherits
// the thread's network namespace.
func (f *NetlinkFabric) RunIn(ns string, argv []string, stdio Stdio) error {
	if len(argv) == 0 {
		return fmt.Errorf("run in %s: empty command", ns)
	}

	return onLockedThread(func() (bool, error) {
		origNS, err := os.Open(fmt.Sprintf("/proc/self/task/%d/ns/net", unix.Gettid()))
		if err != nil {
			return true, fmt.Errorf("get current namespace: %w", err)
		}
		defer origNS.Close()

		targetNS, err := os.Open(netnsPath(ns))
		if err != nil {
			return true, fmt.Errorf("open namespace: %w", err)
		}
		defer targetNS.Close()

		if err := unix.Setns(int(targetNS.Fd()), unix.CLONE_NEWNET); err != nil {
			return true, fmt.Errorf("setns: %w", err)
		}

		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Stdin = stdio.In
		cmd.Stdout = stdio.Out
		cmd.Stderr = stdio.Err
		runErr := cmd.Run()

		if err := unix.Setns(int(origNS.Fd()), unix.CLONE_NEWNET); err != nil {
			return false, errors.Join(runErr, fmt.Errorf("setns back: %w", err))
		}
		return true, runErr
	})
}

func netnsPath(ns string) string {
	return "/var/run/netns/" + ns
}
