package topology

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newLine(t *testing.T) *Topology {
	t.Helper()

	topo := NewTopology()
	require.NoError(t, topo.AddHost("h1", "10.0.0.1/24"))
	require.NoError(t, topo.AddHost("h2", "10.0.0.2/24"))
	require.NoError(t, topo.AddSwitch("s1"))
	require.NoError(t, topo.AddLink("h1", "s1"))
	require.NoError(t, topo.AddLink("s1", "h2"))
	return topo
}

func TestTopology_AddNodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		add     func(*Topology) error
		wantErr error
	}{
		{"host reuses host name", func(tp *Topology) error { return tp.AddHost("h1", "10.0.0.9/24") }, ErrDuplicateNode},
		{"host reuses switch name", func(tp *Topology) error { return tp.AddHost("s1", "10.0.0.9/24") }, ErrDuplicateNode},
		{"switch reuses host name", func(tp *Topology) error { return tp.AddSwitch("h2") }, ErrDuplicateNode},
		{"host reuses address", func(tp *Topology) error { return tp.AddHost("h3", "10.0.0.1/24") }, ErrDuplicateAddress},
		{"empty host name", func(tp *Topology) error { return tp.AddHost("", "10.0.0.9/24") }, ErrEmptyName},
		{"empty switch name", func(tp *Topology) error { return tp.AddSwitch("") }, ErrEmptyName},
		{"link to undeclared node", func(tp *Topology) error { return tp.AddLink("h1", "s9") }, ErrUnknownNode},
		{"link from undeclared node", func(tp *Topology) error { return tp.AddLink("h9", "s1") }, ErrUnknownNode},
		{"self link", func(tp *Topology) error { return tp.AddLink("s1", "s1") }, ErrSelfLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo := newLine(t)
			before := len(topo.Nodes)
			links := len(topo.Links)

			err := tt.add(topo)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, topo.Nodes, before, "failed add must not change nodes")
			assert.Len(t, topo.Links, links, "failed add must not change links")
		})
	}
}

func TestTopology_UnknownNodeErrorNamesEndpoint(t *testing.T) {
	topo := newLine(t)

	err := topo.AddLink("s1", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ghost"`)
}

func TestTopology_ParallelLinks(t *testing.T) {
	topo := newLine(t)
	require.NoError(t, topo.AddLink("s1", "h1"))

	assert.Equal(t, 3, topo.Degree("s1"))
	assert.Equal(t, []string{"h1", "h2"}, topo.Neighbors("s1"))
}

func TestTopology_Queries(t *testing.T) {
	topo := newLine(t)

	assert.Equal(t, []Node{
		{Name: "h1", Type: NodeHost, IP: "10.0.0.1/24"},
		{Name: "h2", Type: NodeHost, IP: "10.0.0.2/24"},
	}, topo.Hosts())
	assert.Equal(t, []Node{{Name: "s1", Type: NodeSwitch}}, topo.Switches())

	assert.True(t, topo.HasLink("s1", "h1"))
	assert.False(t, topo.HasLink("h1", "h2"))
	assert.Equal(t, []string{"h1", "s1", "h2"}, topo.Path("h1", "h2"))
	assert.Equal(t, []string{"h1"}, topo.Path("h1", "h1"))
	assert.Nil(t, topo.Path("h1", "nope"))
	assert.True(t, topo.Connected())

	require.NoError(t, topo.AddHost("h3", "10.0.0.3/24"))
	assert.False(t, topo.Connected())
	assert.Nil(t, topo.Path("h1", "h3"))
}

func TestLink_Key(t *testing.T) {
	assert.Equal(t, Link{NodeA: "s1", NodeB: "h1"}.Key(), Link{NodeA: "h1", NodeB: "s1"}.Key())
	assert.Equal(t, "h1", Link{NodeA: "s1", NodeB: "h1"}.Other("s1"))
}

func TestTopology_Equal(t *testing.T) {
	a := newLine(t)

	b := NewTopology()
	require.NoError(t, b.AddSwitch("s1"))
	require.NoError(t, b.AddHost("h2", "10.0.0.2/24"))
	require.NoError(t, b.AddHost("h1", "10.0.0.1/24"))
	require.NoError(t, b.AddLink("h2", "s1"))
	require.NoError(t, b.AddLink("s1", "h1"))

	assert.True(t, a.Equal(b))
	if diff := cmp.Diff(a.LinkKeys(), b.LinkKeys()); diff != "" {
		t.Errorf("link keys mismatch (-a +b):\n%s", diff)
	}

	require.NoError(t, b.AddLink("h1", "s1"))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}

// Random sequences of additions never break the uniqueness and ordering
// invariants, whatever mix of valid and invalid calls is made.
func TestTopology_InvariantsHold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		topo := NewTopology()
		names := rapid.SampledFrom([]string{"h1", "h2", "h3", "s1", "s2", "s3", ""})
		addrs := rapid.SampledFrom([]string{"10.0.0.1/16", "10.0.0.2/16", "10.1.0.1/16"})

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("op%d", i)) {
			case 0:
				_ = topo.AddHost(names.Draw(t, "host"), addrs.Draw(t, "addr"))
			case 1:
				_ = topo.AddSwitch(names.Draw(t, "switch"))
			case 2:
				_ = topo.AddLink(names.Draw(t, "a"), names.Draw(t, "b"))
			}
		}

		seen := map[string]string{}
		for name, n := range topo.Nodes {
			if name == "" || name != n.Name {
				t.Fatalf("bad node entry %q -> %+v", name, n)
			}
			if n.Type != NodeHost {
				continue
			}
			if owner, dup := seen[n.IP]; dup {
				t.Fatalf("address %s held by %s and %s", n.IP, owner, name)
			}
			seen[n.IP] = name
		}
		for _, l := range topo.Links {
			if _, ok := topo.Nodes[l.NodeA]; !ok {
				t.Fatalf("link %s references missing %s", l.Key(), l.NodeA)
			}
			if _, ok := topo.Nodes[l.NodeB]; !ok {
				t.Fatalf("link %s references missing %s", l.Key(), l.NodeB)
			}
			if l.NodeA == l.NodeB {
				t.Fatalf("self link %s", l.Key())
			}
		}
	})
}
