package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"natlab/internal/topology"
	"natlab/internal/topos"
)

func single() (*topology.Topology, error) {
	topo := topology.NewTopology()
	if err := topo.AddSwitch("s1"); err != nil {
		return nil, err
	}
	return topo, nil
}

func TestRegistry_RegisterAndBuild(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(topos.Name, topos.NatTopo))
	require.NoError(t, reg.Register("single", single))

	assert.Equal(t, []string{"mytopo", "single"}, reg.Names())

	topo, err := reg.Build("mytopo")
	require.NoError(t, err)
	assert.Len(t, topo.Nodes, 11)
	assert.Len(t, topo.Links, 10)

	again, err := reg.Build("mytopo")
	require.NoError(t, err)
	assert.NotSame(t, topo, again)
	assert.True(t, topo.Equal(again))
}

func TestRegistry_UnknownName(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(topos.Name, topos.NatTopo))

	_, err := reg.Lookup("mytop0")
	require.ErrorIs(t, err, ErrUnknownTopology)
	assert.Contains(t, err.Error(), `"mytop0"`)
	assert.Contains(t, err.Error(), "mytopo")

	_, err = reg.Build("")
	require.ErrorIs(t, err, ErrUnknownTopology)
}

func TestRegistry_RegisterErrors(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("single", single))

	require.ErrorIs(t, reg.Register("single", topos.NatTopo), ErrDuplicateName)
	require.ErrorIs(t, reg.Register("", single), ErrInvalidFactory)
	require.ErrorIs(t, reg.Register("nil", nil), ErrInvalidFactory)

	assert.Equal(t, []string{"single"}, reg.Names())
}

func TestRegistry_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	reg := New()
	require.NoError(t, reg.Register("broken", func() (*topology.Topology, error) { return nil, boom }))

	_, err := reg.Build("broken")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"broken"`)
}

func TestRegistry_Independent(t *testing.T) {
	a, b := New(), New()
	require.NoError(t, a.Register("single", single))

	_, err := b.Lookup("single")
	assert.ErrorIs(t, err, ErrUnknownTopology)
}
