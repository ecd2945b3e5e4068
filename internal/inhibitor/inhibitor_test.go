package inhibitor

import (
	"sync"
	"testing"

	"github.com/bnema/cascade/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*protocol.Display, *Extension) {
	t.Helper()
	d := protocol.NewDisplay()
	ext, err := Register(d, NewState())
	require.NoError(t, err)
	return d, ext
}

// bindAndInhibit binds the manager as object 1 and creates an inhibitor as object 2
func bindAndInhibit(t *testing.T, d *protocol.Display, ext *Extension, c *protocol.Client) {
	t.Helper()
	_, err := d.Bind(c, ext.Global().Name(), 1, 1)
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(c, 1, RequestGetInhibitor, protocol.NewID(2)))
}

func TestStateTransitions(t *testing.T) {
	s := NewState()
	assert.False(t, s.IsInhibited())

	s.Set(3)
	owner, ok := s.Owner()
	assert.True(t, ok)
	assert.Equal(t, protocol.ClientID(3), owner)

	s.Set(5)
	owner, _ = s.Owner()
	assert.Equal(t, protocol.ClientID(5), owner, "last setter wins")

	s.Clear()
	assert.False(t, s.IsInhibited())

	s.Clear()
	assert.False(t, s.IsInhibited(), "clearing twice stays uninhibited")
}

func TestIsAllowedAndExclusive(t *testing.T) {
	s := NewState()
	assert.True(t, s.IsAllowed(1))
	assert.False(t, s.IsExclusive(1))

	s.Set(1)
	assert.True(t, s.IsAllowed(1))
	assert.False(t, s.IsAllowed(2))
	assert.True(t, s.IsExclusive(1))
	assert.False(t, s.IsExclusive(2))
}

func TestObserversSeeTransitions(t *testing.T) {
	s := NewState()
	var seen []Status
	s.OnChange(func(st Status) { seen = append(seen, st) })

	s.Set(2)
	s.Clear()
	s.Clear()

	assert.Equal(t, []Status{{Inhibited: true, Owner: 2}, {}}, seen)
}

func TestConcurrentSettersKeepOneOwner(t *testing.T) {
	s := NewState()
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id protocol.ClientID) {
			defer wg.Done()
			s.Set(id)
		}(protocol.ClientID(i))
	}
	wg.Wait()

	owner, ok := s.Owner()
	assert.True(t, ok)
	assert.NotZero(t, owner)
}

func TestAdvertisesVersionOne(t *testing.T) {
	d, ext := setup(t)
	g, ok := d.FindGlobal("zwlr_input_inhibit_manager_v1")
	require.True(t, ok)
	assert.Equal(t, ext.Global(), g)
	assert.Equal(t, uint32(1), g.Version())

	c := d.Connect(nil)
	r, err := d.Bind(c, g.Name(), 4, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), r.Version(), "higher requests are clamped")
}

func TestGetInhibitorSetsOwner(t *testing.T) {
	d, ext := setup(t)
	c := d.Connect(nil)

	bindAndInhibit(t, d, ext, c)

	owner, ok := ext.State().Owner()
	require.True(t, ok)
	assert.Equal(t, c.ID(), owner)

	r, ok := c.Object(2)
	require.True(t, ok)
	assert.Equal(t, "zwlr_input_inhibitor_v1", r.Interface().Name)
}

func TestMostRecentCallerOwns(t *testing.T) {
	d, ext := setup(t)
	a := d.Connect(nil)
	b := d.Connect(nil)
	c := d.Connect(nil)

	bindAndInhibit(t, d, ext, a)
	bindAndInhibit(t, d, ext, b)
	bindAndInhibit(t, d, ext, c)

	owner, ok := ext.State().Owner()
	require.True(t, ok)
	assert.Equal(t, c.ID(), owner)
}

func TestDestroyClears(t *testing.T) {
	d, ext := setup(t)
	c := d.Connect(nil)
	bindAndInhibit(t, d, ext, c)

	require.NoError(t, d.Dispatch(c, 2, RequestDestroy))
	assert.False(t, ext.State().IsInhibited())

	_, ok := c.Object(2)
	assert.False(t, ok)
}

func TestAnyDestroyerClears(t *testing.T) {
	d, ext := setup(t)
	a := d.Connect(nil)
	b := d.Connect(nil)
	bindAndInhibit(t, d, ext, a)
	bindAndInhibit(t, d, ext, b)

	// a's stale inhibitor still releases b's inhibition
	require.NoError(t, d.Dispatch(a, 2, RequestDestroy))
	assert.False(t, ext.State().IsInhibited())
}

func TestDestroyWhenUninhibitedIsIdempotent(t *testing.T) {
	d, ext := setup(t)
	c := d.Connect(nil)
	bindAndInhibit(t, d, ext, c)
	ext.State().Clear()

	require.NoError(t, d.Dispatch(c, 2, RequestDestroy))
	assert.False(t, ext.State().IsInhibited())
}

func TestDisconnectReleasesInhibition(t *testing.T) {
	d, ext := setup(t)
	c := d.Connect(nil)
	bindAndInhibit(t, d, ext, c)
	require.True(t, ext.State().IsInhibited())

	d.Disconnect(c)

	assert.False(t, ext.State().IsInhibited())
	assert.Equal(t, 0, d.ResourceCount())
}

func TestDisconnectWithoutInhibitorKeepsState(t *testing.T) {
	d, ext := setup(t)
	owner := d.Connect(nil)
	bystander := d.Connect(nil)
	bindAndInhibit(t, d, ext, owner)

	_, err := d.Bind(bystander, ext.Global().Name(), 1, 1)
	require.NoError(t, err)
	d.Disconnect(bystander)

	assert.True(t, ext.State().IsExclusive(owner.ID()))
}
