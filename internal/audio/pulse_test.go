package audio

import (
	"errors"
	"testing"

	"github.com/jfreymuth/pulse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoute struct {
	opened, closed int
}

func (r *fakeRoute) DefaultSink() (*pulse.Sink, error) { return nil, nil }
func (r *fakeRoute) Close()                            { r.closed++ }

func TestHeadphonesConnected_UsesThrowawayConnection(t *testing.T) {
	route := &fakeRoute{}
	out := NewPulseOutput(nil)
	out.dialRoute = func() (routeQuerier, error) {
		route.opened++
		return route, nil
	}

	_, err := out.HeadphonesConnected()
	require.Error(t, err, "a server without a default sink is an error")
	_, _ = out.HeadphonesConnected()

	assert.Equal(t, 2, route.opened)
	assert.Equal(t, 2, route.closed)
	assert.Nil(t, out.client, "a route check must not open the session")
	require.NoError(t, out.Deactivate())
}

func TestHeadphonesConnected_DialFailure(t *testing.T) {
	boom := errors.New("no server")
	out := NewPulseOutput(nil)
	out.dialRoute = func() (routeQuerier, error) { return nil, boom }

	connected, err := out.HeadphonesConnected()
	assert.ErrorIs(t, err, boom)
	assert.False(t, connected)
}
