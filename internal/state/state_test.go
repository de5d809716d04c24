package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-finder/internal/history"
	"route-finder/internal/route"
)

func TestInitial(t *testing.T) {
	s := Initial()
	assert.Equal(t, route.ModeWalking, s.Mode)
	assert.Nil(t, s.Directions)
	assert.Empty(t, s.History)
	assert.False(t, s.Loading)
}

func TestSetOriginClearsCoords(t *testing.T) {
	s := Reduce(Initial(), SetOriginCoords{Coords: route.Coordinate{Lat: 1, Lng: 2}, Text: "Here"})
	require.NotNil(t, s.OriginCoords)
	assert.Equal(t, "Here", s.Origin)

	s = Reduce(s, SetOrigin{Text: "Elsewhere"})
	assert.Nil(t, s.OriginCoords)
	assert.Equal(t, "Elsewhere", s.Origin)
}

func TestFetchLifecycle(t *testing.T) {
	s := Reduce(Initial(), SetError{Message: "old"})
	s = Reduce(s, FetchStarted{})
	assert.True(t, s.Loading)
	assert.Empty(t, s.Error)
	seq := s.Seq

	dirs := &route.Directions{Summary: route.Summary{TotalDistance: 10}}
	s = Reduce(s, FetchSucceeded{Seq: seq, Directions: dirs, Origin: route.Coordinate{Lat: 1}, Destination: route.Coordinate{Lat: 2}})
	assert.False(t, s.Loading)
	assert.Same(t, dirs, s.Directions)
	require.NotNil(t, s.DestinationPoint)
	assert.Equal(t, 2.0, s.DestinationPoint.Lat)

	s = Reduce(s, FetchStarted{})
	s = Reduce(s, FetchFailed{Seq: s.Seq, Message: "No route found between these locations."})
	assert.False(t, s.Loading)
	assert.Nil(t, s.Directions)
	assert.Nil(t, s.OriginPoint)
	assert.Equal(t, "No route found between these locations.", s.Error)
}

func TestStaleResultsAreDropped(t *testing.T) {
	s := Reduce(Initial(), FetchStarted{})
	first := s.Seq
	s = Reduce(s, FetchStarted{})
	second := s.Seq

	late := &route.Directions{}
	before := s.Version
	s = Reduce(s, FetchSucceeded{Seq: first, Directions: late})
	assert.Nil(t, s.Directions)
	assert.True(t, s.Loading)
	assert.Equal(t, before, s.Version)

	s = Reduce(s, FetchFailed{Seq: first, Message: "boom"})
	assert.Empty(t, s.Error)

	fresh := &route.Directions{}
	s = Reduce(s, FetchSucceeded{Seq: second, Directions: fresh})
	assert.Same(t, fresh, s.Directions)
}

func TestClearRoute(t *testing.T) {
	s := Reduce(Initial(), FetchStarted{})
	seq := s.Seq
	s = Reduce(s, ClearRoute{})
	assert.False(t, s.Loading)
	assert.Empty(t, s.Error)

	// The fetch that was running when the route was cleared lands late.
	s = Reduce(s, FetchSucceeded{Seq: seq, Directions: &route.Directions{}})
	assert.Nil(t, s.Directions)

	s = Reduce(s, SetError{Message: "x"})
	s = Reduce(s, ClearRoute{})
	assert.Empty(t, s.Error)
}

func TestHistoryNewestFirstAndCapped(t *testing.T) {
	s := Initial()
	for i := 0; i < HistoryLimit+3; i++ {
		s = Reduce(s, AddHistory{Entry: history.Entry{ID: fmt.Sprint(i)}})
	}
	require.Len(t, s.History, HistoryLimit)
	assert.Equal(t, fmt.Sprint(HistoryLimit+2), s.History[0].ID)
	assert.Equal(t, "3", s.History[HistoryLimit-1].ID)

	many := make([]history.Entry, 20)
	s = Reduce(s, LoadHistory{Entries: many})
	assert.Len(t, s.History, HistoryLimit)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := Reduce(Initial(), AddHistory{Entry: history.Entry{ID: "a"}})
	snapshot := s.History
	_ = Reduce(s, AddHistory{Entry: history.Entry{ID: "b"}})
	assert.Equal(t, "a", snapshot[0].ID)
	assert.Len(t, s.History, 1)
}

func TestSetModeIgnoresEmpty(t *testing.T) {
	s := Reduce(Initial(), SetMode{Mode: route.ModeBus})
	assert.Equal(t, route.ModeBus, s.Mode)
	v := s.Version
	s = Reduce(s, SetMode{})
	assert.Equal(t, route.ModeBus, s.Mode)
	assert.Equal(t, v, s.Version)
}

func TestStoreSubscribe(t *testing.T) {
	st := NewStore(Initial())
	ch, cancel := st.Subscribe()
	defer cancel()

	first := <-ch
	assert.Equal(t, uint64(0), first.Version)

	st.Dispatch(SetOrigin{Text: "a"})
	st.Dispatch(SetOrigin{Text: "b"})
	st.Dispatch(SetDestination{Text: "c"})

	select {
	case got := <-ch:
		assert.Equal(t, "b", got.Origin)
		assert.Equal(t, "c", got.Destination)
		assert.Equal(t, uint64(3), got.Version)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
	assert.Equal(t, st.Snapshot().Version, uint64(3))
}

func TestStoreUnsubscribeAndClose(t *testing.T) {
	st := NewStore(Initial())
	ch, cancel := st.Subscribe()
	<-ch
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	cancel()

	ch2, cancel2 := st.Subscribe()
	<-ch2
	st.Close()
	_, ok = <-ch2
	assert.False(t, ok)
	cancel2()

	st.Dispatch(SetOrigin{Text: "after close"})
	assert.Equal(t, "after close", st.Snapshot().Origin)
}
