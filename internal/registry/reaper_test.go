package registry

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSweepRemovesEmptyRooms(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := reg.Create(publicParams("empty"), newFakeConn()); err != nil {
		t.Fatal(err)
	}

	if removed := reg.Sweep(time.Now(), time.Hour); removed != 1 {
		t.Fatalf("expected 1 room reaped, got %d", removed)
	}
	if reg.Len() != 0 {
		t.Fatal("empty room survived the sweep")
	}
}

func TestSweepRemovesStaleRooms(t *testing.T) {
	reg := newTestRegistry(t)
	conn := newFakeConn()
	if _, err := reg.GetOrCreate(publicParams("stale"), conn); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Join("stale", conn); err != nil {
		t.Fatal(err)
	}

	// Occupied but two hours past creation: past the one hour threshold.
	if removed := reg.Sweep(time.Now().Add(2*time.Hour), time.Hour); removed != 1 {
		t.Fatalf("expected 1 room reaped, got %d", removed)
	}
	if reg.Len() != 0 {
		t.Fatal("stale room survived the sweep")
	}
}

func TestSweepKeepsFreshOccupiedRooms(t *testing.T) {
	reg := newTestRegistry(t)
	conn := newFakeConn()
	if _, err := reg.GetOrCreate(publicParams("fresh"), conn); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Join("fresh", conn); err != nil {
		t.Fatal(err)
	}

	if removed := reg.Sweep(time.Now(), time.Hour); removed != 0 {
		t.Fatalf("expected nothing reaped, got %d", removed)
	}
	if reg.Len() != 1 {
		t.Fatal("fresh occupied room was reaped")
	}
}

func TestReaperRun(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := reg.Create(publicParams("doomed"), newFakeConn()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reaper := NewReaper(reg, 10*time.Millisecond, time.Hour, zerolog.Nop())
	go reaper.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for reg.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("reaper never removed the empty room")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
