package resolve

import (
	"testing"

	"f1led-go/services/registry"
	"f1led-go/types"
)

type mapLookup map[uint32]types.RGBColor

func (m mapLookup) Color(n uint32) (types.RGBColor, bool) {
	c, ok := m[n]
	return c, ok
}

func TestResolveDropsUnknownDrivers(t *testing.T) {
	reg := mapLookup{1: {R: 255}, 2: {G: 255}}
	frame := types.UpdateFrame{Drivers: []types.DriverPosition{
		{Driver: 1, LED: 5},
		{Driver: 2, LED: 10},
		{Driver: 99, LED: 20},
	}}

	got := Resolve(frame, reg)
	want := []types.LedUpdate{
		{Index: 5, R: 255},
		{Index: 10, G: 255},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d updates, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("update %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if Misses(frame, reg) != 1 {
		t.Fatal("Misses should count driver 99")
	}
}

func TestResolveEmptyFrame(t *testing.T) {
	if got := Resolve(types.UpdateFrame{}, mapLookup{}); len(got) != 0 {
		t.Fatalf("empty frame produced %+v", got)
	}
}

func TestResolveIntoReusesBuffer(t *testing.T) {
	reg := registry.Default()
	buf := make([]types.LedUpdate, 0, types.NumDrivers)
	frame := types.UpdateFrame{Drivers: []types.DriverPosition{{Driver: 44, LED: 3}}}

	out := ResolveInto(buf, frame, reg)
	if &out[:1][0] != &buf[:1][0] {
		t.Fatal("ResolveInto allocated a new backing array")
	}
	if out[0] != (types.LedUpdate{Index: 3, R: 0, G: 210, B: 190}) {
		t.Fatalf("unexpected update %+v", out[0])
	}

	allocs := testing.AllocsPerRun(100, func() { out = ResolveInto(out, frame, reg) })
	if allocs != 0 {
		t.Fatalf("ResolveInto allocates %.1f per call", allocs)
	}
}

func TestResolvePreservesOrder(t *testing.T) {
	frame := types.UpdateFrame{}
	for _, d := range registry.Default().All() {
		frame.Drivers = append(frame.Drivers, types.DriverPosition{Driver: d.Number, LED: int(d.Number)})
	}
	got := Resolve(frame, registry.Default())
	if len(got) != types.NumDrivers {
		t.Fatalf("got %d updates", len(got))
	}
	for i, p := range frame.Drivers {
		if got[i].Index != p.LED {
			t.Fatalf("order broken at %d", i)
		}
	}
}
