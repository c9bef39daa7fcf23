package sci_test

import (
	"testing"

	"tms570hal/reg"
	"tms570hal/sci"
	"tms570hal/sci/scisim"
)

// newTestDriver returns an initialized SCI1 on a simulated module
func newTestDriver(t *testing.T, opts ...sci.Option) (*sci.Driver, *scisim.Model, *reg.Sim) {
	t.Helper()
	sim := reg.NewSim()
	model := scisim.New(sim, sci.SCI1)
	d := sci.New(sim, opts...)
	if err := d.Init(sci.SCI1, sci.DefaultConfig()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return d, model, sim
}

func addr(r sci.Register) uint32 {
	return sci.Base(sci.SCI1) + r.Offset()
}
