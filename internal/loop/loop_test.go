package loop

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/controldev/mracsim/internal/adaptive"
	"github.com/controldev/mracsim/internal/command"
	"github.com/controldev/mracsim/internal/dynamo"
	"github.com/controldev/mracsim/internal/plant"
	"github.com/controldev/mracsim/internal/refmodel"
)

func sigmaModLoop(t *testing.T) *SISO {
	t.Helper()

	p, err := plant.NewLinear([][]float64{{4}}, []float64{1}, []float64{1}, 10)
	if err != nil {
		t.Fatal(err)
	}
	m, err := refmodel.New([][]float64{{-1}}, []float64{1}, []float64{1}, refmodel.Open, 0)
	if err != nil {
		t.Fatal(err)
	}
	law, err := adaptive.NewLaw([][]float64{{1}}, 1, 1, adaptive.Options{Sigma: 1, KFixed: 1})
	if err != nil {
		t.Fatal(err)
	}

	l, err := NewSISO(p, m, law, command.Zero{}, dynamo.State{5}, dynamo.State{0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestSISO_Dims(t *testing.T) {
	l := sigmaModLoop(t)
	if l.StateDim() != 3 {
		t.Errorf("StateDim = %d, want 3", l.StateDim())
	}
	x0 := l.Initial()
	if len(x0) != 3 || x0[0] != 5 || x0[1] != 0 || x0[2] != 0 {
		t.Errorf("Initial = %v", x0)
	}
}

// Hand-computed sigma-mod interconnection at the initial state.
func TestSISO_Derive(t *testing.T) {
	l := sigmaModLoop(t)

	dx := l.Derive(dynamo.State{5, 0, 0}, nil, 0)
	// u_c = theta x_p + r = 0; dot_x_p = 4*5 + (0 + 10) = 30
	if math.Abs(dx[0]-30) > 1e-12 {
		t.Errorf("dot_x_p = %v, want 30", dx[0])
	}
	// dot_x_m = -x_m + r = 0
	if dx[1] != 0 {
		t.Errorf("dot_x_m = %v, want 0", dx[1])
	}
	// e = 5; dot_theta = -(1*5)*5 - 1*0 = -25
	if math.Abs(dx[2]-(-25)) > 1e-12 {
		t.Errorf("dot_theta = %v, want -25", dx[2])
	}
}

func TestSISO_Snapshot(t *testing.T) {
	l := sigmaModLoop(t)

	rec := l.Snapshot(1.5, dynamo.State{5, 0.5, -2})
	if rec.T != 1.5 {
		t.Errorf("T = %v", rec.T)
	}
	if rec.XP[0] != 5 || rec.XM[0] != 0.5 || rec.Theta[0] != -2 {
		t.Errorf("snapshot = %+v", rec)
	}
	// u = theta x_p + r = -10
	if math.Abs(rec.U[0]-(-10)) > 1e-12 {
		t.Errorf("U = %v, want -10", rec.U[0])
	}

	// Snapshot must copy, not alias, the composite state.
	x := dynamo.State{5, 0.5, -2}
	rec = l.Snapshot(0, x)
	x[0] = 99
	if rec.XP[0] == 99 {
		t.Error("snapshot aliases the composite state")
	}
}

func TestNewSISO_OrderMismatch(t *testing.T) {
	p, _ := plant.NewLinear([][]float64{{0, 1}, {-1, -1}}, []float64{0, 1}, []float64{1, 0}, 0)
	m, _ := refmodel.New([][]float64{{-1}}, []float64{1}, []float64{1}, refmodel.Open, 0)
	law, _ := adaptive.NewLaw([][]float64{{1, 0}, {0, 1}}, 1, 2, adaptive.Options{KFixed: 1})

	_, err := NewSISO(p, m, law, command.Zero{}, dynamo.State{0, 0}, dynamo.State{0}, nil)
	if !errors.Is(err, dynamo.ErrConfig) {
		t.Errorf("expected ErrConfig for order mismatch, got %v", err)
	}
}

func TestNewSISO_BadInitialState(t *testing.T) {
	p, _ := plant.NewLinear([][]float64{{4}}, []float64{1}, []float64{1}, 0)
	m, _ := refmodel.New([][]float64{{-1}}, []float64{1}, []float64{1}, refmodel.Open, 0)
	law, _ := adaptive.NewLaw([][]float64{{1}}, 1, 1, adaptive.Options{KFixed: 1})

	if _, err := NewSISO(p, m, law, command.Zero{}, dynamo.State{0, 0}, dynamo.State{0}, nil); !errors.Is(err, dynamo.ErrConfig) {
		t.Errorf("expected ErrConfig for x_p size, got %v", err)
	}
	if _, err := NewSISO(p, m, law, command.Zero{}, dynamo.State{0}, dynamo.State{0}, dynamo.State{0, 0, 0}); !errors.Is(err, dynamo.ErrConfig) {
		t.Errorf("expected ErrConfig for controller size, got %v", err)
	}
}

func TestPILoop_Derive(t *testing.T) {
	// DC motor: J = 2, B = 0.5 -> dot_x = -0.25 x + 0.5 u
	p, err := plant.NewLinear([][]float64{{-0.25}}, []float64{0.5}, []float64{1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctl, err := adaptive.NewPI(1, 1, 1, 1, true)
	if err != nil {
		t.Fatal(err)
	}

	l, err := NewPI(p, ctl, command.Sine{Amp: 1, Freq: 1}, 0, dynamo.State{0.1, 2, 0})
	if err != nil {
		t.Fatal(err)
	}
	if l.StateDim() != 4 {
		t.Fatalf("StateDim = %d, want 4", l.StateDim())
	}

	// At t=0: x_d = 0, dot_x_d = 1, x = 0, e = 0, e1 = 1, e2 = 0
	// u = J_hat*e1 = 0.1; dot_x = 0.5*0.1 = 0.05
	dx := l.Derive(l.Initial(), nil, 0)
	if math.Abs(dx[0]-0.05) > 1e-12 {
		t.Errorf("dot_x = %v, want 0.05", dx[0])
	}
	// dot_J_hat = e2 e1 = 0, dot_B_hat = e2 x = 0, dot_e_i = e = 0
	if dx[1] != 0 || dx[2] != 0 || dx[3] != 0 {
		t.Errorf("controller derivatives = %v, want zeros", dx[1:])
	}
}

func TestPILoop_RejectsHighOrderPlant(t *testing.T) {
	p, _ := plant.NewLinear([][]float64{{0, 1}, {-1, -1}}, []float64{0, 1}, []float64{1, 0}, 0)
	ctl, _ := adaptive.NewPI(1, 1, 1, 1, true)
	if _, err := NewPI(p, ctl, command.Zero{}, 0, nil); !errors.Is(err, dynamo.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func testMIMOParts(t *testing.T) (*plant.StateSpace, *plant.StateSpace, *adaptive.MIMO) {
	t.Helper()

	a := mat.NewDense(2, 2, []float64{-1, 0, 0, -2})
	b := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	c := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	p, err := plant.NewStateSpace(a, b, c)
	if err != nil {
		t.Fatal(err)
	}

	am := mat.NewDense(2, 2, []float64{-1, 0, 0, -1})
	ref, err := plant.NewStateSpace(am, b, c)
	if err != nil {
		t.Fatal(err)
	}

	law, err := adaptive.NewMIMO(1, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	return p, ref, law
}

func TestMIMOLoop_Dims(t *testing.T) {
	p, ref, law := testMIMOParts(t)
	cmds := []command.Profile{command.Step{Level: 1}, command.Zero{}}

	l, err := NewMIMO(p, ref, law, cmds, dynamo.State{0, 0}, dynamo.State{0, 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.StateDim() != 2+2+8 {
		t.Errorf("StateDim = %d, want 12", l.StateDim())
	}

	dx := l.Derive(l.Initial(), nil, 0)
	if len(dx) != l.StateDim() {
		t.Fatalf("Derive returned %d entries", len(dx))
	}
	if !dx.IsValid() {
		t.Error("derivative should be finite")
	}
}

func TestMIMOLoop_Validation(t *testing.T) {
	p, ref, law := testMIMOParts(t)

	// Wrong number of command profiles.
	_, err := NewMIMO(p, ref, law, []command.Profile{command.Zero{}}, dynamo.State{0, 0}, dynamo.State{0, 0}, nil)
	if !errors.Is(err, dynamo.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}
