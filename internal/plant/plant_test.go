package plant

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/controldev/mracsim/internal/dynamo"
)

func TestNewLinear_Dimensions(t *testing.T) {
	tests := []struct {
		name string
		a    [][]float64
		b    []float64
		c    []float64
	}{
		{"empty A", [][]float64{}, []float64{1}, []float64{1}},
		{"ragged A", [][]float64{{1, 0}, {1}}, []float64{1, 0}, []float64{1, 0}},
		{"short B", [][]float64{{1, 0}, {0, 1}}, []float64{1}, []float64{1, 0}},
		{"short C", [][]float64{{1, 0}, {0, 1}}, []float64{1, 0}, []float64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLinear(tt.a, tt.b, tt.c, 0)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, dynamo.ErrConfig) {
				t.Errorf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestLinear_Saturation(t *testing.T) {
	p, err := NewLinear([][]float64{{1}}, []float64{1}, []float64{1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.WithSaturation(-1); err == nil {
		t.Error("negative u_max should be rejected")
	}
	if _, err := p.WithSaturation(10); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		uC     float64
		u      float64
		deltaU float64
	}{
		{5, 5, 0},
		{-10, -10, 0},
		{15, 10, -5},
		{-25, -10, 15},
	}

	for _, tt := range tests {
		u, d := p.Apply(tt.uC)
		if u != tt.u || d != tt.deltaU {
			t.Errorf("Apply(%v) = (%v, %v), want (%v, %v)", tt.uC, u, d, tt.u, tt.deltaU)
		}
	}
}

func TestLinear_NoSaturationPassthrough(t *testing.T) {
	p, _ := NewLinear([][]float64{{1}}, []float64{1}, []float64{1}, 0)
	u, d := p.Apply(1e6)
	if u != 1e6 || d != 0 {
		t.Errorf("unsaturated plant should pass input through, got (%v, %v)", u, d)
	}
}

func TestLinear_DeriveBias(t *testing.T) {
	// dot_x = 4x + u + v with v = 10; sigma-mod plant.
	p, _ := NewLinear([][]float64{{4}}, []float64{1}, []float64{1}, 10)
	dx := p.Derive(dynamo.State{2}, 3)
	want := 4.0*2 + 3 + 10
	if math.Abs(dx[0]-want) > 1e-12 {
		t.Errorf("Derive = %v, want %v", dx[0], want)
	}
}

func TestLinear_SecondOrder(t *testing.T) {
	p, _ := NewLinear([][]float64{{0, 1}, {-2, -3}}, []float64{0, 1}, []float64{1, 0}, 0)
	dx := p.Derive(dynamo.State{1, 2}, 0.5)
	if dx[0] != 2 {
		t.Errorf("dx[0] = %v, want 2", dx[0])
	}
	want := -2.0*1 - 3*2 + 0.5
	if math.Abs(dx[1]-want) > 1e-12 {
		t.Errorf("dx[1] = %v, want %v", dx[1], want)
	}
	if y := p.Output(dynamo.State{1, 2}); y != 1 {
		t.Errorf("Output = %v, want 1", y)
	}
}

func TestLinear_SignB(t *testing.T) {
	p, _ := NewLinear([][]float64{{0, 1}, {-2, -3}}, []float64{0, -2}, []float64{1, 0}, 0)
	if p.SignB() != -1 {
		t.Errorf("SignB = %v, want -1", p.SignB())
	}
}

func TestStateSpace_Dimensions(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{-1, 0, 0, -2})
	b := mat.NewDense(2, 1, []float64{1, 1})
	c := mat.NewDense(1, 2, []float64{1, 0})

	ss, err := NewStateSpace(a, b, c)
	if err != nil {
		t.Fatal(err)
	}
	if ss.Order() != 2 || ss.Inputs() != 1 || ss.Outputs() != 1 {
		t.Errorf("dims: order=%d inputs=%d outputs=%d", ss.Order(), ss.Inputs(), ss.Outputs())
	}

	badB := mat.NewDense(3, 1, []float64{1, 1, 1})
	if _, err := NewStateSpace(a, badB, c); !errors.Is(err, dynamo.ErrConfig) {
		t.Errorf("expected ErrConfig for bad B, got %v", err)
	}
}

func TestStateSpace_Derive(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{-1, 0, 0, -2})
	b := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	c := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	ss, _ := NewStateSpace(a, b, c)

	dx := ss.Derive(dynamo.State{1, 1}, []float64{0.5, -0.5})
	if math.Abs(dx[0]-(-0.5)) > 1e-12 || math.Abs(dx[1]-(-2.5)) > 1e-12 {
		t.Errorf("Derive = %v, want [-0.5 -2.5]", dx)
	}

	y := ss.Output(dynamo.State{3, 4})
	if y[0] != 3 || y[1] != 4 {
		t.Errorf("Output = %v, want [3 4]", y)
	}
}
