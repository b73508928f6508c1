// Package tensor is the T729 tensor component. It owns all tensor storage;
// the VM holds Grid handles and returns them here through Release.
package tensor

import (
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/copyleftcultivars/hanoivm/fault"
	"github.com/copyleftcultivars/hanoivm/object"
)

// MaxDim bounds tensor dimensions constructed by bytecode. 729 rows of 729
// columns is the largest grid the T729 tier concerns itself with.
const MaxDim = 729

var live int64

// Live returns the number of Grid values currently held by handles.
func Live() int64 { return atomic.LoadInt64(&live) }

// Grid is a dense rank-2 tensor.
type Grid struct {
	m *mat.Dense
}

func newGrid(m *mat.Dense) *Grid {
	atomic.AddInt64(&live, 1)
	return &Grid{m: m}
}

// Identity allocates an n by n identity grid.
func Identity(n int) *Grid {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return newGrid(m)
}

// FromRows allocates a grid with the given row-major data.
func FromRows(rows, cols int, data []float64) *Grid {
	return newGrid(mat.NewDense(rows, cols, data))
}

// Dims returns the row and column counts.
func (g *Grid) Dims() (rows, cols int) {
	return g.m.Dims()
}

// At returns the element at (i, j).
func (g *Grid) At(i, j int) float64 {
	return g.m.At(i, j)
}

// Release returns the grid's storage to the component.
func (g *Grid) Release() {
	g.m = nil
	atomic.AddInt64(&live, -1)
}

var _ object.TensorGrid = (*Grid)(nil)

// Engine implements the tensor contractions delegated to this component by
// the VM's T243/T729 opcodes. Operands are never consumed; the caller keeps
// ownership of its handles.
type Engine struct{}

// New builds an n by n identity-seeded grid.
func (Engine) New(n int) (object.TensorGrid, error) {
	if n < 1 || n > MaxDim {
		return nil, fault.New(fault.OutOfBounds, "tensor dimension %d outside 1..%d", n, MaxDim)
	}
	return Identity(n), nil
}

// MatMul returns the matrix product a*b.
func (Engine) MatMul(a, b object.TensorGrid) (object.TensorGrid, error) {
	x, y, err := pair(a, b)
	if err != nil {
		return nil, err
	}
	xr, xc := x.m.Dims()
	yr, yc := y.m.Dims()
	if xc != yr {
		return nil, fault.New(fault.TypeMismatch, "matmul dimensions %dx%d by %dx%d", xr, xc, yr, yc)
	}
	var z mat.Dense
	z.Mul(x.m, y.m)
	return newGrid(&z), nil
}

// Accum returns the elementwise sum a+b.
func (Engine) Accum(a, b object.TensorGrid) (object.TensorGrid, error) {
	x, y, err := pair(a, b)
	if err != nil {
		return nil, err
	}
	if !sameDims(x, y) {
		xr, xc := x.m.Dims()
		yr, yc := y.m.Dims()
		return nil, fault.New(fault.TypeMismatch, "accum dimensions %dx%d by %dx%d", xr, xc, yr, yc)
	}
	var z mat.Dense
	z.Add(x.m, y.m)
	return newGrid(&z), nil
}

// Dot returns the Frobenius inner product of a and b as a 1x1 grid.
func (Engine) Dot(a, b object.TensorGrid) (object.TensorGrid, error) {
	x, y, err := pair(a, b)
	if err != nil {
		return nil, err
	}
	if !sameDims(x, y) {
		xr, xc := x.m.Dims()
		yr, yc := y.m.Dims()
		return nil, fault.New(fault.TypeMismatch, "dot dimensions %dx%d by %dx%d", xr, xc, yr, yc)
	}
	var z mat.Dense
	z.MulElem(x.m, y.m)
	return newGrid(mat.NewDense(1, 1, []float64{mat.Sum(&z)})), nil
}

// Contract multiplies a and b and collapses the product to its trace,
// returned as a 1x1 grid.
func (Engine) Contract(a, b object.TensorGrid) (object.TensorGrid, error) {
	x, y, err := pair(a, b)
	if err != nil {
		return nil, err
	}
	xr, xc := x.m.Dims()
	yr, yc := y.m.Dims()
	if xc != yr {
		return nil, fault.New(fault.TypeMismatch, "contract dimensions %dx%d by %dx%d", xr, xc, yr, yc)
	}
	var z mat.Dense
	z.Mul(x.m, y.m)
	zr, zc := z.Dims()
	if zr != zc {
		return nil, fault.New(fault.TypeMismatch, "contract of non-square %dx%d product", zr, zc)
	}
	return newGrid(mat.NewDense(1, 1, []float64{mat.Trace(&z)})), nil
}

func pair(a, b object.TensorGrid) (*Grid, *Grid, error) {
	x, ok := a.(*Grid)
	if !ok {
		return nil, nil, fault.New(fault.TypeMismatch, "foreign tensor %T", a)
	}
	y, ok := b.(*Grid)
	if !ok {
		return nil, nil, fault.New(fault.TypeMismatch, "foreign tensor %T", b)
	}
	return x, y, nil
}

func sameDims(x, y *Grid) bool {
	xr, xc := x.m.Dims()
	yr, yc := y.m.Dims()
	return xr == yr && xc == yc
}
