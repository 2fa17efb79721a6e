package main

import (
	"fmt"

	"github.com/ajrox090/PhiFlow/extrapolation"
	"github.com/ajrox090/PhiFlow/tensor"
)

type check struct {
	name string
	run  func() error
}

var checks = []check{
	{"zeros sum", checkZerosSum},
	{"grid sample", checkGridSample},
	{"scatter duplicates", checkScatter},
	{"solve identity", checkSolve},
	{"collapsed reduction", checkCollapsed},
	{"fft round trip", checkFFT},
}

func expectItem(t tensor.Tensor, want float64) error {
	got, err := tensor.Item(t)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %g, got %g", want, got)
	}
	return nil
}

func checkZerosSum() error {
	z, err := tensor.Zeros(tensor.NewShape(tensor.S("x", 4), tensor.S("y", 4)))
	if err != nil {
		return err
	}
	total, err := tensor.Sum(z, tensor.AllDims())
	if err != nil {
		return err
	}
	return expectItem(total, 0)
}

func checkGridSample() error {
	grid, err := tensor.Wrap([]float64{0, 1, 2, 3}, tensor.NewShape(tensor.S("x", 4)))
	if err != nil {
		return err
	}
	at, err := tensor.Vector([]float64{1.5})
	if err != nil {
		return err
	}
	v, err := tensor.GridSample(grid, at, extrapolation.Boundary)
	if err != nil {
		return err
	}
	return expectItem(v, 1.5)
}

func checkScatter() error {
	idx, err := tensor.Wrap([]float64{0, 0}, tensor.NewShape(tensor.S("i", 2), tensor.C(tensor.VectorDim, 1)), tensor.WithDType(tensor.Int32))
	if err != nil {
		return err
	}
	vals, err := tensor.Wrap([]float64{1, 3}, tensor.NewShape(tensor.S("i", 2)))
	if err != nil {
		return err
	}
	size := tensor.NewShape(tensor.S("x", 1))
	for _, c := range []struct {
		mode tensor.ScatterOptions
		want float64
	}{
		{tensor.ScatterOptions{Duplicates: tensor.DuplicatesAdd}, 4},
		{tensor.ScatterOptions{Duplicates: tensor.DuplicatesMean}, 2},
	} {
		mode, want := c.mode, c.want
		out, err := tensor.Scatter(idx, vals, size, mode)
		if err != nil {
			return err
		}
		if err := expectItem(out, want); err != nil {
			return fmt.Errorf("%s: %w", mode.Duplicates, err)
		}
	}
	return nil
}

func checkSolve() error {
	y, err := tensor.Wrap([]float64{1, 2, 3}, tensor.NewShape(tensor.S("x", 3)))
	if err != nil {
		return err
	}
	x0, err := tensor.ZerosLike(y)
	if err != nil {
		return err
	}
	identity := tensor.LinearFunction(func(x tensor.Tensor) (tensor.Tensor, error) { return x, nil })
	res, err := tensor.Solve(identity, y, x0, tensor.LinearSolve{})
	if err != nil {
		return err
	}
	if err := expectItem(res.Iterations, 1); err != nil {
		return fmt.Errorf("iterations: %w", err)
	}
	return tensor.AssertClose(res.X, y, 1e-5, 1e-5)
}

func checkCollapsed() error {
	x, err := tensor.Wrap([]float64{1, 2, 4}, tensor.NewShape(tensor.S("x", 3)))
	if err != nil {
		return err
	}
	c, err := tensor.Expand(x, tensor.NewShape(tensor.B("b", 1000)))
	if err != nil {
		return err
	}
	if _, ok := c.(*tensor.Collapsed); !ok {
		return fmt.Errorf("expand returned %T", c)
	}
	sum, err := tensor.Sum(c, tensor.AllDims())
	if err != nil {
		return err
	}
	return expectItem(sum, 7000)
}

func checkFFT() error {
	x, err := tensor.RandomNormal(tensor.NewShape(tensor.S("x", 8), tensor.S("y", 5)))
	if err != nil {
		return err
	}
	k, err := tensor.FFT(x)
	if err != nil {
		return err
	}
	back, err := tensor.IFFT(k)
	if err != nil {
		return err
	}
	re, err := tensor.Real(back)
	if err != nil {
		return err
	}
	return tensor.AssertClose(re, x, 1e-4, 1e-4)
}
