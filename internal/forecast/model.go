package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// trainFraction is the chronological share of rows used for fitting; the
// remaining suffix is held out for validation. The split is never random:
// forecasting extrapolates forward in time, and shuffling would leak future
// rows into training.
const trainFraction = 0.8

// Model is a fitted linear regression from a scaled feature row to a scaled
// temperature. It lives for a single forecast request.
type Model struct {
	intercept float64
	coef      []float64

	// ValidationMAE is the mean absolute error on the held-out suffix,
	// in scaled target units.
	ValidationMAE float64
}

// Fit trains a least-squares linear regression on the chronological first
// 80% of the dataset and scores the remaining 20%. The solve is rank-aware
// (SVD with singular values below tolerance discarded), so collinear lag
// and rolling columns do not make the fit blow up.
func Fit(ds *Dataset) (*Model, error) {
	n := len(ds.Y)
	if n < minTrainingRows {
		return nil, fmt.Errorf("%w: %d usable rows, need at least %d", ErrInsufficientData, n, minTrainingRows)
	}

	split := int(trainFraction * float64(n))

	// Design matrix with a leading intercept column.
	cols := ds.Cols + 1
	x := mat.NewDense(split, cols, nil)
	y := make([]float64, split)
	for r := 0; r < split; r++ {
		x.Set(r, 0, 1)
		for c := 0; c < ds.Cols; c++ {
			x.Set(r, c+1, ds.X[r][c])
		}
		y[r] = ds.Y[r]
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: svd factorization did not converge", ErrModelFit)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	// Minimum-norm solution: beta = V * diag(1/s) * U^T * y, dropping
	// singular values below tolerance.
	tol := float64(split) * s[0] * 1e-14
	beta := make([]float64, cols)
	rank := 0
	for j := range s {
		if s[j] <= tol || s[j] == 0 {
			continue
		}
		rank++
		var c float64
		for i := 0; i < split; i++ {
			c += u.At(i, j) * y[i]
		}
		c /= s[j]
		for k := 0; k < cols; k++ {
			beta[k] += c * v.At(k, j)
		}
	}
	if rank == 0 {
		return nil, fmt.Errorf("%w: feature matrix is numerically zero", ErrModelFit)
	}

	m := &Model{intercept: beta[0], coef: beta[1:]}

	// Hold-out score on the chronological suffix.
	if n > split {
		var sum float64
		for r := split; r < n; r++ {
			sum += math.Abs(m.predictOne(ds.X[r]) - ds.Y[r])
		}
		m.ValidationMAE = sum / float64(n-split)
	}

	for _, b := range m.coef {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, fmt.Errorf("%w: non-finite coefficients", ErrModelFit)
		}
	}

	return m, nil
}

func (m *Model) predictOne(row []float64) float64 {
	p := m.intercept
	for i, c := range m.coef {
		p += c * row[i]
	}
	return p
}

// Predict runs single-step autoregression for days*24 hours starting from
// the last observed feature row and returns the predictions in Celsius.
// Only the temperature column feeds back between steps; humidity, pressure,
// calendar, lag and rolling columns stay frozen at their last observed
// values for the whole horizon. That is the documented default behavior,
// inherited for output compatibility.
func (m *Model) Predict(ds *Dataset, days int) []float64 {
	horizon := days * 24
	last := append([]float64(nil), ds.X[len(ds.X)-1]...)

	preds := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		p := m.predictOne(last)
		preds[h] = p
		last[tempCol] = p
	}

	for i, p := range preds {
		preds[i] = ds.TargetScaler.Inverse(p)
	}
	return preds
}
