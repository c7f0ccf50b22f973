package prediction

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"liquor-analytics/internal/models"
)

// regressor is the uniform capability every algorithm variant provides.
// Fitted parameters must round-trip through JSON so the registry can
// persist them as self-describing artifacts.
type regressor interface {
	fit(rows [][]float64, labels []float64, rng *rand.Rand) error
	predictRow(row []float64) float64
	// importance returns per-feature contributions normalized to sum 1,
	// or nil for algorithms that do not produce them
	importance() []float64
}

// newRegressor returns an unfitted regressor for the algorithm
func newRegressor(alg models.Algorithm) (regressor, error) {
	switch alg {
	case models.AlgorithmRandomForest:
		return &forestModel{}, nil
	case models.AlgorithmGradientBoosting:
		return &boostingModel{}, nil
	case models.AlgorithmLinear:
		return &linearModel{}, nil
	case models.AlgorithmRidge:
		return &ridgeModel{Alpha: 1.0}, nil
	case models.AlgorithmLasso:
		return &lassoModel{Alpha: 1.0}, nil
	}
	return nil, fmt.Errorf("unknown algorithm: %s", alg)
}

// decodeParams reconstructs a fitted regressor from registry params
func decodeParams(alg models.Algorithm, raw json.RawMessage) (regressor, error) {
	r, err := newRegressor(alg)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, r); err != nil {
		return nil, fmt.Errorf("failed to decode %s params: %w", alg, err)
	}
	return r, nil
}

// encodeParams serializes a fitted regressor for the registry
func encodeParams(r regressor) (json.RawMessage, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}
	return data, nil
}

// linearModel is ordinary least squares with intercept, solved by QR
type linearModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

func (m *linearModel) fit(rows [][]float64, labels []float64, _ *rand.Rand) error {
	n := len(rows)
	p := len(rows[0])

	a := mat.NewDense(n, p+1, nil)
	for i, row := range rows {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	y := mat.NewVecDense(n, labels)

	var beta mat.VecDense
	if err := beta.SolveVec(a, y); err != nil {
		// A Condition error still carries a usable minimum-norm solution
		if _, ok := err.(mat.Condition); !ok {
			return fmt.Errorf("least squares solve failed: %w", err)
		}
	}

	m.Intercept = beta.AtVec(0)
	m.Coefficients = make([]float64, p)
	for j := 0; j < p; j++ {
		m.Coefficients[j] = beta.AtVec(j + 1)
	}
	return nil
}

func (m *linearModel) predictRow(row []float64) float64 {
	v := m.Intercept
	for j, c := range m.Coefficients {
		v += c * row[j]
	}
	return v
}

func (m *linearModel) importance() []float64 { return nil }

// ridgeModel is L2-regularized least squares. The intercept is left
// unpenalized by centering features and labels before the solve.
type ridgeModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Alpha        float64   `json:"alpha"`
}

func (m *ridgeModel) fit(rows [][]float64, labels []float64, _ *rand.Rand) error {
	n := len(rows)
	p := len(rows[0])

	xMean, yMean := columnMeans(rows, labels)

	// Gram matrix of centered features plus alpha on the diagonal
	gram := mat.NewSymDense(p, nil)
	for j := 0; j < p; j++ {
		for k := j; k < p; k++ {
			s := 0.0
			for i := 0; i < n; i++ {
				s += (rows[i][j] - xMean[j]) * (rows[i][k] - xMean[k])
			}
			if j == k {
				s += m.Alpha
			}
			gram.SetSym(j, k, s)
		}
	}

	rhs := mat.NewVecDense(p, nil)
	for j := 0; j < p; j++ {
		s := 0.0
		for i := 0; i < n; i++ {
			s += (rows[i][j] - xMean[j]) * (labels[i] - yMean)
		}
		rhs.SetVec(j, s)
	}

	var chol mat.Cholesky
	if !chol.Factorize(gram) {
		return fmt.Errorf("ridge normal equations are not positive definite")
	}

	var w mat.VecDense
	if err := chol.SolveVecTo(&w, rhs); err != nil {
		return fmt.Errorf("ridge solve failed: %w", err)
	}

	m.Coefficients = make([]float64, p)
	m.Intercept = yMean
	for j := 0; j < p; j++ {
		m.Coefficients[j] = w.AtVec(j)
		m.Intercept -= m.Coefficients[j] * xMean[j]
	}
	return nil
}

func (m *ridgeModel) predictRow(row []float64) float64 {
	v := m.Intercept
	for j, c := range m.Coefficients {
		v += c * row[j]
	}
	return v
}

func (m *ridgeModel) importance() []float64 { return nil }

// lassoModel is L1-regularized least squares fit by cyclic coordinate
// descent on centered data, minimizing (1/2n)*RSS + alpha*|w|.
type lassoModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Alpha        float64   `json:"alpha"`
}

const (
	lassoMaxIter = 1000
	lassoTol     = 1e-7
)

func (m *lassoModel) fit(rows [][]float64, labels []float64, _ *rand.Rand) error {
	n := len(rows)
	p := len(rows[0])

	xMean, yMean := columnMeans(rows, labels)

	xc := make([][]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		xc[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			xc[i][j] = rows[i][j] - xMean[j]
		}
		residual[i] = labels[i] - yMean
	}

	colSq := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			colSq[j] += xc[i][j] * xc[i][j]
		}
	}

	w := make([]float64, p)
	threshold := m.Alpha * float64(n)

	for iter := 0; iter < lassoMaxIter; iter++ {
		maxDelta := 0.0
		for j := 0; j < p; j++ {
			if colSq[j] == 0 {
				continue
			}

			rho := colSq[j] * w[j]
			for i := 0; i < n; i++ {
				rho += xc[i][j] * residual[i]
			}

			next := softThreshold(rho, threshold) / colSq[j]
			delta := next - w[j]
			if delta != 0 {
				for i := 0; i < n; i++ {
					residual[i] -= delta * xc[i][j]
				}
				w[j] = next
			}
			if math.Abs(delta) > maxDelta {
				maxDelta = math.Abs(delta)
			}
		}
		if maxDelta < lassoTol {
			break
		}
	}

	m.Coefficients = w
	m.Intercept = yMean
	for j := 0; j < p; j++ {
		m.Intercept -= w[j] * xMean[j]
	}
	return nil
}

func (m *lassoModel) predictRow(row []float64) float64 {
	v := m.Intercept
	for j, c := range m.Coefficients {
		v += c * row[j]
	}
	return v
}

func (m *lassoModel) importance() []float64 { return nil }

func softThreshold(x, t float64) float64 {
	switch {
	case x > t:
		return x - t
	case x < -t:
		return x + t
	}
	return 0
}

func columnMeans(rows [][]float64, labels []float64) (xMean []float64, yMean float64) {
	n := len(rows)
	p := len(rows[0])

	xMean = make([]float64, p)
	for _, row := range rows {
		for j, v := range row {
			xMean[j] += v
		}
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}

	for _, y := range labels {
		yMean += y
	}
	yMean /= float64(n)
	return xMean, yMean
}
