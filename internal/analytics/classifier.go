package analytics

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"iot-maintenance/internal/models"
)

// NumFeatures длина вектора признаков (temperature, vibration, pressure)
const NumFeatures = 3

var (
	// ErrDegenerateTrainingSet все метки одного класса
	ErrDegenerateTrainingSet = errors.New("training set contains a single class")
	// ErrInvalidModel артефакт модели поврежден или несовместим
	ErrInvalidModel = errors.New("invalid model artifact")
)

// FitOptions параметры обучения логистической регрессии
type FitOptions struct {
	C       float64 // обратная сила L2-регуляризации
	MaxIter int
	Tol     float64 // порог максимального шага Ньютона
}

// DefaultFitOptions совпадают с настройками LogisticRegression по умолчанию
func DefaultFitOptions() FitOptions {
	return FitOptions{C: 1.0, MaxIter: 100, Tol: 1e-8}
}

// LogisticModel обученный линейный бинарный классификатор
type LogisticModel struct {
	Weights    []float64 `json:"weights"`
	Bias       float64   `json:"bias"`
	Samples    int       `json:"samples"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
	TrainedAt  time.Time `json:"trained_at"`
}

// Validate проверяет размерность и конечность параметров
func (m *LogisticModel) Validate() error {
	if len(m.Weights) != NumFeatures {
		return fmt.Errorf("%w: expected %d weights, got %d", ErrInvalidModel, NumFeatures, len(m.Weights))
	}
	for _, w := range append([]float64{m.Bias}, m.Weights...) {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: non-finite parameter", ErrInvalidModel)
		}
	}
	return nil
}

// DecisionFunction возвращает w·x + b
func (m *LogisticModel) DecisionFunction(x []float64) float64 {
	return floats.Dot(m.Weights, x) + m.Bias
}

// Probability возвращает оценку P(FAIL | x)
func (m *LogisticModel) Probability(x []float64) float64 {
	return sigmoid(m.DecisionFunction(x))
}

// Predict относит x к FAIL, если точка по положительную сторону гиперплоскости
func (m *LogisticModel) Predict(x []float64) models.Status {
	if m.DecisionFunction(x) > 0 {
		return models.StatusFail
	}
	return models.StatusOK
}

// Fit обучает модель методом Ньютона на L2-регуляризованной log-loss.
// Смещение не регуляризуется. Если итерации закончились раньше сходимости,
// модель возвращается с Converged == false.
func Fit(x [][]float64, y []float64, opts FitOptions) (*LogisticModel, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("features and labels length mismatch: %d vs %d", len(x), len(y))
	}
	if len(x) == 0 {
		return nil, ErrNoData
	}
	for i, row := range x {
		if len(row) != NumFeatures {
			return nil, fmt.Errorf("row %d: expected %d features, got %d", i, NumFeatures, len(row))
		}
	}
	if singleClass(y) {
		return nil, ErrDegenerateTrainingSet
	}
	if opts.C <= 0 {
		opts.C = 1.0
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 100
	}

	const n = NumFeatures + 1 // веса + смещение
	theta := make([]float64, n)
	candidate := make([]float64, n)

	model := &LogisticModel{Samples: len(x)}
	loss := objective(x, y, theta, opts.C)

	for iter := 1; iter <= opts.MaxIter; iter++ {
		model.Iterations = iter

		grad, hess := gradientHessian(x, y, theta, opts.C)
		step, err := newtonStep(hess, grad)
		if err != nil {
			return nil, err
		}

		// половиним шаг, пока целевая функция не перестанет расти;
		// если уменьшить ее не удалось, остаемся в theta
		accepted := false
		for t := 1.0; t >= 1e-10; t /= 2 {
			for j := range theta {
				candidate[j] = theta[j] - t*step[j]
			}
			if next := objective(x, y, candidate, opts.C); next <= loss {
				loss = next
				accepted = true
				break
			}
		}
		if !accepted {
			break
		}

		maxStep := 0.0
		for j := range theta {
			maxStep = math.Max(maxStep, math.Abs(candidate[j]-theta[j]))
		}
		copy(theta, candidate)

		if maxStep < opts.Tol {
			model.Converged = true
			break
		}
	}

	model.Weights = append([]float64(nil), theta[:NumFeatures]...)
	model.Bias = theta[NumFeatures]
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}

func gradientHessian(x [][]float64, y, theta []float64, c float64) ([]float64, *mat.SymDense) {
	n := len(theta)
	grad := make([]float64, n)
	hess := mat.NewSymDense(n, nil)

	// регуляризация только весов
	for j := 0; j < NumFeatures; j++ {
		grad[j] = theta[j]
		hess.SetSym(j, j, 1)
	}

	xi := make([]float64, n)
	for i, row := range x {
		copy(xi, row)
		xi[NumFeatures] = 1

		p := sigmoid(floats.Dot(theta, xi))
		r := c * (p - y[i])
		s := c * p * (1 - p)
		for j := 0; j < n; j++ {
			grad[j] += r * xi[j]
			for k := j; k < n; k++ {
				hess.SetSym(j, k, hess.At(j, k)+s*xi[j]*xi[k])
			}
		}
	}
	return grad, hess
}

func newtonStep(hess *mat.SymDense, grad []float64) ([]float64, error) {
	n := len(grad)
	g := mat.NewVecDense(n, grad)

	var chol mat.Cholesky
	if !chol.Factorize(hess) {
		// насыщенная сигмоида обнуляет кривизну смещения
		for j := 0; j < n; j++ {
			hess.SetSym(j, j, hess.At(j, j)+1e-8)
		}
		if !chol.Factorize(hess) {
			return nil, errors.New("hessian is not positive definite")
		}
	}

	var step mat.VecDense
	if err := chol.SolveVecTo(&step, g); err != nil {
		return nil, fmt.Errorf("failed to solve newton system: %w", err)
	}

	out := make([]float64, n)
	for j := range out {
		out[j] = step.AtVec(j)
	}
	return out, nil
}

func objective(x [][]float64, y, theta []float64, c float64) float64 {
	reg := 0.0
	for j := 0; j < NumFeatures; j++ {
		reg += theta[j] * theta[j]
	}

	loss := 0.0
	for i, row := range x {
		z := floats.Dot(theta[:NumFeatures], row) + theta[NumFeatures]
		loss += softplus(z) - y[i]*z
	}
	return 0.5*reg + c*loss
}

func singleClass(y []float64) bool {
	for _, v := range y[1:] {
		if v != y[0] {
			return false
		}
	}
	return true
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softplus вычисляет log(1 + e^z) без переполнения
func softplus(z float64) float64 {
	return math.Max(z, 0) + math.Log1p(math.Exp(-math.Abs(z)))
}
