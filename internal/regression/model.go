package regression

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ConfidenceLevel is the coverage of the reported coefficient intervals.
const ConfidenceLevel = 0.95

// FittedModel is the immutable result of one estimation call. Accessors
// return copies.
type FittedModel struct {
	method Method
	names  []string
	n, p   int

	coef      []float64
	cov       *mat.SymDense
	fitted    []float64
	residuals []float64
	response  []float64

	rss, tss  float64
	r2        float64
	condition float64

	// firstStageR2 is only set for IV2SLS.
	firstStageR2 float64
	endogenous   string
	instruments  []string

	inf inference
}

type inference struct {
	stdErr, tStat, pValue []float64
	ciLow, ciHigh         []float64
	adjR2                 float64
	fStat, fPValue        float64
	logLik, aic, bic      float64
}

// newFittedModel computes fitted values on the caller's design matrix, the
// residuals, R² and the inference summary.
func newFittedModel(method Method, x *DesignMatrix, y, beta []float64, cov *mat.SymDense, condition float64) *FittedModel {
	n, p := x.Dims()
	fitted := mulVec(x.data, beta)
	resid := make([]float64, n)
	for i := range y {
		resid[i] = y[i] - fitted[i]
	}
	rss := sumSquares(resid)
	tss := totalSumSquares(y)

	m := &FittedModel{
		method:       method,
		names:        x.Names(),
		n:            n,
		p:            p,
		coef:         append([]float64(nil), beta...),
		cov:          cov,
		fitted:       fitted,
		residuals:    resid,
		response:     append([]float64(nil), y...),
		rss:          rss,
		tss:          tss,
		r2:           rSquared(rss, tss),
		condition:    condition,
		firstStageR2: math.NaN(),
	}
	m.inf = m.computeInference()
	return m
}

func sumSquares(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return s
}

func totalSumSquares(y []float64) float64 {
	mean := stat.Mean(y, nil)
	s := 0.0
	for _, v := range y {
		d := v - mean
		s += d * d
	}
	return s
}

// rSquared is 1 − RSS/TSS. It is not clamped; a constant response yields 0.
func rSquared(rss, tss float64) float64 {
	if tss == 0 {
		return 0
	}
	return 1 - rss/tss
}

func (m *FittedModel) computeInference() inference {
	df := float64(m.DegreesOfFreedom())
	inf := inference{
		stdErr: make([]float64, m.p),
		tStat:  make([]float64, m.p),
		pValue: make([]float64, m.p),
		ciLow:  make([]float64, m.p),
		ciHigh: make([]float64, m.p),
	}
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	q := tdist.Quantile(1 - (1-ConfidenceLevel)/2)
	for j := 0; j < m.p; j++ {
		v := m.cov.At(j, j)
		se := math.NaN()
		if v >= 0 {
			se = math.Sqrt(v)
		}
		t := m.coef[j] / se
		inf.stdErr[j] = se
		inf.tStat[j] = t
		inf.pValue[j] = 2 * tdist.Survival(math.Abs(t))
		inf.ciLow[j] = m.coef[j] - q*se
		inf.ciHigh[j] = m.coef[j] + q*se
	}

	inf.adjR2 = 1 - (1-m.r2)*float64(m.n-1)/df
	inf.fStat, inf.fPValue = m.waldF(df)

	nf := float64(m.n)
	inf.logLik = -nf / 2 * (math.Log(2*math.Pi) + math.Log(m.rss/nf) + 1)
	inf.aic = 2*float64(m.p) - 2*inf.logLik
	inf.bic = float64(m.p)*math.Log(nf) - 2*inf.logLik
	return inf
}

// waldF tests that every non-constant coefficient is zero, using the model's
// reported covariance. Returns NaN when that covariance block is not positive
// definite.
func (m *FittedModel) waldF(df float64) (float64, float64) {
	k := m.p - 1
	if k < 1 {
		return math.NaN(), math.NaN()
	}
	block := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			block.SetSym(i, j, m.cov.At(i+1, j+1))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(block); !ok {
		return math.NaN(), math.NaN()
	}
	b := mat.NewVecDense(k, append([]float64(nil), m.coef[1:]...))
	var vb mat.VecDense
	if err := chol.SolveVecTo(&vb, b); err != nil {
		return math.NaN(), math.NaN()
	}
	f := mat.Dot(b, &vb) / float64(k)
	return f, distuv.F{D1: float64(k), D2: df}.Survival(f)
}

// Method returns the estimator that produced the model
func (m *FittedModel) Method() Method { return m.method }

// Names returns the coefficient names, "const" first.
func (m *FittedModel) Names() []string { return append([]string(nil), m.names...) }

// Observations returns n.
func (m *FittedModel) Observations() int { return m.n }

// NumRegressors returns k, the number of non-constant columns.
func (m *FittedModel) NumRegressors() int { return m.p - 1 }

// DegreesOfFreedom returns the residual degrees of freedom n−k−1.
func (m *FittedModel) DegreesOfFreedom() int { return m.n - m.p }

// Coefficients returns β aligned with the design matrix columns.
func (m *FittedModel) Coefficients() []float64 { return append([]float64(nil), m.coef...) }

// Covariance returns a copy of the coefficient covariance matrix.
func (m *FittedModel) Covariance() *mat.SymDense {
	c := mat.NewSymDense(m.p, nil)
	c.CopySym(m.cov)
	return c
}

// FittedValues returns X·β over the estimation sample.
func (m *FittedModel) FittedValues() []float64 { return append([]float64(nil), m.fitted...) }

// Residuals returns y − X·β.
func (m *FittedModel) Residuals() []float64 { return append([]float64(nil), m.residuals...) }

// Response returns the observed response.
func (m *FittedModel) Response() []float64 { return append([]float64(nil), m.response...) }

func (m *FittedModel) RSquared() float64    { return m.r2 }
func (m *FittedModel) AdjRSquared() float64 { return m.inf.adjR2 }
func (m *FittedModel) RSS() float64         { return m.rss }
func (m *FittedModel) TSS() float64         { return m.tss }

// ConditionNumber is the condition number of the matrix actually solved.
func (m *FittedModel) ConditionNumber() float64 { return m.condition }

func (m *FittedModel) StdErrors() []float64 { return append([]float64(nil), m.inf.stdErr...) }
func (m *FittedModel) TStats() []float64    { return append([]float64(nil), m.inf.tStat...) }
func (m *FittedModel) PValues() []float64   { return append([]float64(nil), m.inf.pValue...) }

// ConfidenceIntervals returns the lower and upper 95% bounds per coefficient.
func (m *FittedModel) ConfidenceIntervals() (lower, upper []float64) {
	return append([]float64(nil), m.inf.ciLow...), append([]float64(nil), m.inf.ciHigh...)
}

// FStatistic returns the Wald F statistic for the joint significance of the
// non-constant coefficients and its p-value.
func (m *FittedModel) FStatistic() (float64, float64) { return m.inf.fStat, m.inf.fPValue }

func (m *FittedModel) LogLikelihood() float64 { return m.inf.logLik }
func (m *FittedModel) AIC() float64           { return m.inf.aic }
func (m *FittedModel) BIC() float64           { return m.inf.bic }

// FirstStageRSquared is the stage-1 R² of an IV2SLS fit and NaN otherwise.
func (m *FittedModel) FirstStageRSquared() float64 { return m.firstStageR2 }

// Endogenous returns the IV2SLS endogenous regressor, or "".
func (m *FittedModel) Endogenous() string { return m.endogenous }

// Instruments returns the IV2SLS instrument names.
func (m *FittedModel) Instruments() []string { return append([]string(nil), m.instruments...) }
