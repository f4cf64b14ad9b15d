package http

import (
	"errors"
	"fmt"

	apierrors "econlab/internal/errors"
	"econlab/internal/exporter"
	"econlab/internal/regression"
	"econlab/internal/services"
	api "econlab/pkg/contracts/api/v1"
)

// toDataset converts the wire dataset. Observations are keyed by name and
// produce columns in sorted order.
func toDataset(d api.Dataset) (*regression.Dataset, error) {
	if len(d.Observations) > 0 {
		obs := make([]regression.Observation, len(d.Observations))
		for i, o := range d.Observations {
			obs[i] = regression.Observation(o)
		}
		return regression.DatasetFromObservations(obs)
	}
	return regression.NewDataset(d.Columns, d.Rows)
}

func toModelInput(d api.Dataset, spec api.ModelSpec, method string) (services.ModelInput, error) {
	ds, err := toDataset(d)
	if err != nil {
		return services.ModelInput{}, err
	}
	in := services.ModelInput{
		Dataset:     ds,
		Response:    spec.Response,
		Regressors:  spec.Regressors,
		Endogenous:  spec.Endogenous,
		Instruments: spec.Instruments,
		Omega:       spec.Omega,
	}
	if method != "" {
		if in.Method, err = regression.ParseMethod(method); err != nil {
			return services.ModelInput{}, apierrors.ErrValidation("method", err.Error())
		}
	}
	return in, nil
}

func parseMethods(names []string) ([]regression.Method, error) {
	methods := make([]regression.Method, 0, len(names))
	for i, name := range names {
		m, err := regression.ParseMethod(name)
		if err != nil {
			return nil, apierrors.ErrValidation(fmt.Sprintf("methods[%d]", i), err.Error())
		}
		methods = append(methods, m)
	}
	return methods, nil
}

// serviceError maps service-level sentinels to API errors. Everything else
// passes through for the error handler to classify.
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrTooManyObservations):
		return apierrors.ErrPayloadTooLarge.WithDetails(err.Error())
	case errors.Is(err, services.ErrTooManyRegressors):
		return apierrors.ErrValidation("regressors", err.Error())
	case errors.Is(err, services.ErrMethodNotApplicable):
		return apierrors.ErrUnprocessableEntity.WithDetails(err.Error())
	case errors.Is(err, services.ErrNoDataset):
		return apierrors.ErrValidation("dataset", "dataset is required")
	}
	return err
}

func modelDTO(a *services.Analysis) api.Model {
	m := a.Model
	names := m.Names()
	coef := m.Coefficients()
	se := m.StdErrors()
	tstat := m.TStats()
	pval := m.PValues()
	lo, hi := m.ConfidenceIntervals()

	coefs := make([]api.Coefficient, len(names))
	for i, name := range names {
		coefs[i] = api.Coefficient{
			Term:     name,
			Estimate: api.Float(coef[i]),
			StdError: api.Float(se[i]),
			TStat:    api.Float(tstat[i]),
			PValue:   api.Float(pval[i]),
			CILow:    api.Float(lo[i]),
			CIHigh:   api.Float(hi[i]),
		}
	}

	cov := m.Covariance()
	p := cov.SymmetricDim()
	covariance := make([][]api.Float, p)
	for i := range covariance {
		covariance[i] = make([]api.Float, p)
		for j := range covariance[i] {
			covariance[i][j] = api.Float(cov.At(i, j))
		}
	}

	f, fp := m.FStatistic()
	out := api.Model{
		Method:           m.Method().String(),
		Response:         a.Response,
		Regressors:       a.Design.Regressors(),
		Observations:     m.Observations(),
		DegreesOfFreedom: m.DegreesOfFreedom(),
		Coefficients:     coefs,
		Covariance:       covariance,
		RSquared:         api.Float(m.RSquared()),
		AdjRSquared:      api.Float(m.AdjRSquared()),
		FStatistic:       api.Float(f),
		FPValue:          api.Float(fp),
		LogLikelihood:    api.Float(m.LogLikelihood()),
		AIC:              api.Float(m.AIC()),
		BIC:              api.Float(m.BIC()),
		ConditionNumber:  api.Float(m.ConditionNumber()),
	}
	if m.Method() == regression.IV2SLS {
		fs := api.Float(m.FirstStageRSquared())
		out.Endogenous = m.Endogenous()
		out.Instruments = m.Instruments()
		out.FirstStageRSquared = &fs
	}
	return out
}

func diagnosticsDTO(d *regression.DiagnosticsReport) api.Diagnostics {
	out := api.Diagnostics{
		VIF: api.VIFResult{Applicable: d.VIF.Applicable},
		BreuschPagan: api.BreuschPagan{
			Statistic:   api.Float(d.BreuschPagan.Statistic),
			PValue:      api.Float(d.BreuschPagan.PValue),
			DF:          d.BreuschPagan.DF,
			AuxRSquared: api.Float(d.BreuschPagan.AuxRSquared),
		},
	}
	if d.VIF.Applicable {
		out.VIF.Values = make([]api.VIF, len(d.VIF.Values))
		for i, v := range d.VIF.Values {
			out.VIF.Values[i] = api.VIF{Regressor: d.VIF.Names[i], Value: api.Float(v)}
		}
	}
	return out
}

func seriesDTO(m *regression.FittedModel) api.Series {
	return api.Series{
		Observed:  api.Floats(m.Response()),
		Predicted: api.Floats(m.FittedValues()),
		Residuals: api.Floats(m.Residuals()),
	}
}

func warningsDTO(ws []exporter.Warning) []api.Warning {
	out := make([]api.Warning, len(ws))
	for i, w := range ws {
		out[i] = api.Warning{Code: w.Code, Message: w.Message}
	}
	return out
}

func datasetDTO(source string, ds *regression.Dataset) api.DatasetResponse {
	return api.DatasetResponse{
		Source:       source,
		Observations: ds.Len(),
		Columns:      ds.Columns,
		Rows:         ds.Rows,
	}
}
