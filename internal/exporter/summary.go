package exporter

import (
	"fmt"
	"math"
	"strings"

	"econlab/internal/regression"
)

// Default thresholds for fit-quality warnings.
const (
	DefaultLowFitThreshold = 0.5
	DefaultVIFThreshold    = 10.0
	DefaultSignificance    = 0.05
)

// Warning codes.
const (
	WarnLowFit             = "low_r_squared"
	WarnHeteroskedasticity = "heteroskedasticity"
	WarnMulticollinearity  = "multicollinearity"
)

// Warning is a fit-quality note attached to a report.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Thresholds controls when Assess raises warnings. Zero VIF and
// Significance select the defaults above. A nil LowFit selects
// DefaultLowFitThreshold; an explicit 0 turns the low-fit warning off.
type Thresholds struct {
	LowFit       *float64
	VIF          float64
	Significance float64
}

// LowFitThreshold returns a Thresholds.LowFit value.
func LowFitThreshold(v float64) *float64 { return &v }

func (t Thresholds) withDefaults() Thresholds {
	if t.LowFit == nil {
		t.LowFit = LowFitThreshold(DefaultLowFitThreshold)
	}
	if t.VIF == 0 {
		t.VIF = DefaultVIFThreshold
	}
	if t.Significance == 0 {
		t.Significance = DefaultSignificance
	}
	return t
}

// Assess returns the warnings for a model and its diagnostics. diag may be nil.
func Assess(model *regression.FittedModel, diag *regression.DiagnosticsReport, th Thresholds) []Warning {
	th = th.withDefaults()
	var out []Warning
	if r2 := model.RSquared(); *th.LowFit > 0 && isLowFit(r2, *th.LowFit) {
		out = append(out, Warning{
			Code: WarnLowFit,
			Message: fmt.Sprintf("low goodness of fit (R² = %.3f < %.2f): the model may omit important regressors or the data may be noisy",
				r2, *th.LowFit),
		})
	}
	if diag == nil {
		return out
	}
	if bp := diag.BreuschPagan; bp.PValue < th.Significance && model.Method() != regression.OLSRobustHC3 {
		out = append(out, Warning{
			Code: WarnHeteroskedasticity,
			Message: fmt.Sprintf("Breusch-Pagan rejects constant variance (p = %s); consider OLS_RobustHC3 standard errors",
				formatPValue(bp.PValue)),
		})
	}
	if diag.VIF.Applicable {
		var high []string
		for i, v := range diag.VIF.Values {
			if v > th.VIF {
				high = append(high, fmt.Sprintf("%s (%.1f)", diag.VIF.Names[i], v))
			}
		}
		if len(high) > 0 {
			out = append(out, Warning{
				Code:    WarnMulticollinearity,
				Message: "high variance inflation: " + strings.Join(high, ", "),
			})
		}
	}
	return out
}

// SummaryOptions configures the text report.
type SummaryOptions struct {
	Response   string
	Thresholds Thresholds
}

// Summary renders an estimation report. diag may be nil.
func Summary(model *regression.FittedModel, diag *regression.DiagnosticsReport, opts SummaryOptions) string {
	var b strings.Builder
	rule := strings.Repeat("=", 78)
	thin := strings.Repeat("-", 78)

	title := model.Method().String() + " Regression Results"
	pad := (78 - len(title)) / 2
	b.WriteString(strings.Repeat(" ", pad) + title + "\n")
	b.WriteString(rule + "\n")

	response := opts.Response
	if response == "" {
		response = "y"
	}
	f, fp := model.FStatistic()
	pairs := [][2][2]string{
		{{"Dep. Variable:", response}, {"R-squared:", formatStat(model.RSquared())}},
		{{"Method:", model.Method().String()}, {"Adj. R-squared:", formatStat(model.AdjRSquared())}},
		{{"Covariance:", covarianceLabel(model.Method())}, {"F-statistic:", formatStat(f)}},
		{{"No. Observations:", fmt.Sprint(model.Observations())}, {"Prob (F-statistic):", formatPValue(fp)}},
		{{"Df Residuals:", fmt.Sprint(model.DegreesOfFreedom())}, {"Log-Likelihood:", formatStat(model.LogLikelihood())}},
		{{"Df Model:", fmt.Sprint(model.NumRegressors())}, {"AIC:", formatStat(model.AIC())}},
		{{"Cond. No.:", formatStat(model.ConditionNumber())}, {"BIC:", formatStat(model.BIC())}},
	}
	if model.Method() == regression.IV2SLS {
		pairs = append(pairs, [2][2]string{
			{"Endogenous:", model.Endogenous()},
			{"First-stage R²:", formatStat(model.FirstStageRSquared())},
		}, [2][2]string{
			{"Instruments:", strings.Join(model.Instruments(), ", ")},
			{"", ""},
		})
	}
	for _, p := range pairs {
		fmt.Fprintf(&b, "%-20s%-19s%-22s%17s\n", p[0][0], p[0][1], p[1][0], p[1][1])
	}
	b.WriteString(thin + "\n")

	fmt.Fprintf(&b, "%-14s%12s%12s%10s%10s%10s%10s\n", "", "coef", "std err", "t", "P>|t|", "[0.025", "0.975]")
	b.WriteString(thin + "\n")
	names := model.Names()
	coef := model.Coefficients()
	se := model.StdErrors()
	tstat := model.TStats()
	pval := model.PValues()
	lo, hi := model.ConfidenceIntervals()
	for i, name := range names {
		fmt.Fprintf(&b, "%-14s%12s%12s%10s%10s%10s%10s\n",
			truncate(name, 14), formatStat(coef[i]), formatStat(se[i]), formatStat(tstat[i]),
			formatPValue(pval[i]), formatStat(lo[i]), formatStat(hi[i]))
	}
	b.WriteString(rule + "\n")

	if diag != nil {
		b.WriteString("Diagnostics\n")
		b.WriteString(thin + "\n")
		if diag.VIF.Applicable {
			for i, name := range diag.VIF.Names {
				fmt.Fprintf(&b, "VIF %-24s%12s\n", truncate(name, 24), formatStat(diag.VIF.Values[i]))
			}
		} else {
			b.WriteString("VIF                         not applicable (single regressor)\n")
		}
		bp := diag.BreuschPagan
		fmt.Fprintf(&b, "Breusch-Pagan LM (df=%d)    %12s   p = %s\n", bp.DF, formatStat(bp.Statistic), formatPValue(bp.PValue))
		b.WriteString(rule + "\n")
	}

	warnings := Assess(model, diag, opts.Thresholds)
	if len(warnings) > 0 {
		b.WriteString("Warnings:\n")
		for i, w := range warnings {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, w.Message)
		}
	}
	return b.String()
}

func covarianceLabel(m regression.Method) string {
	switch m {
	case regression.OLSRobustHC3:
		return "HC3"
	case regression.GLS:
		return "GLS"
	case regression.IV2SLS:
		return "2SLS"
	default:
		return "nonrobust"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "~"
}

// isLowFit reports whether R² is below the threshold; NaN counts as low.
func isLowFit(r2, threshold float64) bool {
	return math.IsNaN(r2) || r2 < threshold
}
