package regression

import (
	"math/rand"
	"testing"
)

func benchmarkFit(b *testing.B, method Method, n int) {
	rng := rand.New(rand.NewSource(1))
	ds := simulate(rng, n, []float64{1, 2, 3, 4, 5}, gaussian(rng, 1))
	x, y := mustDesign(b, ds)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Fit(y, x, method, MethodParams{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFitOLS500(b *testing.B)  { benchmarkFit(b, OLS, 500) }
func BenchmarkFitHC3500(b *testing.B)  { benchmarkFit(b, OLSRobustHC3, 500) }
func BenchmarkFitOLS5000(b *testing.B) { benchmarkFit(b, OLS, 5000) }

func BenchmarkDiagnostics(b *testing.B) {
	rng := rand.New(rand.NewSource(2))
	ds := simulate(rng, 1000, []float64{1, 2, 3, 4}, gaussian(rng, 1))
	x, y := mustDesign(b, ds)
	model, err := Fit(y, x, OLS, MethodParams{})
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := VarianceInflationFactors(x); err != nil {
			b.Fatal(err)
		}
		if _, err := BreuschPagan(model, x); err != nil {
			b.Fatal(err)
		}
	}
}
