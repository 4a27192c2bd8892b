package optimization

import (
	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
)

// Individual is one candidate. Fitness is the ROI of its simulation.
type Individual struct {
	Genes     Genome
	Fitness   float64
	Result    backtest.OptimizationResult
	evaluated bool
}

func newIndividual(genes Genome) *Individual {
	return &Individual{Genes: genes}
}

// Evaluated reports whether the individual carries a simulation result
func (ind *Individual) Evaluated() bool {
	return ind.evaluated
}

func (ind *Individual) setResult(res backtest.OptimizationResult) {
	ind.Result = res
	ind.Fitness = res.Summary.ROI
	ind.evaluated = true
}

func (ind *Individual) clone() *Individual {
	c := *ind
	return &c
}
