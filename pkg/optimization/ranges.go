package optimization

import (
	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
)

// Gene positions, in grid axis order
const (
	geneBuyRSI1 = iota
	geneBuyRSI2
	geneBuyRSI3
	geneSLPerc
	geneFirstTP
	geneSecTP
	geneRSIPeriod
	geneRSIEMA
	geneMartingale
	geneCount
)

// Genome holds one index per grid axis.
type Genome [geneCount]int

// axisSizes returns the number of values on each axis of grid
func axisSizes(grid backtest.Grid) Genome {
	return Genome{
		len(grid.BuyRSI1), len(grid.BuyRSI2), len(grid.BuyRSI3),
		len(grid.SLPerc), len(grid.FirstTPPerc), len(grid.SecTPPerc),
		len(grid.RSIPeriods), len(grid.RSIEMA), len(grid.Martingale),
	}
}

// Decode applies the grid values picked by g to base.
func (g Genome) Decode(grid backtest.Grid, base strategy.Config) strategy.Config {
	cfg := base
	cfg.BuyRSI1 = grid.BuyRSI1[g[geneBuyRSI1]]
	cfg.BuyRSI2 = grid.BuyRSI2[g[geneBuyRSI2]]
	cfg.BuyRSI3 = grid.BuyRSI3[g[geneBuyRSI3]]
	cfg.SLPerc = grid.SLPerc[g[geneSLPerc]]
	cfg.FirstTPPerc = grid.FirstTPPerc[g[geneFirstTP]]
	cfg.SecTPPerc = grid.SecTPPerc[g[geneSecTP]]
	cfg.RSIPeriods = grid.RSIPeriods[g[geneRSIPeriod]]
	cfg.RSIEMA = grid.RSIEMA[g[geneRSIEMA]]
	cfg.Martingale = grid.Martingale[g[geneMartingale]]
	return cfg
}

// Index is the position of g in Grid.Combinations order, where the last
// axis varies fastest.
func (g Genome) Index(sizes Genome) int {
	idx := 0
	for i := 0; i < geneCount; i++ {
		idx = idx*sizes[i] + g[i]
	}
	return idx
}
