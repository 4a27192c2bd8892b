// Package optimization searches the tiered RSI parameter grid with a
// genetic algorithm. It explores grids too large for an exhaustive sweep
// and reports in the same shape as backtest.Optimizer.
package optimization

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/ducminhle1904/rsi-tier-bot/internal/backtest"
	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
	"github.com/ducminhle1904/rsi-tier-bot/pkg/types"
)

// GA defaults
const (
	GAPopulationSize = 24
	GAGenerations    = 15
	GAMutationRate   = 0.2
	GACrossoverRate  = 0.85
	GAEliteSize      = 4
	TournamentSize   = 2
)

// GAConfig tunes a genetic search. Zero values take the defaults; a zero
// Seed seeds from the clock.
type GAConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	CrossoverRate  float64
	EliteSize      int
	TournamentSize int
	Workers        int
	Seed           int64

	// OnGeneration is called after each generation is evaluated
	OnGeneration func(gen int, best *Individual, avgFitness float64)
}

func (c GAConfig) withDefaults() GAConfig {
	if c.PopulationSize <= 0 {
		c.PopulationSize = GAPopulationSize
	}
	if c.Generations <= 0 {
		c.Generations = GAGenerations
	}
	if c.MutationRate <= 0 {
		c.MutationRate = GAMutationRate
	}
	if c.CrossoverRate <= 0 {
		c.CrossoverRate = GACrossoverRate
	}
	if c.EliteSize <= 0 {
		c.EliteSize = GAEliteSize
	}
	if c.EliteSize >= c.PopulationSize {
		c.EliteSize = c.PopulationSize - 1
	}
	if c.TournamentSize <= 0 {
		c.TournamentSize = TournamentSize
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return c
}

type seriesKey struct {
	period int
	useEMA bool
}

// GeneticOptimizer evolves genomes over one bar series. Every distinct
// genome is simulated once.
type GeneticOptimizer struct {
	bars        []types.Bar
	initialBank float64
	base        strategy.Config
	grid        backtest.Grid
	cfg         GAConfig
	sizes       Genome

	series map[seriesKey][]backtest.EnrichedBar

	mu   sync.Mutex
	memo map[Genome]backtest.OptimizationResult
}

func NewGeneticOptimizer(bars []types.Bar, initialBank float64, base strategy.Config, grid backtest.Grid, cfg GAConfig) *GeneticOptimizer {
	return &GeneticOptimizer{
		bars:        bars,
		initialBank: initialBank,
		base:        base,
		grid:        grid,
		cfg:         cfg.withDefaults(),
		sizes:       axisSizes(grid),
		memo:        make(map[Genome]backtest.OptimizationResult),
	}
}

// Run evolves the population and returns every evaluated combination in
// grid order with the ROI and win rate rankings.
func (o *GeneticOptimizer) Run(ctx context.Context) (*backtest.OptimizationReport, error) {
	start := time.Now()

	if err := o.grid.Validate(); err != nil {
		return nil, err
	}
	if err := backtest.ValidateBars(o.bars); err != nil {
		return nil, err
	}

	o.series = make(map[seriesKey][]backtest.EnrichedBar)
	for _, period := range o.grid.RSIPeriods {
		for _, ema := range o.grid.RSIEMA {
			key := seriesKey{period: period, useEMA: ema}
			if _, ok := o.series[key]; !ok {
				o.series[key] = backtest.Enrich(o.bars, period, ema)
			}
		}
	}

	rng := rand.New(rand.NewSource(o.cfg.Seed))
	pop := randomPopulation(o.cfg.PopulationSize, o.sizes, rng)

	for gen := 0; gen < o.cfg.Generations; gen++ {
		if err := o.evaluate(ctx, pop); err != nil {
			return nil, err
		}
		pop.SortByFitness(o.sizes)

		if o.cfg.OnGeneration != nil {
			o.cfg.OnGeneration(gen+1, pop[0], pop.AverageFitness())
		}
		if gen < o.cfg.Generations-1 {
			pop = o.nextGeneration(pop, rng)
		}
	}

	results := o.results()
	return &backtest.OptimizationReport{
		Results:    results,
		TopROI:     backtest.Rank(results, backtest.TopN, backtest.ByROI),
		TopWinRate: backtest.Rank(results, backtest.TopN, backtest.ByWinRate),
		Duration:   time.Since(start),
	}, nil
}

// nextGeneration keeps the elite and fills the rest with mutated children
// of tournament winners. pop must be sorted best first.
func (o *GeneticOptimizer) nextGeneration(pop Population, rng *rand.Rand) Population {
	next := make(Population, len(pop))
	for i := 0; i < o.cfg.EliteSize; i++ {
		next[i] = pop[i].clone()
	}
	for i := o.cfg.EliteSize; i < len(pop); i++ {
		p1 := tournamentSelect(pop, o.cfg.TournamentSize, rng)
		p2 := tournamentSelect(pop, o.cfg.TournamentSize, rng)
		child := crossover(p1, p2, o.cfg.CrossoverRate, rng)
		mutate(child, o.cfg.MutationRate, o.sizes, rng)
		next[i] = child
	}
	return next
}

// evaluate simulates each distinct unevaluated genome of pop once, at most
// Workers at a time.
func (o *GeneticOptimizer) evaluate(ctx context.Context, pop Population) error {
	pending := make(map[Genome][]*Individual)
	var order []Genome
	for _, ind := range pop {
		if ind.Evaluated() {
			continue
		}
		if res, ok := o.cached(ind.Genes); ok {
			ind.setResult(res)
			continue
		}
		if _, ok := pending[ind.Genes]; !ok {
			order = append(order, ind.Genes)
		}
		pending[ind.Genes] = append(pending[ind.Genes], ind)
	}

	var wg sync.WaitGroup
	slots := make(chan struct{}, o.cfg.Workers)

	var errMu sync.Mutex
	var firstErr error

	for _, g := range order {
		wg.Add(1)
		go func(g Genome, inds []*Individual) {
			defer wg.Done()

			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-slots }()

			res, err := o.simulate(g)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				return
			}
			for _, ind := range inds {
				ind.setResult(res)
			}
		}(g, pending[g])
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (o *GeneticOptimizer) cached(g Genome) (backtest.OptimizationResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	res, ok := o.memo[g]
	return res, ok
}

func (o *GeneticOptimizer) simulate(g Genome) (backtest.OptimizationResult, error) {
	if res, ok := o.cached(g); ok {
		return res, nil
	}

	start := time.Now()
	cfg := g.Decode(o.grid, o.base)
	series := o.series[seriesKey{period: cfg.RSIPeriods, useEMA: cfg.RSIEMA}]

	run, err := backtest.NewBacktestEngine(o.initialBank, strategy.NewTieredRSIStrategy(cfg)).RunEnriched(series)
	if err != nil {
		return backtest.OptimizationResult{}, fmt.Errorf("combination %d: %w", g.Index(o.sizes), err)
	}

	res := backtest.OptimizationResult{
		Index:    g.Index(o.sizes),
		Config:   cfg,
		Summary:  run.Summary,
		Trades:   len(run.Trades),
		Duration: time.Since(start),
	}

	o.mu.Lock()
	o.memo[g] = res
	o.mu.Unlock()
	return res, nil
}

// results returns the memoized evaluations in grid order
func (o *GeneticOptimizer) results() []backtest.OptimizationResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]backtest.OptimizationResult, 0, len(o.memo))
	for _, res := range o.memo {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Evaluations is the number of distinct combinations simulated so far
func (o *GeneticOptimizer) Evaluations() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.memo)
}
