package optimization

import (
	"math/rand"
	"sort"
)

// Population is a generation of candidates
type Population []*Individual

// randomPopulation draws size genomes uniformly from the grid
func randomPopulation(size int, sizes Genome, rng *rand.Rand) Population {
	pop := make(Population, size)
	for i := range pop {
		var g Genome
		for j := range g {
			g[j] = rng.Intn(sizes[j])
		}
		pop[i] = newIndividual(g)
	}
	return pop
}

// SortByFitness orders the population best first. Ties keep grid order.
func (p Population) SortByFitness(sizes Genome) {
	sort.SliceStable(p, func(i, j int) bool {
		if p[i].Fitness != p[j].Fitness {
			return p[i].Fitness > p[j].Fitness
		}
		return p[i].Genes.Index(sizes) < p[j].Genes.Index(sizes)
	})
}

// Best returns the fittest individual
func (p Population) Best() *Individual {
	if len(p) == 0 {
		return nil
	}
	best := p[0]
	for _, ind := range p[1:] {
		if ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}

// AverageFitness returns the mean fitness of the population
func (p Population) AverageFitness() float64 {
	if len(p) == 0 {
		return 0
	}
	sum := 0.0
	for _, ind := range p {
		sum += ind.Fitness
	}
	return sum / float64(len(p))
}
