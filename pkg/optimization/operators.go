package optimization

import "math/rand"

// tournamentSelect picks the fittest of size random draws
func tournamentSelect(pop Population, size int, rng *rand.Rand) *Individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < size; i++ {
		candidate := pop[rng.Intn(len(pop))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best
}

// crossover takes each gene from either parent with equal odds. Without
// crossover the child is a copy of p1.
func crossover(p1, p2 *Individual, rate float64, rng *rand.Rand) *Individual {
	genes := p1.Genes
	if rng.Float64() < rate {
		for i := range genes {
			if rng.Intn(2) == 1 {
				genes[i] = p2.Genes[i]
			}
		}
	}
	return newIndividual(genes)
}

// mutate redraws each gene with probability rate
func mutate(ind *Individual, rate float64, sizes Genome, rng *rand.Rand) {
	for i := range ind.Genes {
		if sizes[i] > 1 && rng.Float64() < rate {
			ind.Genes[i] = rng.Intn(sizes[i])
		}
	}
}
