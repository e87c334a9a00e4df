package random

import (
	"context"
	"fmt"
	"math/rand/v2"
)

const (
	prefix = "ATN-"

	minNumber = 100000
	maxNumber = 999999
)

// Generator issues booking ids of the form ATN-NNNNNN. Ids are not checked
// for uniqueness; nothing is persisted to check them against.
type Generator struct {
	intN func(n int) int
}

func New() *Generator {
	return &Generator{intN: rand.IntN}
}

func (g *Generator) GetID(_ context.Context) (string, error) {
	return fmt.Sprintf("%s%d", prefix, minNumber+g.intN(maxNumber-minNumber+1)), nil
}
