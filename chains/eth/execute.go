package eth

import (
	"math/rand"
)

// shuffle returns a random permutation of a copy of items.
func shuffle[C any](items []C) []C {
	ret := make([]C, len(items))
	copy(ret, items)

	rand.Shuffle(len(ret), func(i, j int) {
		ret[i], ret[j] = ret[j], ret[i]
	})

	return ret
}

// executeWithClients runs f against the clients in a random order until one of them succeeds or f
// asks to stop (e.g. the error is an answer from the node and not a transport failure).
func executeWithClients[C any, T any](originalClients []C, f func(client C) (T, bool, error)) (T, error) {
	var result T
	var err error
	var stop bool

	for _, client := range shuffle(originalClients) {
		if result, stop, err = f(client); err == nil || stop {
			return result, err
		}
	}

	return result, err
}
