// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Responder produces the assistant's answer to a prompt.
type Responder interface {
	Reply(ctx context.Context, prompt string) (string, error)
}

// Policy selects how a SimulatedResponder picks among its replies.
type Policy string

const (
	// PolicyRoundRobin cycles through the replies in order.
	PolicyRoundRobin Policy = "round_robin"
	// PolicyRandom picks a reply uniformly at random.
	PolicyRandom Policy = "random"
)

// ParsePolicy converts a config value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyRoundRobin:
		return PolicyRoundRobin, nil
	case PolicyRandom:
		return PolicyRandom, nil
	default:
		return "", fmt.Errorf("unknown reply policy %q", s)
	}
}

// SimulatedResponder answers every prompt with one of a fixed set of
// replies. The prompt text is ignored.
type SimulatedResponder struct {
	mu      sync.Mutex
	replies []string
	policy  Policy
	next    int
	rng     *rand.Rand
}

// NewSimulatedResponder creates a responder over replies. An empty set
// falls back to the standard canned replies.
func NewSimulatedResponder(policy Policy, replies ...string) *SimulatedResponder {
	if len(replies) == 0 {
		replies = Replies
	}
	return &SimulatedResponder{
		replies: append([]string(nil), replies...),
		policy:  policy,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// WithSeed makes the random policy reproducible.
func (r *SimulatedResponder) WithSeed(seed uint64) *SimulatedResponder {
	r.mu.Lock()
	r.rng = rand.New(rand.NewPCG(seed, seed))
	r.mu.Unlock()
	return r
}

// Reply returns the next canned reply.
func (r *SimulatedResponder) Reply(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.policy == PolicyRandom {
		return r.replies[r.rng.IntN(len(r.replies))], nil
	}
	reply := r.replies[r.next]
	r.next = (r.next + 1) % len(r.replies)
	return reply, nil
}

// IsCanned reports whether text is one of the standard canned replies.
func IsCanned(text string) bool {
	for _, r := range Replies {
		if r == text {
			return true
		}
	}
	return false
}
