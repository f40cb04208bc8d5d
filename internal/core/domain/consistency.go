package domain

import (
	"context"
	"fmt"
	"strings"
)

// Consistency is the replica acknowledgment level requested for one store
// call. Stronger levels narrow the staleness window but never close the gap
// between an admission read and the write that follows it.
type Consistency int

const (
	ConsistencyDefault Consistency = iota
	ConsistencyOne
	ConsistencyQuorum
	ConsistencyAll
)

func (c Consistency) String() string {
	switch c {
	case ConsistencyOne:
		return "ONE"
	case ConsistencyQuorum:
		return "QUORUM"
	case ConsistencyAll:
		return "ALL"
	default:
		return "DEFAULT"
	}
}

// Required returns how many of n replicas must take part in a call.
func (c Consistency) Required(n int) int {
	if n <= 0 {
		return 0
	}
	switch c {
	case ConsistencyOne:
		return 1
	case ConsistencyAll:
		return n
	default:
		return n/2 + 1
	}
}

func ParseConsistency(s string) (Consistency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "DEFAULT":
		return ConsistencyDefault, nil
	case "ONE", "LOCAL_ONE":
		return ConsistencyOne, nil
	case "QUORUM", "LOCAL_QUORUM":
		return ConsistencyQuorum, nil
	case "ALL":
		return ConsistencyAll, nil
	}
	return ConsistencyDefault, fmt.Errorf("unknown consistency level %q", s)
}

type consistencyKey struct{}

// WithConsistency returns a context whose store calls run at level c.
func WithConsistency(ctx context.Context, c Consistency) context.Context {
	return context.WithValue(ctx, consistencyKey{}, c)
}

// ConsistencyFrom returns the level carried by ctx, or ConsistencyDefault.
func ConsistencyFrom(ctx context.Context) Consistency {
	c, _ := ctx.Value(consistencyKey{}).(Consistency)
	return c
}
