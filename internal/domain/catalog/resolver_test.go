package catalog

import (
	"context"
	"errors"
	"testing"
)

func fixedLookup(known ...int64) Lookup {
	set := map[int64]bool{}
	for _, id := range known {
		set[id] = true
	}
	return LookupFunc(func(_ context.Context, id int64) (bool, error) {
		return set[id], nil
	})
}

func TestResolveOrDefault(t *testing.T) {
	ctx := context.Background()
	lk := fixedLookup(1, 2, BreedOtherID)

	cases := []struct {
		name string
		id   int64
		want int64
	}{
		{"known id passes through", 2, 2},
		{"unknown id falls back", 999, BreedOtherID},
		{"zero falls back without lookup", 0, BreedOtherID},
		{"sentinel resolves to itself", BreedOtherID, BreedOtherID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveOrDefault(ctx, lk, tc.id, BreedOtherID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestResolveOrDefault_PropagatesLookupError(t *testing.T) {
	boom := errors.New("db down")
	lk := LookupFunc(func(context.Context, int64) (bool, error) {
		return false, boom
	})

	_, err := ResolveOrDefault(context.Background(), lk, 5, BreedOtherID)
	if !errors.Is(err, boom) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}
