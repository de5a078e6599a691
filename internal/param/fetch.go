package param

import (
	"context"
	"fmt"
)

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
	FetchAll(context.Context, string) ([]string, error)
}

// Value returns value when it is set and otherwise the parameter at path.
// Both empty yields an empty string and no error.
func Value(ctx context.Context, f Fetcher, value, path string) (string, error) {
	if value != "" || path == "" {
		return value, nil
	}
	v, err := f.Fetch(ctx, path)
	if err != nil {
		return "", fmt.Errorf("fetching parameter %s: %w", path, err)
	}
	return v, nil
}

// Values is Value for lists, reading every parameter under path.
func Values(ctx context.Context, f Fetcher, values []string, path string) ([]string, error) {
	if len(values) > 0 || path == "" {
		return values, nil
	}
	vs, err := f.FetchAll(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching parameters under %s: %w", path, err)
	}
	return vs, nil
}
