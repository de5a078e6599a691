package param

import (
	"context"
	"errors"
	"slices"
	"testing"
)

type mapFetcher struct {
	values map[string][]string
	calls  int
}

func (f *mapFetcher) Fetch(_ context.Context, path string) (string, error) {
	f.calls++
	vs, ok := f.values[path]
	if !ok {
		return "", errors.New("parameter not found")
	}
	return vs[0], nil
}

func (f *mapFetcher) FetchAll(_ context.Context, path string) ([]string, error) {
	f.calls++
	vs, ok := f.values[path]
	if !ok {
		return nil, errors.New("parameter not found")
	}
	return vs, nil
}

func TestValue(t *testing.T) {
	f := &mapFetcher{values: map[string][]string{"/promptshot/key": {"from-ssm"}}}
	ctx := context.Background()

	tests := []struct {
		name, value, path, want string
		wantErr                 bool
	}{
		{name: "ValueWins", value: "from-env", path: "/promptshot/key", want: "from-env"},
		{name: "FromPath", path: "/promptshot/key", want: "from-ssm"},
		{name: "Neither"},
		{name: "MissingParameter", path: "/nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Value(ctx, f, tt.value, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Value = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValues(t *testing.T) {
	f := &mapFetcher{values: map[string][]string{"/promptshot/prompts": {"a cat", "a dog"}}}
	ctx := context.Background()

	got, err := Values(ctx, f, []string{"a fox"}, "/promptshot/prompts")
	if err != nil || !slices.Equal(got, []string{"a fox"}) || f.calls != 0 {
		t.Errorf("Values = %v, %v (calls %d)", got, err, f.calls)
	}

	got, err = Values(ctx, f, nil, "/promptshot/prompts")
	if err != nil || !slices.Equal(got, []string{"a cat", "a dog"}) {
		t.Errorf("Values = %v, %v", got, err)
	}
}
