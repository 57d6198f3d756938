package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      Params
		want    Params
		wantErr error
	}{
		{"zero values take defaults", Params{}, Params{Page: 1, PageSize: 25}, nil},
		{"explicit values kept", Params{Page: 3, PageSize: 10}, Params{Page: 3, PageSize: 10}, nil},
		{"page size capped", Params{Page: 1, PageSize: 500}, Params{Page: 1, PageSize: 100}, nil},
		{"negative page", Params{Page: -1}, Params{}, ErrInvalidPage},
		{"negative page size", Params{PageSize: -1}, Params{}, ErrInvalidPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize(DefaultPageSize, MaxPageSize)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 25))
	assert.Equal(t, 0, TotalPages(10, 0))
	assert.Equal(t, 1, TotalPages(1, 25))
	assert.Equal(t, 1, TotalPages(25, 25))
	assert.Equal(t, 2, TotalPages(26, 25))
	assert.Equal(t, 28, TotalPages(700, 25))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 10))
	assert.Equal(t, 1, Clamp(-4, 10))
	assert.Equal(t, 5, Clamp(5, 10))
	assert.Equal(t, 10, Clamp(11, 10))
	assert.Equal(t, 1, Clamp(3, 0))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 25))
	assert.Equal(t, 0, Offset(0, 25))
	assert.Equal(t, 50, Offset(3, 25))
	assert.Equal(t, 0, Offset(3, 0))
}
