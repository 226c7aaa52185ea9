package auction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPriceToMinorUnits(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "100", want: 10000},
		{in: "100.5", want: 10050},
		{in: "100.50", want: 10050},
		{in: "0.01", want: 1},
		{in: "0", want: 0},
		{in: "100.505", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, c := range cases {
		got, err := PriceToMinorUnits(c.in)
		if c.wantErr {
			require.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		require.Equal(t, c.want, got, c.in)
	}
}

func TestMinorUnitsToPrice(t *testing.T) {
	require.Equal(t, "100", MinorUnitsToPrice(10000))
	require.Equal(t, "100.5", MinorUnitsToPrice(10050))
	require.Equal(t, "0.01", MinorUnitsToPrice(1))
	require.Equal(t, "0", MinorUnitsToPrice(0))
}

func TestPriceRoundTrip(t *testing.T) {
	v, err := PriceToMinorUnits("150.25")
	require.NoError(t, err)
	require.Equal(t, "150.25", MinorUnitsToPrice(v))
}
