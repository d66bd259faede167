package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Amount
	}{
		{"0", 0},
		{"150", 15000},
		{"99.9", 9990},
		{"99.99", 9999},
		{".5", 50},
		{"-12.50", -1250},
		{" 7.05 ", 705},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "1.", "-", "1,5", "1e3"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "0.00", Amount(0).String())
	assert.Equal(t, "150.00", Amount(15000).String())
	assert.Equal(t, "0.05", Amount(5).String())
	assert.Equal(t, "-12.50", Amount(-1250).String())
}

func TestParse_OutOfRange(t *testing.T) {
	// Would wrap to 0.84 if the cents were computed unchecked.
	_, err := Parse("184467440737095517")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Parse("-184467440737095517")
	assert.ErrorIs(t, err, ErrOverflow)

	got, err := Parse("92233720368547757.99")
	require.NoError(t, err)
	assert.Equal(t, Amount(9223372036854775799), got)

	_, err = Parse("92233720368547758")
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestTimes(t *testing.T) {
	got, err := MustParse("50").Times(3)
	require.NoError(t, err)
	assert.Equal(t, MustParse("150"), got)

	got, err = MustParse("99.99").Times(3)
	require.NoError(t, err)
	assert.Equal(t, MustParse("299.97"), got)

	got, err = MustParse("12").Times(0)
	require.NoError(t, err)
	assert.Equal(t, Amount(0), got)
}

func TestTimes_Overflow(t *testing.T) {
	_, err := MustParse("90000000000000000").Times(2)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Amount(math.MaxInt64).Times(2)
	assert.ErrorIs(t, err, ErrOverflow)

	got, err := Amount(math.MaxInt64).Times(1)
	require.NoError(t, err)
	assert.Equal(t, Amount(math.MaxInt64), got)

	_, err = Amount(1).Times(-1)
	assert.Error(t, err)
}

func TestJSON(t *testing.T) {
	var v struct {
		Price Amount `json:"price"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"price": 120.5}`), &v))
	assert.Equal(t, Amount(12050), v.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"price": "80"}`), &v))
	assert.Equal(t, Amount(8000), v.Price)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price": 80.00}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"price": 1.234}`), &v))
}
