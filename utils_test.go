package wyvernsdk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	units, err := ToBaseUnits(decimal.RequireFromString("1.5"), 18)
	require.NoError(t, err)
	require.Equal(t, "1500000000000000000", units.String())

	units, err = ToBaseUnits(decimal.RequireFromString("0.000001"), 6)
	require.NoError(t, err)
	require.Equal(t, "1", units.String())

	units, err = ToBaseUnits(decimal.Zero, 18)
	require.NoError(t, err)
	require.Equal(t, "0", units.String())
}

func TestToBaseUnitsRejectsExcessPrecision(t *testing.T) {
	_, err := ToBaseUnits(decimal.RequireFromString("0.0000001"), 6)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestToBaseUnitsRejectsNegative(t *testing.T) {
	_, err := ToBaseUnits(decimal.RequireFromString("-1"), 18)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestFromBaseUnits(t *testing.T) {
	units, err := ToBaseUnits(decimal.RequireFromString("2.75"), 18)
	require.NoError(t, err)
	require.True(t, FromBaseUnits(units, 18).Equal(decimal.RequireFromString("2.75")))

	require.True(t, FromBaseUnits(nil, 18).IsZero())
}

func TestGenerateSalt(t *testing.T) {
	a, b := GenerateSalt(), GenerateSalt()
	require.NotEqual(t, a.String(), b.String())
	require.LessOrEqual(t, a.BitLen(), 256)
	require.True(t, a.Sign() >= 0)
}
