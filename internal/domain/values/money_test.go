package values

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		wantErr  bool
	}{
		{name: "valid", amount: "50.05", currency: "USD"},
		{name: "negative amounts are representable", amount: "-1.00", currency: "USD"},
		{name: "empty currency", amount: "1.00", currency: "", wantErr: true},
		{name: "short currency code", amount: "1.00", currency: "US", wantErr: true},
		{name: "unparseable amount", amount: "fifty", currency: "USD", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.amount, tt.currency)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestMoney_Comparisons(t *testing.T) {
	a := MustMoney("50.05", USD)
	b := MustMoney("50.10", USD)

	assert.True(t, a.LessThan(b))
	assert.False(t, b.LessThan(a))
	assert.True(t, b.GreaterThanOrEqual(a))
	assert.True(t, a.GreaterThanOrEqual(a))
	assert.True(t, b.Max(a).Equal(b))
	assert.True(t, a.Max(b).Equal(b))

	// 50.05 and 50.050 are the same amount
	assert.True(t, a.Equal(MustMoney("50.050", USD)))

	assert.Panics(t, func() {
		a.Compare(MustMoney("50.05", "EUR"))
	})
}

func TestMoney_Add(t *testing.T) {
	floor := MustMoney("50.00", USD)
	increment := MustMoney("0.05", USD)

	sum, err := floor.Add(increment)
	require.NoError(t, err)
	assert.True(t, sum.Equal(MustMoney("50.05", USD)))

	// repeated cent increments stay exact
	for i := 0; i < 99; i++ {
		sum, err = sum.Add(increment)
		require.NoError(t, err)
	}
	assert.True(t, sum.Equal(MustMoney("55.00", USD)))

	_, err = floor.Add(MustMoney("1.00", "EUR"))
	require.Error(t, err)
}

func TestMoney_MulRatio(t *testing.T) {
	list := MustMoney("100.00", USD)

	half := list.MulRatio(decimal.RequireFromString("0.50"))
	assert.True(t, half.Equal(MustMoney("50.00", USD)))

	threeQuarters := list.MulRatio(decimal.RequireFromString("0.75"))
	assert.True(t, threeQuarters.Equal(MustMoney("75.00", USD)))

	// rounds to the nearest cent
	odd := MustMoney("33.33", USD).MulRatio(decimal.RequireFromString("0.75"))
	assert.True(t, odd.Equal(MustMoney("25.00", USD)))
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := MustMoney("50.05", USD)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"50.05","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equal(decoded))
}

func TestMoney_SQL(t *testing.T) {
	m := MustMoney("72.50", USD)

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "72.50", v)

	var scanned Money
	require.NoError(t, scanned.Scan("72.50"))
	assert.True(t, m.Equal(scanned))

	require.NoError(t, scanned.Scan([]byte("1.05")))
	assert.True(t, scanned.Equal(MustMoney("1.05", USD)))

	require.Error(t, scanned.Scan(42))
}
