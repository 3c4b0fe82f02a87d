package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lease-cli/internal/model"
)

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-06-01", "2024-06-01", true},
		{"6/1/2024", "2024-06-01", true},
		{"06/01/2024", "2024-06-01", true},
		{"June 1, 2024", "2024-06-01", true},
		{"Jun 1, 2024", "2024-06-01", true},
		{"June 1st, 2024", "2024-06-01", true},
		{"1 June 2024", "2024-06-01", true},
		{"2024/06/01", "2024-06-01", true},
		{"not a date", "", false},
		{"13/45/2024", "", false},
		{"2024-02-30", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := DateString(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_Idempotent(t *testing.T) {
	// Normalizing an already-ISO date yields the same value.
	first, ok := DateString("March 15, 2025")
	require.True(t, ok)
	second, ok := DateString(first)
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$2,500.00", 2500.0, true},
		{"2500", 2500.0, true},
		{"$1,234,567.89", 1234567.89, true},
		{"$500 USD", 500.0, true},
		{"1500 dollars", 1500.0, true},
		{"-100", 0, false},
		{"($250.00)", 0, false},
		{"twelve", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Money(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestRentUnit(t *testing.T) {
	t.Run("per sf per year", func(t *testing.T) {
		q, ok := RentUnit("$24.50 per square foot per year")
		require.True(t, ok)
		require.NotNil(t, q.AmountPerSF)
		assert.InDelta(t, 24.50, *q.AmountPerSF, 1e-9)
		assert.Equal(t, RentAnnual, q.Frequency)

		monthly, ok := q.MonthlyTotal(1200)
		require.True(t, ok)
		assert.InDelta(t, 24.50*1200/12, monthly, 1e-9)
	})

	t.Run("per sf monthly", func(t *testing.T) {
		q, ok := RentUnit("$2.10/sf/month")
		require.True(t, ok)
		require.NotNil(t, q.AmountPerSF)
		assert.Equal(t, RentMonthly, q.Frequency)

		monthly, ok := q.MonthlyTotal(1000)
		require.True(t, ok)
		assert.InDelta(t, 2100, monthly, 1e-9)
	})

	t.Run("flat monthly", func(t *testing.T) {
		q, ok := RentUnit("$2,500 per month")
		require.True(t, ok)
		require.NotNil(t, q.Amount)
		assert.Equal(t, RentMonthly, q.Frequency)

		monthly, ok := q.MonthlyTotal(0)
		require.True(t, ok)
		assert.InDelta(t, 2500, monthly, 1e-9)
	})

	t.Run("flat annual divides by 12", func(t *testing.T) {
		q, ok := RentUnit("$36,000 per annum")
		require.True(t, ok)
		monthly, ok := q.MonthlyTotal(0)
		require.True(t, ok)
		assert.InDelta(t, 3000, monthly, 1e-9)
	})

	t.Run("bare amount", func(t *testing.T) {
		q, ok := RentUnit("$1,800.00")
		require.True(t, ok)
		require.NotNil(t, q.Amount)
		assert.Equal(t, RentUnknown, q.Frequency)
	})

	t.Run("per sf without area fails", func(t *testing.T) {
		q, ok := RentUnit("$30 per square foot per year")
		require.True(t, ok)
		_, ok = q.MonthlyTotal(0)
		assert.False(t, ok)
	})

	t.Run("garbage", func(t *testing.T) {
		_, ok := RentUnit("to be negotiated")
		assert.False(t, ok)
	})
}

func TestEscalation(t *testing.T) {
	t.Run("percentage annual", func(t *testing.T) {
		c, ok := Escalation("3% annual increase")
		require.True(t, ok)
		assert.Equal(t, model.EscalationPercentage, c.Type)
		require.NotNil(t, c.Rate)
		assert.InDelta(t, 3.0, *c.Rate, 1e-9)
		assert.Equal(t, model.FrequencyAnnual, c.Frequency)
	})

	t.Run("spelled-out percentage", func(t *testing.T) {
		c, ok := Escalation("rent shall increase by three percent each year")
		require.True(t, ok)
		assert.Equal(t, model.EscalationPercentage, c.Type)
		require.NotNil(t, c.Rate)
		assert.InDelta(t, 3.0, *c.Rate, 1e-9)
	})

	t.Run("fixed dollar per sf per year", func(t *testing.T) {
		c, ok := Escalation("base rent shall increase by $0.50 per square foot per year")
		require.True(t, ok)
		assert.Equal(t, model.EscalationFixedDollar, c.Type)
		require.NotNil(t, c.Rate)
		assert.InDelta(t, 0.50, *c.Rate, 1e-9)
	})

	t.Run("cpi with cap and floor", func(t *testing.T) {
		c, ok := Escalation("annual adjustment per the Consumer Price Index, not to exceed 5% and not less than 2%")
		require.True(t, ok)
		assert.Equal(t, model.EscalationCPI, c.Type)
		require.NotNil(t, c.Cap)
		assert.InDelta(t, 5.0, *c.Cap, 1e-9)
		require.NotNil(t, c.Floor)
		assert.InDelta(t, 2.0, *c.Floor, 1e-9)
	})

	t.Run("cpi beats percentage", func(t *testing.T) {
		// A CPI clause with a cap percentage must not parse as a plain
		// percentage escalation.
		c, ok := Escalation("increases tied to CPI, capped at 4%")
		require.True(t, ok)
		assert.Equal(t, model.EscalationCPI, c.Type)
	})

	t.Run("monthly frequency", func(t *testing.T) {
		c, ok := Escalation("0.25% increase per month")
		require.True(t, ok)
		assert.Equal(t, model.FrequencyMonthly, c.Frequency)
	})

	t.Run("unrecognized", func(t *testing.T) {
		c, ok := Escalation("as mutually agreed by the parties")
		assert.False(t, ok)
		assert.Equal(t, model.EscalationNone, c.Type)
	})
}

func TestField(t *testing.T) {
	t.Run("base rent example", func(t *testing.T) {
		f := Field(model.ExtractedField{
			FieldName:  model.FieldBaseRent,
			ValueText:  "$2,500.00",
			Confidence: 85,
		})
		require.NotNil(t, f.Normalized)
		require.NotNil(t, f.Normalized.Numeric)
		assert.InDelta(t, 2500.0, *f.Normalized.Numeric, 1e-9)
	})

	t.Run("date field rewritten to ISO", func(t *testing.T) {
		f := Field(model.ExtractedField{
			FieldName: model.FieldLeaseStart,
			ValueText: "June 1, 2024",
		})
		require.NotNil(t, f.Normalized)
		require.NotNil(t, f.Normalized.Date)
		assert.Equal(t, "2024-06-01", f.ValueText)
	})

	t.Run("unparseable keeps raw text only", func(t *testing.T) {
		f := Field(model.ExtractedField{
			FieldName: model.FieldLeaseEnd,
			ValueText: "upon completion of the improvements",
		})
		assert.Nil(t, f.Normalized)
		assert.Equal(t, "upon completion of the improvements", f.ValueText)
	})

	t.Run("square footage integer", func(t *testing.T) {
		f := Field(model.ExtractedField{
			FieldName: model.FieldSquareFootage,
			ValueText: "4,500 square feet",
		})
		require.NotNil(t, f.Normalized)
		assert.InDelta(t, 4500, *f.Normalized.Numeric, 1e-9)
	})

	t.Run("escalation rate", func(t *testing.T) {
		f := Field(model.ExtractedField{
			FieldName: model.FieldEscalation,
			ValueText: "3% annual increases",
		})
		require.NotNil(t, f.Normalized)
		assert.InDelta(t, 3.0, *f.Normalized.Numeric, 1e-9)
	})
}
