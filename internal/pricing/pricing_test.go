package pricing

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_AllTiersAndTravelers(t *testing.T) {
	flat := map[Tier]int{Standard: 1200, Premium: 2200}

	for _, tier := range []Tier{Standard, Premium} {
		for n := MinTravelers; n <= MaxTravelers; n++ {
			t.Run(fmt.Sprintf("%s/%d", tier, n), func(t *testing.T) {
				b := Calculate(tier, n)

				assert.Equal(t, 450*n, b.TicketCost)
				assert.Equal(t, flat[tier], b.PackageCost)
				assert.Equal(t, b.PackageCost+b.TicketCost, b.Total)
			})
		}
	}
}

// Accommodation is shown to the customer but never charged.
func TestCalculate_AccommodationExcludedFromTotal(t *testing.T) {
	standard := Calculate(Standard, 2)
	assert.Equal(t, Breakdown{PackageCost: 1200, TicketCost: 900, AccommodationCost: 600, Total: 2100}, standard)
	assert.NotEqual(t, standard.PackageCost+standard.TicketCost+standard.AccommodationCost, standard.Total)

	premium := Calculate(Premium, 1)
	assert.Equal(t, Breakdown{PackageCost: 2200, TicketCost: 450, AccommodationCost: 1200, Total: 2650}, premium)
}

func TestValidateTravelers(t *testing.T) {
	for _, n := range []int{1, 5, 10} {
		require.NoError(t, ValidateTravelers(n))
	}

	for _, n := range []int{-1, 0, 11} {
		require.ErrorIs(t, ValidateTravelers(n), ErrTravelersOutOfRange)
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{in: "diamond", want: Standard},
		{in: "Standard", want: Standard},
		{in: " PLATINUM ", want: Premium},
		{in: "premium", want: Premium},
		{in: "gold", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTier(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownTier)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTier_JSON(t *testing.T) {
	var body struct {
		Package Tier `json:"package"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"package":"platinum"}`), &body))
	assert.Equal(t, Premium, body.Package)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"package":"platinum"}`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"package":"gold"}`), &body))
}

func TestPackages(t *testing.T) {
	ps := Packages()
	require.Len(t, ps, 2)

	assert.Equal(t, "Diamond Package", ps[0].Name)
	assert.Equal(t, "5 days", ps[0].Duration)
	assert.Equal(t, "Platinum Package", ps[1].Name)
	assert.Equal(t, "7 days", ps[1].Duration)

	ps[0].Features[0] = "changed"
	p, err := PackageFor(Standard)
	require.NoError(t, err)
	assert.Equal(t, "5-day guided tour", p.Features[0])

	_, err = PackageFor(Tier(9))
	require.ErrorIs(t, err, ErrUnknownTier)
}
