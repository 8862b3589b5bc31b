package attom

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/yourorg/neighborhoods-api/internal/neighborhood"
)

// stringNumber accepts string or number JSON and stores a float. Empty
// strings and null decode as zero.
type stringNumber float64

func (s *stringNumber) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(strings.ReplaceAll(str, ",", ""))
		if str == "" {
			*s = 0
			return nil
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*s = stringNumber(f)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	f, err := num.Float64()
	if err != nil {
		return err
	}
	*s = stringNumber(f)
	return nil
}

type avmResponse struct {
	Property []struct {
		AVM struct {
			Amount struct {
				Value stringNumber `json:"value"`
			} `json:"amount"`
		} `json:"avm"`
		RentalAVM struct {
			EstimatedRentalValue stringNumber `json:"estimatedRentalValue"`
		} `json:"rentalAvm"`
	} `json:"property"`
}

func (r avmResponse) values(rental bool) []float64 {
	out := make([]float64, 0, len(r.Property))
	for _, p := range r.Property {
		v := float64(p.AVM.Amount.Value)
		if rental {
			v = float64(p.RentalAVM.EstimatedRentalValue)
		}
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}

func median(values []float64) float64 {
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

type communityItem struct {
	Population        stringNumber `json:"population"`
	PopulationDensity stringNumber `json:"population_density_sq_mi"`
	MedianAge         stringNumber `json:"median_age"`
	MedianIncome      stringNumber `json:"median_household_income"`
	AvgHouseholdSize  stringNumber `json:"avg_household_size"`
	OwnerOccupiedPct  stringNumber `json:"housing_owner_occupied_pct"`
	RenterOccupiedPct stringNumber `json:"housing_renter_occupied_pct"`
	CrimeIndex        stringNumber `json:"crime_index"`
}

type communityResponse struct {
	Response struct {
		Result struct {
			Package struct {
				Item []communityItem `json:"item"`
			} `json:"package"`
		} `json:"result"`
	} `json:"response"`
}

func (it communityItem) toDemographics(zip string) *neighborhood.Demographics {
	return &neighborhood.Demographics{
		Zip:                   zip,
		Population:            int(it.Population),
		PopulationDensity:     float64(it.PopulationDensity),
		MedianAge:             float64(it.MedianAge),
		MedianHouseholdIncome: int(it.MedianIncome),
		AvgHouseholdSize:      float64(it.AvgHouseholdSize),
		OwnerOccupiedPct:      float64(it.OwnerOccupiedPct),
		RenterOccupiedPct:     float64(it.RenterOccupiedPct),
		CrimeIndex:            int(it.CrimeIndex),
	}
}
