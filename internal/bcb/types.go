package bcb

import (
	"encoding/json"
	"time"
)

// DateLayout is the dd/MM/yyyy format used by the SGS API for both query
// parameters and response dates.
const DateLayout = "02/01/2006"

// Observation is one entry of an SGS series response.
// Valor is kept raw because the API sends it as a string ("0.055131") but some
// mirrors send a bare number.
type Observation struct {
	Data  string          `json:"data"`
	Valor json.RawMessage `json:"valor"`
}

// Quote is a daily Selic observation converted to decimal form.
type Quote struct {
	DailyRate float64 // decimal, 0.00055131 for 0.055131%
	Date      string  // dd/MM/yyyy as reported by the series
	Attempts  int     // days queried before data was found
	FetchedAt time.Time
}
