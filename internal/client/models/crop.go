package models

// SoilReading is the body of a crop prediction request.
type SoilReading struct {
	Nitrogen   float64 `json:"nitrogen"`
	Phosphorus float64 `json:"phosphorus"`
	Potassium  float64 `json:"potassium"`
	PH         float64 `json:"ph"`
	EC         float64 `json:"ec"`
	Moisture   float64 `json:"moisture"`
}

// SoilField is one named reading of a SoilReading.
type SoilField struct {
	Name  string
	Value float64
}

// Fields returns the readings in wire order, keyed by their JSON names.
func (s SoilReading) Fields() []SoilField {
	return []SoilField{
		{"nitrogen", s.Nitrogen},
		{"phosphorus", s.Phosphorus},
		{"potassium", s.Potassium},
		{"ph", s.PH},
		{"ec", s.EC},
		{"moisture", s.Moisture},
	}
}

type CropPredictionData struct {
	Predictions []CropPrediction `json:"predictions"`
}

type CropPrediction struct {
	CropName         string                 `json:"crop_name"`
	ScientificName   *string                `json:"scientific_name,omitempty"`
	SuitabilityScore int                    `json:"suitability_score"`
	CropCategory     *string                `json:"crop_category,omitempty"`
	MatchDetails     map[string]MatchDetail `json:"match_details"`
}

// MatchDetail scores one reading; Status is "perfect", "partial" or "poor".
type MatchDetail struct {
	Status string  `json:"status"`
	Score  float64 `json:"score"`
}
