package store

// Farm is a managed farm profile. Nutrient levels are in kg/ha.
type Farm struct {
	ID         int32
	Name       string
	Location   string
	SoilType   string
	PH         float64
	Moisture   float64 // percent
	Nitrogen   float64
	Phosphorus float64
	Potassium  float64
	CreatedTs  int64
	UpdatedTs  int64
}

type FindFarm struct {
	ID *int32
}

type UpdateFarm struct {
	Name       *string
	Location   *string
	SoilType   *string
	PH         *float64
	Moisture   *float64
	Nitrogen   *float64
	Phosphorus *float64
	Potassium  *float64
	UpdatedTs  *int64
	ID         int32
}

type DeleteFarm struct {
	ID int32
}
