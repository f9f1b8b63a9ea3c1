package domain

// A single hop of a sequenced route.
type RouteLeg struct {
	FromID     string
	ToID       string
	DistanceKm float64
	Minutes    float64
}

// Route is the ordered visiting sequence produced for one request together
// with its aggregate metrics. The start location is not part of Stops.
// It is produced fresh per call and never mutated after return.
type Route struct {
	Start           Location
	Context         TimeContext
	Stops           []Destination
	Legs            []RouteLeg
	TotalDistanceKm float64
	TotalMinutes    float64

	// Totals of visiting the destinations in input order, used for reporting savings.
	NaiveDistanceKm float64
	NaiveMinutes    float64
}

// SavingsPercent compares the sequenced time against the input-order time.
// It is a reporting figure only and may be negative when the greedy order is worse.
func (r *Route) SavingsPercent() float64 {
	if r.NaiveMinutes <= 0 {
		return 0
	}
	return (r.NaiveMinutes - r.TotalMinutes) / r.NaiveMinutes * 100
}
