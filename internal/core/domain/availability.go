package domain

// CarAvailability is a point-in-time read of one car. Free is clamped at zero
// for display; Committed+Held may exceed Capacity while a conflict is pending.
type CarAvailability struct {
	Car       int `json:"car"`
	Capacity  int `json:"capacity"`
	Committed int `json:"committed"`
	Held      int `json:"held"`
	Free      int `json:"free"`
}

// Overbooked reports a transient violation awaiting conflict resolution.
func (c CarAvailability) Overbooked() bool {
	return c.Committed+c.Held > c.Capacity
}

// TripAvailability aggregates per-car reads for one trip.
type TripAvailability struct {
	TrainID   int               `json:"train_id"`
	Departure string            `json:"departure"`
	Cars      []CarAvailability `json:"cars"`
	Free      int               `json:"free"`
}
