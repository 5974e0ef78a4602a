package models

// Voter belongs to exactly one event. Deactivation revokes voting ability
// without deleting the record or any vote already cast.
type Voter struct {
	ID        int    `json:"id"`
	EventID   int    `db:"event_id" json:"event_id"`
	Username  string `json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	YearLevel string `db:"year_level" json:"year_level"`
	Section   string `json:"section"`
	Active    bool   `json:"active"`
}
