package models

type Partylist struct {
	ID      int    `json:"id"`
	EventID int    `db:"event_id" json:"event_id"`
	Name    string `json:"name"`
}
