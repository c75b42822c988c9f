package domain

import "time"

type School struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	INEPCode  string    `json:"inepCode"`
	Region    string    `json:"region"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
