package interview

import "time"

// Project is one storybook in progress. OwnerID is the opaque subject of the
// auth session that created it; the backend never inspects it.
type Project struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId,omitempty"`
	PetName   string    `json:"petName"`
	PetType   string    `json:"petType"`
	CreatedAt time.Time `json:"createdAt"`
}
