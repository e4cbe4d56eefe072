package model

import "time"

type User struct {
	ID              string    `json:"id"`
	CognitoSub      string    `json:"cognito_sub"`
	Email           string    `json:"email"`
	Nickname        string    `json:"nickname"`
	ProfileImageURL string    `json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProfilePatch is a partial update of the user-editable profile fields.
type ProfilePatch struct {
	Nickname        Optional[string] `json:"nickname"`
	ProfileImageURL Optional[string] `json:"profile_image_url"`
}

func (p ProfilePatch) Apply(u User) User {
	if p.Nickname.Set {
		u.Nickname = p.Nickname.Value
	}
	if p.ProfileImageURL.Set {
		u.ProfileImageURL = p.ProfileImageURL.Value
	}
	return u
}
