package models

import "time"

type RefreshToken struct {
	IdentityID string
	Token      string
	Expires    time.Time
	CreatedAt  time.Time
}
