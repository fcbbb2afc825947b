package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// User mirrors the identity provider's principal plus the delivery endpoints
// this service needs: a billing email and registered device tokens.
type User struct {
	ID          string         `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	Email       string         `gorm:"column:email;type:varchar(256)" json:"email"`
	DisplayName string         `gorm:"column:display_name;type:varchar(128)" json:"display_name"`
	FCMTokens   datatypes.JSON `gorm:"column:fcm_tokens;type:jsonb;default:'[]'" json:"fcm_tokens"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (User) TableName() string { return "app_user" }

// DeviceTokens decodes the stored token list. Malformed or empty data yields
// an empty slice.
func (u *User) DeviceTokens() []string {
	if u == nil || len(u.FCMTokens) == 0 {
		return nil
	}
	var tokens []string
	if err := json.Unmarshal(u.FCMTokens, &tokens); err != nil {
		return nil
	}
	return tokens
}
