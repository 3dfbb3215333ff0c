package dto

import (
	"time"
)

type MeOutput struct {
	UserID string `json:"userId"`
	Login  string `json:"login"`
	Email  string `json:"email"`
}

type DeviceOutput struct {
	DeviceID       string    `json:"deviceId"`
	Title          string    `json:"title"`
	IP             string    `json:"ip"`
	LastActiveDate time.Time `json:"lastActiveDate"`
}
