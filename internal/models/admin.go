package models

import "time"

// AdminLoginRequest - запрос на вход в админку.
type AdminLoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AdminLoginResponse - ответ с токеном админской сессии.
type AdminLoginResponse struct {
	Token string `json:"token"`
}

// OrderStatusRequest - запрос смены статуса заказа в админке.
type OrderStatusRequest struct {
	Status string `json:"status"`
}

// ShipmentRequest - запрос отметки отправления заказа в админке.
type ShipmentRequest struct {
	TrackingNumber string     `json:"tracking_number"`
	TrackingURL    string     `json:"tracking_url,omitempty"`
	ShippedAt      *time.Time `json:"shipped_at,omitempty"`
	NotifyAt       *time.Time `json:"notify_at,omitempty"`
}
