// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Request source tags
const (
	SourceKiosk     = "kiosk"
	SourceStripe    = "stripe"
	SourceEmergency = "web-emergency"
)

// Realtime topics
const (
	TopicQueue   = "queue"
	TopicCredits = "credits"
)

// Payment return outcomes carried in the "payment" query parameter
const (
	PaymentSuccess   = "success"
	PaymentCancelled = "cancelled"
)

// Request types

// SubmitRequest asks for a song to be queued.
type SubmitRequest struct {
	SongID   string `json:"songId"`
	UserName string `json:"userName"`

	// PaymentRef is the checkout session id, set only on post-payment
	// submissions.
	PaymentRef string `json:"paymentRef,omitempty"`
}

type CheckoutSessionRequest struct {
	SongID   string `json:"songId"`
	UserName string `json:"userName"`
	Amount   int64  `json:"amount"` // minor currency units (cents)
}

type VerifyRequest struct {
	Password string `json:"password"`
}

type SetCompletedRequest struct {
	DocID string `json:"docId"`
}

type RefillRequest struct {
	Amount int64 `json:"amount"`
}

type SetCreditsRequest struct {
	Count int64 `json:"count"`
}

// Response types

type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

type VerifyResponse struct {
	Valid       bool   `json:"valid"`
	KioskSecret string `json:"kioskSecret,omitempty"`
}

type SubmitResponse struct {
	Message string  `json:"message"`
	Request Request `json:"request"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type CreditsResponse struct {
	Count int64 `json:"count"`
}

// Domain types

type Song struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Category    string `json:"category"`
	AlbumArtURL string `json:"albumArtUrl"`
}

// Request is one entry in the live queue. Title, artist and artwork are
// copied from the song at submission time.
type Request struct {
	ID          string     `json:"id"`
	SongID      string     `json:"songId"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist"`
	AlbumArtURL string     `json:"albumArtUrl"`
	RequestedBy string     `json:"requestedBy"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
	Source      string     `json:"source"`
}

// PendingRequest is staged locally before a checkout redirect.
type PendingRequest struct {
	SongID   string    `json:"songId"`
	UserName string    `json:"userName"`
	StagedAt time.Time `json:"stagedAt"`
}

// Snapshot is the payload pushed to realtime subscribers. Exactly one of
// Requests or Credits is meaningful, selected by Topic.
type Snapshot struct {
	Topic    string    `json:"topic"`
	Requests []Request `json:"requests,omitempty"`
	Credits  int64     `json:"credits"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
