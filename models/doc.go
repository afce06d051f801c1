// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types shared by the
server and the terminal clients.

# Request Types

Types for parsing incoming JSON:

  - SubmitRequest: songId, userName
  - CheckoutSessionRequest: songId, userName, amount (minor units)
  - VerifyRequest: password
  - SetCompletedRequest: docId
  - RefillRequest: amount
  - SetCreditsRequest: count

# Response Types

  - CheckoutSessionResponse: url
  - VerifyResponse: valid, kioskSecret
  - SubmitResponse: message, request
  - StatusResponse: status
  - CreditsResponse: count
  - ErrorResponse: error, message

# Domain Types

  - Song: catalog entry
  - Request: queue entry with completion flag and creation timestamp
  - PendingRequest: locally staged intent before a checkout redirect
  - Snapshot: realtime push payload for the queue and credits topics

# Constants

Request sources:

	SourceKiosk     = "kiosk"
	SourceStripe    = "stripe"
	SourceEmergency = "web-emergency"

Realtime topics:

	TopicQueue   = "queue"
	TopicCredits = "credits"
*/
package models
