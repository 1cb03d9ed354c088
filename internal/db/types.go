package db

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// SiteSummary is a cached website title and description, or a record of a failed fetch.
type SiteSummary struct {
	ID                 uuid.UUID  `json:"id"`
	URL                string     `json:"url"`
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	ContentHash        *string    `json:"content_hash,omitempty"`
	HTTPStatus         *int       `json:"http_status,omitempty"`
	FetchStatus        string     `json:"fetch_status"` // 'success', 'error', 'not_found', 'timeout', 'blocked'
	ErrorMessage       *string    `json:"error_message,omitempty"`
	IsPermanentFailure bool       `json:"is_permanent_failure"`
	RetryCount         int        `json:"retry_count"`
	RetryAfter         *time.Time `json:"retry_after,omitempty"`
	// Timestamps
	FetchedAt time.Time  `json:"fetched_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FetchStatus constants for cached summaries
const (
	FetchStatusSuccess  = "success"   // Page fetched successfully
	FetchStatusError    = "error"     // Generic error (may retry)
	FetchStatusNotFound = "not_found" // 404/410 - permanent failure
	FetchStatusTimeout  = "timeout"   // Request timed out (may retry)
	FetchStatusBlocked  = "blocked"   // 403/429 - blocked by server
)

// DefaultSummaryCacheTTL is the default time-to-live for cached summaries (7 days)
const DefaultSummaryCacheTTL = 7 * 24 * time.Hour

// Retry backoff constants for transient failures
// Schedule: 1 min → 5 min → 25 min → 2 hours (capped)
const (
	RetryInitialBackoff = 1 * time.Minute
	RetryBackoffFactor  = 5
	RetryMaxBackoff     = 2 * time.Hour
)

// IsPermanentHTTPStatus returns true for status codes that indicate permanent failure
func IsPermanentHTTPStatus(status int) bool {
	switch status {
	case 404, 410, 451: // Not Found, Gone, Unavailable for Legal Reasons
		return true
	default:
		return false
	}
}

// FetchStatusFromHTTP determines fetch status from HTTP status code. Zero means the
// request never produced a response.
func FetchStatusFromHTTP(status int) string {
	switch {
	case status >= 200 && status < 300:
		return FetchStatusSuccess
	case status == 404 || status == 410:
		return FetchStatusNotFound
	case status == 403 || status == 429:
		return FetchStatusBlocked
	case status == 408 || status == 504:
		return FetchStatusTimeout
	default:
		return FetchStatusError
	}
}

// RetryBackoff returns the wait after the given number of consecutive failures,
// matching the schedule RecordFailedFetch writes.
func RetryBackoff(failures int) time.Duration {
	if failures <= 0 {
		return 0
	}
	backoff := RetryInitialBackoff
	for i := 1; i < failures; i++ {
		backoff *= RetryBackoffFactor
		if backoff >= RetryMaxBackoff {
			return RetryMaxBackoff
		}
	}
	return backoff
}

// HashContent returns the hex SHA-256 of content.
func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// IsExpired returns true if the cached summary has expired
func (s *SiteSummary) IsExpired() bool {
	if s.ExpiresAt == nil {
		return false // No expiry set, never expires
	}
	return time.Now().After(*s.ExpiresAt)
}

// IsFresh returns true if the summary was fetched within maxAge and has not expired
func (s *SiteSummary) IsFresh(maxAge time.Duration) bool {
	return time.Since(s.FetchedAt) < maxAge && !s.IsExpired()
}
