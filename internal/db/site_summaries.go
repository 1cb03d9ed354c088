package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetSiteSummaryByURL retrieves a cached summary by URL
func (db *DB) GetSiteSummaryByURL(ctx context.Context, pageURL string) (*SiteSummary, error) {
	var s SiteSummary
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, title, description, content_hash, http_status, fetch_status, error_message,
		        is_permanent_failure, retry_count, retry_after, fetched_at, expires_at, created_at, updated_at
		 FROM site_summaries WHERE url = $1`,
		pageURL,
	).Scan(&s.ID, &s.URL, &s.Title, &s.Description, &s.ContentHash, &s.HTTPStatus, &s.FetchStatus, &s.ErrorMessage,
		&s.IsPermanentFailure, &s.RetryCount, &s.RetryAfter, &s.FetchedAt, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get site summary: %w", err)
	}
	return &s, nil
}

// GetFreshSiteSummary retrieves a summary only if it's not stale and was successful
func (db *DB) GetFreshSiteSummary(ctx context.Context, pageURL string, maxAge time.Duration) (*SiteSummary, error) {
	s, err := db.GetSiteSummaryByURL(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if s == nil || !s.IsFresh(maxAge) || s.FetchStatus != FetchStatusSuccess {
		return nil, nil
	}
	return s, nil
}

// ShouldSkipURL checks if a URL should be skipped due to previous failures
func (db *DB) ShouldSkipURL(ctx context.Context, pageURL string) (bool, string, error) {
	s, err := db.GetSiteSummaryByURL(ctx, pageURL)
	if err != nil {
		return false, "", err
	}
	if s == nil {
		return false, "", nil // Never tried, don't skip
	}

	// Skip permanently failed pages forever
	if s.IsPermanentFailure {
		reason := "permanent failure"
		if s.ErrorMessage != nil {
			reason = *s.ErrorMessage
		}
		return true, reason, nil
	}

	// Skip pages with retry_after in the future
	if s.RetryAfter != nil && time.Now().Before(*s.RetryAfter) {
		return true, "retry backoff", nil
	}

	return false, "", nil
}

// UpsertSiteSummary inserts or replaces a successful summary and clears failure state
func (db *DB) UpsertSiteSummary(ctx context.Context, s *SiteSummary, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSummaryCacheTTL
	}
	expiresAt := time.Now().Add(ttl)

	var contentHash *string
	if s.Title != nil || s.Description != nil {
		hash := HashContent(deref(s.Title) + "\n" + deref(s.Description))
		contentHash = &hash
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO site_summaries (url, title, description, content_hash, http_status, fetch_status,
		                             error_message, is_permanent_failure, retry_count, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NULL, FALSE, 0, NOW(), $7)
		 ON CONFLICT (url) DO UPDATE SET
		     title = $2,
		     description = $3,
		     content_hash = $4,
		     http_status = $5,
		     fetch_status = $6,
		     error_message = NULL,
		     is_permanent_failure = FALSE,
		     retry_count = 0,
		     retry_after = NULL,
		     fetched_at = NOW(),
		     expires_at = $7,
		     updated_at = NOW()
		 RETURNING id, fetched_at, expires_at, created_at, updated_at`,
		s.URL, s.Title, s.Description, contentHash, s.HTTPStatus, FetchStatusSuccess, expiresAt,
	).Scan(&s.ID, &s.FetchedAt, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert site summary: %w", err)
	}
	s.ContentHash = contentHash
	s.FetchStatus = FetchStatusSuccess
	s.ErrorMessage = nil
	s.IsPermanentFailure = false
	s.RetryCount = 0
	s.RetryAfter = nil
	return nil
}

// RecordFailedFetch records a failed fetch attempt with exponential backoff
func (db *DB) RecordFailedFetch(ctx context.Context, pageURL string, httpStatus int, errorMsg string) error {
	fetchStatus := FetchStatusFromHTTP(httpStatus)
	isPermanent := IsPermanentHTTPStatus(httpStatus)

	var status *int
	if httpStatus != 0 {
		status = &httpStatus
	}

	// Calculate retry backoff: 1 min * 5^retry_count, capped at 2 hours
	// For permanent failures, set retry_after to NULL (never retry)
	_, err := db.pool.Exec(ctx,
		`INSERT INTO site_summaries (url, http_status, fetch_status, error_message, is_permanent_failure, retry_count, retry_after, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, 1,
		         CASE WHEN $5 THEN NULL ELSE NOW() + INTERVAL '1 minute' END,
		         NOW())
		 ON CONFLICT (url) DO UPDATE SET
		     http_status = $2,
		     fetch_status = $3,
		     error_message = $4,
		     is_permanent_failure = $5 OR site_summaries.is_permanent_failure,
		     retry_count = site_summaries.retry_count + 1,
		     retry_after = CASE
		         WHEN $5 OR site_summaries.is_permanent_failure THEN NULL
		         ELSE NOW() + LEAST(
		             INTERVAL '1 minute' * POWER(5, LEAST(site_summaries.retry_count, 3)),
		             INTERVAL '2 hours'
		         )
		     END,
		     fetched_at = NOW(),
		     updated_at = NOW()`,
		pageURL, status, fetchStatus, errorMsg, isPermanent,
	)
	if err != nil {
		return fmt.Errorf("failed to record failed fetch: %w", err)
	}
	return nil
}

// DeleteSiteSummary removes a cached entry, forcing a re-fetch on next request.
func (db *DB) DeleteSiteSummary(ctx context.Context, pageURL string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM site_summaries WHERE url = $1`, pageURL)
	if err != nil {
		return fmt.Errorf("failed to delete site summary: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
