package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Vadied/party-manager/internal/models"
)

// RecordSentEmails stores a batch of delivered messages. The batch is written
// in one transaction, so either every message is recorded or none is.
func RecordSentEmails(ctx context.Context, db *sql.DB, emails []models.SentEmail) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO sent_emails(team_id, recipient, subject, body, created_at) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range emails {
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, e.TeamID, e.Recipient, e.Subject, e.Body, formatTime(createdAt)); err != nil {
			return fmt.Errorf("record email to %s: %w", e.Recipient, err)
		}
	}
	return tx.Commit()
}

// GetSentEmailsForTeam returns the outbox for one team, oldest first.
func GetSentEmailsForTeam(ctx context.Context, db *sql.DB, teamID string) ([]*models.SentEmail, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, team_id, recipient, subject, body, created_at
		FROM sent_emails
		WHERE team_id = ?
		ORDER BY id ASC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []*models.SentEmail
	for rows.Next() {
		e := &models.SentEmail{}
		var createdAt string
		if err := rows.Scan(&e.ID, &e.TeamID, &e.Recipient, &e.Subject, &e.Body, &createdAt); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return emails, nil
}
