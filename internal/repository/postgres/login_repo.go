package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iamasit07/soundboard-dashboard/internal/domain"
)

type LoginRepo struct {
	DB *sql.DB
}

func NewLoginRepo(db *sql.DB) *LoginRepo {
	return &LoginRepo{DB: db}
}

// RecordLogin stores a new active login.
func (r *LoginRepo) RecordLogin(ctx context.Context, userID, sessionID, deviceInfo, ipAddress string) error {
	query := `
	INSERT INTO dashboard_logins (user_id, session_id, device_info, ip_address)
	VALUES ($1, $2, $3, $4);
	`
	if _, err := r.DB.ExecContext(ctx, query, userID, sessionID, deviceInfo, ipAddress); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// DeactivateLogin marks a login as ended.
func (r *LoginRepo) DeactivateLogin(ctx context.Context, sessionID string) error {
	query := `
	UPDATE dashboard_logins
	SET is_active = FALSE, last_activity = CURRENT_TIMESTAMP
	WHERE session_id = $1 AND is_active = TRUE;
	`
	if _, err := r.DB.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to deactivate login: %w", err)
	}
	return nil
}

// TouchActivity updates last_activity of an active login.
func (r *LoginRepo) TouchActivity(ctx context.Context, sessionID string) error {
	query := `
	UPDATE dashboard_logins
	SET last_activity = CURRENT_TIMESTAMP
	WHERE session_id = $1 AND is_active = TRUE;
	`
	if _, err := r.DB.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to update login activity: %w", err)
	}
	return nil
}

// History returns the most recent logins of a user, newest first.
func (r *LoginRepo) History(ctx context.Context, userID string, limit int) ([]domain.LoginRecord, error) {
	query := `
	SELECT id, user_id, session_id, device_info, ip_address, created_at, last_activity, is_active
	FROM dashboard_logins
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2;
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query login history: %w", err)
	}
	defer rows.Close()

	records := []domain.LoginRecord{}
	for rows.Next() {
		var l domain.LoginRecord
		if err := rows.Scan(
			&l.ID,
			&l.UserID,
			&l.SessionID,
			&l.DeviceInfo,
			&l.IPAddress,
			&l.CreatedAt,
			&l.LastActivity,
			&l.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan login row: %w", err)
		}
		records = append(records, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate login rows: %w", err)
	}
	return records, nil
}

// CleanupOld deletes inactive logins older than the given number of days.
func (r *LoginRepo) CleanupOld(ctx context.Context, olderThanDays int) (int64, error) {
	query := `
	DELETE FROM dashboard_logins
	WHERE is_active = FALSE
	AND created_at < NOW() - INTERVAL '1 day' * $1;
	`
	result, err := r.DB.ExecContext(ctx, query, olderThanDays)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old logins: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
