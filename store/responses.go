package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/formlet/formlet/model"
)

// InsertResponse appends a response to a published form. The publish
// check runs inside the insert transaction, so a submission racing a
// late unpublish cannot land on a draft. When the form disallows
// multiple submissions, a repeat by the same user id (or the same
// remote IP, for anonymous submitters) is rejected with ErrDuplicate.
//
// Responses are append-only: there is no update or delete path short
// of deleting the form itself.
func (s *Store) InsertResponse(ctx context.Context, resp model.Response, ip string) (model.Response, error) {
	resp.ID = uuid.Must(uuid.NewV4()).String()
	resp.SubmittedAt = time.Now().UTC()

	answersJson, err := json.Marshal(resp.Answers)
	if err != nil {
		return model.Response{}, errors.Wrap(err, "marshal answers")
	}
	metadataJson, err := json.Marshal(resp.Metadata)
	if err != nil {
		return model.Response{}, errors.Wrap(err, "marshal metadata")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Response{}, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	var settingsJson string
	err = tx.QueryRowContext(ctx, `
		SELECT settings FROM forms
		WHERE id = ? AND is_published = 1`,
		resp.FormID,
	).Scan(&settingsJson)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Response{}, ErrNotFound
	}
	if err != nil {
		return model.Response{}, errors.Wrap(err, "select form settings")
	}

	var settings model.Settings
	if err := json.Unmarshal([]byte(settingsJson), &settings); err != nil {
		return model.Response{}, errors.Wrap(err, "parse settings")
	}

	if !settings.AllowMultipleSubmissions {
		var exists bool
		if resp.UserID != nil {
			err = tx.QueryRowContext(ctx, `
				SELECT 1 FROM form_responses
				WHERE form_id = ? AND user_id = ?`,
				resp.FormID, *resp.UserID,
			).Scan(&exists)
		} else {
			err = tx.QueryRowContext(ctx, `
				SELECT 1 FROM form_responses
				WHERE form_id = ? AND user_id IS NULL AND ip = ?`,
				resp.FormID, ip,
			).Scan(&exists)
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return model.Response{}, errors.Wrap(err, "check duplicate submission")
		}
		if exists {
			return model.Response{}, ErrDuplicate
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO form_responses (id, form_id, user_id, answers, metadata, ip, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		resp.ID,
		resp.FormID,
		resp.UserID,
		string(answersJson),
		string(metadataJson),
		ip,
		resp.SubmittedAt,
	)
	if err != nil {
		return model.Response{}, errors.Wrap(err, "insert response")
	}

	if err := tx.Commit(); err != nil {
		return model.Response{}, errors.Wrap(err, "commit response")
	}
	return resp, nil
}

// ResponsesByForm lists a form's responses, oldest first. Only the
// owner may read them; for anyone else the form is not found.
func (s *Store) ResponsesByForm(ctx context.Context, formID, ownerID string) ([]model.Response, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM forms
		WHERE id = ? AND owner_id = ?`,
		formID, ownerID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "check form owner")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, user_id, answers, metadata, submitted_at
		FROM form_responses
		WHERE form_id = ?
		ORDER BY submitted_at`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select responses")
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		var resp model.Response
		var answersJson, metadataJson string
		err = rows.Scan(&resp.ID, &resp.FormID, &resp.UserID, &answersJson, &metadataJson, &resp.SubmittedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan response")
		}
		if err := json.Unmarshal([]byte(answersJson), &resp.Answers); err != nil {
			return nil, errors.Wrap(err, "parse answers")
		}
		if err := json.Unmarshal([]byte(metadataJson), &resp.Metadata); err != nil {
			return nil, errors.Wrap(err, "parse metadata")
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// ResponseCount counts a form's responses, owner only.
func (s *Store) ResponseCount(ctx context.Context, formID, ownerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(r.id)
		FROM forms f
		LEFT OUTER JOIN form_responses r ON (f.id = r.form_id)
		WHERE f.id = ? AND f.owner_id = ?`,
		formID, ownerID,
	).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "count responses")
	}
	return count, nil
}
