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

// CreateForm inserts a new draft form owned by ownerID and returns it
// with id and timestamps assigned.
func (s *Store) CreateForm(ctx context.Context, form model.Form, ownerID string) (model.Form, error) {
	form.ID = uuid.Must(uuid.NewV4()).String()
	form.OwnerID = ownerID
	form.IsPublished = false
	now := time.Now().UTC()
	form.CreatedAt = now
	form.UpdatedAt = now
	if form.Fields == nil {
		form.Fields = []model.Field{}
	}

	fieldsJson, settingsJson, err := marshalFormJson(form)
	if err != nil {
		return model.Form{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO forms (id, title, description, owner_id, fields, settings, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		form.ID,
		form.Title,
		form.Description,
		form.OwnerID,
		fieldsJson,
		settingsJson,
		form.IsPublished,
		form.CreatedAt,
		form.UpdatedAt,
	)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "insert form")
	}
	return form, nil
}

// OwnedFormByID returns the form iff it is owned by ownerID.
// Non-owned forms are indistinguishable from missing ones.
func (s *Store) OwnedFormByID(ctx context.Context, id, ownerID string) (model.Form, error) {
	return s.formWhere(ctx, `id = ? AND owner_id = ?`, id, ownerID)
}

// PublishedFormByID returns the form iff it is published. This is the
// public viewer's read path: drafts are not found.
func (s *Store) PublishedFormByID(ctx context.Context, id string) (model.Form, error) {
	return s.formWhere(ctx, `id = ? AND is_published = 1`, id)
}

func (s *Store) formWhere(ctx context.Context, where string, args ...any) (model.Form, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, owner_id, fields, settings, is_published, created_at, updated_at
		FROM forms
		WHERE `+where,
		args...,
	)

	var form model.Form
	var fieldsJson, settingsJson string
	err := row.Scan(
		&form.ID, &form.Title, &form.Description, &form.OwnerID,
		&fieldsJson, &settingsJson, &form.IsPublished,
		&form.CreatedAt, &form.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Form{}, ErrNotFound
	}
	if err != nil {
		return model.Form{}, errors.Wrap(err, "select form")
	}

	if err := unmarshalFormJson(&form, fieldsJson, settingsJson); err != nil {
		return model.Form{}, err
	}
	return form, nil
}

// FormsByOwner lists the owner's forms, most recently updated first.
func (s *Store) FormsByOwner(ctx context.Context, ownerID string) ([]model.Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, owner_id, fields, settings, is_published, created_at, updated_at
		FROM forms
		WHERE owner_id = ?
		ORDER BY updated_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select forms")
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		var form model.Form
		var fieldsJson, settingsJson string
		err = rows.Scan(
			&form.ID, &form.Title, &form.Description, &form.OwnerID,
			&fieldsJson, &settingsJson, &form.IsPublished,
			&form.CreatedAt, &form.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan form")
		}
		if err := unmarshalFormJson(&form, fieldsJson, settingsJson); err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, rows.Err()
}

// UpdateForm overwrites the form's title, description, fields and
// settings, iff it is owned by ownerID. Refreshes updated_at.
func (s *Store) UpdateForm(ctx context.Context, form model.Form, ownerID string) (model.Form, error) {
	fieldsJson, settingsJson, err := marshalFormJson(form)
	if err != nil {
		return model.Form{}, err
	}
	form.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE forms
		SET title = ?, description = ?, fields = ?, settings = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		form.Title,
		form.Description,
		fieldsJson,
		settingsJson,
		form.UpdatedAt,
		form.ID,
		ownerID,
	)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "update form")
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Form{}, errors.Wrap(err, "update form verify")
	} else if n < 1 {
		return model.Form{}, ErrNotFound
	}
	return s.OwnedFormByID(ctx, form.ID, ownerID)
}

// SetPublished toggles the publish flag, iff owned by ownerID.
func (s *Store) SetPublished(ctx context.Context, id, ownerID string, published bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE forms
		SET is_published = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		published,
		time.Now().UTC(),
		id,
		ownerID,
	)
	if err != nil {
		return errors.Wrap(err, "publish form")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "publish form verify")
	} else if n < 1 {
		return ErrNotFound
	}
	return nil
}

// DeleteForm removes the form and, by cascade, its responses.
func (s *Store) DeleteForm(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM forms
		WHERE id = ? AND owner_id = ?`,
		id,
		ownerID,
	)
	if err != nil {
		return errors.Wrap(err, "delete form")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "delete form verify")
	} else if n < 1 {
		return ErrNotFound
	}
	return nil
}

func marshalFormJson(form model.Form) (fields, settings string, err error) {
	fieldsJson, err := json.Marshal(form.Fields)
	if err != nil {
		return "", "", errors.Wrap(err, "marshal fields")
	}
	settingsJson, err := json.Marshal(form.Settings)
	if err != nil {
		return "", "", errors.Wrap(err, "marshal settings")
	}
	return string(fieldsJson), string(settingsJson), nil
}

func unmarshalFormJson(form *model.Form, fields, settings string) error {
	if err := json.Unmarshal([]byte(fields), &form.Fields); err != nil {
		return errors.Wrap(err, "parse fields")
	}
	if err := json.Unmarshal([]byte(settings), &form.Settings); err != nil {
		return errors.Wrap(err, "parse settings")
	}
	return nil
}
