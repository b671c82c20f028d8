package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlet/formlet/database"
	"github.com/formlet/formlet/model"
	"github.com/formlet/formlet/store"
)

func newTestStore(t *testing.T) (*store.Store, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// a single connection keeps every query on the same in-memory db
	db.SetMaxOpenConns(1)

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	require.NoError(t, database.MigrateDB(db))

	return store.New(db), db
}

func newTestUser(t *testing.T, s *store.Store, email string) model.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), email, "", "x")
	require.NoError(t, err)
	return user
}

func sampleForm() model.Form {
	return model.Form{
		Title:       "Pizza order",
		Description: "Lunch run",
		Settings:    model.DefaultSettings(),
		Fields: []model.Field{
			{ID: "f1", Type: model.ShortText, Label: "Name", Required: true, Placeholder: "Your name"},
			{ID: "f2", Type: model.Checkbox, Label: "Toppings", Options: []string{"Cheese", "Ham"}},
			{ID: "f3", Type: model.Dropdown, Label: "Size", Required: true, Options: []string{"S", "M", "L"}},
		},
	}
}

func TestCreateUserDerivesName(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "ada@example.com", "", "hash")
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Name)

	user, err = s.CreateUser(ctx, "grace@example.com", "Grace Hopper", "hash")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", user.Name)

	_, err = s.CreateUser(ctx, "ada@example.com", "", "hash")
	assert.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestFormRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s, "owner@example.com")

	created, err := s.CreateForm(ctx, sampleForm(), owner.ID)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.IsPublished)

	fetched, err := s.OwnedFormByID(ctx, created.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, sampleForm().Fields, fetched.Fields)
	assert.Equal(t, "Pizza order", fetched.Title)
	assert.Equal(t, created.Settings, fetched.Settings)
}

func TestUpdateFormRefreshesUpdatedAt(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s, "owner@example.com")

	form, err := s.CreateForm(ctx, sampleForm(), owner.ID)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	form.Title = "Renamed"
	updated, err := s.UpdateForm(ctx, form, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.True(t, updated.UpdatedAt.After(form.CreatedAt))
}

func TestFormOwnership(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s, "owner@example.com")
	other := newTestUser(t, s, "other@example.com")

	form, err := s.CreateForm(ctx, sampleForm(), owner.ID)
	require.NoError(t, err)

	_, err = s.OwnedFormByID(ctx, form.ID, other.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.UpdateForm(ctx, form, other.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.SetPublished(ctx, form.ID, other.ID, true)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteForm(ctx, form.ID, other.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.ResponsesByForm(ctx, form.ID, other.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPublishGate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s, "owner@example.com")

	form, err := s.CreateForm(ctx, sampleForm(), owner.ID)
	require.NoError(t, err)

	// drafts are invisible to the public viewer
	_, err = s.PublishedFormByID(ctx, form.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// and reject response inserts
	_, err = s.InsertResponse(ctx, model.Response{
		FormID:  form.ID,
		Answers: model.Answers{"f1": model.TextAnswer("Ada")},
	}, "10.0.0.1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SetPublished(ctx, form.ID, owner.ID, true))

	public, err := s.PublishedFormByID(ctx, form.ID)
	require.NoError(t, err)
	assert.True(t, public.IsPublished)

	resp, err := s.InsertResponse(ctx, model.Response{
		FormID:  form.ID,
		Answers: model.Answers{"f1": model.TextAnswer("Ada")},
	}, "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.False(t, resp.SubmittedAt.IsZero())
}

func TestResponseRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s, "owner@example.com")

	form, err := s.CreateForm(ctx, sampleForm(), owner.ID)
	require.NoError(t, err)
	require.NoError(t, s.SetPublished(ctx, form.ID, owner.ID, true))

	answers := model.Answers{
		"f1":               model.TextAnswer("Ada"),
		"f2":               model.ListAnswer("Cheese", "Ham"),
		model.UserEmailKey: model.TextAnswer("ada@example.com"),
	}
	_, err = s.InsertResponse(ctx, model.Response{
		FormID:  form.ID,
		Answers: answers,
		Metadata: model.Metadata{
			TimeTaken:   42,
			UserAgent:   "test-agent",
			TabSwitches: 0,
		},
	}, "10.0.0.1")
	require.NoError(t, err)

	responses, err := s.ResponsesByForm(ctx, form.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)

	got := responses[0]
	assert.Equal(t, answers, got.Answers)
	assert.Equal(t, int64(42), got.Metadata.TimeTaken)
	assert.Equal(t, "test-agent", got.Metadata.UserAgent)
	assert.Nil(t, got.UserID)

	count, err := s.ResponseCount(ctx, form.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSingleSubmissionPerSubmitter(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s, "owner@example.com")
	respondent := newTestUser(t, s, "respondent@example.com")

	form := sampleForm()
	form.Settings.AllowMultipleSubmissions = false
	created, err := s.CreateForm(ctx, form, owner.ID)
	require.NoError(t, err)
	require.NoError(t, s.SetPublished(ctx, created.ID, owner.ID, true))

	answers := model.Answers{"f1": model.TextAnswer("x")}

	// same authenticated user twice
	_, err = s.InsertResponse(ctx, model.Response{FormID: created.ID, UserID: &respondent.ID, Answers: answers}, "10.0.0.1")
	require.NoError(t, err)
	_, err = s.InsertResponse(ctx, model.Response{FormID: created.ID, UserID: &respondent.ID, Answers: answers}, "10.0.0.2")
	assert.ErrorIs(t, err, store.ErrDuplicate)

	// same anonymous IP twice
	_, err = s.InsertResponse(ctx, model.Response{FormID: created.ID, Answers: answers}, "10.0.0.3")
	require.NoError(t, err)
	_, err = s.InsertResponse(ctx, model.Response{FormID: created.ID, Answers: answers}, "10.0.0.3")
	assert.ErrorIs(t, err, store.ErrDuplicate)

	// a different anonymous IP still passes
	_, err = s.InsertResponse(ctx, model.Response{FormID: created.ID, Answers: answers}, "10.0.0.4")
	require.NoError(t, err)
}

func TestDeleteFormCascadesResponses(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s, "owner@example.com")

	form, err := s.CreateForm(ctx, sampleForm(), owner.ID)
	require.NoError(t, err)
	require.NoError(t, s.SetPublished(ctx, form.ID, owner.ID, true))

	_, err = s.InsertResponse(ctx, model.Response{
		FormID:  form.ID,
		Answers: model.Answers{"f1": model.TextAnswer("Ada")},
	}, "10.0.0.1")
	require.NoError(t, err)

	require.NoError(t, s.DeleteForm(ctx, form.ID, owner.ID))

	var count int
	err = db.QueryRow("SELECT count(*) FROM form_responses WHERE form_id = ?", form.ID).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}
