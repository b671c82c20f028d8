package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/formlet/formlet/app"
	"github.com/formlet/formlet/builder"
	"github.com/formlet/formlet/httpx"
	"github.com/formlet/formlet/log"
	"github.com/formlet/formlet/model"
	"github.com/formlet/formlet/routes/middlewares"
	"github.com/formlet/formlet/store"
)

func logStoreError(w http.ResponseWriter, code string, id any, err error) {
	if errors.Is(err, store.ErrNotFound) {
		httpx.LogNotFound(w, code, id)
		return
	}
	httpx.LogInternalError(w, code, err)
}

type formPayload struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Fields      []model.Field   `json:"fields"`
	Settings    *model.Settings `json:"settings"`
}

func (p formPayload) toForm() model.Form {
	form := model.Form{
		Title:       p.Title,
		Description: p.Description,
		Fields:      p.Fields,
		Settings:    model.DefaultSettings(),
	}
	if p.Settings != nil {
		form.Settings = *p.Settings
	}
	return form
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := formPayload{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		form, err := app.Store.CreateForm(r.Context(), payload.toForm(), middlewares.UserID(r))
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, form)
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.Store.FormsByOwner(r.Context(), middlewares.UserID(r))
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func GetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, err := app.Store.OwnedFormByID(r.Context(), formId, middlewares.UserID(r))
		if err != nil {
			logStoreError(w, "db.get_form", formId, err)
			return
		}

		render.JSON(w, r, form)
	}
}

// UpdateForm is the builder's explicit save: it overwrites the form's
// metadata and whole field sequence in one shot.
func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		payload := formPayload{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		form := payload.toForm()
		form.ID = formId
		form, err = app.Store.UpdateForm(r.Context(), form, middlewares.UserID(r))
		if err != nil {
			logStoreError(w, "db.update_form", formId, err)
			return
		}

		render.JSON(w, r, form)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		err := app.Store.DeleteForm(r.Context(), formId, middlewares.UserID(r))
		if err != nil {
			logStoreError(w, "db.delete_form", formId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func PublishForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		payload := struct {
			IsPublished bool `json:"is_published"`
		}{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = app.Store.SetPublished(r.Context(), formId, middlewares.UserID(r), payload.IsPublished)
		if err != nil {
			logStoreError(w, "db.publish_form", formId, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// saveFields persists an edited field sequence and replies with the
// updated form.
func saveFields(app app.App, w http.ResponseWriter, r *http.Request, form model.Form, fields []model.Field) {
	form.Fields = fields
	form, err := app.Store.UpdateForm(r.Context(), form, middlewares.UserID(r))
	if err != nil {
		logStoreError(w, "db.update_form.fields", form.ID, err)
		return
	}
	render.JSON(w, r, form)
}

func AddField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, err := app.Store.OwnedFormByID(r.Context(), formId, middlewares.UserID(r))
		if err != nil {
			logStoreError(w, "db.get_form", formId, err)
			return
		}

		saveFields(app, w, r, form, builder.AddField(form.Fields))
	}
}

func UpdateField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")
		fieldId := chi.URLParam(r, "fieldId")

		patch := builder.FieldPatch{}
		err := render.DecodeJSON(r.Body, &patch)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if patch.Type != nil && !patch.Type.Valid() {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.field_type")
			return
		}

		form, err := app.Store.OwnedFormByID(r.Context(), formId, middlewares.UserID(r))
		if err != nil {
			logStoreError(w, "db.get_form", formId, err)
			return
		}
		if form.FieldByID(fieldId) == nil {
			httpx.LogNotFound(w, "get_field", fieldId)
			return
		}

		saveFields(app, w, r, form, builder.UpdateField(form.Fields, fieldId, patch))
	}
}

func RemoveField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")
		fieldId := chi.URLParam(r, "fieldId")

		form, err := app.Store.OwnedFormByID(r.Context(), formId, middlewares.UserID(r))
		if err != nil {
			logStoreError(w, "db.get_form", formId, err)
			return
		}
		if form.FieldByID(fieldId) == nil {
			httpx.LogNotFound(w, "get_field", fieldId)
			return
		}

		saveFields(app, w, r, form, builder.RemoveField(form.Fields, fieldId))
	}
}

func MoveField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")
		fieldId := chi.URLParam(r, "fieldId")

		payload := struct {
			Direction builder.Direction `json:"direction"`
		}{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if payload.Direction != builder.Up && payload.Direction != builder.Down {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.move_direction")
			return
		}

		form, err := app.Store.OwnedFormByID(r.Context(), formId, middlewares.UserID(r))
		if err != nil {
			logStoreError(w, "db.get_form", formId, err)
			return
		}
		if form.FieldByID(fieldId) == nil {
			httpx.LogNotFound(w, "get_field", fieldId)
			return
		}

		saveFields(app, w, r, form, builder.MoveField(form.Fields, fieldId, payload.Direction))
	}
}

func GetFormResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		responses, err := app.Store.ResponsesByForm(r.Context(), formId, middlewares.UserID(r))
		if err != nil {
			logStoreError(w, "db.get_responses", formId, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}
