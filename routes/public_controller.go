package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/formlet/formlet/app"
	"github.com/formlet/formlet/httpx"
	"github.com/formlet/formlet/log"
	"github.com/formlet/formlet/model"
	"github.com/formlet/formlet/routes/middlewares"
	"github.com/formlet/formlet/store"
	"github.com/formlet/formlet/validation"
)

// PublicGetFormById serves the viewer's read path. Drafts and missing
// forms are indistinguishable: both are not found.
func PublicGetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, err := app.Store.PublishedFormByID(r.Context(), formId)
		if err != nil {
			logStoreError(w, "db.get_form.public", formId, err)
			return
		}

		render.JSON(w, r, form)
	}
}

type submitCheck struct {
	op     bool
	key    string
	result chan<- bool
}

type submissionPayload struct {
	Answers  model.Answers `json:"answers"`
	Metadata struct {
		TimeTaken   int64 `json:"time_taken"`
		TabSwitches int   `json:"tab_switches"`
	} `json:"metadata"`
}

// PublicSubmitResponse validates and appends a response to a published
// form. A goroutine serializes in-flight submissions per submitter, so
// two concurrent posts from the same user (or the same IP, when
// anonymous) cannot both pass the single-submission check.
func PublicSubmitResponse(app app.App) http.HandlerFunc {
	validateKeyStart := make(chan submitCheck)
	go func() {
		inFlight := make(map[string]bool)

		for {
			req := <-validateKeyStart
			if req.op {
				req.result <- inFlight[req.key]
				inFlight[req.key] = true
			} else {
				delete(inFlight, req.key)
			}
		}
	}()

	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		payload := submissionPayload{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if payload.Answers == nil {
			payload.Answers = model.Answers{}
		}

		form, err := app.Store.PublishedFormByID(r.Context(), formId)
		if err != nil {
			logStoreError(w, "db.get_form.public", formId, err)
			return
		}

		userId := middlewares.UserID(r)
		if form.Settings.RequireAuth && userId == "" {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "submit.require_auth")
			return
		}

		// anonymous submitters identify themselves through the
		// reserved user_name/user_email answers
		errs := validation.Validate(form.Fields, payload.Answers, userId == "")
		if len(errs) > 0 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]any{
				"errors": errs,
			})
			return
		}

		ip := strings.Split(r.RemoteAddr, ":")[0]
		if !form.Settings.AllowMultipleSubmissions {
			key := formId + "|ip:" + ip
			if userId != "" {
				key = formId + "|user:" + userId
			}

			// check the same submitter is not submitting right now
			validateKeyDone := make(chan bool)
			validateKeyStart <- submitCheck{true, key, validateKeyDone}
			if <-validateKeyDone {
				httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "submit.already_submitted")
				return
			}
			defer func() { validateKeyStart <- submitCheck{false, key, nil} }()
		}

		resp := model.Response{
			FormID:  formId,
			Answers: payload.Answers,
			Metadata: model.Metadata{
				TimeTaken:   max64(payload.Metadata.TimeTaken, 0),
				UserAgent:   r.UserAgent(),
				TabSwitches: maxInt(payload.Metadata.TabSwitches, 0),
			},
		}
		if userId != "" {
			resp.UserID = &userId
		}

		resp, err = app.Store.InsertResponse(r.Context(), resp, ip)
		if errors.Is(err, store.ErrDuplicate) {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "submit.already_submitted")
			return
		}
		if err != nil {
			logStoreError(w, "db.insert_response", formId, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":           resp.ID,
			"submitted_at": resp.SubmittedAt,
		})
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
