package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/formlet/formlet/app"
	"github.com/formlet/formlet/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// public viewer surface: published forms only
	api.Get("/forms/{id}", PublicGetFormById(app))
	api.With(middlewares.OptionalAuth(app.TokenSecret)).
		Post("/forms/{id}/responses", PublicSubmitResponse(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.TokenSecret))

		// CRUD forms
		r.Post("/forms", CreateForm(app))
		r.Get("/forms", ListForms(app))
		r.Get("/forms/{id}", GetFormById(app))
		r.Put("/forms/{id}", UpdateForm(app))
		r.Delete("/forms/{id}", DeleteForm(app))
		r.Patch("/forms/{id}/publish", PublishForm(app))

		// builder field operations
		r.Post("/forms/{id}/fields", AddField(app))
		r.Patch("/forms/{id}/fields/{fieldId}", UpdateField(app))
		r.Delete("/forms/{id}/fields/{fieldId}", RemoveField(app))
		r.Post("/forms/{id}/fields/{fieldId}/move", MoveField(app))

		r.Get("/forms/{id}/responses", GetFormResponses(app))
	})

	api.Post("/signup", Signup(app))
	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}
