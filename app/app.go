package app

import (
	"github.com/go-chi/oauth"

	"github.com/formlet/formlet/config"
	"github.com/formlet/formlet/store"
)

type App struct {
	*store.Store
	*oauth.BearerServer
	config.Config
}
