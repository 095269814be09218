//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/gorilla/mux"
	"github.com/joelikes8/Bot-Product/pkg/logging"
)

func InitializeApp() (*App, error) {
	wire.Build(
		wire.Value(logging.Name(AppName)),
		logging.NewConfig,
		logging.CommonLogger,
		mux.NewRouter,
		NewApp,
	)
	return new(App), nil
}
