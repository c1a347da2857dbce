package main

import (
	"github.com/smallbiznis/tenora/internal/clock"
	"github.com/smallbiznis/tenora/internal/config"
	"github.com/smallbiznis/tenora/internal/lock"
	"github.com/smallbiznis/tenora/internal/migration"
	"github.com/smallbiznis/tenora/internal/observability"
	"github.com/smallbiznis/tenora/internal/scheduler"
	"github.com/smallbiznis/tenora/internal/seed"
	"github.com/smallbiznis/tenora/internal/server"
	"github.com/smallbiznis/tenora/pkg/db"
	"github.com/smallbiznis/tenora/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		observability.Module,
		db.Module,
		clock.Module,
		lock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
		seed.Module,
	)
	app.Run()
}
