package main

import (
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/config"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/database"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/email"
)

func main() {
	database.Init()
	database.Migrate()

	mailer := email.NewFromEnv()
	app := config.SetupApp(database.GetDB(), mailer)

	config.StartServer(app)
}
