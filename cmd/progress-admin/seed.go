package main

import (
	"errors"

	"github.com/progresshq/progress-api/internal/devseed"
)

func runDBSeed(cmdCtx *commandContext, _ []string) error {
	if !cmdCtx.Config.IsDev {
		return errors.New("db-seed only runs in development mode (set DEV=true)")
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	return devseed.Seed(cmdCtx.Ctx, cmdCtx.Logger, devseed.NewServices(db))
}
