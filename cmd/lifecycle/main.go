package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lifecycle/cmd/config"
	migration "lifecycle/cmd/database/migrate"
	"lifecycle/internal/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "lifecycle",
		Usage: "inventory and expiry tracking backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the YAML config file",
			},
		},
		Before: func(c *cli.Context) error {
			utils.LoadConfigFrom(c.String("config"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and the notification dispatcher",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:   "dispatch",
				Usage:  "run only the notification dispatcher",
				Action: dispatch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("lifecycle exited")
	}
}

func connect() (*gorm.DB, func(), error) {
	closeLog := utils.InitLogger()
	db, err := config.ConnectDB()
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		closeLog()
	}, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func serve(c *cli.Context) error {
	db, closeAll, err := connect()
	if err != nil {
		return err
	}
	defer closeAll()

	app, err := config.NewApp(db)
	if err != nil {
		return err
	}
	dispatcher := config.NewDispatcher(db)

	ctx, stop := signalContext(c.Context)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%s", utils.GetConfigOr("APP_PORT", "8080"))
		logrus.WithField("addr", addr).Info("HTTP server starting")
		if err := app.Listen(addr); err != nil {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		return dispatcher.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		logrus.Info("shutting down")
		return app.Shutdown()
	})

	return g.Wait()
}

func migrate(_ *cli.Context) error {
	db, closeAll, err := connect()
	if err != nil {
		return err
	}
	defer closeAll()

	return migration.Migrate(db)
}

func dispatch(c *cli.Context) error {
	db, closeAll, err := connect()
	if err != nil {
		return err
	}
	defer closeAll()

	ctx, stop := signalContext(c.Context)
	defer stop()

	return config.NewDispatcher(db).Run(ctx)
}
