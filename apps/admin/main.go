package main

import (
	"fmt"
	"log"
	"os"

	"github.com/theadruss/Clix-App/core"
	logsvc "github.com/theadruss/Clix-App/services/logger"
	"github.com/theadruss/Clix-App/storage/database"
	inmemdb "github.com/theadruss/Clix-App/storage/database/inmem"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	rbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger = rbLogger

	// set up DB
	var cli commandLine
	switch conf.Database.Engine {
	case database.EngineInmem:
		db, err := inmemdb.Open()
		errAndDie(err)
		cli.repos = database.NewInmemRepositories(db)
	default:
		errAndDie(database.CreateIfNotExist(conf))
		db, err := database.Open(conf)
		errAndDie(err)
		cli.db = db.DB
		cli.repos = database.NewPostgresRepositories(db)
	}

	// start CLI
	err := cli.run(os.Args)
	_ = cli.repos.Close()
	rbLogger.Close()
	if err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
