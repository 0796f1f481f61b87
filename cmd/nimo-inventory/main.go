package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&serveCmd{}, "server")
	commander.Register(&migrateCmd{}, "database")
	commander.Register(&seedCmd{}, "database")
	commander.Register(&reportCmd{}, "reports")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
