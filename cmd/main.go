package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/denismitr/heron/internal/cli"
	"github.com/denismitr/heron/migration"
	"github.com/logrusorgru/aurora/v3"
	"github.com/pkg/errors"
)

// The binary runs whatever the imported migration bundles registered
// in the default registry. Add a blank import of your bundle package
// here (or build your own main on top of the cli package).

func run(cfg cli.Config, action func(ctx context.Context, app *cli.App) error) (err error) {
	app, closer, createErr := cli.New(cfg, migration.DefaultRegistry().Factories()...)
	if createErr != nil {
		err = createErr
		return
	}

	defer func() {
		if closeErr := closer(); closeErr != nil {
			err = closeErr
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	if actionErr := action(ctx, app); actionErr != nil {
		err = actionErr
		return
	}

	return
}

func main() {
	migrateCmd := flag.Bool("migrate", false, "apply pending migrations")
	rollbackCmd := flag.Bool("rollback", false, "revert applied migrations")
	pendingCmd := flag.Bool("pending", false, "list migrations that have not been applied")
	initCmd := flag.Bool("init", false, "create a heron config file stub")

	configPath := flag.String("config", ".heron.yaml", "path to the heron config file")
	databaseURL := flag.String("db", "", "database URL, overrides the config file")
	databaseName := flag.String("dbname", "", "database name, overrides the config file")
	collection := flag.String("collection", "", "ledger collection or table name")
	target := flag.String("target", "", "inclusive target version")
	ops := flag.Bool("ops", false, "print ledger operations")
	debug := flag.Bool("debug", false, "print debug output")

	flag.Parse()

	if *initCmd {
		if err := cli.InitCfg(*configPath); err != nil {
			fmt.Println(aurora.Red("heron: "), err.Error())
			os.Exit(1)
		}

		fmt.Println(aurora.Green("heron: "), "config file created at", *configPath)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath, *databaseURL, *databaseName, *collection, *ops, *debug)
	if err != nil {
		fmt.Println(aurora.Red("heron: "), err.Error())
		os.Exit(1)
	}

	targetVersion := migration.MinVersion
	if *target != "" {
		targetVersion, err = migration.VersionFromString(*target)
		if err != nil {
			fmt.Println(aurora.Red("heron: "), err.Error())
			os.Exit(1)
		}
	}

	if *migrateCmd {
		err := run(cfg, func(ctx context.Context, app *cli.App) error {
			return app.Migrate(ctx, targetVersion)
		})
		exit(err)
	}

	if *rollbackCmd {
		err := run(cfg, func(ctx context.Context, app *cli.App) error {
			return app.Rollback(ctx, targetVersion)
		})
		exit(err)
	}

	if *pendingCmd {
		err := run(cfg, func(ctx context.Context, app *cli.App) error {
			pending, pendingErr := app.Pending(ctx)
			if pendingErr != nil {
				return pendingErr
			}

			for _, m := range pending {
				fmt.Println(aurora.Yellow(fmt.Sprintf("pending %d: %s", int64(m.Version), m.Name)))
			}

			return nil
		})
		exit(err)
	}

	fmt.Println(aurora.Red("heron: "), "unknown command")
	os.Exit(1)
}

func exit(err error) {
	if err != nil {
		fmt.Println(aurora.Red("heron: "), err.Error())
		os.Exit(1)
	}

	fmt.Println(aurora.Green("heron: "), "all done")
	os.Exit(0)
}

// Flags override the config file; the file is optional when -db is
// given.
func loadConfig(path, databaseURL, databaseName, collection string, ops, debug bool) (cli.Config, error) {
	var cfg cli.Config

	if cli.FileExists(path) {
		fileCfg, err := cli.LoadConfig(path)
		if err != nil {
			return cfg, err
		}

		cfg = fileCfg
	}

	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}

	if databaseName != "" {
		cfg.DatabaseName = databaseName
	}

	if collection != "" {
		cfg.LedgerCollection = collection
	}

	if ops {
		cfg.PrintOps = true
	}

	cfg.Debug = debug

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("database not specified")
	}

	return cfg, nil
}
