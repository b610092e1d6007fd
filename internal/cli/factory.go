package cli

import (
	"context"
	"io/ioutil"
	"log"
	"os"
	"strings"
	"time"

	"github.com/denismitr/heron"
	"github.com/denismitr/heron/internal/retry"
	"github.com/denismitr/heron/migration"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	r "gopkg.in/rethinkdb/rethinkdb-go.v6"
	"gopkg.in/yaml.v2"
)

const (
	connectTimeout  = 60 * time.Second
	maxPingAttempts = 5
	pingRetryStep   = 2 * time.Second
)

type (
	migratorFactory    func(cfg Config, factories []migration.Factory) (*heron.Migrator, heron.CloserFunc, error)
	migratorFactoryMap map[string]migratorFactory

	migrations struct {
		DatabaseURL      string `yaml:"database_url"`
		DatabaseName     string `yaml:"database_name"`
		LedgerCollection string `yaml:"ledger_collection"`
		PrintOps         bool   `yaml:"print_ops"`
	}

	configFile struct {
		Version    string     `yaml:"version"`
		Migrations migrations `yaml:"migrations"`
	}
)

const configFileStub = `version: "1"
migrations:
  database_url: "%%HERON_DATABASE_URL%%"
  database_name: "app"
  ledger_collection: "migrations"
  print_ops: false
`

func createConfigFromYaml(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "could not open heron configuration file")
	}

	defer func() {
		if errClose := f.Close(); errClose != nil {
			panic(errClose)
		}
	}()

	b, err := ioutil.ReadAll(f)
	if err != nil {
		return cfg, errors.Wrap(err, "could not read heron configuration file")
	}

	var cfgFile configFile
	if err := yaml.Unmarshal(b, &cfgFile); err != nil {
		return cfg, errors.Wrap(err, "could not parse heron configuration file")
	}

	if strings.HasSuffix(cfgFile.Migrations.DatabaseURL, "%%") && strings.HasPrefix(cfgFile.Migrations.DatabaseURL, "%%") {
		cfg.DatabaseURL = os.Getenv(strings.ReplaceAll(cfgFile.Migrations.DatabaseURL, "%%", ""))
	} else {
		cfg.DatabaseURL = cfgFile.Migrations.DatabaseURL
	}

	cfg.DatabaseName = cfgFile.Migrations.DatabaseName
	cfg.LedgerCollection = cfgFile.Migrations.LedgerCollection
	cfg.PrintOps = cfgFile.Migrations.PrintOps

	if cfg.DatabaseURL == "" {
		return cfg, ErrDatabaseURLMissing
	}

	return cfg, nil
}

func createMongoMigrator(cfg Config, factories []migration.Factory) (*heron.Migrator, heron.CloserFunc, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(cfg.DatabaseURL))
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not connect to mongodb")
	}

	err = retry.PingWithBackoff(ctx, pingRetryStep, maxPingAttempts, func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errors.Wrap(err, "mongodb ping failed")
	}

	m, err := heron.NewMigrator(
		heron.UseMongoDB(client.Database(cfg.DatabaseName), cfg.LedgerCollection),
		heron.UseMigrations(factories...),
		heron.UseColorLogger(log.New(os.Stdout, "", 0), cfg.PrintOps, cfg.Debug),
	)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	return m, func() error { return client.Disconnect(context.Background()) }, nil
}

func createRethinkMigrator(cfg Config, factories []migration.Factory) (*heron.Migrator, heron.CloserFunc, error) {
	session, err := r.Connect(r.ConnectOpts{
		Address:  strings.TrimPrefix(cfg.DatabaseURL, "rethinkdb://"),
		Database: cfg.DatabaseName,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not connect to rethinkdb")
	}

	m, err := heron.NewMigrator(
		heron.UseRethinkDB(session, cfg.DatabaseName, cfg.LedgerCollection),
		heron.UseMigrations(factories...),
		heron.UseColorLogger(log.New(os.Stdout, "", 0), cfg.PrintOps, cfg.Debug),
	)
	if err != nil {
		_ = session.Close()
		return nil, nil, err
	}

	return m, func() error { return session.Close() }, nil
}

func createMySQLMigrator(cfg Config, factories []migration.Factory) (*heron.Migrator, heron.CloserFunc, error) {
	db, err := sqlx.Open("mysql", strings.TrimPrefix(cfg.DatabaseURL, "mysql://"))
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	err = retry.PingWithBackoff(ctx, pingRetryStep, maxPingAttempts, func(ctx context.Context) error {
		return db.PingContext(ctx)
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, errors.Wrap(err, "mysql ping failed")
	}

	m, err := heron.NewMigrator(
		heron.UseMySQL(db.DB, cfg.LedgerCollection),
		heron.UseMigrations(factories...),
		heron.UseColorLogger(log.New(os.Stdout, "", 0), cfg.PrintOps, cfg.Debug),
	)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return m, db.Close, nil
}

func createSqliteMigrator(cfg Config, factories []migration.Factory) (*heron.Migrator, heron.CloserFunc, error) {
	db, err := sqlx.Open("sqlite3", strings.TrimPrefix(cfg.DatabaseURL, "sqlite://"))
	if err != nil {
		return nil, nil, err
	}

	m, err := heron.NewMigrator(
		heron.UseSqlite(db.DB, cfg.LedgerCollection),
		heron.UseMigrations(factories...),
		heron.UseColorLogger(log.New(os.Stdout, "", 0), cfg.PrintOps, cfg.Debug),
	)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return m, db.Close, nil
}

func createMigrator(cfg Config, factories []migration.Factory) (*heron.Migrator, heron.CloserFunc, error) {
	factoryMap := make(migratorFactoryMap)
	factoryMap["mongodb"] = createMongoMigrator
	factoryMap["rethinkdb"] = createRethinkMigrator
	factoryMap["mysql"] = createMySQLMigrator
	factoryMap["sqlite"] = createSqliteMigrator

	var driver string
	switch {
	case strings.HasPrefix(cfg.DatabaseURL, "mongodb"):
		driver = "mongodb"
	case strings.HasPrefix(cfg.DatabaseURL, "rethinkdb"):
		driver = "rethinkdb"
	case strings.HasPrefix(cfg.DatabaseURL, "mysql"):
		driver = "mysql"
	case strings.HasPrefix(cfg.DatabaseURL, "sqlite"):
		driver = "sqlite"
	default:
		return nil, nil, errors.Wrapf(ErrUnknownDriver, "[%s]", cfg.DatabaseURL)
	}

	return createMigratorFrom(driver, factoryMap, cfg, factories)
}

func createMigratorFrom(
	driver string,
	factoryMap migratorFactoryMap,
	cfg Config,
	factories []migration.Factory,
) (*heron.Migrator, heron.CloserFunc, error) {
	factory, ok := factoryMap[driver]
	if !ok {
		return nil, nil, errors.Errorf("could not find factory for driver [%s]", driver)
	}

	return factory(cfg, factories)
}
