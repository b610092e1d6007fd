package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/denismitr/heron"
	"github.com/denismitr/heron/migration"
	"github.com/pkg/errors"
)

var ErrDatabaseURLMissing = errors.New("database url was not defined")
var ErrUnknownDriver = errors.New("unknown database driver")

type (
	CloserFunc func() error

	Config struct {
		DatabaseURL      string
		DatabaseName     string
		LedgerCollection string
		PrintOps         bool
		Debug            bool
	}

	App struct {
		migrator *heron.Migrator
	}
)

// NewFromYaml builds the app from a yaml config file and the migration
// factories of the imported code bundle.
func NewFromYaml(path string, factories ...migration.Factory) (*App, CloserFunc, error) {
	cfg, err := createConfigFromYaml(path)
	if err != nil {
		return nil, nil, err
	}

	return New(cfg, factories...)
}

// LoadConfig reads a yaml config file into a Config.
func LoadConfig(path string) (Config, error) {
	return createConfigFromYaml(path)
}

func New(cfg Config, factories ...migration.Factory) (*App, CloserFunc, error) {
	m, closer, err := createMigrator(cfg, factories)
	if err != nil {
		return nil, nil, err
	}

	return &App{migrator: m}, CloserFunc(closer), nil
}

func (app *App) Migrate(ctx context.Context, target migration.Version) error {
	var configurators []heron.ActionConfigurator
	if target != migration.MinVersion {
		configurators = append(configurators, heron.WithTarget(target))
	}

	if _, err := app.migrator.Up(ctx, configurators...); err != nil {
		return err
	}

	return nil
}

func (app *App) Rollback(ctx context.Context, target migration.Version) error {
	var configurators []heron.ActionConfigurator
	if target != migration.MinVersion {
		configurators = append(configurators, heron.WithTarget(target))
	}

	if _, err := app.migrator.Down(ctx, configurators...); err != nil {
		return err
	}

	return nil
}

func (app *App) Pending(ctx context.Context) (migration.Migrations, error) {
	return app.migrator.Pending(ctx)
}

func (app *App) Applied(ctx context.Context) ([]migration.Version, error) {
	return app.migrator.AppliedVersions(ctx)
}

func InitCfg(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create config file")
	}

	defer func() {
		if err := f.Close(); err != nil {
			panic(err)
		}
	}()

	r := strings.NewReader(configFileStub)

	if _, err := io.Copy(f, r); err != nil {
		return err
	}

	return nil
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
