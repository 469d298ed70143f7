package importer

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	log "github.com/public-forge/go-logger"

	"github.com/public-forge/imposm3-testkit/testdb"
)

const (
	defaultBinary  = "imposm3"
	defaultLimitTo = "clipping.geojson"
)

// Config describes how to invoke the imposm3 binary for the test suite.
type Config struct {
	Binary         string         // Binary is the imposm3 executable, "imposm3" when empty.
	Connection     string         // Connection is the -connection argument (see testdb.DbConfig.ImporterConnection).
	CacheDir       string         // CacheDir is the imposm3 cache directory.
	MappingFile    string         // MappingFile is the mapping json/yaml passed with -mapping.
	Schemas        testdb.Schemas // Schemas are the import/production/backup schemas, defaults when empty.
	LimitTo        string         // LimitTo is the -limitto geojson used for diff imports.
	ExpireTilesDir string         // ExpireTilesDir enables -expiretiles-dir for diff imports when set.
	Quiet          bool           // Quiet adds -quiet to import commands.
}

// Closer releases database connections that would block the importer.
type Closer interface {
	Close() error
}

// CommandFunc builds the command for one importer invocation.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Runner runs imposm3 sub-commands.
type Runner struct {
	config  Config
	closer  Closer
	command CommandFunc
}

// NewRunner creates a Runner. closer, typically the test's *testdb.DatabaseHolder, is closed before each
// command that changes the database; it may be nil.
func NewRunner(config Config, closer Closer) *Runner {
	if config.Binary == "" {
		config.Binary = defaultBinary
	}
	if config.LimitTo == "" {
		config.LimitTo = defaultLimitTo
	}
	if config.Schemas == (testdb.Schemas{}) {
		config.Schemas = testdb.DefaultSchemas()
	}
	return &Runner{config: config, closer: closer, command: exec.CommandContext}
}

// WithCommand replaces how commands are built.
func (r *Runner) WithCommand(command CommandFunc) *Runner {
	r.command = command
	return r
}

// Import reads pbf into the cache and writes the import schema.
func (r *Runner) Import(ctx context.Context, pbf string) error {
	args := []string{
		"import",
		"-connection", r.config.Connection,
		"-read", pbf,
		"-write",
		"-cachedir", r.config.CacheDir,
		"-diff",
		"-overwritecache",
		"-dbschema-import", r.config.Schemas.Import,
		"-optimize",
		"-mapping", r.config.MappingFile,
	}
	_, err := r.runWithDatabase(ctx, r.quiet(args))
	return err
}

// Deploy moves the import schema to production, keeping the old production tables as backup.
func (r *Runner) Deploy(ctx context.Context) error {
	args := append(r.deploymentArgs(), "-deployproduction", "-mapping", r.config.MappingFile)
	_, err := r.runWithDatabase(ctx, r.quiet(args))
	return err
}

// RevertDeploy restores the backup schema to production.
func (r *Runner) RevertDeploy(ctx context.Context) error {
	args := append(r.deploymentArgs(), "-revertdeploy", "-mapping", r.config.MappingFile)
	_, err := r.runWithDatabase(ctx, r.quiet(args))
	return err
}

// RemoveBackups drops the backup tables.
func (r *Runner) RemoveBackups(ctx context.Context) error {
	args := []string{
		"import",
		"-connection", r.config.Connection,
		"-dbschema-backup", r.config.Schemas.Backup,
		"-removebackup",
		"-mapping", r.config.MappingFile,
	}
	_, err := r.runWithDatabase(ctx, r.quiet(args))
	return err
}

// Update applies the change file osc to the production schema.
func (r *Runner) Update(ctx context.Context, osc string) error {
	args := []string{
		"diff",
		"-connection", r.config.Connection,
		"-cachedir", r.config.CacheDir,
		"-limitto", r.config.LimitTo,
		"-dbschema-production", r.config.Schemas.Production,
		"-mapping", r.config.MappingFile,
	}
	if r.config.ExpireTilesDir != "" {
		args = append(args, "-expiretiles-dir", r.config.ExpireTilesDir)
	}
	args = append(args, osc)
	_, err := r.runWithDatabase(ctx, args)
	return err
}

func (r *Runner) deploymentArgs() []string {
	return []string{
		"import",
		"-connection", r.config.Connection,
		"-dbschema-import", r.config.Schemas.Import,
		"-dbschema-production", r.config.Schemas.Production,
		"-dbschema-backup", r.config.Schemas.Backup,
	}
}

func (r *Runner) quiet(args []string) []string {
	if r.config.Quiet {
		return append(args, "-quiet")
	}
	return args
}

// runWithDatabase closes the test connection before running args.
func (r *Runner) runWithDatabase(ctx context.Context, args []string) ([]byte, error) {
	if r.closer != nil {
		if err := r.closer.Close(); err != nil {
			return nil, err
		}
	}
	return r.run(ctx, args)
}

// run executes the binary and returns its combined output. Non-zero exits become *ProcessError.
func (r *Runner) run(ctx context.Context, args []string) ([]byte, error) {
	logger := log.FromContext(ctx)
	logger.Debugf("running %s %s", r.config.Binary, strings.Join(args, " "))

	cmd := r.command(ctx, r.config.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		procErr := &ProcessError{Binary: r.config.Binary, Args: args, ExitCode: -1, Output: output, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			procErr.ExitCode = exitErr.ExitCode()
		}
		logger.Errorf("%s %s failed (exit %d): %s", r.config.Binary, args[0], procErr.ExitCode, output)
		return output, procErr
	}
	return output, nil
}
