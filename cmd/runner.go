package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/linkreel/internal/handoff"
	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/repositories"
	"github.com/desertthunder/linkreel/internal/services"
	"github.com/desertthunder/linkreel/internal/shared"
	"github.com/desertthunder/linkreel/internal/tasks"
	"github.com/desertthunder/linkreel/internal/ui"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The playlist store is opened lazily so share-role commands never touch the database.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	container  *handoff.Container
	store      models.Store
	db         *sql.DB
	library    *services.Library
	open       ui.OpenFunc
	program    func(tea.Model) (tea.Model, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Container  *handoff.Container
	Store      models.Store
	Open       ui.OpenFunc
	Program    func(tea.Model) (tea.Model, error)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Program == nil {
		opts.Program = func(m tea.Model) (tea.Model, error) {
			return tea.NewProgram(m).Run()
		}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		container:  opts.Container,
		store:      opts.Store,
		open:       opts.Open,
		program:    opts.Program,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, playlistCommand, itemCommand, shareCommand, inboxCommand, indexCommand,
		foregroundCommand, watchCommand, playCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while a TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// configure loads the config file (defaults when absent) and applies the log level.
//
// An empty path falls back to the runner's config path; with neither, the current config is kept.
func (r *Runner) configure(path string) error {
	if path == "" {
		path = r.configPath
	}
	if path != "" {
		config, err := shared.ResolveConfig(shared.ExpandHome(path))
		if err != nil {
			return err
		}
		r.config = config
		r.configPath = path
	}

	if err := r.config.Validate(); err != nil {
		return err
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))
	return nil
}

// sharedContainer returns the container both roles exchange files through.
func (r *Runner) sharedContainer() *handoff.Container {
	if r.container == nil {
		r.container = handoff.NewContainer(shared.ExpandHome(r.config.Container.Root))
	}
	return r.container
}

// host opens the playlist store on first use and returns the library on top of it.
func (r *Runner) host() (*services.Library, error) {
	if r.library != nil {
		return r.library, nil
	}

	if r.store == nil {
		db, err := shared.OpenStore(r.config.Database)
		if err != nil {
			return nil, err
		}
		r.db = db
		r.store = repositories.NewPlaylistStore(db)
	}

	pipeline := tasks.NewPipeline(r.sharedContainer(), r.store, r.config.Inbox.Delivery, r.logger)
	r.library = services.NewLibrary(r.store, pipeline, r.logger)
	return r.library, nil
}

// Close releases the database opened by [Runner.host], if any.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
