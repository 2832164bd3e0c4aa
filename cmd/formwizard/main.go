package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formwizard/internal/logging"
	"github.com/goliatone/go-formwizard/internal/watch"
	"github.com/goliatone/go-formwizard/pkg/bundle"
	"github.com/goliatone/go-formwizard/pkg/editor"
	"github.com/goliatone/go-formwizard/pkg/markup"
	"github.com/goliatone/go-formwizard/pkg/navigation"
	"github.com/goliatone/go-formwizard/pkg/prompt"
	"github.com/goliatone/go-formwizard/pkg/routing"
	"github.com/goliatone/go-formwizard/pkg/session"
	"github.com/goliatone/go-formwizard/pkg/store"
)

const usage = `usage: formwizard <command> [flags]

commands:
  build   parse markup, apply routing, and save the bundle
  run     walk a form one question at a time
  edit    edit default routing interactively and write the document
  show    print a stored routing document or list stored forms`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(ctx, os.Args[2:])
	case "run":
		err = runWalk(ctx, os.Args[2:])
	case "edit":
		err = runEdit(ctx, os.Args[2:])
	case "show":
		err = runShow(ctx, os.Args[2:])
	case "-h", "-help", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, prompt.ErrAborted) && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "formwizard: %v\n", err)
		os.Exit(1)
	}
}

type logFlags struct {
	level *string
	file  *string
}

func addLogFlags(fs *flag.FlagSet) logFlags {
	return logFlags{
		level: fs.String("log-level", "info", "log level: debug, info, warn, error"),
		file:  fs.String("log-file", "", "also write JSON logs to this file"),
	}
}

func (f logFlags) logger() (*slog.Logger, func() error, error) {
	return logging.New(logging.Options{Level: *f.level, FilePath: *f.file})
}

func runBuild(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	markupPath := fs.String("markup", "", "form markup file")
	routingPath := fs.String("routing", "", "routing document (JSON or YAML)")
	formID := fs.String("form-id", "", "form identifier")
	dbPath := fs.String("db", "", "SQLite database to save the bundle into")
	output := fs.String("out", "", "bundle output file (stdout if empty and no -db)")
	watchMarkup := fs.Bool("watch", false, "rebuild whenever the markup file changes")
	templateDir := fs.String("template-dir", "", "directory whose templates/bundle.tmpl replaces the embedded bundle template")
	logs := addLogFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *markupPath == "" || *formID == "" {
		return errors.New("build: -markup and -form-id are required")
	}

	logger, closeLogs, err := logs.logger()
	if err != nil {
		return err
	}
	defer closeLogs()

	var db *store.Store
	if *dbPath != "" {
		db, err = store.Open(ctx, *dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	build := func() error {
		doc, err := loadRouting(*routingPath)
		if err != nil {
			return err
		}
		form, err := markup.NewLoader().Load(ctx, markup.SourceFromFile(*markupPath))
		if err != nil {
			return err
		}
		s, err := session.New(session.Input{Fields: form.Fields, Panels: form.Panels, Routing: doc}, session.WithLogger(logger))
		if err != nil {
			return err
		}
		if err := s.Validate(); err != nil {
			logger.Warn("build: routing has invalid targets", "error", err)
		}

		composer, err := bundle.NewComposer(bundle.WithTemplateDir(*templateDir))
		if err != nil {
			return err
		}
		b, err := composer.Compose(*formID, form, s.Document())
		if err != nil {
			return err
		}

		if db != nil {
			if err := db.Save(ctx, b); err != nil {
				return err
			}
			logger.Info("build: bundle saved", "formId", b.FormID, "db", *dbPath, "questions", len(s.Questions()))
		}
		if *output != "" || db == nil {
			data, err := bundle.Encode(b)
			if err != nil {
				return err
			}
			if *output == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(*output, data, 0o644); err != nil {
				return fmt.Errorf("build: write %s: %w", *output, err)
			}
			logger.Info("build: bundle written", "path", *output)
		}
		return nil
	}

	if err := build(); err != nil {
		return err
	}
	if !*watchMarkup {
		return nil
	}

	logger.Info("build: watching markup", "path", *markupPath)
	w := watch.New(*markupPath, func() error {
		if err := build(); err != nil {
			logger.Error("build: rebuild failed", "error", err)
		}
		return nil
	}, watch.WithLogger(logger))
	return w.Run(ctx)
}

func runWalk(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	markupPath := fs.String("markup", "", "form markup file")
	routingPath := fs.String("routing", "", "routing document (JSON or YAML)")
	dbPath := fs.String("db", "", "SQLite database holding saved bundles")
	formID := fs.String("form-id", "", "stored form to replay (with -db)")
	logs := addLogFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, closeLogs, err := logs.logger()
	if err != nil {
		return err
	}
	defer closeLogs()

	var submitted navigation.Frame
	var s *session.Session
	options := []session.Option{
		session.WithLogger(logger),
		session.WithSubmitHook(func(frame navigation.Frame) { submitted = frame }),
	}

	switch {
	case *dbPath != "" && *formID != "":
		db, err := store.Open(ctx, *dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		b, err := db.Load(ctx, *formID)
		if err != nil {
			return err
		}
		s, err = bundle.Replay(b, options...)
		if err != nil {
			return err
		}
	case *markupPath != "":
		s, err = openSession(ctx, *markupPath, *routingPath, options...)
		if err != nil {
			return err
		}
	default:
		return errors.New("run: either -markup or -db with -form-id is required")
	}

	if err := prompt.NewWalker(nil, prompt.WithLogger(logger)).Walk(ctx, s); err != nil {
		return err
	}
	if s.Submitted() {
		logger.Debug("run: submitted", "lastPosition", submitted.Position)
		data, err := json.MarshalIndent(s.Answers(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}
	return nil
}

func runEdit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	markupPath := fs.String("markup", "", "form markup file")
	routingPath := fs.String("routing", "", "routing document to start from")
	output := fs.String("out", "", "routing document to write (.json, .yaml)")
	logs := addLogFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *markupPath == "" || *output == "" {
		return errors.New("edit: -markup and -out are required")
	}

	logger, closeLogs, err := logs.logger()
	if err != nil {
		return err
	}
	defer closeLogs()

	s, err := openSession(ctx, *markupPath, *routingPath, session.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := prompt.NewWalker(nil, prompt.WithLogger(logger)).EditRouting(ctx, editor.New(s)); err != nil {
		return err
	}
	if err := routing.WriteFile(*output, s.Document()); err != nil {
		return err
	}
	logger.Info("edit: routing written", "path", *output)
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite database holding saved bundles")
	formID := fs.String("form-id", "", "form to print (lists forms when empty)")
	format := fs.String("format", "yaml", "output format: yaml or json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		return errors.New("show: -db is required")
	}

	db, err := store.Open(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if *formID == "" {
		ids, err := db.List(ctx)
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(ids, "\n"))
		return nil
	}

	b, err := db.Load(ctx, *formID)
	if err != nil {
		return err
	}
	var data []byte
	if strings.EqualFold(*format, "json") {
		data, err = routing.EncodeJSON(b.Routing)
	} else {
		data, err = routing.EncodeYAML(b.Routing)
	}
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func openSession(ctx context.Context, markupPath, routingPath string, options ...session.Option) (*session.Session, error) {
	doc, err := loadRouting(routingPath)
	if err != nil {
		return nil, err
	}
	form, err := markup.NewLoader().Load(ctx, markup.SourceFromFile(markupPath))
	if err != nil {
		return nil, err
	}
	return session.New(session.Input{Fields: form.Fields, Panels: form.Panels, Routing: doc}, options...)
}

func loadRouting(path string) (routing.Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	return routing.LoadFile(path)
}
