// Command skillforge is a terminal client for the SkillForge backend:
// course catalog management, topic draft authoring, and examinations.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/skillforge-app/skillforge/internal/course"
	"github.com/skillforge-app/skillforge/internal/draft"
	"github.com/skillforge-app/skillforge/internal/events"
	"github.com/skillforge-app/skillforge/internal/exam"
	"github.com/skillforge-app/skillforge/internal/gateway"
	"github.com/skillforge-app/skillforge/internal/importer"
	"github.com/skillforge-app/skillforge/internal/platform/cache"
	"github.com/skillforge-app/skillforge/internal/platform/config"
	"github.com/skillforge-app/skillforge/internal/platform/database"
)

const usage = `usage: skillforge <command> [arguments]

commands:
  courses                list courses
  course -id N           show one course with its topics
  author -course N -file PATH [-name NAME]
                         build a topic draft from a yaml/xlsx file and save it
  generate -course N -name NAME
                         generate a topic draft on the backend and save it
  exam -topic N          take an examination, reading answers from stdin
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app, cleanup, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// app bundles the sessions behind the subcommands.
type app struct {
	courses *course.Session
	drafts  *draft.Session
	exams   *exam.Session
}

func newApp(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	client := gateway.NewClient(
		gateway.WithBaseURL(cfg.API.BaseURL),
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		gateway.WithToken(cfg.API.Token),
	)

	var closers []func()
	cleanup := func() {
		for _, fn := range closers {
			fn()
		}
	}

	var sink events.Logger = events.NopLogger{}
	if cfg.HasEventSink() {
		db, err := database.New(ctx, cfg.Events.DatabaseURL, cfg.Events.MaxConns, cfg.Events.MinConns)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect event sink: %w", err)
		}
		closers = append(closers, db.Close)
		sink = events.NewPostgresLogger(db.Pool)
	}

	var courseCache course.Cache
	if cfg.Cache.Enabled {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			// The catalog works without its cache.
			slog.Warn("cache unavailable, continuing without it", "error", err)
		} else {
			closers = append(closers, func() { c.Close() })
			courseCache = c
		}
	}

	return &app{
		courses: course.NewSession(course.SessionConfig{
			Gateway:  client,
			Cache:    courseCache,
			CacheTTL: cfg.Cache.TTL,
			Events:   sink,
		}),
		drafts: draft.NewSession(draft.SessionConfig{Gateway: client, Events: sink}),
		exams:  exam.NewSession(exam.SessionConfig{Gateway: client, Events: sink}),
	}, cleanup, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "courses":
		return a.listCourses(ctx)
	case "course":
		fs := flag.NewFlagSet("course", flag.ExitOnError)
		id := fs.Int("id", 0, "course id")
		fs.Parse(args)
		return a.showCourse(ctx, *id)
	case "author":
		fs := flag.NewFlagSet("author", flag.ExitOnError)
		courseID := fs.Int("course", 0, "course id")
		file := fs.String("file", "", "topic file (.yaml, .yml or .xlsx)")
		name := fs.String("name", "", "topic name (xlsx only)")
		fs.Parse(args)
		return a.authorTopic(ctx, *courseID, *file, *name)
	case "generate":
		fs := flag.NewFlagSet("generate", flag.ExitOnError)
		courseID := fs.Int("course", 0, "course id")
		name := fs.String("name", "", "topic name")
		fs.Parse(args)
		return a.generateTopic(ctx, *courseID, *name)
	case "exam":
		fs := flag.NewFlagSet("exam", flag.ExitOnError)
		topicID := fs.Int("topic", 0, "topic id")
		fs.Parse(args)
		return a.takeExam(ctx, *topicID)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) listCourses(ctx context.Context) error {
	courses, err := a.courses.FetchCourses(ctx, 0, 100)
	if err != nil {
		return err
	}
	for _, c := range courses {
		fmt.Printf("%d\t%s\t%s\n", c.ID, c.Name, c.Description)
	}
	return nil
}

func (a *app) showCourse(ctx context.Context, id int) error {
	if id == 0 {
		return fmt.Errorf("missing -id")
	}
	c, err := a.courses.FetchCourse(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n%s\n", c.Name, c.Description)
	for _, t := range c.Topics {
		fmt.Printf("  %d\t%s\n", t.ID, t.Name)
	}
	return nil
}

func (a *app) authorTopic(ctx context.Context, courseID int, file, name string) error {
	if courseID == 0 || file == "" {
		return fmt.Errorf("missing -course or -file")
	}

	var tree draft.TopicTree
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		tree, err = importer.TreeFromYAML(data)
		if err != nil {
			return err
		}
	case ".xlsx":
		if name == "" {
			return fmt.Errorf("-name is required for xlsx files")
		}
		var err error
		tree, err = importer.TreeFromXLSX(file, name)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported topic file %q", file)
	}

	a.drafts.ReplaceTree(tree, courseID)
	saved, err := a.drafts.SaveDraft(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("created topic %d (%s) with %d skills\n", saved.ID, saved.Name, len(saved.Skills))
	return nil
}

func (a *app) generateTopic(ctx context.Context, courseID int, name string) error {
	if courseID == 0 || name == "" {
		return fmt.Errorf("missing -course or -name")
	}
	if err := a.drafts.GenerateDraft(ctx, courseID, name); err != nil {
		return err
	}
	saved, err := a.drafts.SaveDraft(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("created topic %d (%s) with %d skills\n", saved.ID, saved.Name, len(saved.Skills))
	return nil
}

func (a *app) takeExam(ctx context.Context, topicID int) error {
	if topicID == 0 {
		return fmt.Errorf("missing -topic")
	}
	questions, err := a.exams.FetchQuestions(ctx, topicID)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	for _, q := range questions {
		fmt.Printf("\n[level %d] %s\n> ", q.SFIALevel, q.QuestionText)
		if !scanner.Scan() {
			break
		}
		if err := a.exams.SetAnswer(q.ID, scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	graded, err := a.exams.SubmitAnswers(ctx)
	if err != nil {
		return err
	}

	correct := 0
	for _, g := range graded.Answers {
		mark := "✗"
		if g.Correct {
			mark = "✓"
			correct++
		}
		fmt.Printf("%s %s\n", mark, g.Question)
		if !g.Correct && g.Explanation != "" {
			fmt.Printf("  %s\n", g.Explanation)
		}
	}
	fmt.Printf("\n%d/%d correct\n", correct, len(graded.Answers))
	return nil
}
