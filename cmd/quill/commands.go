package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/quill/internal/actions"
	"github.com/hyperjump/quill/internal/assistant"
	"github.com/hyperjump/quill/internal/chunking"
	"github.com/hyperjump/quill/internal/cli"
	"github.com/hyperjump/quill/internal/config"
	"github.com/hyperjump/quill/internal/docsearch"
	"github.com/hyperjump/quill/internal/host"
	"github.com/hyperjump/quill/internal/models"
	"github.com/hyperjump/quill/internal/server"
	"github.com/hyperjump/quill/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const rootLongDescription = `quill prepares assistant turns against a document and applies the edit
directives ([ACTION:TYPE:PAYLOAD]) found in model replies.

Documents are resolved against documents.root from the config. Markdown and plain
text documents are edited in place; DOCX, ODT and PDF documents are read-only.`

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	debug      bool
	format     string
}

// session is the loaded config, logger and output format for one command run.
type session struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
	format     cli.OutputFormat
}

func (o *rootOptions) open() (*session, error) {
	format, err := cli.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	cfg, loaded, err := loadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	debug := cfg.Debug || o.debug
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", loaded), zap.Bool("debug", debug))
	return &session{cfg: cfg, configPath: loaded, logger: logger, format: format}, nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "quill",
		Short:        "Document editing assistant",
		Long:         rootLongDescription,
		Version:      version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate("quill version {{.Version}}\n")
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file path (default ./config.yaml, then "+defaultConfigPath+")")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.StringVar(&opts.format, "format", string(cli.OutputText), "output format: text or json")

	root.AddCommand(
		newContextCommand(opts),
		newApplyCommand(opts),
		newParseCommand(opts),
		newOutlineCommand(opts),
		newSearchCommand(opts),
		newHistoryCommand(opts),
		newServeCommand(opts),
		newVersionCommand(),
	)
	return root
}

// openDocument resolves a command-line path against the working directory and opens it
// through the registry, which confines it to the document root.
func openDocument(ctx context.Context, reg *host.Registry, arg string) (host.Document, string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return nil, "", fmt.Errorf("invalid path %q: %w", arg, err)
	}
	doc, err := reg.Open(ctx, abs)
	if err != nil {
		return nil, "", err
	}
	rel, err := filepath.Rel(reg.Root(), doc.Path())
	if err != nil {
		rel = doc.Path()
	}
	return doc, filepath.ToSlash(rel), nil
}

// readReply reads a model reply from path, or from stdin when path is "" or "-".
func readReply(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read reply: %w", err)
	}
	return string(data), nil
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func newContextCommand(opts *rootOptions) *cobra.Command {
	var (
		req  assistant.TurnRequest
		mode string
	)
	cmd := &cobra.Command{
		Use:   "context <document>",
		Short: "Scan a document for a query and print the prompts for the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer func() { _ = s.logger.Sync() }()
			c, err := initializeComponents(s.cfg, s.logger, false)
			if err != nil {
				return err
			}
			defer c.Close()

			doc, rel, err := openDocument(cmd.Context(), c.Registry, args[0])
			if err != nil {
				return err
			}
			req.Document = rel
			req.Mode = modeOrDefault(mode, s.cfg)
			turn, err := c.Processor.Prepare(cmd.Context(), doc, req)
			if err != nil {
				return err
			}
			return cli.WriteContext(cmd.OutOrStdout(), turn, s.format)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.Query, "query", "q", "", "user query (required)")
	f.StringVar(&req.Selection, "selection", "", "selected text")
	f.StringVar(&req.CurrentChapter, "chapter", "", "title of the chapter being edited")
	f.StringVar(&mode, "mode", "", "chat mode: agent, ask or custom (default from config)")
	f.IntVar(&req.ContextWindow, "window", 0, "model context window in tokens (default from config)")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func newApplyCommand(opts *rootOptions) *cobra.Command {
	var (
		req  assistant.ApplyRequest
		mode string
	)
	cmd := &cobra.Command{
		Use:   "apply <document> [reply-file]",
		Short: "Apply the edit directives in a model reply to a document",
		Long:  "Apply the edit directives in a model reply to a document. The reply is read from reply-file, or from stdin when it is omitted or \"-\".",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer func() { _ = s.logger.Sync() }()
			reply, err := readReply(cmd, argAt(args, 1))
			if err != nil {
				return err
			}
			c, err := initializeComponents(s.cfg, s.logger, true)
			if err != nil {
				return err
			}
			defer c.Close()

			doc, rel, err := openDocument(cmd.Context(), c.Registry, args[0])
			if err != nil {
				return err
			}
			req.Document = rel
			req.Mode = modeOrDefault(mode, s.cfg)
			req.Reply = reply
			out, err := c.Processor.Apply(cmd.Context(), doc, req)
			if err != nil {
				return err
			}
			return cli.WriteOutcome(cmd.OutOrStdout(), out, s.format)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.Query, "query", "q", "", "user query the reply answers (journaled)")
	f.StringVar(&req.Selection, "selection", "", "selected text (journaled)")
	f.StringVar(&mode, "mode", "", "chat mode: agent, ask or custom (default from config)")
	f.StringVar(&req.TurnID, "turn", "", "turn id from a previous context command")
	return cmd
}

func newParseCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [reply-file]",
		Short: "List the edit directives in a model reply without applying them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer func() { _ = s.logger.Sync() }()
			reply, err := readReply(cmd, argAt(args, 0))
			if err != nil {
				return err
			}
			res := actions.NewParser(actions.WithParserLogger(s.logger)).ParseReport(reply)
			return cli.WriteParse(cmd.OutOrStdout(), res, s.format)
		},
	}
}

func newOutlineCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "outline <document>",
		Short: "Print a document's headings and statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer func() { _ = s.logger.Sync() }()
			c, err := initializeComponents(s.cfg, s.logger, false)
			if err != nil {
				return err
			}
			defer c.Close()

			doc, rel, err := openDocument(cmd.Context(), c.Registry, args[0])
			if err != nil {
				return err
			}
			paragraphs, err := doc.ReadParagraphs(cmd.Context())
			if err != nil {
				return fmt.Errorf("read paragraphs: %w", err)
			}
			return cli.WriteOutline(cmd.OutOrStdout(), cli.OutlineReport{
				Document: rel,
				Outline:  chunking.Outline(paragraphs),
				Stats:    chunking.ComputeStats(paragraphs),
			}, s.format)
		},
	}
}

func newSearchCommand(opts *rootOptions) *cobra.Command {
	var (
		limit int
		fuzzy bool
	)
	cmd := &cobra.Command{
		Use:   "search <document> <query>...",
		Short: "Full-text search over a document's passages",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := buildSearchQuery(args[1:])
			if query == "" {
				return docsearch.ErrEmptyQuery
			}
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer func() { _ = s.logger.Sync() }()
			c, err := initializeComponents(s.cfg, s.logger, false)
			if err != nil {
				return err
			}
			defer c.Close()

			doc, _, err := openDocument(cmd.Context(), c.Registry, args[0])
			if err != nil {
				return err
			}
			paragraphs, err := doc.ReadParagraphs(cmd.Context())
			if err != nil {
				return fmt.Errorf("read paragraphs: %w", err)
			}
			idx, err := docsearch.Build(cmd.Context(), paragraphs)
			if err != nil {
				return err
			}
			defer func() { _ = idx.Close() }()

			if limit <= 0 {
				limit = s.cfg.Search.DefaultLimit
			}
			hits, err := idx.Search(cmd.Context(), query, limit, &docsearch.SearchOptions{
				SectionBoost: s.cfg.Search.SectionBoost,
				Fuzzy:        fuzzy,
			})
			if err != nil {
				return err
			}
			return cli.WriteSearchHits(cmd.OutOrStdout(), query, hits, s.format)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum passages (default from config)")
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "tolerate typos in query terms")
	return cmd
}

// buildSearchQuery joins args into a single query with single spaces.
func buildSearchQuery(args []string) string {
	return strings.Join(strings.Fields(strings.Join(args, " ")), " ")
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var (
		document      string
		offset, limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled turns, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer func() { _ = s.logger.Sync() }()
			if !s.cfg.Journal.EnabledOrDefault() {
				return errors.New("journal is disabled in config")
			}
			c, err := initializeComponents(s.cfg, s.logger, true)
			if err != nil {
				return err
			}
			defer c.Close()

			turns, err := c.Journal.ListTurns(cmd.Context(), document, offset, limit)
			if err != nil {
				return err
			}
			total, err := c.Journal.CountTurns(cmd.Context())
			if err != nil {
				return err
			}
			return cli.WriteHistory(cmd.OutOrStdout(), turns, total, s.format)
		},
	}
	f := cmd.Flags()
	f.StringVar(&document, "document", "", "only turns for this document (path relative to the root)")
	f.IntVar(&offset, "offset", 0, "skip this many turns")
	f.IntVarP(&limit, "limit", "n", 20, "maximum turns")
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer func() { _ = s.logger.Sync() }()
			logger := s.logger
			logger.Info("config loaded",
				zap.String("config_path", s.configPath),
				zap.String("documents_root", s.cfg.Documents.Root),
				zap.Bool("debug", s.cfg.Debug || opts.debug))

			c, err := initializeComponents(s.cfg, logger, true)
			if err != nil {
				return err
			}
			defer c.Close()

			watchCtx, watchCancel := context.WithCancel(context.Background())
			defer watchCancel()
			if s.cfg.Documents.WatchOrDefault() {
				if err := c.Registry.Watch(watchCtx); err != nil {
					return fmt.Errorf("failed to start watcher: %w", err)
				}
			}

			srv := server.NewServer(c.Processor, c.Registry, c.Journal, s.cfg, logger)
			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			select {
			case <-sigChan:
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			}

			logger.Info("Shutting down...")
			watchCancel()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quill version %s\n", version)
		},
	}
}

func modeOrDefault(mode string, cfg *config.Config) models.ChatMode {
	if mode == "" {
		return cfg.Assistant.DefaultMode
	}
	return models.ChatMode(mode)
}
