package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/automenta/mcr-sub003/internal/config"
	"github.com/automenta/mcr-sub003/internal/llm"
	"github.com/automenta/mcr-sub003/internal/logging"
	"github.com/automenta/mcr-sub003/internal/mcr"
	"github.com/automenta/mcr-sub003/internal/reason"
	"github.com/automenta/mcr-sub003/internal/server"
	"github.com/automenta/mcr-sub003/internal/session"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mcr",
	Short: "Model Context Reasoner - natural language over a logic engine",
	Long: `mcr keeps per-session logic knowledge bases and uses a language model
to translate natural language into clauses and queries against them.

Statements are classified as facts or rules, compiled deterministically,
and proved by an embedded Prolog engine. The model never decides truth;
it only translates.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, cleanup, err := buildService(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: server.New(svc, logger.Named("http")).Handler(),
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("http server listening", zap.String("addr", cfg.Server.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive session against a fresh knowledge base",
	Long: `Starts a session and reads lines from stdin. Plain lines are queries.

Commands:
  :assert <text>  translate and add a statement
  :kb             print the session's clauses
  :new            start a fresh session
  :demo <name>    run a built-in scenario
  :quit           exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, cleanup, err := buildService(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		return runREPL(ctx, svc)
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo [name]",
	Short: "Run a built-in scenario end to end",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, cleanup, err := buildService(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if len(args) == 0 {
			fmt.Println("Available demos:")
			for _, d := range mcr.Demos() {
				fmt.Printf("  %-22s %s\n", d.Name, d.Description)
			}
			return nil
		}
		name := strings.Join(args, " ")
		d, ok := mcr.FindDemo(name)
		if !ok {
			return fmt.Errorf("unknown demo %q", name)
		}
		return svc.RunDemo(ctx, os.Stdout, d)
	},
}

func buildService(ctx context.Context) (*mcr.Service, func(), error) {
	client, err := llm.New(ctx, llm.Options{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("llm provider ready", zap.String("provider", client.Name()))

	engine := reason.New(cfg.Reason.QueryTimeout, cfg.Reason.MaxSolutions)
	store := session.New(cfg.Session.TTL)
	svc := mcr.New(client, engine, store, logger.Named("core"))
	cleanup := func() {
		store.Close()
		_ = client.Close()
	}
	return svc, cleanup, nil
}

func runREPL(ctx context.Context, svc *mcr.Service) error {
	id, err := svc.CreateSession("")
	if err != nil {
		return err
	}
	fmt.Printf("session %s ready. Plain lines are queries; :help for commands.\n", id)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == ":quit" || line == ":q":
			return nil
		case line == ":help":
			fmt.Println(":assert <text>, :kb, :new, :demo <name>, :quit")
		case line == ":kb":
			kb, err := svc.KnowledgeBase(id)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if kb == "" {
				fmt.Println("(empty)")
			} else {
				fmt.Println(kb)
			}
		case line == ":new":
			_ = svc.DeleteSession(id)
			id, err = svc.CreateSession("")
			if err != nil {
				return err
			}
			fmt.Printf("session %s ready.\n", id)
		case strings.HasPrefix(line, ":demo"):
			name := strings.TrimSpace(strings.TrimPrefix(line, ":demo"))
			d, ok := mcr.FindDemo(name)
			if !ok {
				fmt.Println("unknown demo; available:")
				for _, dd := range mcr.Demos() {
					fmt.Println(" ", dd.Name)
				}
				continue
			}
			if err := svc.RunDemo(ctx, os.Stdout, d); err != nil {
				fmt.Println("demo error:", err)
			}
		case strings.HasPrefix(line, ":assert "):
			text := strings.TrimPrefix(line, ":assert ")
			res, err := svc.Assert(ctx, id, text)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("[%s] added %d clause(s), %d total\n",
				res.Intent, len(res.AddedClauses), res.TotalClauses)
			for _, c := range res.AddedClauses {
				fmt.Println("  +", c)
			}
		default:
			res, err := svc.Query(ctx, id, line, mcr.QueryOptions{Hybrid: true})
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("goal:", res.GeneratedQuery)
			if res.Hybrid {
				fmt.Println("(answered without the knowledge base)")
			}
			fmt.Println(res.Answer)
		}
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "mcr.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, replCmd, demoCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
