package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Muhsiinn/Jonas-AI/internal/flagstore"
	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
	"github.com/Muhsiinn/Jonas-AI/internal/llm"
	"github.com/Muhsiinn/Jonas-AI/internal/prompts"
	"github.com/Muhsiinn/Jonas-AI/internal/roleplay"
	"github.com/Muhsiinn/Jonas-AI/internal/server"
	"github.com/Muhsiinn/Jonas-AI/internal/store"
	"github.com/Muhsiinn/Jonas-AI/internal/writing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address (overrides JONAS_ADDR env var)")
	serveCmd.Flags().String("redis", "localhost:6379", "Redis address for session flags (overrides JONAS_REDIS_ADDR env var)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	redisAddr := flagOrEnv(cmd, "redis", "JONAS_REDIS_ADDR", "localhost:6379")
	flags, err := flagstore.Connect(ctx, redisAddr)
	if err != nil {
		return fmt.Errorf("connect flag store: %w", err)
	}
	defer flags.Close()

	cfg := llm.ConfigFromEnv()
	factory, err := llm.NewFactory(cfg, st.EventRepo())
	if err != nil {
		return fmt.Errorf("init llm providers: %w", err)
	}

	ps, err := prompts.Load()
	if err != nil {
		return err
	}

	srv := server.New(
		server.Services{
			Lesson:   lesson.NewService(factory, ps),
			Roleplay: roleplay.NewService(factory, ps, flags, st.RoleplayRepo(), st.LessonRepo()),
			Writing:  writing.NewService(factory, ps),
		},
		server.Repos{
			Situations: st.SituationRepo(),
			Lessons:    st.LessonRepo(),
			Writings:   st.WritingRepo(),
		},
	)

	addr := flagOrEnv(cmd, "addr", "JONAS_ADDR", ":8080")
	slog.Info("starting jonas", "db", dbPath, "redis", redisAddr, "provider", cfg.Provider)
	return srv.ListenAndServe(ctx, addr)
}

func flagOrEnv(cmd *cobra.Command, flag, env, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" && cmd.Flags().Changed(flag) {
		return v
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return fallback
}
