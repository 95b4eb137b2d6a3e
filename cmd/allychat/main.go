package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rogally/allychat/ai"
	"github.com/rogally/allychat/ai/answer"
	"github.com/rogally/allychat/ai/retrieval"
	"github.com/rogally/allychat/internal/metrics"
	"github.com/rogally/allychat/internal/profile"
	"github.com/rogally/allychat/internal/version"
	"github.com/rogally/allychat/server"
	"github.com/rogally/allychat/store"
	"github.com/rogally/allychat/store/db"
)

var rootCmd = &cobra.Command{
	Use:     "allychat",
	Short:   `A grounded Q&A chatbot for the ROG Xbox Ally handheld, answering from a pre-embedded knowledge base.`,
	Version: version.String(),
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Try to load .env file from current directory (ignore error if file doesn't exist)
		_ = godotenv.Load()
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Version: version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}

		aiConfig := ai.NewConfigFromProfile(instanceProfile)
		if err := aiConfig.Validate(); err != nil {
			slog.Error("invalid AI configuration", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "error", err)
			return
		}
		storeInstance := store.New(dbDriver, instanceProfile)

		// Singletons, created once and shared by all requests.
		embeddingService, err := ai.NewEmbeddingService(&aiConfig.Embedding)
		if err != nil {
			slog.Error("failed to create embedding service", "error", err)
			return
		}
		llmService, err := ai.NewLLMService(&aiConfig.LLM)
		if err != nil {
			slog.Error("failed to create LLM service", "error", err)
			return
		}

		exporter := metrics.NewExporter()
		retriever := retrieval.NewRetriever(storeInstance, embeddingService, &retrieval.Options{
			TextMatchScore: instanceProfile.TextMatchScore,
			Metrics:        exporter,
		})
		composer := answer.NewComposer(llmService, nil)

		s, err := server.NewServer(ctx, instanceProfile, storeInstance, retriever, composer, exporter)
		if err != nil {
			slog.Error("failed to create server", "error", err)
			return
		}

		c := make(chan os.Signal, 1)
		// Trigger graceful shutdown on SIGINT or SIGTERM. The default signal
		// sent by the `kill` command is SIGTERM, which most process managers
		// (systemd, Kubernetes) use to request shutdown.
		signal.Notify(c, terminationSignals...)

		if err := s.Start(ctx); err != nil {
			slog.Error("failed to start server", "error", err)
			return
		}

		go llmService.Warmup(ctx)

		printGreetings(instanceProfile)

		go func() {
			<-c
			s.Shutdown(ctx)
			cancel()
		}()

		// Wait for CTRL-C.
		<-ctx.Done()
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "postgres")
	viper.SetDefault("port", 8080)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8080, "port of server")
	rootCmd.PersistentFlags().String("driver", "postgres", "database driver (only postgres is supported)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")

	for _, flag := range []string{"mode", "addr", "port", "driver", "dsn"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("allychat")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("allychat %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Mode: %s\n", profile.Mode)
	fmt.Printf("LLM provider: %s (%s)\n", profile.LLMProvider, profile.LLMModel)
	if len(profile.Addr) == 0 {
		fmt.Printf("Ask away at: http://localhost:%d\n", profile.Port)
	} else {
		fmt.Printf("Ask away at: http://%s:%d\n", profile.Addr, profile.Port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
