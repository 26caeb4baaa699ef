package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/idgen"
	"quizmaster-service/internal/infra/memory"
)

// NewSeedCmd dry-runs the configured seed catalog against a throwaway store
// and prints what would be imported.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate the seed catalog without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			if file != "" {
				cfg.Seed.File = file
			}
			if cfg.Seed.File == "" && cfg.Postgres.URL == "" {
				return fmt.Errorf("no seed file or postgres url configured")
			}

			service := app.NewQuizService(memory.NewQuizStore(idgen.NewSequenceGenerator("seed")), app.WithLogger(logger))
			if err := seedCatalog(cmd.Context(), cfg, service, logger); err != nil {
				return err
			}
			for _, quiz := range service.ListQuizzes(cmd.Context()) {
				questions, _ := service.ParticipantQuestions(cmd.Context(), quiz.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d questions\n", quiz.Title, len(questions))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed YAML file (overrides config)")
	return cmd
}
