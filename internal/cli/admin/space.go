package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/hivemindhq/hivemind/internal/config"
	"github.com/hivemindhq/hivemind/internal/repository"
	"github.com/hivemindhq/hivemind/internal/service"
)

func SpaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "space",
		Short: "Manage knowledge spaces",
		Long:  "Create and list knowledge spaces",
	}

	cmd.AddCommand(SpaceCreateCmd())
	cmd.AddCommand(SpaceListCmd())

	return cmd
}

func SpaceCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new knowledge space",
		Long:  "Create a new knowledge space with the specified name",
		Args:  cobra.ExactArgs(1),
		RunE:  runSpaceCreate,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runSpaceCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	spaceRepo := repository.NewSpaceRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(spaceRepo, apiKeyRepo, uuidGen)

	space, err := authSvc.CreateSpace(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create space: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         space.ID,
			"name":       space.Name,
			"created_at": space.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Space created: %s (%s)\n", space.Name, space.ID)
	}

	return nil
}

func SpaceListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all knowledge spaces",
		Long:  "List all knowledge spaces in the system",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runSpaceList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runSpaceList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	spaceRepo := repository.NewSpaceRepository(pool)

	spaces, err := spaceRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list spaces: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(spaces))
		for i, space := range spaces {
			data[i] = map[string]interface{}{
				"id":         space.ID,
				"name":       space.Name,
				"created_at": space.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(spaces) == 0 {
			fmt.Println("No spaces found")
			return nil
		}
		fmt.Println("Spaces:")
		for _, space := range spaces {
			fmt.Printf("  %s: %s (created: %s)\n", space.ID, space.Name, space.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
