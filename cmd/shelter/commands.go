package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deppfellow/shelter/internal/lib/utils"
	"github.com/deppfellow/shelter/internal/repository"
)

func createCmd() *cobra.Command {
	var doc string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Insert one animal document",
		Example: `  shelter create --doc '{"name": "Rex", "type": "Dog", "age": 2}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			document, err := parseObject("doc", doc)
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, a *app) error {
				created, err := a.services.Animals.Create(ctx, repository.Document(document))
				if err != nil {
					return err
				}
				return utils.PrintJSON(cmd.OutOrStdout(), map[string]bool{"created": created})
			})
		},
	}

	cmd.Flags().StringVar(&doc, "doc", "", "animal document as a JSON object (required)")
	_ = cmd.MarkFlagRequired("doc")

	return cmd
}

func readCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "read",
		Short: "List animals matching a query",
		Example: `  shelter read --query '{"type": "Cat"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseOptionalObject("query", query)
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, a *app) error {
				docs, err := a.services.Animals.Read(ctx, repository.Query(q))
				if err != nil {
					return err
				}
				return utils.PrintJSON(cmd.OutOrStdout(), docs)
			})
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "filter as a JSON object; empty matches every animal")

	return cmd
}

func updateCmd() *cobra.Command {
	var query, values string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Set fields on the first animal matching a query",
		Example: `  shelter update --query '{"name": "Rex"}' --values '{"age": 3}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseObject("query", query)
			if err != nil {
				return err
			}
			v, err := parseObject("values", values)
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, a *app) error {
				modified, err := a.services.Animals.Update(ctx, repository.Query(q), repository.Document(v))
				if err != nil {
					return err
				}
				return utils.PrintJSON(cmd.OutOrStdout(), map[string]bool{"modified": modified})
			})
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "filter as a JSON object (required)")
	cmd.Flags().StringVar(&values, "values", "", "fields to set as a JSON object (required)")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("values")

	return cmd
}

func deleteCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the first animal matching a query",
		Example: `  shelter delete --query '{"name": "Rex"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseObject("query", query)
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, a *app) error {
				deleted, err := a.services.Animals.Delete(ctx, repository.Query(q))
				if err != nil {
					return err
				}
				return utils.PrintJSON(cmd.OutOrStdout(), map[string]bool{"deleted": deleted})
			})
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "filter as a JSON object (required)")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func analyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Summarize animals per type",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				groups, err := a.services.Animals.Analytics(ctx)
				if err != nil {
					return err
				}
				return utils.PrintJSON(cmd.OutOrStdout(), groups)
			})
		},
	}
}

func exportCmd() *cobra.Command {
	var query, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write animals matching a query to a JSON file",
		Example: `  shelter export --query '{"type": "Dog"}' --out dogs.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseOptionalObject("query", query)
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, a *app) error {
				data, err := a.services.Animals.Export(ctx, repository.Query(q))
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				return os.WriteFile(out, data, 0o644)
			})
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "filter as a JSON object; empty matches every animal")
	cmd.Flags().StringVarP(&out, "out", "o", "animals.json", `output file, "-" for stdout`)

	return cmd
}

// parseObject decodes a required JSON object flag.
func parseObject(flag, raw string) (map[string]any, error) {
	if raw == "" {
		return nil, fmt.Errorf("--%s is required", flag)
	}

	var obj map[string]any
	if err := utils.DecodeJSON([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("--%s must be a JSON object: %w", flag, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("--%s must be a JSON object", flag)
	}
	return obj, nil
}

// parseOptionalObject is parseObject where an empty flag means nil.
func parseOptionalObject(flag, raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	return parseObject(flag, raw)
}
