package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"objectdb/jsck"
	"objectdb/jsck/report"
	"objectdb/kv/memkv"
	"objectdb/schema/schemafixture"
	"objectdb/schemaregistry"
)

type jsckFlags struct {
	schemaFile string
	format     string
	repair     bool
}

func jsckCmd() *cobra.Command {
	flags := &jsckFlags{}
	cmd := &cobra.Command{
		Use:   "jsck",
		Short: "Scan a database for consistency issues",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runJsck(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.schemaFile, "schema", "s", "", "Path to a schemafixture TOML file (required)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "human", "Output format: human, json, or summary")
	cmd.Flags().BoolVar(&flags.repair, "repair", false, "Apply every found issue's fix before printing the report")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func runJsck(flags *jsckFlags) error {
	s, err := schemafixture.LoadFile(flags.schemaFile)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}
	if err := s.LockDown(); err != nil {
		return fmt.Errorf("locking schema: %w", err)
	}

	registry := schemaregistry.New()
	version, err := registry.Register(s)
	if err != nil {
		return fmt.Errorf("registering schema: %w", err)
	}

	ctx := context.Background()
	engine := memkv.New()

	result, err := jsck.Scan(ctx, engine, s, version)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	if flags.repair {
		if err := result.Repair(ctx, engine); err != nil {
			return fmt.Errorf("repairing: %w", err)
		}
		result, err = jsck.Scan(ctx, engine, s, version)
		if err != nil {
			return fmt.Errorf("re-scanning after repair: %w", err)
		}
	}

	formatter, err := report.NewFormatter(flags.format)
	if err != nil {
		return err
	}
	out, err := formatter.Format(result)
	if err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}
	fmt.Print(out)
	return nil
}
