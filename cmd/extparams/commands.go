package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-extparams/pkg/document"
	"github.com/goliatone/go-extparams/pkg/openapi"
	"github.com/goliatone/go-extparams/pkg/parameter"
	"github.com/goliatone/go-extparams/pkg/prompt"
	"github.com/goliatone/go-extparams/pkg/validation"
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "extparams",
		Short:         "Validate extension instance parameters",
		Long:          "extparams checks instance parameter values against the parameter definitions an extension publishes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./extparams.yaml)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringP("output", "o", outputText, "output format (text or json)")

	root.AddCommand(
		newValidateCommand(a),
		newActiveCommand(a),
		newLintCommand(a),
		newSchemaCommand(a),
		newPromptCommand(a),
	)
	return root
}

type valueFlags struct {
	file  string
	pairs []string
}

func (f *valueFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "values", "f", "", "values file (JSON or YAML object, or host value list)")
	cmd.Flags().StringArrayVar(&f.pairs, "set", nil, "set a value (name=value), repeatable")
}

func newValidateCommand(a *app) *cobra.Command {
	var vf valueFlags
	cmd := &cobra.Command{
		Use:   "validate DOCUMENT",
		Short: "Validate values against a parameter document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(args[0])
			if err != nil {
				return err
			}
			values, err := a.resolveValues(doc, vf.file, vf.pairs)
			if err != nil {
				return err
			}

			res := a.validator().Validate(doc.Extension, doc.Parameters, values)
			if err := a.flushMetrics(); err != nil {
				return err
			}
			a.logger.Info("validated", "extension", doc.Extension, "success", res.Success, "findings", len(res.Findings))

			if err := writeResult(cmd.OutOrStdout(), a.settings.Output, res); err != nil {
				return err
			}
			if !res.Success {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().String("metrics-file", "", "write validation counters to this file in Prometheus text format")
	vf.register(cmd)
	return cmd
}

func writeResult(w io.Writer, output string, res validation.Result) error {
	if output == outputJSON {
		return writeJSON(w, res)
	}
	if res.Success {
		_, err := fmt.Fprintln(w, "valid")
		return err
	}
	_, err := fmt.Fprintln(w, res.Message)
	return err
}

func newActiveCommand(a *app) *cobra.Command {
	var vf valueFlags
	cmd := &cobra.Command{
		Use:   "active DOCUMENT",
		Short: "List the parameters that are active for the given values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(args[0])
			if err != nil {
				return err
			}
			values, err := a.resolveValues(doc, vf.file, vf.pairs)
			if err != nil {
				return err
			}

			active := validation.ActiveParameters(doc.Parameters, values)
			if a.settings.Output == outputJSON {
				ids := make([]string, 0, len(active))
				for _, def := range active {
					ids = append(ids, def.ID)
				}
				return writeJSON(cmd.OutOrStdout(), ids)
			}
			for _, def := range active {
				marker := ""
				if def.Required {
					marker = " (required)"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s%s\n", def.ID, def.Name, marker); err != nil {
					return err
				}
			}
			return nil
		},
	}
	vf.register(cmd)
	return cmd
}

type lintReport struct {
	Source string            `json:"source"`
	Issues []parameter.Issue `json:"issues"`
}

func newLintCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint PATH...",
		Short: "Check parameter documents for structural problems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, reports, err := collectDocuments(a, args)
			if err != nil {
				return err
			}

			for _, doc := range docs {
				issues := parameter.Lint(doc.Parameters)
				if len(issues) > 0 {
					reports = append(reports, lintReport{Source: doc.Source, Issues: issues})
				}
			}
			sort.SliceStable(reports, func(i, j int) bool { return reports[i].Source < reports[j].Source })
			a.logger.Info("linted documents", "documents", len(docs), "failing", len(reports))

			out := cmd.OutOrStdout()
			if a.settings.Output == outputJSON {
				if reports == nil {
					reports = []lintReport{}
				}
				if err := writeJSON(out, reports); err != nil {
					return err
				}
			} else {
				for _, report := range reports {
					for _, issue := range report.Issues {
						if _, err := fmt.Fprintf(out, "%s: %s\n", report.Source, issue); err != nil {
							return err
						}
					}
				}
			}
			if len(reports) > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}

// collectDocuments parses files directly and loads directories through
// document.LoadFSPartial. Documents that cannot be loaded are returned as
// lint reports; sources are prefixed with the path they were found under.
func collectDocuments(a *app, paths []string) ([]document.Document, []lintReport, error) {
	var (
		docs    []document.Document
		reports []lintReport
	)
	loadFailed := func(source string, err error) {
		reports = append(reports, lintReport{Source: source, Issues: []parameter.Issue{{Message: err.Error()}}})
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, nil, err
		}
		if !info.IsDir() {
			doc, err := a.loadDocument(path)
			if err != nil {
				loadFailed(path, err)
				continue
			}
			docs = append(docs, doc)
			continue
		}

		store, failures, err := document.LoadFSPartial(os.DirFS(path))
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, failure := range failures {
			loadFailed(filepath.Join(path, failure.Source), failure.Err)
		}
		for _, doc := range store.Documents() {
			doc.Source = filepath.Join(path, doc.Source)
			docs = append(docs, doc)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Source < docs[j].Source })
	return docs, reports, nil
}

func newSchemaCommand(a *app) *cobra.Command {
	var documentSchema bool
	cmd := &cobra.Command{
		Use:   "schema [DOCUMENT]",
		Short: "Print the OpenAPI schema of a document's instance parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if documentSchema {
				_, err := out.Write(document.SchemaJSON())
				return err
			}
			if len(args) == 0 {
				return errors.New("a document is required unless --document-schema is set")
			}
			doc, err := a.loadDocument(args[0])
			if err != nil {
				return err
			}
			return writeJSON(out, openapi.Schema(doc.Parameters))
		},
	}
	cmd.Flags().BoolVar(&documentSchema, "document-schema", false, "print the JSON Schema parameter documents must follow")
	return cmd
}

func newPromptCommand(a *app) *cobra.Command {
	var (
		vf       valueFlags
		hostList bool
	)
	cmd := &cobra.Command{
		Use:   "prompt DOCUMENT",
		Short: "Collect values interactively and print them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(args[0])
			if err != nil {
				return err
			}
			prefill, err := a.resolveValues(doc, vf.file, vf.pairs)
			if err != nil {
				return err
			}

			collector := prompt.NewCollector(a.newDriver())
			values, err := collector.Collect(cmd.Context(), doc.Parameters, prefill)
			if err != nil {
				return err
			}

			res := a.validator().Validate(doc.Extension, doc.Parameters, values)
			if err := a.flushMetrics(); err != nil {
				return err
			}
			if !res.Success {
				if err := writeResult(cmd.ErrOrStderr(), outputText, res); err != nil {
					return err
				}
				return &exitError{code: 1}
			}
			if hostList {
				return writeJSON(cmd.OutOrStdout(), parameter.ValueList{Values: parameter.ToList(doc.Parameters, values)})
			}
			return writeJSON(cmd.OutOrStdout(), values)
		},
	}
	cmd.Flags().BoolVar(&hostList, "list", false, "print values in host list form")
	cmd.Flags().String("metrics-file", "", "write validation counters to this file in Prometheus text format")
	vf.register(cmd)
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
