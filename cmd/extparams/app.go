package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-extparams/internal/metrics"
	"github.com/goliatone/go-extparams/pkg/document"
	"github.com/goliatone/go-extparams/pkg/parameter"
	"github.com/goliatone/go-extparams/pkg/prompt"
	"github.com/goliatone/go-extparams/pkg/validation"
)

const (
	configName = "extparams"
	envPrefix  = "EXTPARAMS"

	outputText = "text"
	outputJSON = "json"
)

// exitError carries a process exit code for failures that were already
// reported to the user.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// settings is the resolved configuration.
type settings struct {
	LogLevel    string
	Output      string
	MetricsFile string
}

// app wires configuration, logging and the prompt driver for the commands.
type app struct {
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer

	v        *viper.Viper
	settings settings
	logger   *log.Logger

	// newDriver builds the prompt driver; tests replace it.
	newDriver func() prompt.Driver

	registry *prometheus.Registry
	recorder *metrics.Recorder
}

func newApp(stdin *os.File, stdout, stderr io.Writer) *app {
	a := &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		v:      viper.New(),
		logger: log.New(io.Discard),
	}
	a.newDriver = func() prompt.Driver {
		out, ok := a.stdout.(*os.File)
		if !ok {
			out = os.Stdout
		}
		return prompt.NewSurveyDriver(a.stdin, out, a.stderr)
	}
	return a
}

// loadConfig reads the optional config file and environment, with flags
// taking precedence.
func (a *app) loadConfig(cmd *cobra.Command) error {
	v := a.v
	v.SetDefault("log.level", "warn")
	v.SetDefault("output", outputText)
	v.SetDefault("metrics.file", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"log.level":    "log-level",
		"output":       "output",
		"metrics.file": "metrics-file",
	} {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	path, _ := flags.GetString("config")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(home + string(os.PathSeparator) + configName)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	a.settings = settings{
		LogLevel:    v.GetString("log.level"),
		Output:      strings.ToLower(strings.TrimSpace(v.GetString("output"))),
		MetricsFile: v.GetString("metrics.file"),
	}
	if a.settings.Output != outputText && a.settings.Output != outputJSON {
		return fmt.Errorf("unsupported output %q (want %s or %s)", a.settings.Output, outputText, outputJSON)
	}

	level, err := log.ParseLevel(a.settings.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.settings.LogLevel, err)
	}
	a.logger = log.NewWithOptions(a.stderr, log.Options{
		Level:  level,
		Prefix: configName,
	})
	if used := v.ConfigFileUsed(); used != "" {
		a.logger.Debug("loaded config", "file", used)
	}
	return nil
}

func (a *app) validator() *validation.Validator {
	if a.settings.MetricsFile == "" {
		return validation.New()
	}
	if a.recorder == nil {
		a.registry = prometheus.NewRegistry()
		a.recorder = metrics.NewRecorder(a.registry)
	}
	return validation.New(validation.WithObserver(a.recorder))
}

// flushMetrics writes the collected counters in the Prometheus text format
// when a metrics file is configured.
func (a *app) flushMetrics() error {
	if a.registry == nil || a.settings.MetricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.settings.MetricsFile, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	a.logger.Debug("wrote metrics", "file", a.settings.MetricsFile)
	return nil
}

func (a *app) loadDocument(path string) (document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Document{}, err
	}
	doc, err := document.Parse(data, path)
	if err != nil {
		return document.Document{}, err
	}
	a.logger.Debug("parsed document", "file", path, "extension", doc.Extension, "parameters", len(doc.Parameters))
	return doc, nil
}

// resolveValues merges, in increasing precedence, the document's sample
// values, a values file and --set pairs.
func (a *app) resolveValues(doc document.Document, valuesFile string, pairs []string) (parameter.Values, error) {
	values := make(parameter.Values, len(doc.Values))
	for k, v := range doc.Values {
		values[k] = v
	}
	if valuesFile != "" {
		data, err := os.ReadFile(valuesFile)
		if err != nil {
			return nil, err
		}
		fromFile, err := document.ParseValues(data)
		if err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			values[k] = v
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q (want name=value)", pair)
		}
		values[key] = value
	}
	return values, nil
}
