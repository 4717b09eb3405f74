package commands

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/phonebook/internal/cli/config"
	"github.com/leapstack-labs/phonebook/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the phone book and show its settings",
		Long: `Open the phone book, apply pending migrations and report what was found:
the config file in use, the database path, the schema version and
how many contacts, favorites, messages and calls are stored.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  phonebook doctor
  phonebook doctor -o json`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
}

// DoctorOutput is the machine-readable output of the doctor command.
type DoctorOutput struct {
	ConfigFile    string       `json:"config_file,omitempty" yaml:"config_file,omitempty"`
	Database      string       `json:"database" yaml:"database"`
	Timezone      string       `json:"timezone" yaml:"timezone"`
	HistoryFile   string       `json:"history_file,omitempty" yaml:"history_file,omitempty"`
	SchemaVersion int64        `json:"schema_version" yaml:"schema_version"`
	Counts        DoctorCounts `json:"counts" yaml:"counts"`
}

// DoctorCounts holds row counts per record kind.
type DoctorCounts struct {
	Contacts  int64 `json:"contacts" yaml:"contacts"`
	Favorites int64 `json:"favorites" yaml:"favorites"`
	Messages  int64 `json:"messages" yaml:"messages"`
	Calls     int64 `json:"calls" yaml:"calls"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	version, err := cmdCtx.Store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	stats, err := cmdCtx.Book.Stats(ctx)
	if err != nil {
		return err
	}

	out := DoctorOutput{
		ConfigFile:    config.GetConfigFileUsed(),
		Database:      cmdCtx.Cfg.DatabasePath,
		Timezone:      cmdCtx.Book.Location().String(),
		HistoryFile:   cmdCtx.Cfg.HistoryFile,
		SchemaVersion: version,
		Counts: DoctorCounts{
			Contacts:  stats.Contacts,
			Favorites: stats.Favorites,
			Messages:  stats.Messages,
			Calls:     stats.Calls,
		},
	}

	r := cmdCtx.Renderer
	if ok, err := r.Data(out); ok {
		return err
	}
	renderDoctor(r, &out)
	return nil
}

func renderDoctor(r *output.Renderer, out *DoctorOutput) {
	configFile := out.ConfigFile
	if configFile == "" {
		configFile = "(none, using defaults)"
	}

	settings := [][2]string{
		{"Config file", configFile},
		{"Database", out.Database},
		{"Timezone", out.Timezone},
		{"Schema version", strconv.FormatInt(out.SchemaVersion, 10)},
	}
	if out.HistoryFile != "" {
		settings = append(settings, [2]string{"History file", out.HistoryFile})
	}
	counts := [][2]string{
		{"Contacts", strconv.FormatInt(out.Counts.Contacts, 10)},
		{"Favorites", strconv.FormatInt(out.Counts.Favorites, 10)},
		{"Messages", strconv.FormatInt(out.Counts.Messages, 10)},
		{"Calls", strconv.FormatInt(out.Counts.Calls, 10)},
	}

	r.Header(1, "Phone book")
	writeKeyValues(r, settings)
	r.Println("")
	r.Header(2, "Records")
	writeKeyValues(r, counts)
}

func writeKeyValues(r *output.Renderer, pairs [][2]string) {
	markdown := r.EffectiveMode() == output.ModeMarkdown
	for _, kv := range pairs {
		if markdown {
			r.Println(output.FormatKeyValue(kv[0], kv[1]))
			continue
		}
		r.Printf("  %-16s %s\n", r.Styles().Bold.Render(kv[0]+":"), kv[1])
	}
}
