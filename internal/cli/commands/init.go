package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/boxoffice/internal/cli/config"
	"github.com/leapstack-labs/boxoffice/internal/movies"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = `# boxoffice configuration.
# Every key can be overridden with a BOXOFFICE_ environment variable
# (nested keys use a double underscore, e.g. BOXOFFICE_PLOT__DPI) or a flag.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new boxoffice project",
		Long: `Initialize a new boxoffice project with a default configuration.

This creates:
  - boxoffice.yaml with every setting at its default
  - data/ for cost_revenue_dirty.csv
  - plots/ for rendered figures`,
		Example: `  # Initialize in current directory
  boxoffice init

  # Initialize in a new directory
  boxoffice init my-analysis

  # Force overwrite existing config
  boxoffice init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cmdCtx := NewCommandContextWithoutSession(cmd)
			return runInit(cmdCtx, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cmdCtx *CommandContext, dir string, force bool) error {
	r := cmdCtx.Renderer

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileNames[0])
	}

	content, err := defaultConfigYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	cmdCtx.Logger.Debug("wrote config", "path", configPath)

	created := []string{config.ConfigFileNames[0]}
	for _, sub := range []string{filepath.Dir(config.DefaultDataPath), config.DefaultPlotsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", sub, err)
		}
		created = append(created, sub+"/")
	}

	for _, f := range created {
		r.Printf("  %s %s\n", r.Styles().Success.Render("✓"), f)
	}
	r.Println("")
	r.Success("boxoffice project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Printf("  1. Copy the dataset to %s\n", config.DefaultDataPath)
	r.Println("  2. Run 'boxoffice run' for the walkthrough")
	r.Println("  3. Run 'boxoffice query' to explore the data with SQL")

	return nil
}

// defaultConfigYAML renders config.Default() with the scrape date as a
// plain YYYY-MM-DD value.
func defaultConfigYAML() ([]byte, error) {
	cfg := config.Default()

	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	mapping := &doc
	if mapping.Kind == yaml.DocumentNode && len(mapping.Content) > 0 {
		mapping = mapping.Content[0]
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == "scrape_date" {
			mapping.Content[i+1] = &yaml.Node{
				Kind:  yaml.ScalarNode,
				Tag:   "!!str",
				Value: cfg.ScrapeDate.Format(movies.DateLayout),
			}
		}
	}

	body, err := yaml.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return append([]byte(configHeader), body...), nil
}
