package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"nibl/internal/builder"
	"nibl/internal/config"
	"nibl/internal/output"
	"nibl/internal/scaffold"
	"nibl/internal/server"
)

type appConfig struct {
	debug      bool
	unsafe     bool
	configFile string
}

func newRootCmd() *cobra.Command {
	appCfg := &appConfig{}

	rootCmd := &cobra.Command{
		Use:           "nibl",
		Short:         "nibl - a quiet static site generator for documentation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetupLogging(appCfg.debug)
		},
	}
	rootCmd.PersistentFlags().BoolVar(&appCfg.debug, "debug", false, "Enable debug mode for verbose output.")
	rootCmd.PersistentFlags().BoolVar(&appCfg.unsafe, "unsafe", false, "Disable HTML sanitization. Allows all raw HTML.")
	rootCmd.PersistentFlags().StringVar(&appCfg.configFile, "config", configFile, "Path to the site config file (env overrides: NIBL_*).")

	rootCmd.AddCommand(newGenCmd(appCfg))
	rootCmd.AddCommand(newServeCmd(appCfg))
	rootCmd.AddCommand(newNewCmd(appCfg))
	rootCmd.AddCommand(newMetaCmd(appCfg))
	return rootCmd
}

func (c *appConfig) buildOptions() builder.BuildOptions {
	return builder.BuildOptions{
		Unsafe: c.unsafe,
		Debug:  c.debug,
	}
}

func newGenCmd(appCfg *appConfig) *cobra.Command {
	var keep bool
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate the site from content",
		Long: `Generate the site from content into public/.

The output directory is cleaned first unless --keep is given. With --keep the
page metadata index is appended to, so records from earlier builds remain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := appCfg.buildOptions()
			opts.CleanDestination = !keep
			return runFullBuild(appCfg.configFile, opts)
		},
	}
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep existing output and append to the metadata index.")
	return cmd
}

func newServeCmd(appCfg *appConfig) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local dev server with auto-rebuild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buildFunc := func(opts builder.BuildOptions) error {
				return runFullBuild(appCfg.configFile, opts)
			}
			return server.Run(server.Options{
				Port:       port,
				OutputDir:  outputDir,
				WatchPaths: []string{contentDir, templateDir, staticDir, appCfg.configFile},
			}, buildFunc, appCfg.buildOptions())
		},
	}
	cmd.Flags().IntVar(&port, "port", 1313, "Port for the local development server.")
	return cmd
}

func newNewCmd(appCfg *appConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "new site <name> | new <type> <title>",
		Short: "Create a new site scaffold or new content from the archetype",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "site" {
				return scaffold.CreateNewSite(args[1])
			}
			return scaffold.CreateNewContent(".", args[0], args[1], appCfg.configFile)
		},
	}
}

func newMetaCmd(appCfg *appConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "meta <content-file>",
		Short: "Print the resolved metadata record of a content file",
		Long: `Print the record a build would add to the metadata index for one content
file: its title, URL, front matter merged with inherited directory metadata,
and breadcrumb parents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			siteCfg, err := config.LoadSiteConfig(appCfg.configFile)
			if err != nil {
				return fmt.Errorf("failed to load site config: %w", err)
			}
			record, err := builder.ResolvePage(contentDir, args[0], siteCfg)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(record)
		},
	}
}

// runFullBuild loads config and templates and builds the site.
func runFullBuild(cfgPath string, opts builder.BuildOptions) error {
	output.Info("Building site")
	siteCfg, err := config.LoadSiteConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load site config: %w", err)
	}

	tmpl, err := builder.LoadTemplates(templateDir, siteCfg.Template)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	pageCount, err := builder.BuildSite(outputDir, contentDir, staticDir, siteCfg, tmpl, opts)
	if err != nil {
		return fmt.Errorf("site generation failed: %w", err)
	}
	output.Info("✅ Build successful", "pages", pageCount)
	if siteCfg.Metadata.Enabled {
		output.Debug("metadata index", "path", filepath.Join(outputDir, siteCfg.Metadata.IndexFile))
	}
	return nil
}
