package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vale981/klayout-converter/pkg/config"
	"github.com/vale981/klayout-converter/pkg/convert"
	apperrors "github.com/vale981/klayout-converter/pkg/errors"
	"github.com/vale981/klayout-converter/pkg/export"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output       string // output file path, or "-" for stdout
	topCell      string // cell to extract
	nameProperty string // property key carrying shape names
	lengthUnit   int    // output unit exponent relative to meters
	strict       bool   // fail on geometry anomalies instead of warning
	force        bool   // overwrite existing output without asking
	noCache      bool   // bypass the result cache
	configPath   string // explicit config file path
}

// convertCommand creates the convert command.
//
// Flag values take precedence over the config file, which takes precedence
// over the built-in defaults (cell "devicegen", property "devicegen_name",
// nanometer output).
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a layout file to JSON polygon data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with .json, '-' for stdout)")
	cmd.Flags().StringVar(&opts.topCell, "top-cell", "", "cell to extract (default: devicegen)")
	cmd.Flags().StringVar(&opts.nameProperty, "name-property", "", "property key carrying shape names (default: devicegen_name)")
	cmd.Flags().IntVar(&opts.lengthUnit, "length-unit", convert.DefaultLengthUnit, "output unit as power-of-ten exponent of meters (-9: nm)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on geometry anomalies instead of warning")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite existing output files")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the result cache")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default: ./klayout-converter.toml)")

	return cmd
}

func (c *CLI) runConvert(cmd *cobra.Command, input string, opts *convertOpts) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	convOpts := convert.Options{
		TopCell:      opts.topCell,
		NameProperty: opts.nameProperty,
		Strict:       opts.strict,
		Logger:       c.Logger,
	}
	if cmd.Flags().Changed("length-unit") {
		convOpts.SetLengthUnit(opts.lengthUnit)
	}
	cfg.ApplyTo(&convOpts)
	convOpts.SetDefaults()

	runner, err := c.newRunner(cmd, opts.noCache, cfg)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	res, cached, err := runner.Convert(cmd.Context(), input, convOpts)
	if err != nil {
		return formatError(err)
	}
	prog.done(fmt.Sprintf("Converted %d shapes", res.ShapeCount()))

	if opts.output == "-" {
		return export.Write(res, os.Stdout)
	}

	outPath := opts.output
	if outPath == "" {
		outPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".json"
	}

	force := opts.force || cfg.Force
	err = export.ToFile(res, outPath, force)
	if errors.Is(err, export.ErrExists) {
		ok, err := confirm(fmt.Sprintf("%s exists, overwrite?", outPath))
		if err != nil || !ok {
			printInfo("Aborted, %s left untouched", outPath)
			return err
		}
		err = export.ToFile(res, outPath, true)
		if err != nil {
			return formatError(err)
		}
	} else if err != nil {
		return formatError(err)
	}

	printSuccess("Converted %s", input)
	printFile(outPath)
	printStats(len(res.Layers), res.ShapeCount(), cached)
	if res.ShapeCount() == 0 {
		printWarning("No shapes found in cell %q", convOpts.TopCell)
	}
	return nil
}

// loadConfig reads the config file, falling back to the default lookup
// locations when no explicit path was given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// formatError strips the machine-readable prefix for terminal display while
// keeping the full error available with --verbose.
func formatError(err error) error {
	if code := apperrors.GetCode(err); code != "" {
		return fmt.Errorf("%s (%s)", apperrors.UserMessage(err), code)
	}
	return err
}
