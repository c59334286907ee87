package main

import (
	"fmt"
	"os"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/ironsheep/pgm-stego/internal/config"
	"github.com/ironsheep/pgm-stego/internal/logging"
	"github.com/ironsheep/pgm-stego/internal/pipeline"
	"github.com/ironsheep/pgm-stego/internal/raster"
	"github.com/ironsheep/pgm-stego/internal/server"
	"github.com/ironsheep/pgm-stego/internal/stego"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	cfgFile string
	cfg     config.Config
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pgm-stego",
		Short: "Hide one grayscale PGM image inside another with 4-bit LSB steganography",
		Long: `pgm-stego embeds the high 4 bits of every secret sample into the low 4 bits
of the matching cover sample, and recovers them again.

All rasters in one run must have the configured width and height (default 512x512).
Settings come from flags, PGM_STEGO_* environment variables or a --config file.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.New(), cmd.Flags(), a.cfgFile)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			log, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			log.Debug("configuration loaded",
				zap.String("version", Version),
				zap.Stringer("dims", cfg.Dims))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("pgm-stego %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")
	config.AddGlobalFlags(root.PersistentFlags())

	root.AddCommand(
		a.runCmd(),
		a.embedCmd(),
		a.extractCmd(),
		a.convertCmd(),
		a.exportCmd(),
		a.diffCmd(),
		a.infoCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Embed the secret in the cover, then extract it again",
		Long: `run reads the text-form cover and secret rasters, writes the embedded
result in binary form, extracts the secret from it and writes that in text form.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := pipeline.Run(a.cfg, a.log)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stego image:      %s (cover PSNR %.2f dB)\n", res.Stego, res.CoverDistortion.PSNR)
			fmt.Fprintf(out, "Extracted secret: %s (secret PSNR %.2f dB)\n", res.Recovered, res.SecretFidelity.PSNR)
			fmt.Fprintln(out, "Steganography process completed successfully.")
			return nil
		},
	}
	config.AddPipelineFlags(cmd.Flags())
	return cmd
}

func (a *app) embedCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "embed <cover> <secret> <output>",
		Short: "Hide a secret raster inside a cover raster",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := raster.ParseFormat(format)
			if err != nil {
				return err
			}
			res, err := pipeline.EmbedFiles(args[0], args[1], args[2], f, a.cfg.Dims)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Embedded %s into %s -> %s (%s, PSNR %.2f dB)\n",
				args[1], args[0], res.Output, res.Format, res.Distortion.PSNR)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "binary", "output form: text or binary")
	return cmd
}

func (a *app) extractCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "extract <stego> <output>",
		Short: "Recover the hidden secret from a stego raster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := raster.ParseFormat(format)
			if err != nil {
				return err
			}
			res, err := pipeline.ExtractFile(args[0], args[1], f, a.cfg.Dims)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %s -> %s (%s)\n", args[0], res.Output, res.Format)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output form: text or binary")
	return cmd
}

func (a *app) convertCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "convert <image> <output>",
		Short: "Convert a PNG, JPEG, GIF, BMP or TIFF image into a raster of the configured size",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := raster.ParseFormat(format)
			if err != nil {
				return err
			}
			img, err := raster.ImportFile(args[0], a.cfg.Dims)
			if err != nil {
				return err
			}
			if err := raster.SaveFile(args[1], img, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s (%s, %s)\n", args[0], args[1], img.Dims, f)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output form: text or binary")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var (
		scale   float64
		extract bool
	)
	cmd := &cobra.Command{
		Use:   "export <raster> <output.png>",
		Short: "Write a raster as a viewable image (format follows the output extension)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := raster.LoadFile(args[0], a.cfg.Dims)
			if err != nil {
				return err
			}
			if extract {
				if img, err = stego.Extract(img); err != nil {
					return err
				}
			}
			if err := raster.ExportPNGFile(args[1], img, scale); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s -> %s\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().Float64Var(&scale, "scale", 1.0, "output scale factor")
	cmd.Flags().BoolVar(&extract, "extract", false, "export the secret hidden in the raster instead")
	return cmd
}

func (a *app) diffCmd() *cobra.Command {
	var (
		heatmap string
		gain    float64
	)
	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Report MSE/PSNR between two rasters and optionally write a difference heatmap",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imgA, err := raster.LoadFile(args[0], a.cfg.Dims)
			if err != nil {
				return err
			}
			imgB, err := raster.LoadFile(args[1], a.cfg.Dims)
			if err != nil {
				return err
			}
			st, err := stego.Compare(imgA, imgB)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Samples changed: %d (%.2f%%)\n", st.Changed, st.ChangedPercent)
			fmt.Fprintf(out, "Max difference:  %d\n", st.MaxAbsDiff)
			fmt.Fprintf(out, "MSE:             %.4f\n", st.MSE)
			if st.Identical {
				fmt.Fprintln(out, "PSNR:            identical")
			} else {
				fmt.Fprintf(out, "PSNR:            %.2f dB\n", st.PSNR)
			}

			if heatmap == "" {
				return nil
			}
			diff, err := stego.DiffImage(imgA, imgB, gain)
			if err != nil {
				return err
			}
			if err := imgio.Save(heatmap, diff, imgio.PNGEncoder()); err != nil {
				return fmt.Errorf("failed to write heatmap: %w", err)
			}
			fmt.Fprintf(out, "Heatmap:         %s\n", heatmap)
			return nil
		},
	}
	cmd.Flags().StringVar(&heatmap, "heatmap", "", "write a PNG difference heatmap to this path")
	cmd.Flags().Float64Var(&gain, "gain", 17, "difference amplification for the heatmap")
	return cmd
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <raster>",
		Short: "Print the header of a raster file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hdr, err := raster.ReadHeaderFile(args[0])
			if err != nil {
				return err
			}
			match := "matches"
			if hdr.Dims != a.cfg.Dims {
				match = "does not match"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s), %s, max-gray %d; %s configured %s\n",
				args[0], string(hdr.Format), hdr.Format, hdr.Dims, hdr.MaxGray, match, a.cfg.Dims)
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as an MCP server over stdin/stdout",
		Long: `serve speaks the Model Context Protocol (JSON-RPC 2.0, one request per line)
on stdin/stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server.ServerVersion = Version
			a.log.Info("MCP server starting", zap.Stringer("dims", a.cfg.Dims))
			return server.New(a.cfg.Dims, a.log).Run(os.Stdin, os.Stdout)
		},
	}
}
