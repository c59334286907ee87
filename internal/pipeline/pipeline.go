// Package pipeline runs the embed-then-extract sequence end to end:
//
//	decode cover (text) -> decode secret (text) -> embed -> write stego (binary)
//	-> extract from the in-memory stego raster -> write recovered (text)
//
// Any failure stops the run and is reported as a single *StageError. Files
// written by earlier stages are left on disk.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/pgm-stego/internal/config"
	"github.com/ironsheep/pgm-stego/internal/raster"
	"github.com/ironsheep/pgm-stego/internal/stego"
	"go.uber.org/zap"
)

// Stage names one step of the pipeline.
type Stage string

const (
	StageDecodeCover    Stage = "read cover image"
	StageDecodeSecret   Stage = "read secret image"
	StageEmbed          Stage = "embed secret"
	StageWriteStego     Stage = "write stego image"
	StageDecodeStego    Stage = "read stego image"
	StageExtract        Stage = "extract secret"
	StageWriteRecovered Stage = "write extracted secret image"
)

// StageError is the terminal error of a failed run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, or "" if err did not come from Run.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// Result summarizes a successful run.
type Result struct {
	Dims      raster.Dims `json:"dims"`
	Stego     string      `json:"stego"`
	Recovered string      `json:"recovered"`

	// CoverDistortion compares the cover with the stego raster.
	CoverDistortion *stego.Stats `json:"cover_distortion"`

	// SecretFidelity compares the secret with the recovered raster.
	SecretFidelity *stego.Stats `json:"secret_fidelity"`

	Elapsed time.Duration `json:"elapsed"`
}

// Run executes the full pipeline described by cfg. log may be nil.
func Run(cfg config.Config, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	start := time.Now()
	log = log.With(zap.Stringer("dims", cfg.Dims))

	cover, err := raster.LoadTextFile(cfg.Cover, cfg.Dims)
	if err != nil {
		return nil, fail(log, StageDecodeCover, err)
	}
	log.Debug("cover loaded", zap.String("path", cfg.Cover))

	secret, err := raster.LoadTextFile(cfg.Secret, cfg.Dims)
	if err != nil {
		return nil, fail(log, StageDecodeSecret, err)
	}
	log.Debug("secret loaded", zap.String("path", cfg.Secret))

	embedded, err := stego.Embed(cover, secret)
	if err != nil {
		return nil, fail(log, StageEmbed, err)
	}

	if err := raster.SaveFile(cfg.Stego, embedded, raster.FormatBinary); err != nil {
		return nil, fail(log, StageWriteStego, err)
	}
	log.Debug("stego written", zap.String("path", cfg.Stego))

	recovered, err := stego.Extract(embedded)
	if err != nil {
		return nil, fail(log, StageExtract, err)
	}

	if err := raster.SaveFile(cfg.Recovered, recovered, raster.FormatText); err != nil {
		return nil, fail(log, StageWriteRecovered, err)
	}
	log.Debug("recovered secret written", zap.String("path", cfg.Recovered))

	res := &Result{
		Dims:      cfg.Dims,
		Stego:     cfg.Stego,
		Recovered: cfg.Recovered,
		Elapsed:   time.Since(start),
	}
	// Dimensions already match, so these cannot fail.
	res.CoverDistortion, _ = stego.Compare(cover, embedded)
	res.SecretFidelity, _ = stego.Compare(secret, recovered)

	log.Info("pipeline complete",
		zap.Float64("cover_psnr_db", res.CoverDistortion.PSNR),
		zap.Float64("secret_psnr_db", res.SecretFidelity.PSNR),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func fail(log *zap.Logger, stage Stage, err error) error {
	log.Error("pipeline stage failed",
		zap.String("stage", string(stage)),
		zap.String("kind", string(raster.KindOf(err))),
		zap.Error(err))
	return &StageError{Stage: stage, Err: err}
}
