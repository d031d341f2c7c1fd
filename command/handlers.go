package command

import (
	"context"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-errors"
)

// MinitGenerator renders minutes; *docgen.Service satisfies it.
type MinitGenerator interface {
	GenerateMinit(ctx context.Context, data docgen.MinitData, assets docgen.MinitAssets, format docgen.Format) (docgen.Artifact, error)
}

// OprGenerator renders program reports; *docgen.Service satisfies it.
type OprGenerator interface {
	GenerateOprHTML(ctx context.Context, data docgen.OprData) (docgen.Artifact, error)
	GenerateOprPrint(ctx context.Context, data docgen.OprData) (docgen.Artifact, error)
	GenerateOprFragment(ctx context.Context, data docgen.OprData) (docgen.Artifact, error)
	GenerateOprPdf(ctx context.Context, data docgen.OprData) (docgen.Artifact, error)
	GenerateOprImage(ctx context.Context, data docgen.OprData) (docgen.Artifact, error)
	GenerateOprJob(ctx context.Context, data docgen.OprData) (docgen.Artifact, error)
}

// ProfileSource returns the active settings profile.
type ProfileSource interface {
	Current() (docgen.Profile, error)
}

// ArtifactLister lists and removes stored artifacts.
type ArtifactLister interface {
	List(ctx context.Context) ([]docgen.ArtifactRef, error)
	Delete(ctx context.Context, key string) error
}

// GenerateMinitHandler handles minit generation.
type GenerateMinitHandler struct {
	Service  MinitGenerator
	Profiles ProfileSource
}

func NewGenerateMinitHandler(svc MinitGenerator, profiles ProfileSource) *GenerateMinitHandler {
	return &GenerateMinitHandler{Service: svc, Profiles: profiles}
}

func (h *GenerateMinitHandler) Execute(ctx context.Context, msg GenerateMinit) error {
	if h == nil || h.Service == nil {
		return errors.New("minit service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	data := msg.Request.MinitData
	assets := msg.Request.MinitAssets
	if msg.UseProfile {
		profile, err := currentProfile(h.Profiles)
		if err != nil {
			return err
		}
		profile.Settings.ApplyToMinit(&data, profile.Name)
		assets = mergeAssets(assets, profile.Settings.MinitAssets())
	}

	artifact, err := h.Service.GenerateMinit(ctx, data, assets, msg.Format)
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, artifact)
	return nil
}

// GenerateOprHandler handles program report generation.
type GenerateOprHandler struct {
	Service  OprGenerator
	Profiles ProfileSource
}

func NewGenerateOprHandler(svc OprGenerator, profiles ProfileSource) *GenerateOprHandler {
	return &GenerateOprHandler{Service: svc, Profiles: profiles}
}

func (h *GenerateOprHandler) Execute(ctx context.Context, msg GenerateOpr) error {
	if h == nil || h.Service == nil {
		return errors.New("opr service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	data := msg.Data
	if msg.UseProfile {
		profile, err := currentProfile(h.Profiles)
		if err != nil {
			return err
		}
		profile.Settings.ApplyToOpr(&data)
	}

	var (
		artifact docgen.Artifact
		err      error
	)
	switch {
	case msg.Format == docgen.FormatHTML && msg.Print:
		artifact, err = h.Service.GenerateOprPrint(ctx, data)
	case msg.Format == docgen.FormatHTML && msg.Fragment:
		artifact, err = h.Service.GenerateOprFragment(ctx, data)
	case msg.Format == docgen.FormatHTML:
		artifact, err = h.Service.GenerateOprHTML(ctx, data)
	case msg.Format == docgen.FormatPDF:
		artifact, err = h.Service.GenerateOprPdf(ctx, data)
	case msg.Format == docgen.FormatPNG:
		artifact, err = h.Service.GenerateOprImage(ctx, data)
	default:
		artifact, err = h.Service.GenerateOprJob(ctx, data)
	}
	if err != nil {
		return err
	}
	storeResult(ctx, msg.Result, artifact)
	return nil
}

// CleanupArtifactsHandler removes artifacts older than Retention.
type CleanupArtifactsHandler struct {
	Store     ArtifactLister
	Retention time.Duration
	Config    gcmd.HandlerConfig
	Clock     func() time.Time
}

func NewCleanupArtifactsHandler(store ArtifactLister, retention time.Duration) *CleanupArtifactsHandler {
	return &CleanupArtifactsHandler{Store: store, Retention: retention}
}

func (h *CleanupArtifactsHandler) Execute(ctx context.Context, msg CleanupArtifacts) error {
	if h == nil || h.Store == nil {
		return errors.New("artifact store is required", errors.CategoryInternal).
			WithTextCode("STORE_REQUIRED")
	}
	count := 0
	if h.Retention > 0 {
		now := msg.Now
		if now.IsZero() && h.Clock != nil {
			now = h.Clock()
		}
		if now.IsZero() {
			now = time.Now()
		}
		cutoff := now.Add(-h.Retention)

		refs, err := h.Store.List(ctx)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			if ref.Meta.CreatedAt.IsZero() || !ref.Meta.CreatedAt.Before(cutoff) {
				continue
			}
			if err := h.Store.Delete(ctx, ref.Key); err != nil {
				return err
			}
			count++
		}
	}
	if msg.Result != nil {
		*msg.Result = count
	}
	if res := gcmd.ResultFromContext[int](ctx); res != nil {
		res.Store(count)
	}
	return nil
}

func (h *CleanupArtifactsHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), CleanupArtifacts{})
	}
}

func (h *CleanupArtifactsHandler) CronOptions() gcmd.HandlerConfig {
	return h.Config
}

func currentProfile(src ProfileSource) (docgen.Profile, error) {
	if src == nil {
		return docgen.Profile{}, errors.New("settings profiles are not configured", errors.CategoryInternal).
			WithTextCode("PROFILES_REQUIRED")
	}
	profile, err := src.Current()
	if err != nil {
		return docgen.Profile{}, docgen.AsGoError(err)
	}
	return profile, nil
}

func mergeAssets(assets, fallback docgen.MinitAssets) docgen.MinitAssets {
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	if assets.Font == "" {
		assets.Font = fallback.Font
	}
	fill(&assets.Logo1, fallback.Logo1)
	fill(&assets.Logo2, fallback.Logo2)
	fill(&assets.SetiausahaSignature, fallback.SetiausahaSignature)
	fill(&assets.KetuaPanitiaSignature, fallback.KetuaPanitiaSignature)
	return assets
}

func storeResult(ctx context.Context, dst *docgen.Artifact, artifact docgen.Artifact) {
	if dst != nil {
		*dst = artifact
	}
	if res := gcmd.ResultFromContext[docgen.Artifact](ctx); res != nil {
		res.Store(artifact)
	}
}
