// Package assets resolves the cosmetic sidebar files (portrait, CV,
// sponsor logos) from configuration. A missing file never affects lookups.
package assets

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/chemassist/assistant/backend/internal/config"
	"github.com/chemassist/assistant/backend/internal/logging"
)

var (
	ErrAssetMissing = errors.New("asset missing")
	ErrUnknownAsset = errors.New("unknown asset")
)

// Kind groups assets by their role in the sidebar.
type Kind string

const (
	KindPortrait Kind = "portrait"
	KindCV       Kind = "cv"
	KindSponsor  Kind = "sponsor"
)

// Asset is one resolved static file.
type Asset struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	ContentType string `json:"contentType"`
	// DownloadAs is set for assets offered as attachments.
	DownloadAs string `json:"downloadAs,omitempty"`
	Available  bool   `json:"available"`
	Error      string `json:"error,omitempty"`

	path string
}

// Path is the resolved file-system location.
func (a Asset) Path() string {
	return a.path
}

// Sidebar is the static descriptive content plus asset availability.
type Sidebar struct {
	AssistantName string  `json:"assistantName"`
	Title         string  `json:"title"`
	Bio           string  `json:"bio"`
	Caption       string  `json:"caption"`
	About         string  `json:"about"`
	CVLabel       string  `json:"cvLabel"`
	Portrait      *Asset  `json:"portrait,omitempty"`
	CV            *Asset  `json:"cv,omitempty"`
	Sponsors      []Asset `json:"sponsors"`
	// Errors collects one inline message per missing asset.
	Errors []string `json:"errors,omitempty"`
}

// Resolver maps configured asset names onto files under one directory.
type Resolver struct {
	cfg    config.AssetConfig
	known  map[string]Kind
	logger *zap.Logger
}

// NewResolver builds a resolver from configuration.
func NewResolver(cfg config.AssetConfig, logger *zap.Logger) *Resolver {
	known := make(map[string]Kind)
	if cfg.Portrait != "" {
		known[cfg.Portrait] = KindPortrait
	}
	if cfg.CV != "" {
		known[cfg.CV] = KindCV
	}
	for _, sponsor := range cfg.Sponsors {
		known[sponsor] = KindSponsor
	}

	return &Resolver{cfg: cfg, known: known, logger: logging.OrNop(logger)}
}

// Resolve returns the asset registered under name. Only configured names
// resolve, so request paths cannot escape the asset directory.
func (r *Resolver) Resolve(name string) (Asset, error) {
	kind, ok := r.known[name]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrUnknownAsset, name)
	}

	asset := Asset{
		Name:        name,
		Kind:        kind,
		ContentType: contentType(name),
		path:        filepath.Join(r.cfg.Dir, filepath.Clean("/"+name)),
	}
	if kind == KindCV {
		asset.DownloadAs = r.cfg.CVDownloadAs
	}

	info, err := os.Stat(asset.path)
	if err != nil || info.IsDir() {
		asset.Error = fmt.Sprintf("Error loading sidebar content: %s not found", name)
		return asset, fmt.Errorf("%w: %s", ErrAssetMissing, name)
	}

	asset.Available = true
	return asset, nil
}

// Open resolves name and opens the file for reading.
func (r *Resolver) Open(name string) (Asset, *os.File, error) {
	asset, err := r.Resolve(name)
	if err != nil {
		return asset, nil, err
	}

	f, err := os.Open(asset.path)
	if err != nil {
		return asset, nil, fmt.Errorf("%w: %v", ErrAssetMissing, err)
	}
	return asset, f, nil
}

// Sidebar assembles the sidebar. Missing files are reported in
// Sidebar.Errors and never fail the call.
func (r *Resolver) Sidebar() Sidebar {
	sidebar := Sidebar{
		AssistantName: r.cfg.AssistantName,
		Title:         r.cfg.Title,
		Bio:           r.cfg.Bio,
		Caption:       r.cfg.Caption,
		About:         r.cfg.About,
		CVLabel:       r.cfg.CVLabel,
		Sponsors:      []Asset{},
	}

	if r.cfg.Portrait != "" {
		asset := r.describe(r.cfg.Portrait, &sidebar)
		sidebar.Portrait = &asset
	}
	if r.cfg.CV != "" {
		asset := r.describe(r.cfg.CV, &sidebar)
		sidebar.CV = &asset
	}
	for _, sponsor := range r.cfg.Sponsors {
		sidebar.Sponsors = append(sidebar.Sponsors, r.describe(sponsor, &sidebar))
	}

	return sidebar
}

func (r *Resolver) describe(name string, sidebar *Sidebar) Asset {
	asset, err := r.Resolve(name)
	if err != nil {
		r.logger.Warn("sidebar asset unavailable", zap.String("asset", name), zap.Error(err))
		sidebar.Errors = append(sidebar.Errors, asset.Error)
	}
	return asset
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
