// Package viewer turns model and texture files into the display state: it
// dispatches on file suffix, parses, normalizes scale and applies textures.
// All state changes go through Apply so a single goroutine can own them.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/modelview/internal/logging"
	"github.com/taigrr/modelview/pkg/models"
	"github.com/taigrr/modelview/pkg/render"
)

// User-facing messages for failed loads.
const (
	MsgModelError   = "Error loading the file. Make sure it is a valid .obj or .stl file."
	MsgTextureError = "Error loading the texture. Make sure it is a valid .jpg file."
)

var (
	// ErrUnsupportedFormat means the model file name has neither a .stl nor
	// an .obj suffix.
	ErrUnsupportedFormat = errors.New("unsupported model format")
	// ErrUnsupportedTexture means the texture is not a JPEG file.
	ErrUnsupportedTexture = errors.New("unsupported texture format")
)

// Parsers are the format decoders. They are swappable so tests can observe
// which parser runs.
type Parsers struct {
	STL func(data []byte) (*models.Mesh, error)
	OBJ func(text string) (*models.Model, error)
}

// DefaultParsers returns the real STL and OBJ decoders.
func DefaultParsers() Parsers {
	return Parsers{STL: models.ParseSTL, OBJ: models.ParseOBJ}
}

// Options configure a Viewer. Zero fields take defaults.
type Options struct {
	TargetSize     float64          // largest model dimension after loading
	TextureMaxSize int              // textures are downscaled to fit this square
	STLMaterial    *models.Material // surface for STL meshes
	Parsers        Parsers
	Logger         *slog.Logger
}

// DefaultTextureMaxSize bounds decoded texture dimensions.
const DefaultTextureMaxSize = 512

// State is a snapshot of what is on screen.
type State struct {
	Model       *models.Model
	Texture     *render.Texture
	Err         string
	ModelName   string
	TextureName string
}

// ResultKind tells which load produced a Result.
type ResultKind int

const (
	ModelResult ResultKind = iota + 1
	TextureResult
)

func (k ResultKind) String() string {
	switch k {
	case ModelResult:
		return "model"
	case TextureResult:
		return "texture"
	default:
		return "unknown"
	}
}

// Result is the outcome of one load.
type Result struct {
	Kind    ResultKind
	Name    string
	Model   *models.Model
	Texture *render.Texture
	Err     error
}

// Viewer owns the display state. Load methods are safe to call from any
// goroutine; Apply and State must be called from the owning goroutine.
type Viewer struct {
	opts    Options
	logger  *slog.Logger
	results chan Result
	state   State
}

// New creates a Viewer.
func New(opts Options) *Viewer {
	if opts.TargetSize <= 0 {
		opts.TargetSize = models.DefaultTargetSize
	}
	if opts.TextureMaxSize <= 0 {
		opts.TextureMaxSize = DefaultTextureMaxSize
	}
	defaults := DefaultParsers()
	if opts.Parsers.STL == nil {
		opts.Parsers.STL = defaults.STL
	}
	if opts.Parsers.OBJ == nil {
		opts.Parsers.OBJ = defaults.OBJ
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Viewer{
		opts:    opts,
		logger:  opts.Logger,
		results: make(chan Result, 16),
	}
}

// ModelKind picks the parser for a file name by suffix, ignoring case.
func ModelKind(name string) (models.Kind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".stl":
		return models.KindSTL, nil
	case ".obj":
		return models.KindOBJ, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(name))
	}
}

// LoadModel parses and normalizes a model file. It does not touch the
// viewer state.
func (v *Viewer) LoadModel(name string, data []byte) (*models.Model, error) {
	kind, err := ModelKind(name)
	if err != nil {
		return nil, err
	}

	var model *models.Model
	switch kind {
	case models.KindSTL:
		mesh, err := v.opts.Parsers.STL(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if v.opts.STLMaterial != nil {
			mesh.Material = *v.opts.STLMaterial
		}
		model, err = models.NormalizeSTL(mesh, v.opts.TargetSize)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", name, err)
		}
	case models.KindOBJ:
		parsed, err := v.opts.Parsers.OBJ(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		model, err = models.NormalizeOBJ(parsed, v.opts.TargetSize)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", name, err)
		}
	}

	model.Name = filepath.Base(name)
	return model, nil
}

// OpenModel reads and loads a model file on a new goroutine and delivers
// the outcome on Results.
func (v *Viewer) OpenModel(ctx context.Context, path string) {
	go func() {
		res := Result{Kind: ModelResult, Name: filepath.Base(path)}
		// reject by name before touching the file
		if _, err := ModelKind(path); err != nil {
			res.Err = err
		} else if data, err := os.ReadFile(path); err != nil {
			res.Err = fmt.Errorf("read model: %w", err)
		} else {
			res.Model, res.Err = v.LoadModel(path, data)
		}
		v.deliver(ctx, res)
	}()
}

// OpenTexture reads and decodes a texture file on a new goroutine and
// delivers the outcome on Results.
func (v *Viewer) OpenTexture(ctx context.Context, path string) {
	go func() {
		res := Result{Kind: TextureResult, Name: filepath.Base(path)}
		if err := textureSuffix(path); err != nil {
			res.Err = err
		} else if data, err := os.ReadFile(path); err != nil {
			res.Err = fmt.Errorf("read texture: %w", err)
		} else {
			res.Texture, res.Err = v.DecodeTexture(path, data)
		}
		v.deliver(ctx, res)
	}()
}

func (v *Viewer) deliver(ctx context.Context, res Result) {
	select {
	case v.results <- res:
	case <-ctx.Done():
	}
}

// Results delivers completed loads in completion order. The caller must keep
// draining it: once the buffer is full, further loads block until a
// receive or until their context is done.
func (v *Viewer) Results() <-chan Result {
	return v.results
}

// Apply folds a load result into the state. A failure sets the matching
// message and leaves the previous model or texture in place.
func (v *Viewer) Apply(res Result) {
	log := v.logger.With("kind", res.Kind.String(), "name", res.Name)

	switch res.Kind {
	case ModelResult:
		if res.Err != nil || res.Model == nil {
			v.state.Err = MsgModelError
			log.Warn("model load failed", "error", res.Err)
			return
		}
		if res.Model.Kind == models.KindOBJ && v.state.Texture != nil {
			models.ApplyTexture(res.Model, v.state.Texture)
		}
		v.state.Model = res.Model
		v.state.ModelName = res.Name
		v.state.Err = ""
		log.Info("model loaded",
			"meshes", len(res.Model.Meshes),
			"triangles", res.Model.TriangleCount(),
			"size", res.Model.Bounds().Size())

	case TextureResult:
		if res.Err != nil || res.Texture == nil {
			v.state.Err = MsgTextureError
			log.Warn("texture load failed", "error", res.Err)
			return
		}
		v.state.Texture = res.Texture
		v.state.TextureName = res.Name
		v.state.Err = ""
		if m := v.state.Model; m != nil && m.Kind == models.KindOBJ {
			models.ApplyTexture(m, res.Texture)
		}
		log.Info("texture loaded", "width", res.Texture.Width, "height", res.Texture.Height)

	default:
		log.Error("unknown result kind")
	}
}

// State returns the current display state.
func (v *Viewer) State() State {
	return v.state
}
