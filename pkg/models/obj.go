package models

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/taigrr/modelview/pkg/math3d"
)

// ParseOBJ decodes Wavefront OBJ text. Supported statements are v, vt, vn,
// f (any index form, negative indices, polygons), o, g, usemtl, s and
// mtllib; everything else is ignored. A new mesh starts whenever the
// object, group or material changes.
func ParseOBJ(text string) (*Model, error) {
	p := &objParser{model: NewModel("", KindOBJ)}

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	lineNo := 0
	var pending strings.Builder
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.HasSuffix(line, "\\") {
			pending.WriteString(strings.TrimSuffix(line, "\\"))
			pending.WriteByte(' ')
			continue
		}
		if pending.Len() > 0 {
			pending.WriteString(line)
			line = pending.String()
			pending.Reset()
		}
		if err := p.parseLine(line); err != nil {
			return nil, fmt.Errorf("%w: obj line %d: %w", ErrSyntax, lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: obj: %w", ErrSyntax, err)
	}

	p.flush()
	if len(p.model.Meshes) == 0 {
		return nil, ErrEmptyModel
	}
	for _, mesh := range p.model.Meshes {
		mesh.FillMissingNormals()
		mesh.CalculateBounds()
	}
	return p.model, nil
}

type objParser struct {
	model *Model

	positions []math3d.Vec3
	uvs       []math3d.Vec2
	normals   []math3d.Vec3

	object   string
	group    string
	material string

	cur   *Mesh
	index map[[3]int]int // v/vt/vn triple -> vertex in cur
}

func (p *objParser) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	args := fields[1:]

	switch fields[0] {
	case "v":
		v, err := parseVec3(args)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, v)
	case "vn":
		v, err := parseVec3(args)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, v)
	case "vt":
		if len(args) < 1 {
			return errors.New("vt needs at least 1 component")
		}
		u, err := parseFloat(args[0])
		if err != nil {
			return err
		}
		var v float64
		if len(args) > 1 {
			if v, err = parseFloat(args[1]); err != nil {
				return err
			}
		}
		p.uvs = append(p.uvs, math3d.V2(u, v))
	case "f":
		return p.parseFace(args)
	case "o":
		p.switchTo(&p.object, strings.Join(args, " "))
		p.switchTo(&p.group, "")
	case "g":
		p.switchTo(&p.group, strings.Join(args, " "))
	case "usemtl":
		p.switchTo(&p.material, strings.Join(args, " "))
	case "mtllib":
		p.model.MaterialLibs = append(p.model.MaterialLibs, args...)
	case "s", "l", "p", "vp":
		// smoothing groups and non-triangle primitives are not rendered
	}
	return nil
}

// switchTo updates a naming field and closes the current mesh if it
// already holds faces.
func (p *objParser) switchTo(field *string, value string) {
	if *field == value {
		return
	}
	p.flush()
	*field = value
}

func (p *objParser) flush() {
	if p.cur != nil && len(p.cur.Faces) > 0 {
		p.model.Meshes = append(p.model.Meshes, p.cur)
	}
	p.cur = nil
	p.index = nil
}

func (p *objParser) meshName() string {
	switch {
	case p.object != "" && p.group != "":
		return p.object + "/" + p.group
	case p.group != "":
		return p.group
	default:
		return p.object
	}
}

func (p *objParser) parseFace(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face needs at least 3 vertices, got %d", len(args))
	}
	if p.cur == nil {
		p.cur = NewMesh(p.meshName())
		p.cur.Material = DefaultOBJMaterial(p.material)
		p.index = make(map[[3]int]int)
	}

	corners := make([]int, len(args))
	for i, arg := range args {
		key, err := p.resolve(arg)
		if err != nil {
			return err
		}
		idx, ok := p.index[key]
		if !ok {
			v := MeshVertex{Position: p.positions[key[0]]}
			if key[1] >= 0 {
				v.UV = p.uvs[key[1]]
			}
			if key[2] >= 0 {
				v.Normal = p.normals[key[2]].Normalize()
			}
			idx = len(p.cur.Vertices)
			p.cur.Vertices = append(p.cur.Vertices, v)
			p.index[key] = idx
		}
		corners[i] = idx
	}

	// fan triangulation keeps the polygon's winding
	for i := 1; i+1 < len(corners); i++ {
		p.cur.Faces = append(p.cur.Faces, Face{V: [3]int{corners[0], corners[i], corners[i+1]}})
	}
	return nil
}

// resolve turns "v", "v/vt", "v//vn" or "v/vt/vn" into zero-based indices,
// -1 marking an absent attribute.
func (p *objParser) resolve(ref string) ([3]int, error) {
	key := [3]int{-1, -1, -1}
	parts := strings.Split(ref, "/")
	if len(parts) > 3 || parts[0] == "" {
		return key, fmt.Errorf("bad vertex reference %q", ref)
	}
	counts := [3]int{len(p.positions), len(p.uvs), len(p.normals)}
	for i, s := range parts {
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return key, fmt.Errorf("bad vertex reference %q", ref)
		}
		idx, err := objIndex(n, counts[i])
		if err != nil {
			return key, fmt.Errorf("vertex reference %q: %w", ref, err)
		}
		key[i] = idx
	}
	return key, nil
}

// objIndex converts a 1-based or negative relative OBJ index.
func objIndex(n, count int) (int, error) {
	var idx int
	switch {
	case n > 0:
		idx = n - 1
	case n < 0:
		idx = count + n
	default:
		return 0, errors.New("index 0 is invalid")
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("index %d out of range (have %d)", n, count)
	}
	return idx, nil
}

func parseVec3(args []string) (math3d.Vec3, error) {
	if len(args) < 3 {
		return math3d.Vec3{}, fmt.Errorf("need 3 components, got %d", len(args))
	}
	var c [3]float64
	for i := range c {
		f, err := parseFloat(args[i])
		if err != nil {
			return math3d.Vec3{}, err
		}
		c[i] = f
	}
	return math3d.V3(c[0], c[1], c[2]), nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return f, nil
}
