package models

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/modelview/pkg/render"
)

// ExportGLB writes the model as binary glTF. Each mesh becomes a child node
// of a root node carrying the model's position and scale. A shared texture
// map is embedded once as PNG.
func ExportGLB(model *Model, path string) error {
	doc, err := buildDocument(model)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb %s: %w", path, err)
	}
	return nil
}

func buildDocument(model *Model) (*gltf.Document, error) {
	if model == nil || model.TriangleCount() == 0 {
		return nil, ErrEmptyModel
	}

	doc := gltf.NewDocument()
	root := &gltf.Node{
		Name:        model.Name,
		Translation: [3]float64{model.Position.X, model.Position.Y, model.Position.Z},
		Rotation:    [4]float64{0, 0, 0, 1},
		Scale:       [3]float64{model.Scale.X, model.Scale.Y, model.Scale.Z},
	}
	doc.Nodes = append(doc.Nodes, root)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	textures := make(map[*render.Texture]int)
	for _, mesh := range model.Meshes {
		if len(mesh.Faces) == 0 {
			continue
		}
		matIdx, err := writeMaterial(doc, mesh.Material, textures)
		if err != nil {
			return nil, err
		}

		positions := make([][3]float32, len(mesh.Vertices))
		normals := make([][3]float32, len(mesh.Vertices))
		uvs := make([][2]float32, len(mesh.Vertices))
		for i, v := range mesh.Vertices {
			positions[i] = v.Position.Float32()
			normals[i] = v.Normal.Float32()
			// glTF puts v=0 at the top of the image
			uvs[i] = [2]float32{float32(v.UV.X), float32(1 - v.UV.Y)}
		}
		indices := make([]uint32, 0, len(mesh.Faces)*3)
		for _, f := range mesh.Faces {
			indices = append(indices, uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
		}

		attrs := map[string]int{
			gltf.POSITION: modeler.WritePosition(doc, positions),
			gltf.NORMAL:   modeler.WriteNormal(doc, normals),
		}
		if mesh.Material.Map != nil {
			attrs[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, uvs)
		}
		prim := &gltf.Primitive{
			Attributes: attrs,
			Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
			Material:   gltf.Index(matIdx),
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: mesh.Name, Primitives: []*gltf.Primitive{prim}})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:     mesh.Name,
			Mesh:     gltf.Index(len(doc.Meshes) - 1),
			Rotation: [4]float64{0, 0, 0, 1},
			Scale:    [3]float64{1, 1, 1},
		})
		root.Children = append(root.Children, len(doc.Nodes)-1)
	}
	return doc, nil
}

// writeMaterial appends a PBR material and returns its index. Textures are
// keyed by pointer so a map shared between meshes is stored once.
func writeMaterial(doc *gltf.Document, m Material, textures map[*render.Texture]int) (int, error) {
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float64{
			float64(m.Color.R) / 255,
			float64(m.Color.G) / 255,
			float64(m.Color.B) / 255,
			1,
		},
		MetallicFactor:  gltf.Float(m.Metalness),
		RoughnessFactor: gltf.Float(m.Roughness),
	}

	if m.Map != nil {
		texIdx, ok := textures[m.Map]
		if !ok {
			var buf bytes.Buffer
			if err := png.Encode(&buf, m.Map.ToImage()); err != nil {
				return 0, fmt.Errorf("encode texture %s: %w", m.Map.Name, err)
			}
			imgIdx, err := modeler.WriteImage(doc, m.Map.Name, "image/png", &buf)
			if err != nil {
				return 0, fmt.Errorf("embed texture %s: %w", m.Map.Name, err)
			}
			doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(imgIdx)})
			texIdx = len(doc.Textures) - 1
			textures[m.Map] = texIdx
		}
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: texIdx}
	}

	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:                 m.Name,
		PBRMetallicRoughness: pbr,
		AlphaMode:            gltf.AlphaOpaque,
	})
	return len(doc.Materials) - 1, nil
}
