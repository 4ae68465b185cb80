package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// SceneSpec lists the prefabs a scene is built from.
type SceneSpec struct {
	Name     string            `yaml:"name"`
	Entities []SceneEntitySpec `yaml:"entities"`
}

// SceneEntitySpec places one prefab. Overrides are merged key by key over
// the prefab's component maps.
type SceneEntitySpec struct {
	Prefab    string         `yaml:"prefab"`
	Name      string         `yaml:"name"`
	Position  *Vec3          `yaml:"position"`
	Parent    string         `yaml:"parent"`
	Overrides map[string]any `yaml:"overrides"`
}

func LoadSceneSpec(name string) (SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](ScenePath(name))
	if err != nil {
		return SceneSpec{}, err
	}
	if spec.Name == "" {
		spec.Name = name
	}
	return spec, nil
}

// Vec3 decodes from [x, y], [x, y, z] or {x, y, z}.
type Vec3 mgl64.Vec3

func (v Vec3) Vec() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

func (v *Vec3) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := value.Decode(&xs); err != nil {
			return err
		}
		if len(xs) < 2 || len(xs) > 3 {
			return fmt.Errorf("vector needs 2 or 3 components, got %d", len(xs))
		}
		*v = Vec3{}
		copy(v[:], xs)
		return nil
	case yaml.MappingNode:
		var m struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
			Z float64 `yaml:"z"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		*v = Vec3{m.X, m.Y, m.Z}
		return nil
	default:
		return fmt.Errorf("vector must be a sequence or mapping")
	}
}

func (v Vec3) MarshalYAML() (any, error) {
	return []float64{v[0], v[1], v[2]}, nil
}

type YAMLColor struct {
	color.RGBA
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	rgba, err := ParseHexColor(value.Value)
	if err != nil {
		return err
	}
	c.RGBA = rgba
	return nil
}

func (c YAMLColor) MarshalYAML() (any, error) {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A), nil
}

// ParseHexColor parses #rrggbb or #rrggbbaa.
func ParseHexColor(v string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color format: %q", v)
	}

	parse := func(start int) (uint8, error) {
		n, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(n), err
	}

	r, err := parse(0)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse red component: %w", err)
	}
	g, err := parse(2)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse green component: %w", err)
	}
	b, err := parse(4)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse blue component: %w", err)
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("parse alpha component: %w", err)
		}
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
