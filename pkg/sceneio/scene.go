package sceneio

import (
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/host"
	"github.com/matzehuels/scenesync/pkg/scene"
)

// propTypes lists the kinds a scene file may use and their props types.
// A nil type takes no props. Dataset is missing on purpose: it feeds an
// in-memory dataset, which a file cannot hold.
var propTypes = map[string]reflect.Type{
	scene.KindView:                 reflect.TypeFor[scene.ViewProps](),
	scene.KindMultiViewRoot:        nil,
	scene.KindSliceRepresentation:  reflect.TypeFor[scene.RepresentationProps](),
	scene.KindVolumeRepresentation: reflect.TypeFor[scene.RepresentationProps](),
	scene.KindDataArray:            reflect.TypeFor[scene.DataArrayProps](),
	scene.KindImageData:            reflect.TypeFor[scene.ImageDataProps](),
	scene.KindShareDataSetRoot:     nil,
	scene.KindRegisterDataSet:      reflect.TypeFor[scene.RegisterDataSetProps](),
	scene.KindUseDataSet:           reflect.TypeFor[scene.UseDataSetProps](),
}

// Scene is a parsed scene file with a replay cursor. It is not safe for
// concurrent use.
type Scene struct {
	// Hash is the SHA-256 of the file contents.
	Hash string

	root    *node
	paths   map[string]*node
	frames  []frame
	applied int
}

// Frame describes one frame of a scene.
type Frame struct {
	Index  int      `json:"index"`
	Name   string   `json:"name,omitempty"`
	Target string   `json:"target"`
	Props  []string `json:"props"`
}

type frame struct {
	Frame
	node  *node
	props map[string]toml.Primitive
	md    *toml.MetaData
}

type node struct {
	kind     string
	key      string
	props    reflect.Value // addressable props struct, invalid for kinds without props
	initial  reflect.Value
	children []*node
}

func build(f File, md *toml.MetaData) (*Scene, error) {
	root, err := buildNode(f.Root, md, "root")
	if err != nil {
		return nil, err
	}

	if len(f.Datasets) > 0 {
		if root.kind != scene.KindShareDataSetRoot {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"datasets need a %s root, got %s", scene.KindShareDataSetRoot, root.kind)
		}
		var generated []*node
		for _, d := range f.Datasets {
			n, err := datasetNode(d)
			if err != nil {
				return nil, err
			}
			generated = append(generated, n)
		}
		root.children = append(generated, root.children...)
	}

	s := &Scene{root: root, paths: make(map[string]*node)}
	s.index(root, "")
	if err := scene.NewRegistry().Validate(s.Element()); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid scene tree")
	}

	for i, fs := range f.Frames {
		fr, err := s.parseFrame(i, fs, md)
		if err != nil {
			return nil, err
		}
		s.frames = append(s.frames, fr)
	}
	return s, nil
}

func buildNode(spec NodeSpec, md *toml.MetaData, where string) (*node, error) {
	if spec.Kind == scene.KindDataset {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%s: %s needs an in-memory dataset; declare it under [[datasets]]", where, spec.Kind)
	}
	t, ok := propTypes[spec.Kind]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: unknown kind %q", where, spec.Kind)
	}
	if spec.Key != "" {
		if err := errors.ValidateName("key", spec.Key); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", where)
		}
	}

	n := &node{kind: spec.Kind, key: spec.Key}
	if t != nil {
		n.props = reflect.New(t).Elem()
	}
	if err := n.apply(md, spec.Props); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", where)
	}
	n.snapshot()

	for i, c := range spec.Children {
		child, err := buildNode(c, md, where+"."+c.segment(i))
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, child)
	}
	return n, nil
}

func (spec NodeSpec) segment(i int) string {
	if spec.Key != "" {
		return spec.Key
	}
	return spec.Kind + "[" + strconv.Itoa(i) + "]"
}

// index records every node under the path the host will mount it at.
func (s *Scene) index(n *node, path string) {
	s.paths[path] = n
	for i, c := range n.children {
		seg := c.key
		if seg == "" {
			seg = c.kind + "[" + strconv.Itoa(i) + "]"
		}
		if path != "" {
			seg = path + "/" + seg
		}
		s.index(c, seg)
	}
}

func (s *Scene) parseFrame(i int, fs FrameSpec, md *toml.MetaData) (frame, error) {
	if fs.Target != "" {
		if err := errors.ValidateKeyPath(fs.Target); err != nil {
			return frame{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "frame %d", i)
		}
	}
	n, ok := s.paths[fs.Target]
	if !ok {
		return frame{}, errors.New(errors.ErrCodeNotFound, "frame %d: no node at %q", i, fs.Target)
	}
	if len(fs.Props) == 0 {
		return frame{}, errors.New(errors.ErrCodeInvalidInput, "frame %d: no props", i)
	}

	// Decode onto a scratch copy so a bad frame is caught before replay.
	scratch := &node{kind: n.kind, key: n.key}
	if n.props.IsValid() {
		scratch.props = reflect.New(n.props.Type()).Elem()
	}
	if err := scratch.apply(md, fs.Props); err != nil {
		return frame{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "frame %d", i)
	}

	return frame{
		Frame: Frame{
			Index:  i,
			Name:   fs.Name,
			Target: fs.Target,
			Props:  slices.Sorted(maps.Keys(fs.Props)),
		},
		node:  n,
		props: fs.Props,
		md:    md,
	}, nil
}

// apply replaces the named fields of n's props. Each value is decoded into
// a fresh field value, so maps and slices handed out earlier are never
// modified.
func (n *node) apply(md *toml.MetaData, props map[string]toml.Primitive) error {
	if len(props) == 0 {
		return nil
	}
	if !n.props.IsValid() {
		return errors.New(errors.ErrCodeInvalidInput, "%s takes no props", n.kind)
	}
	for _, k := range slices.Sorted(maps.Keys(props)) {
		f, ok := propField(n.props.Type(), k)
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "%s has no prop %q", n.kind, k)
		}
		v := reflect.New(f.Type)
		if err := md.PrimitiveDecode(props[k], v.Interface()); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s.%s", n.kind, k)
		}
		n.props.FieldByIndex(f.Index).Set(v.Elem())
	}
	return nil
}

// propField finds the exported, decodable field named key, ignoring case.
func propField(t reflect.Type, key string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Type.Kind() == reflect.Interface {
			continue
		}
		if strings.EqualFold(f.Name, key) {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// snapshot records the current props as the state Reset returns to.
func (n *node) snapshot() {
	if n.props.IsValid() {
		n.initial = reflect.New(n.props.Type()).Elem()
		n.initial.Set(n.props)
	}
}

func (n *node) element() host.Element {
	el := host.Element{Kind: n.kind, Key: n.key}
	if n.props.IsValid() {
		el.Props = n.props.Interface()
	}
	for _, c := range n.children {
		el.Children = append(el.Children, c.element())
	}
	return el
}

// Element returns the description after the frames applied so far.
func (s *Scene) Element() host.Element { return s.root.element() }

// Frames returns every frame of the scene.
func (s *Scene) Frames() []Frame {
	out := make([]Frame, len(s.frames))
	for i, f := range s.frames {
		out[i] = f.Frame
	}
	return out
}

// Applied returns how many frames have been applied.
func (s *Scene) Applied() int { return s.applied }

// Done reports whether every frame has been applied.
func (s *Scene) Done() bool { return s.applied == len(s.frames) }

// Step applies the next frame. It returns false once every frame has been
// applied.
func (s *Scene) Step() (Frame, bool, error) {
	if s.Done() {
		return Frame{}, false, nil
	}
	f := s.frames[s.applied]
	if err := f.node.apply(f.md, f.props); err != nil {
		return Frame{}, false, err
	}
	s.applied++
	return f.Frame, true, nil
}

// Reset returns every node to its parsed props. Values such as data array
// contents keep their identity, so re-rendering the reset description does
// not rebuild them.
func (s *Scene) Reset() {
	for _, n := range s.paths {
		if n.initial.IsValid() {
			n.props.Set(n.initial)
		}
	}
	s.applied = 0
}

// Paths returns every node path in sorted order.
func (s *Scene) Paths() []string {
	return slices.Sorted(maps.Keys(s.paths))
}

// Apply replaces props of the node at target outside the frame sequence.
// src is the body of a TOML inline table, such as "kSlice = 5" or
// `actor = { visibility = false }`. Nothing changes if src does not decode.
func (s *Scene) Apply(target, src string) error {
	var props map[string]toml.Primitive
	md, err := toml.Decode(src, &props)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode props")
	}
	f, err := s.parseFrame(-1, FrameSpec{Target: target, Props: props}, &md)
	if err != nil {
		return err
	}
	return f.node.apply(f.md, f.props)
}

// Props returns the current props of the node at path.
func (s *Scene) Props(path string) (any, bool) {
	n, ok := s.paths[path]
	if !ok || !n.props.IsValid() {
		return nil, false
	}
	return n.props.Interface(), true
}
