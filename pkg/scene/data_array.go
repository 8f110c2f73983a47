package scene

import (
	"github.com/matzehuels/scenesync/pkg/array"
	"github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/fields"
	"github.com/matzehuels/scenesync/pkg/host"
	"github.com/matzehuels/scenesync/pkg/pipeline"
	"github.com/matzehuels/scenesync/pkg/scope"
)

// DataArrayProps configures a [DataArray].
type DataArrayProps struct {
	// Name defaults to "scalars".
	Name string
	// Kind is an element kind such as "float32" or "Float32Array".
	// Defaults to float32.
	Kind string
	// Values are reinterpreted as Kind. The slice is compared by identity:
	// pass a new slice to change the data.
	Values []float64
	// Components defaults to 1.
	Components int
	// Registration is a fields.Method name. Defaults to "append".
	Registration string
}

func (p DataArrayProps) withDefaults() DataArrayProps {
	if p.Name == "" {
		p.Name = "scalars"
	}
	if p.Components == 0 {
		p.Components = 1
	}
	if p.Registration == "" {
		p.Registration = string(fields.DefaultMethod)
	}
	return p
}

type bufferConfig struct {
	kind       array.Kind
	components int
	values     []float64
}

func sameBuffer(a, b bufferConfig) bool {
	return a.kind == b.kind && a.components == b.components && array.SameValues(a.values, b.values)
}

// DataArray builds a named typed array and registers it on the enclosing
// point data. The array keeps its identity for the node's lifetime; only its
// buffer is rebuilt when the values, the kind or the component count change.
type DataArray struct {
	in      *host.Instance
	scope   *scope.Scope
	array   *array.DataArray
	buffer  *pipeline.Object[array.Buffer, bufferConfig]
	fields  *fields.Data
	method  fields.Method
	mounted bool
}

func newDataArray(in *host.Instance) host.Component {
	return &DataArray{
		in:    in,
		array: array.New(""),
		buffer: pipeline.New(pipeline.Config[array.Buffer, bufferConfig]{
			Build: func(c bufferConfig) (array.Buffer, error) {
				if err := errors.ValidateComponents(len(c.values), c.components); err != nil {
					return nil, err
				}
				return array.Build(c.kind, c.values)
			},
			Equal: sameBuffer,
		}),
	}
}

// Mount implements host.Component. The array is registered only after its
// first update completed.
func (d *DataArray) Mount(s *scope.Scope, props any) *scope.Scope {
	d.scope = s
	d.Update(props)
	d.mounted = true
	d.register()
	return s
}

// register adds the array to the enclosing point data, retrying on every
// update until the Fields channel is reachable.
func (d *DataArray) register() {
	if d.fields != nil {
		return
	}
	f, ok := scope.Lookup[*fields.Data](d.scope, scope.Fields)
	if !ok {
		d.in.Report(errors.MissingContext(scope.Fields.String()))
		return
	}
	if err := f.Register(d.method, d.array); err != nil {
		d.in.Report(err)
		return
	}
	d.fields = f
}

// Update implements host.Component.
func (d *DataArray) Update(props any) bool {
	p, err := host.PropsAs[DataArrayProps](props)
	if err != nil {
		d.in.Report(err)
		return false
	}
	p = p.withDefaults()

	renamed := d.array.Name() != p.Name
	d.array.SetName(p.Name)
	if renamed && d.fields != nil {
		// Registering again drops any sibling already holding the new name.
		d.fields.Remove(d.array)
		if err := d.fields.Register(d.method, d.array); err != nil {
			d.in.Report(err)
			d.fields = nil
		}
	}

	changed := renamed
	if kind, err := array.ParseKind(p.Kind); err != nil {
		d.in.Report(err)
	} else if rebuilt, err := d.buffer.Apply(bufferConfig{kind: kind, components: p.Components, values: p.Values}); err != nil {
		d.in.Report(err)
	} else if rebuilt {
		if err := d.array.SetData(d.buffer.Handle(), p.Components); err != nil {
			d.in.Report(err)
		} else {
			changed = true
		}
	}

	changed = d.applyMethod(p.Registration) || changed
	if d.mounted {
		d.register()
	}
	return changed
}

// applyMethod re-registers the array when the registration method changes.
func (d *DataArray) applyMethod(name string) bool {
	m, err := fields.ParseMethod(name)
	if err != nil {
		d.in.Report(err)
		return false
	}
	if m == d.method {
		return false
	}
	d.method = m
	if d.fields == nil {
		return false
	}
	d.fields.Remove(d.array)
	if err := d.fields.Register(m, d.array); err != nil {
		d.in.Report(err)
		d.fields = nil
	}
	return true
}

// Unmount implements host.Component. The array leaves the registry before it
// is released.
func (d *DataArray) Unmount() {
	if d.fields != nil {
		d.fields.Remove(d.array)
		d.fields = nil
	}
	d.buffer.Destroy()
	d.array.Delete()
}

// Array returns the managed array.
func (d *DataArray) Array() *array.DataArray { return d.array }
