package scene

import (
	"github.com/matzehuels/scenesync/pkg/dataset"
	"github.com/matzehuels/scenesync/pkg/engine"
	"github.com/matzehuels/scenesync/pkg/errors"
	"github.com/matzehuels/scenesync/pkg/host"
	"github.com/matzehuels/scenesync/pkg/scope"
)

// =============================================================================
// Dataset
// =============================================================================

// DatasetProps configures a [Dataset].
type DatasetProps struct {
	// Data is fed downstream as is. It is shared, never released.
	Data engine.DataSet
}

// Dataset feeds an existing dataset into the enclosing Downstream target.
type Dataset struct {
	in     *host.Instance
	scope  *scope.Scope
	target Downstream
	data   engine.DataSet
}

func newDataset(in *host.Instance) host.Component {
	return &Dataset{in: in}
}

// Mount implements host.Component.
func (d *Dataset) Mount(s *scope.Scope, props any) *scope.Scope {
	d.scope = s
	d.Update(props)
	return s
}

// Update implements host.Component.
func (d *Dataset) Update(props any) bool {
	p, err := host.PropsAs[DatasetProps](props)
	if err != nil {
		d.in.Report(err)
		return false
	}
	if d.target == nil {
		t, ok := scope.Lookup[Downstream](d.scope, scope.Downstream)
		if !ok {
			d.in.Report(errors.MissingContext(scope.Downstream.String()))
			return false
		}
		d.target = t
	}
	if p.Data == nil || p.Data == d.data {
		return false
	}
	d.data = p.Data
	d.target.SetInputData(p.Data)
	if rep, ok := scope.Lookup[DataReceiver](d.scope, scope.Representation); ok {
		signalData(rep, p.Data)
	}
	return true
}

// Unmount implements host.Component.
func (d *Dataset) Unmount() {
	unlink(d.target, d.data)
	d.data = nil
}

// =============================================================================
// ShareDataSetRoot
// =============================================================================

// ShareDataSetRoot establishes a shared [dataset.Registry] for its subtree.
type ShareDataSetRoot struct {
	registry *dataset.Registry
}

func newShareDataSetRoot(*host.Instance) host.Component {
	return &ShareDataSetRoot{registry: dataset.NewRegistry()}
}

// Mount implements host.Component.
func (r *ShareDataSetRoot) Mount(s *scope.Scope, _ any) *scope.Scope {
	return s.With(scope.DataSets, r.registry)
}

// Update implements host.Component.
func (r *ShareDataSetRoot) Update(any) bool { return false }

// Unmount implements host.Component.
func (r *ShareDataSetRoot) Unmount() {}

// Registry returns the shared registry.
func (r *ShareDataSetRoot) Registry() *dataset.Registry { return r.registry }

// =============================================================================
// RegisterDataSet
// =============================================================================

// RegisterDataSetProps configures a [RegisterDataSet].
type RegisterDataSetProps struct {
	ID string
}

// RegisterDataSet publishes the dataset produced by its child under an ID.
// It stands in for a representation towards its subtree: children feed it
// through the Downstream channel and signal it through the Representation
// channel, and every signal republishes the dataset so subscribers refresh.
type RegisterDataSet struct {
	in       *host.Instance
	registry *dataset.Registry
	id       string
	data     engine.DataSet
}

func newRegisterDataSet(in *host.Instance) host.Component {
	return &RegisterDataSet{in: in}
}

// Mount implements host.Component.
func (r *RegisterDataSet) Mount(s *scope.Scope, props any) *scope.Scope {
	reg, ok := scope.Lookup[*dataset.Registry](s, scope.DataSets)
	if !ok {
		r.in.Report(errors.MissingContext(scope.DataSets.String()))
	}
	r.registry = reg
	r.Update(props)
	return s.With(scope.Representation, DataReceiver(r)).With(scope.Downstream, Downstream(r))
}

// Update implements host.Component.
func (r *RegisterDataSet) Update(props any) bool {
	p, err := host.PropsAs[RegisterDataSetProps](props)
	if err != nil {
		r.in.Report(err)
		return false
	}
	if p.ID == r.id {
		return false
	}
	if r.registry != nil && r.data != nil {
		r.registry.Unregister(r.id, r.data)
	}
	r.id = p.ID
	r.publish()
	return true
}

func (r *RegisterDataSet) publish() {
	if r.registry == nil || r.data == nil {
		return
	}
	if err := r.registry.Register(r.id, r.data); err != nil {
		r.in.Report(err)
	}
}

// SetInputData implements Downstream.
func (r *RegisterDataSet) SetInputData(d engine.DataSet) {
	if d == nil {
		if r.registry != nil && r.data != nil {
			r.registry.Unregister(r.id, r.data)
		}
		r.data = nil
		return
	}
	r.data = d
	// Non-empty data is published by the signal that follows it.
	if d.IsEmpty() {
		r.publish()
	}
}

// InputData implements Downstream.
func (r *RegisterDataSet) InputData() engine.DataSet { return r.data }

// DataSetID returns the ID the dataset is published under.
func (r *RegisterDataSet) DataSetID() string { return r.id }

// HasData implements DataReceiver.
func (r *RegisterDataSet) HasData() bool { return r.data != nil && !r.data.IsEmpty() }

// DataAvailable implements DataReceiver by republishing.
func (r *RegisterDataSet) DataAvailable() { r.publish() }

// DataChanged implements DataReceiver by republishing.
func (r *RegisterDataSet) DataChanged() { r.publish() }

// Unmount implements host.Component.
func (r *RegisterDataSet) Unmount() {
	if r.registry != nil && r.data != nil {
		r.registry.Unregister(r.id, r.data)
	}
	r.data = nil
}

// =============================================================================
// UseDataSet
// =============================================================================

// UseDataSetProps configures a [UseDataSet].
type UseDataSetProps struct {
	ID string
}

// UseDataSet feeds the dataset registered under ID into the enclosing
// Downstream target, following every re-registration.
type UseDataSet struct {
	in       *host.Instance
	scope    *scope.Scope
	registry *dataset.Registry
	target   Downstream
	id       string
	current  engine.DataSet
	cancel   func()
}

func newUseDataSet(in *host.Instance) host.Component {
	return &UseDataSet{in: in}
}

// Mount implements host.Component.
func (u *UseDataSet) Mount(s *scope.Scope, props any) *scope.Scope {
	u.scope = s
	u.Update(props)
	return s
}

// Update implements host.Component.
func (u *UseDataSet) Update(props any) bool {
	p, err := host.PropsAs[UseDataSetProps](props)
	if err != nil {
		u.in.Report(err)
		return false
	}
	if !u.resolve() {
		return false
	}
	if p.ID == u.id && u.cancel != nil {
		return false
	}
	if u.cancel != nil {
		u.cancel()
	}
	u.id = p.ID
	u.cancel = u.registry.Subscribe(u.id, u.receive)
	return true
}

// resolve looks up the registry and the downstream target until both are
// reachable.
func (u *UseDataSet) resolve() bool {
	if u.registry == nil {
		reg, ok := scope.Lookup[*dataset.Registry](u.scope, scope.DataSets)
		if !ok {
			u.in.Report(errors.MissingContext(scope.DataSets.String()))
			return false
		}
		u.registry = reg
	}
	if u.target == nil {
		t, ok := scope.Lookup[Downstream](u.scope, scope.Downstream)
		if !ok {
			u.in.Report(errors.MissingContext(scope.Downstream.String()))
			return false
		}
		u.target = t
	}
	return true
}

func (u *UseDataSet) receive(d engine.DataSet) {
	u.current = d
	u.target.SetInputData(d)
	u.in.Logger().Debug("dataset received", "id", u.id, "empty", d.IsEmpty())
	if rep, ok := scope.Lookup[DataReceiver](u.scope, scope.Representation); ok {
		signalData(rep, d)
	}
}

// Unmount implements host.Component.
func (u *UseDataSet) Unmount() {
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
	unlink(u.target, u.current)
	u.current = nil
}

// DataSetID returns the ID of the followed dataset.
func (u *UseDataSet) DataSetID() string { return u.id }

// Current returns the dataset last received, or nil.
func (u *UseDataSet) Current() engine.DataSet { return u.current }
