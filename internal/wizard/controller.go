package wizard

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Phase is the lifecycle state of a Controller.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseEditing
	PhaseReviewing
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseEditing:
		return "editing"
	case PhaseReviewing:
		return "reviewing"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

var (
	ErrLocked       = errors.New("subtask is finalized")
	ErrNotLoaded    = errors.New("subtask is still loading")
	ErrGateClosed   = errors.New("current step is incomplete")
	ErrLastStep     = errors.New("already at the last step")
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

// Controller owns one wizard instance. It is not safe for concurrent use;
// the completion orchestrator serializes finalization around it.
type Controller struct {
	schema   *Schema
	phase    Phase
	step     int
	fields   Fields
	snapshot *Snapshot
}

// NewController returns a controller in PhaseLoading with blank fields.
func NewController(schema *Schema) *Controller {
	return &Controller{
		schema: schema,
		phase:  PhaseLoading,
		step:   1,
		fields: DefaultFields(schema.Def),
	}
}

// Resume leaves PhaseLoading. A snapshot puts the controller straight into
// review at the last step. Otherwise editing starts at step 1; a draft's
// answers are restored and its step is reached only as far as gates allow.
func (c *Controller) Resume(snap *Snapshot, draft *Draft) error {
	if c.phase != PhaseLoading {
		return fmt.Errorf("resume in %s phase", c.phase)
	}
	if snap != nil {
		c.enterReview(*snap)
		return nil
	}

	c.phase = PhaseEditing
	c.step = 1
	if draft != nil {
		for name, v := range draft.Fields {
			if _, ok := c.fields[name]; ok {
				c.fields[name] = v.Clone()
			}
		}
		for c.step < draft.Step && c.step < c.last() && c.schema.Validator.CanAdvance(c.step, c.fields) {
			c.step++
		}
	}
	return nil
}

// Lock records snap as the final answers and enters review. Locking an
// already reviewing controller is a no-op.
func (c *Controller) Lock(snap Snapshot) error {
	switch c.phase {
	case PhaseLoading:
		return ErrNotLoaded
	case PhaseReviewing:
		return nil
	}
	c.enterReview(snap)
	return nil
}

func (c *Controller) enterReview(snap Snapshot) {
	snap.Fields = snap.Fields.Clone()
	c.snapshot = &snap
	c.fields = snap.Fields.Clone()
	c.phase = PhaseReviewing
	c.step = c.last()
}

func (c *Controller) last() int {
	return c.schema.Def.StepCount()
}

// Schema returns the compiled definition driving c.
func (c *Controller) Schema() *Schema { return c.schema }

// Definition returns the subtask definition.
func (c *Controller) Definition() *Definition { return c.schema.Def }

func (c *Controller) Phase() Phase { return c.phase }
func (c *Controller) Step() int    { return c.step }

// IsLocked reports whether a final snapshot has been loaded or written.
func (c *Controller) IsLocked() bool { return c.phase == PhaseReviewing }

// Final returns the locked snapshot, if any.
func (c *Controller) Final() (Snapshot, bool) {
	if c.snapshot == nil {
		return Snapshot{}, false
	}
	return *c.snapshot, true
}

// Fields returns a copy of the current answers.
func (c *Controller) Fields() Fields { return c.fields.Clone() }

// Value returns a copy of one field's value.
func (c *Controller) Value(name string) (Value, bool) {
	v, ok := c.fields[name]
	return v.Clone(), ok
}

// CurrentStep returns the definition of the step being shown.
func (c *Controller) CurrentStep() Step {
	return c.schema.Def.Steps[c.step-1]
}

// CanAdvance reports whether the current step's gate passes. Always false
// outside editing.
func (c *Controller) CanAdvance() bool {
	return c.phase == PhaseEditing && c.schema.Validator.CanAdvance(c.step, c.fields)
}

// Hints returns the failing rules of the current step while editing.
func (c *Controller) Hints() []string {
	if c.phase != PhaseEditing {
		return nil
	}
	return c.schema.Validator.Failures(c.step, c.fields)
}

// CanFinalize reports whether every gate passes while editing.
func (c *Controller) CanFinalize() bool {
	return c.phase == PhaseEditing && c.schema.Validator.CanFinalize(c.fields)
}

// FinalizeHints returns every failing rule across all steps.
func (c *Controller) FinalizeHints() []string {
	return c.schema.Validator.FinalizeFailures(c.fields)
}

// Next moves forward one step. While editing the current gate must pass;
// in review it only navigates.
func (c *Controller) Next() error {
	switch c.phase {
	case PhaseLoading:
		return ErrNotLoaded
	case PhaseReviewing:
		if c.step < c.last() {
			c.step++
		}
		return nil
	}
	if c.step >= c.last() {
		return ErrLastStep
	}
	if !c.CanAdvance() {
		return ErrGateClosed
	}
	c.step++
	return nil
}

// Back moves to the previous step without validation.
func (c *Controller) Back() error {
	if c.phase == PhaseLoading {
		return ErrNotLoaded
	}
	if c.step > 1 {
		c.step--
	}
	return nil
}

// BuildSnapshot assembles the final record of the current answers.
func (c *Controller) BuildSnapshot(now time.Time) Snapshot {
	return Snapshot{
		Version: c.schema.Def.Version,
		SavedAt: now.UTC(),
		Summary: c.schema.Summary(c.fields),
		Fields:  c.fields.Clone(),
	}
}

// BuildDraft captures the current answers and step.
func (c *Controller) BuildDraft(now time.Time) Draft {
	return Draft{
		Version: c.schema.Def.Version,
		SavedAt: now.UTC(),
		Step:    c.step,
		Fields:  c.fields.Clone(),
	}
}

// Payload returns the projection sent on finalize.
func (c *Controller) Payload() map[string]any {
	return c.schema.Payload(c.fields)
}

func (c *Controller) editable(name string, kinds ...FieldKind) (FieldSpec, error) {
	switch c.phase {
	case PhaseLoading:
		return FieldSpec{}, ErrNotLoaded
	case PhaseReviewing:
		return FieldSpec{}, ErrLocked
	}
	spec, ok := c.schema.Def.Field(name)
	if !ok {
		return FieldSpec{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if !slices.Contains(kinds, spec.Kind) {
		return FieldSpec{}, fmt.Errorf("%w: %s is a %s field", ErrInvalidValue, name, spec.Kind)
	}
	return spec, nil
}

// SetText replaces a text field.
func (c *Controller) SetText(name, text string) error {
	if _, err := c.editable(name, KindText); err != nil {
		return err
	}
	v := c.fields[name]
	v.Text = text
	c.fields[name] = v
	return nil
}

// Toggle adds or removes option from a set field.
func (c *Controller) Toggle(name, option string) error {
	spec, err := c.editable(name, KindSet)
	if err != nil {
		return err
	}
	if !slices.Contains(spec.Options, option) {
		return fmt.Errorf("%w: %q is not an option of %s", ErrInvalidValue, option, name)
	}
	v := c.fields[name].Clone()
	if i := slices.Index(v.Set, option); i >= 0 {
		v.Set = slices.Delete(v.Set, i, i+1)
	} else {
		v.Set = append(v.Set, option)
		slices.Sort(v.Set)
	}
	c.fields[name] = v
	return nil
}

// Choose selects option for an enum field. An empty option clears it.
func (c *Controller) Choose(name, option string) error {
	spec, err := c.editable(name, KindEnum)
	if err != nil {
		return err
	}
	if option != "" && !slices.Contains(spec.Options, option) {
		return fmt.Errorf("%w: %q is not an option of %s", ErrInvalidValue, option, name)
	}
	v := c.fields[name]
	v.Text = option
	c.fields[name] = v
	return nil
}

// SetScale sets a scale field within its bounds.
func (c *Controller) SetScale(name string, n int) error {
	spec, err := c.editable(name, KindScale)
	if err != nil {
		return err
	}
	if n < spec.Min || n > spec.Max {
		return fmt.Errorf("%w: %d outside %d..%d", ErrInvalidValue, n, spec.Min, spec.Max)
	}
	v := c.fields[name]
	v.Scale = n
	v.ScaleSet = true
	c.fields[name] = v
	return nil
}

// AddRecord appends a blank record and returns its index.
func (c *Controller) AddRecord(name string) (int, error) {
	spec, err := c.editable(name, KindRecords)
	if err != nil {
		return 0, err
	}
	v := c.fields[name].Clone()
	v.Records = append(v.Records, newRecord(spec))
	c.fields[name] = v
	return len(v.Records) - 1, nil
}

// SetRecord sets one sub-field of record index.
func (c *Controller) SetRecord(name string, index int, sub, text string) error {
	spec, err := c.editable(name, KindRecords)
	if err != nil {
		return err
	}
	if !slices.Contains(spec.Subfields, sub) {
		return fmt.Errorf("%w: %q is not a subfield of %s", ErrInvalidValue, sub, name)
	}
	v := c.fields[name].Clone()
	if index < 0 || index >= len(v.Records) {
		return fmt.Errorf("%w: record %d of %s", ErrInvalidValue, index, name)
	}
	v.Records[index][sub] = text
	c.fields[name] = v
	return nil
}

// RemoveRecord deletes record index.
func (c *Controller) RemoveRecord(name string, index int) error {
	if _, err := c.editable(name, KindRecords); err != nil {
		return err
	}
	v := c.fields[name].Clone()
	if index < 0 || index >= len(v.Records) {
		return fmt.Errorf("%w: record %d of %s", ErrInvalidValue, index, name)
	}
	v.Records = slices.Delete(v.Records, index, index+1)
	c.fields[name] = v
	return nil
}
