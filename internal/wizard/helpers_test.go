package wizard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testDefinition is a three step subtask touching every field kind.
func testDefinition() *Definition {
	return &Definition{
		Key:        "if_then",
		Title:      "If-then plans",
		Version:    1,
		StorageKey: "pelekan:subtask:if_then:v1",
		LegacyKey:  "subtask:if_then",
		DirtyKey:   "pelekan:dirty:subtasks",
		Steps: []Step{
			{
				Title:  "Goal",
				Fields: []FieldSpec{{Name: "goal", Kind: KindText, Label: "Goal"}},
				Gate: []Rule{
					{Kind: RuleRequired, Field: "goal"},
					{Kind: RuleMinLength, Field: "goal", Min: 10},
				},
			},
			{
				Title: "Plans",
				Fields: []FieldSpec{
					{Name: "plans", Kind: KindRecords, Subfields: []string{"if", "then"}},
				},
				Gate: []Rule{
					{Kind: RuleRecordsComplete, Field: "plans", Min: 2},
					{Kind: RuleUnique, Field: "plans", Key: "if", Hint: "each trigger once"},
				},
			},
			{
				Title: "Support",
				Fields: []FieldSpec{
					{Name: "supports", Kind: KindSet, Options: []string{"friend", "notes", "timer"}},
					{Name: "confidence", Kind: KindScale, Min: 0, Max: 10},
					{Name: "when", Kind: KindEnum, Options: []string{"morning", "evening"}},
				},
				Gate: []Rule{
					{Kind: RuleMinSelected, Field: "supports", Min: 1},
					{Kind: RuleRequired, Field: "confidence"},
					{Kind: RuleExpr, Expr: `when != "" || confidence >= 5`, Hint: "pick a time or be confident"},
				},
			},
		},
		Summary: map[string]string{
			"planCount":  "len(plans)",
			"confidence": "confidence",
		},
	}
}

func newEditing(t *testing.T) *Controller {
	t.Helper()
	c := NewController(MustCompile(testDefinition()))
	require.NoError(t, c.Resume(nil, nil))
	return c
}

// fillAll answers every step so that every gate passes.
func fillAll(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.SetText("goal", "sleep before midnight"))
	for _, p := range [][2]string{{"I feel restless", "read a book"}, {"it is 23:00", "turn off screens"}} {
		i, err := c.AddRecord("plans")
		require.NoError(t, err)
		require.NoError(t, c.SetRecord("plans", i, "if", p[0]))
		require.NoError(t, c.SetRecord("plans", i, "then", p[1]))
	}
	require.NoError(t, c.Toggle("supports", "timer"))
	require.NoError(t, c.SetScale("confidence", 7))
	require.NoError(t, c.Choose("when", "evening"))
}
