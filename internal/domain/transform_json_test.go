package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformEnvelopeRoundTrip(t *testing.T) {
	elseVal := "other"
	tests := []struct {
		name string
		in   Transform
	}{
		{
			name: "custom_column",
			in:   CustomColumn{Scope: DatasourceScope(), Name: "total", Expr: `"price" * "qty"`},
		},
		{
			name: "case",
			in: Case{
				Scope:  TableScope("orders"),
				Target: "grp",
				Groups: []PredicateGroup{
					{
						Predicates: []Predicate{
							{Left: Col("region"), Op: OpEq, Right: Lit("US"), JoinToNext: JoinAnd},
						},
						Then: "A",
					},
				},
				Else: &elseVal,
			},
		},
		{
			name: "join_with_lateral",
			in: Join{
				Scope:       WidgetScope("w1"),
				JoinType:    JoinLateral,
				TargetTable: "events",
				Columns:     []JoinColumn{{Name: "created_at", Alias: "last_event_at"}},
				Lateral: &LateralSpec{
					Correlations: []Correlation{{SourceCol: "id", Op: OpEq, TargetCol: "order_id"}},
					OrderBy:      []OrderByTerm{{Column: "created_at", Direction: "desc"}},
					Limit:        1,
				},
			},
		},
		{
			name: "unpivot",
			in: Unpivot{
				Scope:         TableScope("sales"),
				SourceColumns: []string{"q1", "q2"},
				KeyColumn:     "quarter",
				ValueColumn:   "amount",
				Mode:          UnpivotAuto,
				OmitZeroNull:  true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := MarshalTransform(tt.in)
			require.NoError(t, err)

			// The discriminator sits alongside the variant's own fields.
			var flat map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(body, &flat))
			assert.JSONEq(t, `"`+string(tt.in.Kind())+`"`, string(flat["kind"]))

			out, err := UnmarshalTransform(body)
			require.NoError(t, err)
			assert.Equal(t, tt.in, out)
		})
	}
}

func TestUnmarshalTransformRejectsBadEnvelopes(t *testing.T) {
	_, err := UnmarshalTransform([]byte(`{"name":"x"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing kind")

	_, err = UnmarshalTransform([]byte(`{"kind":"pivot"}`))
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestTransformListRoundTrip(t *testing.T) {
	list := TransformList{
		CustomColumn{Scope: DatasourceScope(), Name: "a", Expr: "1"},
		NullHandling{Scope: TableScope("t"), Target: "amount", Strategy: NullToZero},
	}

	body, err := json.Marshal(list)
	require.NoError(t, err)

	var got TransformList
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, list, got)
}

func TestTransformListReportsElementIndex(t *testing.T) {
	var got TransformList
	err := json.Unmarshal([]byte(`[{"kind":"custom_column","name":"ok","expr":"1","scope":{"level":"datasource"}},{"kind":"nope"}]`), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transform 1")
}
