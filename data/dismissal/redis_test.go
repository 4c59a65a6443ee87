package dismissal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDismissalSet(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   model.DismissalSet
		wantOk bool
	}{
		{
			name:   "missing record",
			raw:    "",
			want:   model.DismissalSet{},
			wantOk: true,
		},
		{
			name:   "valid record",
			raw:    `{"dismissed":["onboarding","loss-alert-3"],"lastUpdated":1700000000000}`,
			want:   model.DismissalSet{Dismissed: []string{"onboarding", "loss-alert-3"}, LastUpdated: 1700000000000},
			wantOk: true,
		},
		{
			name:   "corrupt json",
			raw:    `{"dismissed":[`,
			want:   model.DismissalSet{},
			wantOk: false,
		},
		{
			name:   "wrong shape",
			raw:    `{"dismissed":"onboarding"}`,
			want:   model.DismissalSet{},
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeDismissalSet(tt.raw)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAppendDismissed(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	set := appendDismissed(model.DismissalSet{}, "onboarding", now)
	set = appendDismissed(set, "missing-crypto", now)
	set = appendDismissed(set, "onboarding", now.Add(time.Second))

	assert.Equal(t, []string{"onboarding", "missing-crypto"}, set.Dismissed)
	assert.Equal(t, now.Add(time.Second).UnixMilli(), set.LastUpdated)
}

func TestDismissalRecordFormat(t *testing.T) {
	set := appendDismissed(model.DismissalSet{}, "rebalancing-needed", time.UnixMilli(42))

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dismissed":["rebalancing-needed"],"lastUpdated":42}`, string(data))

	decoded, ok := decodeDismissalSet(string(data))
	require.True(t, ok)
	assert.True(t, decoded.Contains("rebalancing-needed"))
}
