package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"eagler-tiers/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerEntryEncodesNullActors(t *testing.T) {
	raw, err := json.Marshal(domain.PlayerEntry{Name: "Steve", LastModifiedAt: "2025-11-26T12:00:00.000Z"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Steve","lastModifiedBy":null,"lastModifiedById":null,"lastModifiedAt":"2025-11-26T12:00:00.000Z"}`, string(raw))
}

func TestPlayerEntryDecodesLoosely(t *testing.T) {
	var e domain.PlayerEntry
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Alex","lastModifiedBy":7,"lastModifiedById":"12","lastModifiedAt":null}`), &e))

	assert.Equal(t, "Alex", e.Name)
	assert.Nil(t, e.LastModifiedBy)
	require.NotNil(t, e.LastModifiedByID)
	assert.Equal(t, "12", *e.LastModifiedByID)
	assert.Empty(t, e.LastModifiedAt)

	for _, bad := range []string{`{"lastModifiedAt":"x"}`, `{"name":3}`, `null`, `"Alex"`} {
		assert.Error(t, json.Unmarshal([]byte(bad), &e), bad)
	}
}

func TestPlayerEntryRoundTripsVerbatim(t *testing.T) {
	in := `{"lastModifiedAt":"Wed Nov 26 2025","name":"Alex","extra":[1,2]}`

	var e domain.PlayerEntry
	require.NoError(t, json.Unmarshal([]byte(in), &e))
	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))

	assert.True(t, e.Equal(domain.PlayerEntry{Name: "Alex", LastModifiedAt: "Wed Nov 26 2025"}))
}

func TestOrderedFollowsCatalog(t *testing.T) {
	doc := domain.Tiers{
		"uhc":   {"LT1": {}, "zz": {}, "HT1": {}},
		"smp":   {"HT2": {}, "HT1": {}},
		"extra": nil,
	}

	raw, err := json.Marshal(domain.Ordered{Tiers: doc, Order: catalog(t)})
	require.NoError(t, err)
	assert.Equal(t, `{"smp":{"HT1":[],"HT2":[]},"uhc":{"HT1":[],"LT1":[],"zz":[]},"extra":null}`, string(raw))

	raw, err = json.Marshal(domain.Ordered{Tiers: doc})
	require.NoError(t, err)
	assert.Equal(t, `{"extra":null,"smp":{"HT1":[],"HT2":[]},"uhc":{"HT1":[],"LT1":[],"zz":[]}}`, string(raw))
}

func TestSetTierRequestNormalizesOffset(t *testing.T) {
	cmd, err := domain.SetTierRequest{
		Player:     "Steve",
		GameModeID: "smp",
		TierName:   "HT1",
		ModifiedAt: "2025-01-02T05:04:05+02:00",
	}.Validate(catalog(t), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02T03:04:05.000Z", cmd.Entry.LastModifiedAt)
}
