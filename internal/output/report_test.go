package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/rulemine/internal/apriori"
)

func basketReport(t *testing.T) *Report {
	t.Helper()
	txns := apriori.NewTransactionStore([][]apriori.Item{
		{"a", "b"}, {"a", "b", "c"}, {"a", "c"}, {"b", "c"},
	})
	res, err := (&apriori.Miner{MinSupport: 2}).Mine(context.Background(), txns)
	require.NoError(t, err)
	sets, err := res.Rules(context.Background())
	require.NoError(t, err)
	return NewReport("baskets.txt", res, sets)
}

func TestWriteReport_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, basketReport(t)))

	want := `
Found 6 pair rules from 3 frequent pairs:
{c} -> {a} - frequency: 2, confidence = 0.6666666666666666
{c} -> {b} - frequency: 2, confidence = 0.6666666666666666
{b} -> {a} - frequency: 2, confidence = 0.6666666666666666
{b} -> {c} - frequency: 2, confidence = 0.6666666666666666
{a} -> {b} - frequency: 2, confidence = 0.6666666666666666
{a} -> {c} - frequency: 2, confidence = 0.6666666666666666

Found 0 triple rules from 0 frequent triples:
Found 3 frequent singles:
a: 3
b: 3
c: 3
Found 3 frequent pairs:
a b: 2
a c: 2
b c: 2
Found 0 frequent triples:
`
	assert.Equal(t, want, buf.String())
}

func TestNewReport(t *testing.T) {
	rep := basketReport(t)

	assert.Equal(t, "baskets.txt", rep.Source)
	assert.Equal(t, 4, rep.Transactions)
	assert.Equal(t, 2, rep.MinSupport)
	require.Len(t, rep.Levels, 3)

	assert.Equal(t, "singles", rep.Levels[0].Name)
	assert.Empty(t, rep.Levels[0].Rules)
	assert.Len(t, rep.Levels[1].Rules, 6)
	assert.Equal(t, []string{"c"}, rep.Levels[1].Rules[0].Antecedent)
	assert.InDelta(t, 2.0/3.0, rep.Levels[1].Rules[0].Confidence, 1e-12)
	assert.NotNil(t, rep.Levels[2].Itemsets)
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportJSON(&buf, basketReport(t)))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, basketReport(t), &got)
	assert.Contains(t, buf.String(), `"antecedent_frequency": 3`)
}

func TestWriteReportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportYAML(&buf, basketReport(t)))

	var got Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 4, got.Transactions)
	require.Len(t, got.Levels, 3)
	assert.Len(t, got.Levels[1].Rules, 6)
	assert.Contains(t, buf.String(), "name: pairs")
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, basketReport(t), "xml")
	assert.ErrorContains(t, err, "unknown report format")
}

func TestLevelName(t *testing.T) {
	tests := map[int]string{1: "singles", 2: "pairs", 3: "triples", 4: "4-itemsets"}
	for k, want := range tests {
		assert.Equal(t, want, LevelName(k))
	}
	assert.Equal(t, "triple", levelNoun(3))
	assert.Equal(t, "5-itemset", levelNoun(5))
}
