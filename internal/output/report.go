package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/rulemine/internal/apriori"
	"github.com/blackwell-systems/rulemine/internal/store"
)

// Report is the serializable result of one mining run.
type Report struct {
	RunID        string        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Source       string        `json:"source,omitempty" yaml:"source,omitempty"`
	Transactions int           `json:"transactions" yaml:"transactions"`
	MinSupport   int           `json:"min_support" yaml:"min_support"`
	Levels       []LevelReport `json:"levels" yaml:"levels"`
}

// LevelReport holds the frequent itemsets of one size and the rules
// derived from them, ranked.
type LevelReport struct {
	Level    int            `json:"level" yaml:"level"`
	Name     string         `json:"name" yaml:"name"`
	Itemsets []ItemsetEntry `json:"itemsets" yaml:"itemsets"`
	Rules    []RuleEntry    `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// ItemsetEntry is a frequent itemset and its support count.
type ItemsetEntry struct {
	Items []string `json:"items" yaml:"items"`
	Count int      `json:"count" yaml:"count"`
}

// RuleEntry is one association rule.
type RuleEntry struct {
	Antecedent          []string `json:"antecedent" yaml:"antecedent"`
	Consequent          []string `json:"consequent" yaml:"consequent"`
	Frequency           int      `json:"frequency" yaml:"frequency"`
	AntecedentFrequency int      `json:"antecedent_frequency" yaml:"antecedent_frequency"`
	Confidence          float64  `json:"confidence" yaml:"confidence"`
}

// String renders the rule the way apriori.Rule does.
func (e RuleEntry) String() string {
	rec := store.RuleRecord{
		Antecedent: e.Antecedent,
		Consequent: e.Consequent,
		AllFreq:    e.Frequency,
		LeftFreq:   e.AntecedentFrequency,
	}
	return rec.Rule().String()
}

// NewReport builds a report from a mining result and its ranked rule sets.
func NewReport(source string, res *apriori.Result, sets []apriori.RuleSet) *Report {
	return ReportFromRecords(&store.Run{
		SourcePath:       source,
		TransactionCount: res.Transactions,
		MinSupport:       res.MinSupport,
		MaxLevel:         len(res.Levels),
	}, store.ItemsetRecords(res), store.RuleRecords(sets))
}

// ReportFromRecords builds a report from stored records. Rules are expected
// in rank order within each level.
func ReportFromRecords(run *store.Run, itemsets []*store.ItemsetRecord, rules []*store.RuleRecord) *Report {
	rep := &Report{
		RunID:        run.ID,
		Source:       run.SourcePath,
		Transactions: run.TransactionCount,
		MinSupport:   run.MinSupport,
		Levels:       make([]LevelReport, run.MaxLevel),
	}
	for i := range rep.Levels {
		rep.Levels[i] = LevelReport{
			Level:    i + 1,
			Name:     LevelName(i + 1),
			Itemsets: []ItemsetEntry{},
		}
	}

	level := func(k int) *LevelReport {
		for len(rep.Levels) < k {
			n := len(rep.Levels) + 1
			rep.Levels = append(rep.Levels, LevelReport{Level: n, Name: LevelName(n), Itemsets: []ItemsetEntry{}})
		}
		return &rep.Levels[k-1]
	}

	for _, rec := range itemsets {
		lr := level(rec.Level)
		lr.Itemsets = append(lr.Itemsets, ItemsetEntry{Items: rec.Items, Count: rec.Count})
	}
	for _, rec := range rules {
		lr := level(rec.Level)
		lr.Rules = append(lr.Rules, RuleEntry{
			Antecedent:          rec.Antecedent,
			Consequent:          rec.Consequent,
			Frequency:           rec.AllFreq,
			AntecedentFrequency: rec.LeftFreq,
			Confidence:          rec.Confidence,
		})
	}

	return rep
}

// WriteReport writes rep in the plain text log format: first the rules of
// every level from pairs upward, then the frequent itemsets of every level.
//
//	Found 6 pair rules from 3 frequent pairs:
//	{c} -> {a} - frequency: 2, confidence = 0.6666666666666666
//	...
//	Found 3 frequent singles:
//	a: 3
func WriteReport(w io.Writer, rep *Report) error {
	var sb strings.Builder

	for _, lr := range rep.Levels {
		if lr.Level < 2 {
			continue
		}
		fmt.Fprintf(&sb, "\nFound %d %s rules from %d frequent %s:\n",
			len(lr.Rules), levelNoun(lr.Level), len(lr.Itemsets), lr.Name)
		for _, r := range lr.Rules {
			sb.WriteString(r.String())
			sb.WriteString("\n")
		}
	}

	for _, lr := range rep.Levels {
		fmt.Fprintf(&sb, "Found %d frequent %s:\n", len(lr.Itemsets), lr.Name)
		for _, e := range lr.Itemsets {
			fmt.Fprintf(&sb, "%s: %d\n", strings.Join(e.Items, " "), e.Count)
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteReportJSON writes rep as indented JSON.
func WriteReportJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteReportYAML writes rep as YAML.
func WriteReportYAML(w io.Writer, rep *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// CheckFormat returns an error unless format is accepted by Write.
func CheckFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatYAML, "":
		return nil
	}
	return fmt.Errorf("unknown report format %q (want text, json or yaml)", format)
}

// Write writes rep in the named format.
func Write(w io.Writer, rep *Report, format string) error {
	if err := CheckFormat(format); err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		return WriteReportJSON(w, rep)
	case FormatYAML:
		return WriteReportYAML(w, rep)
	}
	return WriteReport(w, rep)
}
