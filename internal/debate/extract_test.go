package debate

import (
	"strings"
	"testing"

	"github.com/lukasreiter/quorum/internal/models"
)

func TestExtractFencedPartialObject(t *testing.T) {
	raw := "Sure! Here is the decision record:\n```json\n{\"decisions\":[\"adopt the proposal\"]}\n```"
	record := Extract(raw)

	if record.Degraded {
		t.Fatal("record unexpectedly degraded")
	}
	if len(record.Decisions) != 1 || record.Decisions[0] != "adopt the proposal" {
		t.Errorf("decisions = %v", record.Decisions)
	}
	for name, list := range map[string][]string{
		"dissent":        record.Dissent,
		"open_questions": record.OpenQuestions,
		"actions":        record.Actions,
	} {
		if list == nil || len(list) != 0 {
			t.Errorf("%s = %v, want empty non-nil list", name, list)
		}
	}
	if record.Confidence != models.ConfidenceMedium {
		t.Errorf("confidence = %q, want medium default", record.Confidence)
	}
	if record.Summary == "" {
		t.Error("summary not defaulted")
	}
}

func TestExtractWellFormed(t *testing.T) {
	raw := `The council has concluded. {"decisions":["a","b"],"dissent":["c"],"open_questions":["d"],"actions":["e"],"confidence":"HIGH","summary":"done"} Thanks!`
	record := Extract(raw)

	if record.Degraded {
		t.Fatal("record unexpectedly degraded")
	}
	if len(record.Decisions) != 2 || record.Decisions[1] != "b" {
		t.Errorf("decisions = %v", record.Decisions)
	}
	if len(record.Dissent) != 1 || record.Dissent[0] != "c" {
		t.Errorf("dissent = %v", record.Dissent)
	}
	if record.Confidence != models.ConfidenceHigh {
		t.Errorf("confidence = %q, case-insensitive high expected", record.Confidence)
	}
	if record.Summary != "done" {
		t.Errorf("summary = %q", record.Summary)
	}
}

func TestExtractRepairsWrongShapedFields(t *testing.T) {
	raw := `{"decisions":"not a list","dissent":[1,true,"kept"],"confidence":42,"summary":null}`
	record := Extract(raw)

	if record.Degraded {
		t.Fatal("field-level damage must not degrade the whole record")
	}
	if len(record.Decisions) != 0 {
		t.Errorf("decisions = %v, want empty for non-list value", record.Decisions)
	}
	if len(record.Dissent) != 1 || record.Dissent[0] != "kept" {
		t.Errorf("dissent = %v, non-string elements should be dropped", record.Dissent)
	}
	if record.Confidence != models.ConfidenceMedium {
		t.Errorf("confidence = %q, want medium default", record.Confidence)
	}
	if record.Summary == "" {
		t.Error("summary not defaulted")
	}
}

func TestExtractUnparseableDegrades(t *testing.T) {
	for _, raw := range []string{
		"",
		"I'm sorry, I can't produce that.",
		"{broken json",
		"```json\nnot json at all\n```",
	} {
		record := Extract(raw)
		if !record.Degraded {
			t.Errorf("Extract(%q) not degraded", raw)
		}
		if record.Confidence != models.ConfidenceLow {
			t.Errorf("Extract(%q) confidence = %q, want low", raw, record.Confidence)
		}
		if !strings.Contains(record.Summary, "transcript") {
			t.Errorf("Extract(%q) summary does not point at the transcript", raw)
		}
		if record.Decisions == nil || record.Actions == nil {
			t.Errorf("Extract(%q) returned nil lists", raw)
		}
	}
}

func TestDegradedRecordShape(t *testing.T) {
	record := Degraded("the backend went away")

	if !record.Degraded {
		t.Fatal("Degraded record not flagged")
	}
	if record.Confidence != models.ConfidenceLow {
		t.Errorf("confidence = %q, want low", record.Confidence)
	}
	if !strings.Contains(record.Summary, "the backend went away") {
		t.Errorf("summary omits the reason: %q", record.Summary)
	}
}
