package services

import (
	"bufio"
	"fmt"
	"io"
	"iter"
)

// ExportFormat names a journal download format.
type ExportFormat string

const (
	ExportText ExportFormat = "txt"
)

const exportSeparator = "------------------------------"

// ExportFilename is the attachment name for a format.
func ExportFilename(f ExportFormat) string {
	return "My_Journal." + string(f)
}

// WriteJournalText renders the series as plain text, one block per entry:
//
//	Date: 2025-01-02
//	Mood: Sad
//	Thought: ...
//	AI Feedback: ... (or N/A)
//	------------------------------
func WriteJournalText(w io.Writer, series iter.Seq[MoodSeriesPoint]) error {
	bw := bufio.NewWriter(w)
	first := true
	for p := range series {
		if !first {
			bw.WriteString("\n\n")
		}
		first = false

		feedback := p.Entry.AIReply
		if feedback == "" {
			feedback = "N/A"
		}
		fmt.Fprintf(bw, "\nDate: %s\nMood: %s\nThought: %s\nAI Feedback: %s\n%s",
			DayKey(p.Date), p.Mood, p.Entry.Thought, feedback, exportSeparator)
	}
	return bw.Flush()
}
