package journal

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/MaitreJV/pseudoshield/internal/privacy"
	"github.com/segmentio/parquet-go"
)

// parquetEntry is the flattened column layout for parquet exports. Parquet
// consumers prefer flat columns over nested maps, so the per-category counts
// collapse to the two legal totals and the rule IDs join into one field.
type parquetEntry struct {
	Timestamp            int64  `parquet:"timestamp"`
	SourceContext        string `parquet:"source_context"`
	TriggeredRules       string `parquet:"triggered_rules"`
	ReplacementCount     int32  `parquet:"replacement_count"`
	Art4Count            int32  `parquet:"art4_count"`
	Art9Count            int32  `parquet:"art9_count"`
	OriginalLength       int32  `parquet:"original_length"`
	ResultLength         int32  `parquet:"result_length"`
	ProcessingDurationMs int64  `parquet:"processing_duration_ms"`
	SessionID            string `parquet:"session_id"`
}

// ExportParquet writes the filtered journal as a parquet file
func (j *Journal) ExportParquet(ctx context.Context, w io.Writer, filter Filter) error {
	entries := j.Entries(ctx, filter)

	writer := parquet.NewWriter(w)
	for _, e := range entries {
		row := parquetEntry{
			Timestamp:            e.Timestamp.UnixMilli(),
			SourceContext:        e.SourceContext,
			TriggeredRules:       strings.Join(e.TriggeredRuleIDs, "|"),
			ReplacementCount:     int32(e.ReplacementCount),
			Art4Count:            int32(e.LegalCategoryCounts[string(privacy.LegalOrdinary)]),
			Art9Count:            int32(e.LegalCategoryCounts[string(privacy.LegalSensitive)]),
			OriginalLength:       int32(e.OriginalLength),
			ResultLength:         int32(e.ResultLength),
			ProcessingDurationMs: e.ProcessingDurationMs,
			SessionID:            e.SessionID,
		}
		if err := writer.Write(&row); err != nil {
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
