package summary

import (
	"fmt"

	"github.com/aimansalim/health-analyzer/record"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// SeriesFileName is the default name of the raw series parquet file.
const SeriesFileName = "series.parquet"

type seriesRow struct {
	Category string  `parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Start    string  `parquet:"name=start, type=BYTE_ARRAY, convertedtype=UTF8"`
	End      string  `parquet:"name=end, type=BYTE_ARRAY, convertedtype=UTF8"`
	Value    float64 `parquet:"name=value, type=DOUBLE"`
	Unit     string  `parquet:"name=unit, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Source   string  `parquet:"name=source, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Label    string  `parquet:"name=label, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// seriesRows flattens every store into one row per record, category by
// category in the fixed category order.
func seriesRows(stores *record.Stores) []seriesRow {
	rows := make([]seriesRow, 0, stores.Total())
	for _, c := range record.Categories {
		if c == record.SleepAnalysis {
			for _, iv := range stores.Sleep {
				rows = append(rows, seriesRow{
					Category: c.String(),
					Start:    iv.Start,
					End:      iv.End,
					Value:    iv.DurationHours,
					Unit:     "h",
					Source:   iv.Source,
					Label:    iv.Value,
				})
			}
			continue
		}
		for _, m := range stores.Measurements(c) {
			rows = append(rows, seriesRow{
				Category: c.String(),
				Start:    m.Date,
				End:      m.Date,
				Value:    m.Value,
				Unit:     m.Unit,
				Source:   m.Source,
			})
		}
	}
	return rows
}

// MarshalSeriesParquet encodes every raw record as a snappy-compressed parquet file.
func MarshalSeriesParquet(stores *record.Stores) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(seriesRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range seriesRows(stores) {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// WriteSeriesParquet writes the raw series parquet file to path.
func WriteSeriesParquet(path string, stores *record.Stores) error {
	data, err := MarshalSeriesParquet(stores)
	if err != nil {
		return fmt.Errorf("marshal series parquet: %w", err)
	}
	if err := WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("write series parquet: %w", err)
	}
	return nil
}
