package state

import (
	"bufio"
	"encoding/csv"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"backline/internal/pipeline"
)

// LoadFromCSV reads the most recent day's export log and returns up to
// limit snapshots (oldest first), used only to rehydrate the ring buffer
// when a process restarts with an empty one. The CSV header is expected to
// be exactly the column layout export.Writer produces: "bar,time," followed
// by one column per pipeline.Value name, in Snapshot.Values order.
func LoadFromCSV(logDir string, limit int) []pipeline.Snapshot {
	files, err := filepath.Glob(filepath.Join(logDir, "*.csv"))
	if err != nil || len(files) == 0 {
		log.Printf("[state] no export csv files found in %s", logDir)
		return nil
	}
	sort.Strings(files)
	latest := files[len(files)-1]

	f, err := os.Open(latest)
	if err != nil {
		log.Printf("[state] failed to open %s: %v", latest, err)
		return nil
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReaderSize(f, 1<<20))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		log.Printf("[state] failed to read header of %s: %v", latest, err)
		return nil
	}
	if len(header) < 2 {
		return nil
	}
	valueNames := header[2:]

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}

	snapshots := make([]pipeline.Snapshot, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		snap := pipeline.Snapshot{
			Bar:  atoi(row[0]),
			Time: atoi64(row[1]),
		}
		for i, name := range valueNames {
			col := i + 2
			if col >= len(row) {
				break
			}
			snap.Values = append(snap.Values, pipeline.Value{Name: name, V: atof(row[col])})
		}
		snapshots = append(snapshots, snap)
	}
	log.Printf("[state] restored %d snapshots from %s", len(snapshots), latest)
	return snapshots
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func atoi(s string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(s))
	return v
}

func atoi64(s string) int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return v
}
