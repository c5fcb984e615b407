package tasks

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/knights-analytics/gluedata/util/fileutil"
)

// readTSV reads a tab separated file into rows of fields. Quoting is not
// interpreted: fields are split on tabs verbatim, which matches the raw GLUE
// file format where quote characters appear inside sentence text.
func readTSV(path string) (rows [][]string, err error) {
	file, openErr := fileutil.OpenFile(path)
	if openErr != nil {
		return nil, fmt.Errorf("reading %s: %w", path, openErr)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	reader := bufio.NewReader(file)
	for {
		line, readErr := fileutil.ReadLine(reader)
		if len(line) > 0 {
			rows = append(rows, strings.Split(string(line), "\t"))
		}
		if readErr == io.EOF {
			return rows, nil
		}
		if readErr != nil {
			return nil, fmt.Errorf("reading %s: %w", path, readErr)
		}
	}
}

// readQuotedTSV reads a tab separated file where fields may be quoted so that
// a single field can span multiple lines.
func readQuotedTSV(path string) (rows [][]string, err error) {
	file, openErr := fileutil.OpenFile(path)
	if openErr != nil {
		return nil, fmt.Errorf("reading %s: %w", path, openErr)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	rows, readErr := reader.ReadAll()
	if readErr != nil {
		return nil, fmt.Errorf("reading %s: %w", path, readErr)
	}
	return rows, nil
}
