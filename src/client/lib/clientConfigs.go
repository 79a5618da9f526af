package client

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	STORE_FILE_FORMAT = "%s-store%d.csv"
)

type ClientConfig struct {
	DataPath string
	Bucket   string
	Dates    []string
	StoreIds []int
	// Pattern, when set, replaces the date x store file list by every local
	// file whose name contains it.
	Pattern string
}

func NewClientConfig(dataPath, bucket string, dates []string, storeIds []int, pattern string) *ClientConfig {
	return &ClientConfig{
		DataPath: dataPath,
		Bucket:   bucket,
		Dates:    dates,
		StoreIds: storeIds,
		Pattern:  pattern,
	}
}

// StoreFileName is the name of the export of storeId for date.
func StoreFileName(date string, storeId int) string {
	return fmt.Sprintf(STORE_FILE_FORMAT, date, storeId)
}

// FileNames lists the expected store exports, date by date.
func (c *ClientConfig) FileNames() []string {
	names := make([]string, 0, len(c.Dates)*len(c.StoreIds))
	for _, date := range c.Dates {
		for _, storeId := range c.StoreIds {
			names = append(names, StoreFileName(date, storeId))
		}
	}
	return names
}

// ParseStoreIds accepts a comma separated list of ids and inclusive ranges,
// e.g. "1-3,7".
func ParseStoreIds(value string) ([]int, error) {
	ids := []int{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		from, to, isRange := strings.Cut(part, "-")
		if !isRange {
			to = from
		}
		first, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("invalid store id %q: %w", part, err)
		}
		last, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("invalid store id %q: %w", part, err)
		}
		if first > last {
			return nil, fmt.Errorf("invalid store id range %q", part)
		}

		for id := first; id <= last; id++ {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
