package usecase

import (
	"time"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
)

type ColumnInfo struct {
	Name string
	Kind entity.ColumnKind
}

type UploadResult struct {
	UploadID         string
	FileName         string
	Format           string
	Columns          []ColumnInfo
	Rows             int
	Selectable       []string
	DefaultSelection []string
	ExpiresAt        time.Time
}

type TableResult struct {
	UploadID string
	FileName string
	Columns  []ColumnInfo
	Rows     [][]any
	Page     int
	PageSize int
	Total    int
}

type ChartResult struct {
	UploadID   string
	Selectable []string
	Selected   []string
	// Chart is nil when nothing is selected; Warning then explains why.
	Chart   *entity.Chart
	Warning string
}

// View is everything one page of the interactive UI shows.
type View struct {
	Upload entity.Upload
	ChartResult
}

func columnInfos(t entity.Table) []ColumnInfo {
	infos := make([]ColumnInfo, len(t.Columns))
	for i, c := range t.Columns {
		infos[i] = ColumnInfo{Name: c.Name, Kind: c.Kind}
	}
	return infos
}
