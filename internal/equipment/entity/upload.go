package entity

import "time"

// Statistics is the aggregate computed from the rows of one uploaded CSV.
//
// ChartLabels and ChartData are index-aligned: ChartData[i] is the number of
// rows whose Type equals ChartLabels[i].
type Statistics struct {
	TotalCount  int
	AvgPressure float64
	AvgTemp     float64
	ChartLabels []string
	ChartData   []int
}

type Upload struct {
	ID          int64
	Owner       string
	FileName    string
	StoragePath string
	CreatedAt   time.Time
	Stats       Statistics
}
