package schema

// TimeStats holds resolution-time descriptive statistics over the resolved
// subset of a dataset. Every statistic is nil when Count is 0; callers must
// distinguish "no data" from "zero days".
type TimeStats struct {
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	P85    *float64 `json:"p85"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Count  int      `json:"count"`
}

// GroupTimeStats holds the mean resolution time and resolved-item count for
// one group of a grouped breakdown. Groups with zero resolved items are
// never emitted.
type GroupTimeStats struct {
	Group    string  `json:"group"`
	MeanDays float64 `json:"mean_days"`
	Count    int     `json:"count"`
}
