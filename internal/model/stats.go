package model

import "strconv"

// EndpointHit records one request to a tracked endpoint.
type EndpointHit struct {
	ID        int64  `json:"id,omitempty"`
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

// ViewStats is the aggregated hit count of one uri.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// StatsError is the error envelope of the stats service.
type StatsError struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
}

// EventURI is the public path of an event; views are keyed by it.
func EventURI(id int64) string {
	return "/events/" + strconv.FormatInt(id, 10)
}
