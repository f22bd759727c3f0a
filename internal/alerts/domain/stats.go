package alerts

// Stats tallies alerts by state and, independently, by severity.
type Stats struct {
	Total      int `json:"total"`
	Pendientes int `json:"pendientes"`
	Revisadas  int `json:"revisadas"`
	Resueltas  int `json:"resueltas"`
	Criticas   int `json:"criticas"`
	Altas      int `json:"altas"`
	Medias     int `json:"medias"`
	Bajas      int `json:"bajas"`
}

// Aggregate counts list in one pass. Alerts with an unknown state or
// severity count toward Total only.
func Aggregate(list []Alert) Stats {
	var stats Stats
	for _, alert := range list {
		stats.Total++
		switch alert.State {
		case StatePending:
			stats.Pendientes++
		case StateReviewed:
			stats.Revisadas++
		case StateResolved:
			stats.Resueltas++
		}
		switch alert.Severity {
		case SeverityCritical:
			stats.Criticas++
		case SeverityHigh:
			stats.Altas++
		case SeverityMedium:
			stats.Medias++
		case SeverityLow:
			stats.Bajas++
		}
	}
	return stats
}

// Open returns the number of alerts not yet resolved.
func (s Stats) Open() int {
	return s.Pendientes + s.Revisadas
}
