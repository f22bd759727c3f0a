package memory

import alerts "gasbalance-cloud/internal/alerts/domain"

// DefaultAlerts is the demo data set served when no alert source is
// configured.
func DefaultAlerts() []alerts.Alert {
	return []alerts.Alert{
		{
			ID:          1,
			Date:        "2025-08-15 14:30",
			Valve:       "V-402",
			Location:    "Sector Norte",
			Type:        alerts.TypeImbalance,
			Severity:    alerts.SeverityCritical,
			State:       alerts.StatePending,
			Description: "Índice de pérdidas superó el umbral crítico del 12%. Se detectó desbalance significativo entre volumen de entrada y salida.",
			Metrics:     map[string]any{"indicePerdidas": 14.2, "volumenPerdido": 1850.0, "umbral": 12.0},
		},
		{
			ID:          2,
			Date:        "2025-08-14 09:15",
			Valve:       "V-318",
			Location:    "Sector Centro",
			Type:        alerts.TypeAnomaly,
			Severity:    alerts.SeverityHigh,
			State:       alerts.StateReviewed,
			Description: "Detección de patrón anómalo en consumo. Desviación del 25% respecto al comportamiento esperado.",
			Metrics:     map[string]any{"desviacion": 25.0, "volumenPerdido": 980.0},
		},
		{
			ID:          3,
			Date:        "2025-08-14 07:45",
			Valve:       "V-125",
			Location:    "Sector Sur",
			Type:        alerts.TypeImbalance,
			Severity:    alerts.SeverityHigh,
			State:       alerts.StateResolved,
			Description: "Pérdidas superiores al promedio histórico. Índice de pérdidas en 11.8%.",
			Metrics:     map[string]any{"indicePerdidas": 11.8, "volumenPerdido": 1420.0},
		},
		{
			ID:          4,
			Date:        "2025-08-13 16:20",
			Valve:       "V-567",
			Location:    "Sector Este",
			Type:        alerts.TypeAnomaly,
			Severity:    alerts.SeverityMedium,
			State:       alerts.StatePending,
			Description: "Comportamiento atípico detectado en mediciones nocturnas. Variación inesperada del 18%.",
			Metrics:     map[string]any{"desviacion": 18.0, "volumenPerdido": 650.0},
		},
		{
			ID:          5,
			Date:        "2025-08-13 11:30",
			Valve:       "V-089",
			Location:    "Sector Oeste",
			Type:        alerts.TypeImbalance,
			Severity:    alerts.SeverityMedium,
			State:       alerts.StateReviewed,
			Description: "Índice de pérdidas ligeramente por encima del promedio (9.5%). Requiere seguimiento.",
			Metrics:     map[string]any{"indicePerdidas": 9.5, "volumenPerdido": 780.0},
		},
		{
			ID:          6,
			Date:        "2025-08-12 19:00",
			Valve:       "V-402",
			Location:    "Sector Norte",
			Type:        alerts.TypeAnomaly,
			Severity:    alerts.SeverityLow,
			State:       alerts.StateResolved,
			Description: "Pequeña desviación detectada en horario valle. Posible ajuste de demanda.",
			Metrics:     map[string]any{"desviacion": 8.0, "volumenPerdido": 320.0},
		},
		{
			ID:          7,
			Date:        "2025-08-12 14:15",
			Valve:       "V-318",
			Location:    "Sector Centro",
			Type:        alerts.TypeImbalance,
			Severity:    alerts.SeverityCritical,
			State:       alerts.StatePending,
			Description: "Pérdidas críticas detectadas. Índice del 15.3%. Requiere intervención inmediata.",
			Metrics:     map[string]any{"indicePerdidas": 15.3, "volumenPerdido": 2100.0, "umbral": 12.0},
		},
		{
			ID:          8,
			Date:        "2025-08-11 10:45",
			Valve:       "V-125",
			Location:    "Sector Sur",
			Type:        alerts.TypeAnomaly,
			Severity:    alerts.SeverityHigh,
			State:       alerts.StateReviewed,
			Description: "Patrón de consumo fuera de lo normal. Desviación del 22% respecto a predicción.",
			Metrics:     map[string]any{"desviacion": 22.0, "volumenPerdido": 1150.0},
		},
	}
}
