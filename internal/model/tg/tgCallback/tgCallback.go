package tgCallback

// Callbacks buttons prefixes
const (
	AddHolding     string = "add_holding"
	ShowInsights   string = "show_insights"
	ShowHealth     string = "show_health"
	ToggleLiveMode string = "toggle_live"
	ExportReport   string = "export_report"

	DismissInsightPrefix string = "dismiss_insight:"
	RemoveHoldingPrefix  string = "remove_holding:"
	PrevPagePrefix       string = "prev_page:"
	NextPagePrefix       string = "next_page:"
)
